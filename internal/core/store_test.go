package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/recipedb/nutriload/internal/schema"
)

func TestBuildUpsertSQL(t *testing.T) {
	sql := buildUpsertSQL()

	if !strings.HasPrefix(sql, "INSERT INTO nutritional_info (code, ") {
		t.Errorf("unexpected prefix: %s", sql)
	}
	if !strings.Contains(sql, "ON CONFLICT (code) DO UPDATE SET") {
		t.Error("upsert must handle code conflicts")
	}
	if !strings.Contains(sql, "updated_at = now()") {
		t.Error("updates must refresh updated_at")
	}
	if strings.Contains(sql, "code = EXCLUDED.code") {
		t.Error("conflict target must not be reassigned")
	}
	for _, cast := range []string{"::measurement_enum", "::allergen_enum[]", "::food_group_enum"} {
		if !strings.Contains(sql, cast) {
			t.Errorf("missing cast %s", cast)
		}
	}

	// One placeholder per destination column.
	n := len(schema.TargetColumns())
	if !strings.Contains(sql, fmt.Sprintf("$%d", n)) {
		t.Errorf("missing placeholder $%d", n)
	}
	if strings.Contains(sql, fmt.Sprintf("$%d", n+1)) {
		t.Errorf("unexpected placeholder $%d", n+1)
	}
}

func TestUpsertArgs(t *testing.T) {
	rec := Record{
		Code:        "123",
		ProductName: pgtype.Text{String: "Oats", Valid: true},
		Allergens:   []schema.Allergen{schema.AllergenGluten},
		FoodGroup:   schema.GroupGrains,
		Nutrients:   map[string]pgtype.Numeric{},
	}

	args := upsertArgs(rec)
	if len(args) != len(schema.TargetColumns()) {
		t.Fatalf("args = %d, want %d", len(args), len(schema.TargetColumns()))
	}
	if args[0] != "123" {
		t.Errorf("args[0] = %v, want code", args[0])
	}
	if got, ok := args[7].([]string); !ok || len(got) != 1 || got[0] != "GLUTEN" {
		t.Errorf("allergen arg = %v, want [GLUTEN]", args[7])
	}
	if args[8] != "GRAINS" {
		t.Errorf("food group arg = %v, want GRAINS", args[8])
	}
}

func TestAllergenStrings_EmptyIsNull(t *testing.T) {
	if got := allergenStrings(nil); got != nil {
		t.Errorf("allergenStrings(nil) = %v, want nil", got)
	}
	if got := allergenStrings([]schema.Allergen{}); got != nil {
		t.Errorf("allergenStrings(empty) = %v, want nil", got)
	}
}
