package core

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/recipedb/nutriload/internal/schema"
)

// FieldError marks a cell whose value is malformed badly enough to reject
// the whole row, as opposed to values that merely degrade to NULL.
type FieldError struct {
	Column string
	Reason string
}

// NormalizeDecimal parses a numeric cell for the named column.
//
// Empty cells, NaN/Inf, and magnitudes the destination column cannot hold
// come back as absent with no error. Unparseable text and negative values
// in non-negative columns come back as a FieldError, which rejects the
// row.
func NormalizeDecimal(raw, column string) (pgtype.Numeric, *FieldError) {
	raw = CleanCell(raw)
	if raw == "" {
		return pgtype.Numeric{}, nil
	}

	// European exports use comma decimals; swap only when unambiguous.
	cleaned := raw
	if !strings.Contains(cleaned, ".") && strings.Count(cleaned, ",") == 1 {
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}
	cleaned = strings.TrimSpace(cleaned)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return pgtype.Numeric{}, &FieldError{Column: column, Reason: "not_a_number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return pgtype.Numeric{}, nil
	}
	if v < 0 && !schema.AllowsNegative(column) {
		return pgtype.Numeric{}, &FieldError{Column: column, Reason: "negative_value"}
	}
	if math.Abs(v) >= schema.NumericLimit(column) || math.Abs(v) >= schema.AbsoluteLimit {
		return pgtype.Numeric{}, nil
	}

	var n pgtype.Numeric
	if err := n.Scan(cleaned); err != nil {
		// Exponent notation and similar; re-render as plain decimal.
		if err := n.Scan(strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
			return pgtype.Numeric{}, &FieldError{Column: column, Reason: "not_a_number"}
		}
	}
	return n, nil
}

var servingPattern = regexp.MustCompile(`^([0-9]+(?:[.,][0-9]+)?)\s*(.*)$`)

// ParseServing splits a serving size like "250 ml", "1 cup (240 ml)" or
// "30g" into a quantity and a unit from the closed unit set. Values that
// do not start with a positive number yield neither; an unrecognized unit
// yields the quantity alone. Serving parse trouble never rejects a row.
func ParseServing(raw string) (pgtype.Numeric, pgtype.Text) {
	raw = CleanCell(raw)
	if raw == "" {
		return pgtype.Numeric{}, pgtype.Text{}
	}

	m := servingPattern.FindStringSubmatch(raw)
	if m == nil {
		return pgtype.Numeric{}, pgtype.Text{}
	}

	qtyStr := strings.Replace(m[1], ",", ".", 1)
	v, err := strconv.ParseFloat(qtyStr, 64)
	if err != nil || v <= 0 || v >= schema.MacroLimit {
		return pgtype.Numeric{}, pgtype.Text{}
	}
	var qty pgtype.Numeric
	if err := qty.Scan(qtyStr); err != nil {
		return pgtype.Numeric{}, pgtype.Text{}
	}

	rest := m[2]
	if i := strings.IndexByte(rest, '('); i >= 0 {
		rest = rest[:i]
	}
	if unit, ok := schema.MatchServingUnit(rest); ok {
		return qty, pgtype.Text{String: string(unit), Valid: true}
	}
	return qty, pgtype.Text{}
}

var allergenDelims = strings.NewReplacer(
	" and ", ",", " et ", ",", " und ", ",",
	";", ",", "|", ",", "/", ",", "+", ",", "&", ",",
)

// NormalizeAllergens maps a raw allergen list to the closed allergen set.
// Tokens that match nothing are dropped; the result is deduplicated and
// sorted, nil when nothing matched.
func NormalizeAllergens(raw string) []schema.Allergen {
	raw = CleanCell(raw)
	if raw == "" {
		return nil
	}

	seen := make(map[schema.Allergen]struct{})
	for _, token := range strings.Split(allergenDelims.Replace(strings.ToLower(raw)), ",") {
		if a, ok := schema.MatchAllergen(token); ok {
			seen[a] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}

	out := make([]schema.Allergen, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NormalizeFoodGroup maps a taxonomy value like "en:vegetables" to the
// closed food group set, UNKNOWN when nothing matches.
func NormalizeFoodGroup(raw string) schema.FoodGroup {
	raw = CleanCell(raw)
	if raw == "" {
		return schema.GroupUnknown
	}
	return schema.MatchFoodGroup(schema.StripLanguagePrefix(strings.ToLower(raw)))
}

// NormalizeGrade maps a nutriscore grade cell to one of a-e. A token that
// merely starts with a grade letter followed by a non-letter ("b-", "c ")
// still counts; anything else is absent.
func NormalizeGrade(raw string) pgtype.Text {
	g := strings.ToLower(CleanCell(raw))
	if g == "" {
		return pgtype.Text{}
	}
	if schema.NutriscoreGrades[g] {
		return pgtype.Text{String: g, Valid: true}
	}
	if schema.NutriscoreGrades[g[:1]] && len(g) > 1 {
		next := g[1]
		if next < 'a' || next > 'z' {
			return pgtype.Text{String: g[:1], Valid: true}
		}
	}
	return pgtype.Text{}
}
