package schema

import "testing"

func TestMatchAllergen(t *testing.T) {
	tests := []struct {
		token string
		want  Allergen
		ok    bool
	}{
		{"milk", AllergenMilk, true},
		{"Milk", AllergenMilk, true},
		{"en:milk", AllergenMilk, true},
		{"fr:lait", AllergenMilk, true},
		{"whole milk powder", AllergenMilk, true},
		{"tree nuts", AllergenTreeNuts, true},
		{"nuts", AllergenTreeNuts, true},
		{"en:eggs", AllergenEggs, true},
		{"de:haselnuss", AllergenHazelnuts, true},
		{"contains: wheat", AllergenWheat, true},
		{"e220", AllergenSulfurDioxide, true},
		{"none", "", false},
		{"traces", "", false},
		{"unknown_thing", "", false},
		{"ab", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := MatchAllergen(tt.token)
			if ok != tt.ok {
				t.Fatalf("MatchAllergen(%q) ok = %v, want %v", tt.token, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("MatchAllergen(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestMatchFoodGroup(t *testing.T) {
	tests := []struct {
		value string
		want  FoodGroup
	}{
		{"vegetables", GroupVegetables},
		{"fruits", GroupFruits},
		{"biscuits", GroupGrains},
		{"chicken", GroupPoultry},
		{"fish", GroupSeafood},
		{"cheeses", GroupDairy},
		{"sweets", GroupProcessedFoods},
		{"sodas", GroupBeverages},
		{"something-else", GroupUnknown},
		{"", GroupUnknown},
	}

	for _, tt := range tests {
		if got := MatchFoodGroup(tt.value); got != tt.want {
			t.Errorf("MatchFoodGroup(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestMatchFoodGroup_PoultryBeforeMeat(t *testing.T) {
	// "chicken ham" mentions both; poultry has priority.
	if got := MatchFoodGroup("chicken ham"); got != GroupPoultry {
		t.Errorf("MatchFoodGroup(%q) = %q, want %q", "chicken ham", got, GroupPoultry)
	}
}

func TestMatchServingUnit(t *testing.T) {
	tests := []struct {
		token string
		want  ServingUnit
		ok    bool
	}{
		{"g", UnitG, true},
		{"grams", UnitG, true},
		{"ML", UnitML, true},
		{" ml ", UnitML, true},
		{"fl oz", UnitFLOZ, true},
		{"cup", UnitCup, true},
		{"bowl", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := MatchServingUnit(tt.token)
		if ok != tt.ok {
			t.Fatalf("MatchServingUnit(%q) ok = %v, want %v", tt.token, ok, tt.ok)
		}
		if ok && got != tt.want {
			t.Errorf("MatchServingUnit(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestDBColumnName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"energy-kcal_100g", "energy_kcal_100g"},
		{"omega-3-fat_100g", "omega_3_fat_100g"},
		{"proteins_100g", "proteins_100g"},
	}
	for _, tt := range tests {
		if got := DBColumnName(tt.in); got != tt.want {
			t.Errorf("DBColumnName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNumericLimit(t *testing.T) {
	if got := NumericLimit("vitamin-c_100g"); got != VitaminMineralLimit {
		t.Errorf("NumericLimit(vitamin-c_100g) = %v, want %v", got, float64(VitaminMineralLimit))
	}
	if got := NumericLimit("proteins_100g"); got != MacroLimit {
		t.Errorf("NumericLimit(proteins_100g) = %v, want %v", got, float64(MacroLimit))
	}
}

func TestTargetColumns(t *testing.T) {
	cols := TargetColumns()
	if cols[0] != "code" {
		t.Fatalf("TargetColumns()[0] = %q, want code", cols[0])
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c] {
			t.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}
	if !seen["energy_kcal_100g"] {
		t.Error("TargetColumns() missing energy_kcal_100g")
	}
	if !seen["serving_measurement"] {
		t.Error("TargetColumns() missing serving_measurement")
	}
}
