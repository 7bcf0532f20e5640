// Package schema describes the nutritional_info destination table and the
// OpenFoodFacts export columns that feed it: which CSV columns we consume,
// what kind of value each one carries, and the closed vocabularies
// (allergens, food groups, serving units, nutriscore grades) that string
// columns are normalized into.
package schema

import "strings"

// Kind classifies how a source column is parsed and normalized.
type Kind int

const (
	KindCode Kind = iota
	KindText
	KindNumeric
	KindServing
	KindAllergens
	KindFoodGroup
	KindGrade
)

// Column is one consumed source column. Name is the header as it appears in
// the export (dashes and all); DBColumn is the destination column name.
type Column struct {
	Name     string
	DBColumn string
	Kind     Kind
}

// TextColumns are free-text columns stored as-is after cell cleanup.
var TextColumns = []string{
	"product_name",
	"generic_name",
	"brands",
	"categories",
}

// NutrientColumns are the per-100g numeric columns plus the nutriscore
// score, in destination column order. Header names use dashes; the
// destination columns use underscores (see DBColumnName).
var NutrientColumns = []string{
	"nutriscore_score",
	"energy-kcal_100g",
	"fat_100g",
	"saturated-fat_100g",
	"monounsaturated-fat_100g",
	"polyunsaturated-fat_100g",
	"trans-fat_100g",
	"omega-3-fat_100g",
	"omega-6-fat_100g",
	"omega-9-fat_100g",
	"cholesterol_100g",
	"carbohydrates_100g",
	"sugars_100g",
	"added-sugars_100g",
	"fiber_100g",
	"soluble-fiber_100g",
	"insoluble-fiber_100g",
	"proteins_100g",
	"salt_100g",
	"sodium_100g",
	"vitamin-a_100g",
	"vitamin-b1_100g",
	"vitamin-b2_100g",
	"vitamin-b6_100g",
	"vitamin-b9_100g",
	"vitamin-b12_100g",
	"vitamin-c_100g",
	"vitamin-d_100g",
	"vitamin-e_100g",
	"vitamin-k_100g",
	"calcium_100g",
	"iron_100g",
	"magnesium_100g",
	"phosphorus_100g",
	"potassium_100g",
	"zinc_100g",
	"copper_100g",
	"selenium_100g",
	"caffeine_100g",
	"alcohol_100g",
}

// vitaminMineral marks the micronutrient columns stored as DECIMAL(10,6).
// Values at or above 10000 overflow the column and are dropped during
// normalization; the remaining numeric columns are DECIMAL(8,3) and drop
// at 100000.
var vitaminMineral = map[string]bool{
	"vitamin-a_100g":   true,
	"vitamin-b1_100g":  true,
	"vitamin-b2_100g":  true,
	"vitamin-b6_100g":  true,
	"vitamin-b9_100g":  true,
	"vitamin-b12_100g": true,
	"vitamin-c_100g":   true,
	"vitamin-d_100g":   true,
	"vitamin-e_100g":   true,
	"vitamin-k_100g":   true,
	"calcium_100g":     true,
	"iron_100g":        true,
	"magnesium_100g":   true,
	"phosphorus_100g":  true,
	"potassium_100g":   true,
	"zinc_100g":        true,
	"copper_100g":      true,
	"selenium_100g":    true,
	"caffeine_100g":    true,
}

// Precision limits for numeric destination columns. Anything at or above
// the limit for its class cannot be represented and is treated as absent.
const (
	VitaminMineralLimit = 10000
	MacroLimit          = 100000
	AbsoluteLimit       = 1e6
)

// NumericLimit returns the largest magnitude the destination column for
// the given source column can hold.
func NumericLimit(name string) float64 {
	if vitaminMineral[name] {
		return VitaminMineralLimit
	}
	return MacroLimit
}

// AllowsNegative reports whether the column may carry values below zero.
// Nutri-Score points range roughly -15 to 40; every per-100g quantity is a
// physical amount and must be non-negative.
func AllowsNegative(name string) bool {
	return name == "nutriscore_score"
}

// DBColumnName maps a source header name to its destination column name.
func DBColumnName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// TargetColumns is the full ordered destination column list for the upsert
// statement, code first.
func TargetColumns() []string {
	cols := make([]string, 0, len(TextColumns)+len(NutrientColumns)+8)
	cols = append(cols, "code")
	cols = append(cols, TextColumns...)
	cols = append(cols,
		"serving_quantity",
		"serving_measurement",
		"allergens",
		"food_groups",
		"nutriscore_grade",
	)
	for _, c := range NutrientColumns {
		cols = append(cols, DBColumnName(c))
	}
	return cols
}
