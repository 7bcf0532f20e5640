package core

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/recipedb/nutriload/internal/schema"
)

// requiredColumn is the only column a row cannot do without.
const requiredColumn = "code"

// BuildRecord normalizes and validates one CSV row. It returns either a
// load-ready record or the rejection that disqualified the row. Columns
// missing from the header simply come out absent.
func BuildRecord(row []string, idx HeaderIndex, line int) (Record, *Rejection) {
	code := getCell(row, idx, requiredColumn)
	if code == "" {
		return Record{}, &Rejection{Line: line, Reason: RejectMissingCode}
	}

	rec := Record{
		Code:        code,
		ProductName: toText(getCell(row, idx, "product_name")),
		GenericName: toText(getCell(row, idx, "generic_name")),
		Brands:      toText(getCell(row, idx, "brands")),
		Categories:  toText(getCell(row, idx, "categories")),
		Allergens:   NormalizeAllergens(getCell(row, idx, "allergens")),
		FoodGroup:   NormalizeFoodGroup(getCell(row, idx, "food_groups")),
		Nutrients:   make(map[string]pgtype.Numeric),
	}
	rec.ServingQuantity, rec.ServingUnit = ParseServing(getCell(row, idx, "serving_size"))
	rec.NutriscoreGrade = NormalizeGrade(getCell(row, idx, "nutriscore_grade"))

	for _, col := range schema.NutrientColumns {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			continue
		}
		n, ferr := NormalizeDecimal(row[i], col)
		if ferr != nil {
			return Record{}, &Rejection{
				Line:   line,
				Code:   code,
				Reason: RejectInvalidNumericField,
				Field:  ferr.Column,
			}
		}
		if n.Valid {
			rec.Nutrients[col] = n
		}
	}

	return rec, nil
}

// HeaderRecognized reports whether the header carries the product code
// column plus at least one other column we consume. Anything less means
// the file is not a nutrition export and the run aborts.
func HeaderRecognized(idx HeaderIndex) bool {
	if _, ok := idx[requiredColumn]; !ok {
		return false
	}
	for _, col := range schema.TextColumns {
		if _, ok := idx[col]; ok {
			return true
		}
	}
	for _, col := range schema.NutrientColumns {
		if _, ok := idx[col]; ok {
			return true
		}
	}
	for _, col := range []string{"serving_size", "allergens", "food_groups", "nutriscore_grade"} {
		if _, ok := idx[col]; ok {
			return true
		}
	}
	return false
}
