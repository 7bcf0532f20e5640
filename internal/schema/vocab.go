package schema

import "strings"

// Allergen is a value of the destination allergen_enum type.
type Allergen string

const (
	AllergenMilk          Allergen = "MILK"
	AllergenEggs          Allergen = "EGGS"
	AllergenWheat         Allergen = "WHEAT"
	AllergenGluten        Allergen = "GLUTEN"
	AllergenSoybeans      Allergen = "SOYBEANS"
	AllergenTreeNuts      Allergen = "TREE_NUTS"
	AllergenAlmonds       Allergen = "ALMONDS"
	AllergenCashews       Allergen = "CASHEWS"
	AllergenHazelnuts     Allergen = "HAZELNUTS"
	AllergenWalnuts       Allergen = "WALNUTS"
	AllergenPeanuts       Allergen = "PEANUTS"
	AllergenFish          Allergen = "FISH"
	AllergenShellfish     Allergen = "SHELLFISH"
	AllergenSesame        Allergen = "SESAME"
	AllergenMustard       Allergen = "MUSTARD"
	AllergenCelery        Allergen = "CELERY"
	AllergenSulphites     Allergen = "SULPHITES"
	AllergenSulfurDioxide Allergen = "SULFUR_DIOXIDE"
	AllergenLupin         Allergen = "LUPIN"
	AllergenCoconut       Allergen = "COCONUT"
	AllergenCorn          Allergen = "CORN"
	AllergenYeast         Allergen = "YEAST"
	AllergenGelatin       Allergen = "GELATIN"
	AllergenKiwi          Allergen = "KIWI"
	AllergenPork          Allergen = "PORK"
	AllergenBeef          Allergen = "BEEF"
	AllergenAlcohol       Allergen = "ALCOHOL"
	AllergenPhenylalanine Allergen = "PHENYLALANINE"
)

// allergenSynonyms maps each allergen to the lowercase tokens that identify
// it in source data. Tokens arrive tagged with language prefixes (en:, fr:,
// de:, ...) and in several languages; matching is substring-based in both
// directions so "en:milk" and "whole milk powder" both land on MILK.
var allergenSynonyms = map[Allergen][]string{
	AllergenMilk:          {"milk", "lait", "milch", "leche", "latte", "dairy", "lactose", "whey", "casein", "butter", "cream"},
	AllergenEggs:          {"egg", "eggs", "oeuf", "oeufs", "huevo", "uovo", "eier", "albumin"},
	AllergenWheat:         {"wheat", "ble", "weizen", "trigo", "grano"},
	AllergenGluten:        {"gluten", "barley", "rye", "oats", "spelt", "seigle", "avoine", "orge", "hafer", "roggen"},
	AllergenSoybeans:      {"soy", "soya", "soja", "soybean", "soybeans", "tofu", "edamame"},
	AllergenTreeNuts:      {"tree nuts", "tree-nuts", "nuts", "noix", "nuss", "nueces", "frutta a guscio", "pecan", "pistachio", "macadamia", "brazil nut"},
	AllergenAlmonds:       {"almond", "almonds", "amande", "amandes", "mandel", "almendra"},
	AllergenCashews:       {"cashew", "cashews", "cajou", "anacardo"},
	AllergenHazelnuts:     {"hazelnut", "hazelnuts", "noisette", "noisettes", "haselnuss", "avellana", "nocciola"},
	AllergenWalnuts:       {"walnut", "walnuts", "walnuss", "nogal"},
	AllergenPeanuts:       {"peanut", "peanuts", "arachide", "arachides", "erdnuss", "cacahuete", "groundnut"},
	AllergenFish:          {"fish", "poisson", "fisch", "pescado", "pesce", "salmon", "tuna", "cod", "anchovy", "sardine"},
	AllergenShellfish:     {"shellfish", "crustacean", "crustaceans", "crustaces", "shrimp", "prawn", "crab", "lobster", "mollusc", "molluscs", "mollusques", "oyster", "mussel", "clam", "squid"},
	AllergenSesame:        {"sesame", "sesam", "sesamo", "tahini"},
	AllergenMustard:       {"mustard", "moutarde", "senf", "mostaza", "senape"},
	AllergenCelery:        {"celery", "celeri", "sellerie", "apio", "sedano"},
	AllergenSulphites:     {"sulphite", "sulphites", "sulfite", "sulfites", "sulfito", "metabisulphite"},
	AllergenSulfurDioxide: {"sulfur dioxide", "sulphur dioxide", "e220", "anhydride sulfureux"},
	AllergenLupin:         {"lupin", "lupine", "lupino", "altramuz"},
	AllergenCoconut:       {"coconut", "coco", "noix de coco", "kokos"},
	AllergenCorn:          {"corn", "maize", "mais"},
	AllergenYeast:         {"yeast", "levure", "hefe", "levadura"},
	AllergenGelatin:       {"gelatin", "gelatine", "gelatina"},
	AllergenKiwi:          {"kiwi"},
	AllergenPork:          {"pork", "porc", "schwein", "cerdo", "maiale"},
	AllergenBeef:          {"beef", "boeuf", "rind", "vacuno", "manzo"},
	AllergenAlcohol:       {"alcohol", "alcool", "alkohol", "ethanol"},
	AllergenPhenylalanine: {"phenylalanine", "aspartame"},
}

// allergenSkipTerms are tokens that carry no allergen information and are
// dropped before matching.
var allergenSkipTerms = map[string]bool{
	"none":        true,
	"nil":         true,
	"n-a":         true,
	"na":          true,
	"no":          true,
	"may contain": true,
	"traces":      true,
	"trace":       true,
	"water":       true,
	"salt":        true,
	"sugar":       true,
}

// languagePrefixes are stripped from the front of source tokens.
var languagePrefixes = []string{"en:", "fr:", "de:", "es:", "it:", "nl:", "pt:", "contains:"}

// StripLanguagePrefix removes a single leading language tag, if present.
func StripLanguagePrefix(token string) string {
	for _, p := range languagePrefixes {
		if strings.HasPrefix(token, p) {
			return token[len(p):]
		}
	}
	return token
}

// MatchAllergen resolves one cleaned, lowercase token to an allergen.
// Tokens shorter than three characters (besides failing the synonym check)
// are too ambiguous to match and return false.
func MatchAllergen(token string) (Allergen, bool) {
	token = strings.TrimSpace(StripLanguagePrefix(strings.ToLower(token)))
	if len(token) < 3 || allergenSkipTerms[token] {
		return "", false
	}
	// Exact synonym hits win over substring containment so that a token
	// like "nuts" resolves to TREE_NUTS rather than whichever longer
	// synonym happens to contain it.
	for allergen, synonyms := range allergenSynonyms {
		for _, s := range synonyms {
			if token == s {
				return allergen, true
			}
		}
	}
	for allergen, synonyms := range allergenSynonyms {
		for _, s := range synonyms {
			if strings.Contains(token, s) || (len(s) >= 4 && strings.Contains(s, token)) {
				return allergen, true
			}
		}
	}
	return "", false
}

// FoodGroup is a value of the destination food_group_enum type.
type FoodGroup string

const (
	GroupVegetables     FoodGroup = "VEGETABLES"
	GroupFruits         FoodGroup = "FRUITS"
	GroupMeat           FoodGroup = "MEAT"
	GroupPoultry        FoodGroup = "POULTRY"
	GroupSeafood        FoodGroup = "SEAFOOD"
	GroupDairy          FoodGroup = "DAIRY"
	GroupGrains         FoodGroup = "GRAINS"
	GroupLegumes        FoodGroup = "LEGUMES"
	GroupNutsSeeds      FoodGroup = "NUTS_SEEDS"
	GroupBeverages      FoodGroup = "BEVERAGES"
	GroupProcessedFoods FoodGroup = "PROCESSED_FOODS"
	GroupUnknown        FoodGroup = "UNKNOWN"
)

// foodGroupKeywords maps taxonomy keywords to destination groups. Source
// values look like "en:vegetables" or "en:biscuits-and-cakes"; the first
// group whose keyword appears in the cleaned value wins, in this order.
var foodGroupOrder = []FoodGroup{
	GroupPoultry,
	GroupSeafood,
	GroupMeat,
	GroupDairy,
	GroupVegetables,
	GroupFruits,
	GroupLegumes,
	GroupNutsSeeds,
	GroupGrains,
	GroupBeverages,
	GroupProcessedFoods,
}

var foodGroupKeywords = map[FoodGroup][]string{
	GroupVegetables:     {"vegetable", "vegetables", "legumes-verts", "salad", "potatoes", "tomatoes", "carrots", "onions"},
	GroupFruits:         {"fruit", "fruits", "berries", "citrus", "apples", "bananas", "dried-fruits"},
	GroupMeat:           {"meat", "beef", "pork", "lamb", "veal", "viande", "charcuterie", "sausages", "ham"},
	GroupPoultry:        {"poultry", "chicken", "turkey", "duck", "volaille"},
	GroupSeafood:        {"fish", "seafood", "shellfish", "poisson", "crustaceans", "molluscs"},
	GroupDairy:          {"dairy", "milk", "cheese", "cheeses", "yogurt", "yogurts", "cream", "butter", "fromage"},
	GroupGrains:         {"cereal", "cereals", "bread", "breads", "pasta", "rice", "grains", "flour", "breakfast-cereals", "biscuits", "pastries"},
	GroupLegumes:        {"legume", "legumes", "beans", "lentils", "chickpeas", "peas"},
	GroupNutsSeeds:      {"nut", "nuts", "seeds", "almonds", "peanuts"},
	GroupBeverages:      {"beverage", "beverages", "drinks", "juices", "sodas", "waters", "teas", "coffees", "boissons"},
	GroupProcessedFoods: {"processed", "snacks", "sweets", "candies", "chocolate", "confectionery", "sandwiches", "pizzas", "prepared", "dressings", "sauces", "soups", "spreads", "fats"},
}

// MatchFoodGroup maps a cleaned, lowercase taxonomy value to a group.
// Unmappable values get UNKNOWN.
func MatchFoodGroup(value string) FoodGroup {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return GroupUnknown
	}
	for _, group := range foodGroupOrder {
		for _, kw := range foodGroupKeywords[group] {
			if strings.Contains(value, kw) {
				return group
			}
		}
	}
	return GroupUnknown
}

// ServingUnit is a value of the destination measurement_enum type.
type ServingUnit string

const (
	UnitG     ServingUnit = "G"
	UnitMG    ServingUnit = "MG"
	UnitKG    ServingUnit = "KG"
	UnitOZ    ServingUnit = "OZ"
	UnitLB    ServingUnit = "LB"
	UnitML    ServingUnit = "ML"
	UnitCL    ServingUnit = "CL"
	UnitDL    ServingUnit = "DL"
	UnitL     ServingUnit = "L"
	UnitFLOZ  ServingUnit = "FL_OZ"
	UnitCup   ServingUnit = "CUP"
	UnitTbsp  ServingUnit = "TBSP"
	UnitTsp   ServingUnit = "TSP"
	UnitPiece ServingUnit = "PIECE"
	UnitSlice ServingUnit = "SLICE"
)

// servingUnitTokens maps lowercase unit spellings to the closed unit set.
var servingUnitTokens = map[string]ServingUnit{
	"g":           UnitG,
	"gr":          UnitG,
	"gram":        UnitG,
	"grams":       UnitG,
	"gramme":      UnitG,
	"grammes":     UnitG,
	"mg":          UnitMG,
	"kg":          UnitKG,
	"oz":          UnitOZ,
	"ounce":       UnitOZ,
	"ounces":      UnitOZ,
	"lb":          UnitLB,
	"lbs":         UnitLB,
	"pound":       UnitLB,
	"pounds":      UnitLB,
	"ml":          UnitML,
	"milliliter":  UnitML,
	"milliliters": UnitML,
	"millilitre":  UnitML,
	"millilitres": UnitML,
	"cl":          UnitCL,
	"dl":          UnitDL,
	"l":           UnitL,
	"liter":       UnitL,
	"liters":      UnitL,
	"litre":       UnitL,
	"litres":      UnitL,
	"fl oz":       UnitFLOZ,
	"floz":        UnitFLOZ,
	"fl. oz":      UnitFLOZ,
	"fluid ounce": UnitFLOZ,
	"cup":         UnitCup,
	"cups":        UnitCup,
	"tbsp":        UnitTbsp,
	"tablespoon":  UnitTbsp,
	"tablespoons": UnitTbsp,
	"tsp":         UnitTsp,
	"teaspoon":    UnitTsp,
	"teaspoons":   UnitTsp,
	"piece":       UnitPiece,
	"pieces":      UnitPiece,
	"pc":          UnitPiece,
	"pcs":         UnitPiece,
	"slice":       UnitSlice,
	"slices":      UnitSlice,
}

// MatchServingUnit resolves a lowercase unit token. Unknown units return
// false; the serving is then stored with a quantity but no unit.
func MatchServingUnit(token string) (ServingUnit, bool) {
	u, ok := servingUnitTokens[strings.TrimSpace(strings.ToLower(token))]
	return u, ok
}

// NutriscoreGrades is the closed grade set, best to worst.
var NutriscoreGrades = map[string]bool{
	"a": true, "b": true, "c": true, "d": true, "e": true,
}
