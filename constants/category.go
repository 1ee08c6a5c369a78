package constants

import (
	"strings"
	"unicode"
)

// Category is a coarse line-item category attached during item extraction.
type Category string

const (
	Bakery     Category = "Bakery"
	Beverages  Category = "Beverages"
	Dairy      Category = "Dairy"
	Fruits     Category = "Fruits"
	Vegetables Category = "Vegetables"
	Meat       Category = "Meat"
	Frozen     Category = "Frozen"
	Household  Category = "Household"
	Hygiene    Category = "Hygiene"
	Other      Category = "Other"
)

var allCategories = []Category{
	Bakery,
	Beverages,
	Dairy,
	Fruits,
	Vegetables,
	Meat,
	Frozen,
	Household,
	Hygiene,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// CategorizeItem guesses a category from an item name using keyword
// matching in both languages. Keywords match whole words only, so
// "gateau" does not land in Beverages via "eau". Unmatched names map
// to Other.
func CategorizeItem(name string) Category {
	words := itemWords(name)
	for _, kw := range itemKeywords {
		for _, w := range words {
			if w == kw.word {
				return kw.category
			}
		}
	}
	return Other
}

// itemWords splits an item name into lowercase words, stripping a
// trailing plural s/x so "Pommes" and "Eaux" still match.
func itemWords(name string) []string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for i, w := range words {
		if n := len(w); n > 3 && (w[n-1] == 's' || w[n-1] == 'x') {
			words[i] = w[:n-1]
		}
	}
	return words
}

// itemKeywords is ordered so names matching several keywords always
// resolve to the same category.
var itemKeywords = []struct {
	word     string
	category Category
}{
	{"pain", Bakery},
	{"baguette", Bakery},
	{"croissant", Bakery},
	{"bread", Bakery},
	{"eau", Beverages},
	{"jus", Beverages},
	{"cafe", Beverages},
	{"café", Beverages},
	{"the", Beverages},
	{"thé", Beverages},
	{"biere", Beverages},
	{"bière", Beverages},
	{"vin", Beverages},
	{"water", Beverages},
	{"juice", Beverages},
	{"coffee", Beverages},
	{"beer", Beverages},
	{"wine", Beverages},
	{"lait", Dairy},
	{"fromage", Dairy},
	{"yaourt", Dairy},
	{"beurre", Dairy},
	{"milk", Dairy},
	{"cheese", Dairy},
	{"yogurt", Dairy},
	{"butter", Dairy},
	{"pomme", Fruits},
	{"banane", Fruits},
	{"orange", Fruits},
	{"apple", Fruits},
	{"banana", Fruits},
	{"tomate", Vegetables},
	{"salade", Vegetables},
	{"carotte", Vegetables},
	{"tomato", Vegetables},
	{"poulet", Meat},
	{"boeuf", Meat},
	{"jambon", Meat},
	{"chicken", Meat},
	{"beef", Meat},
	{"ham", Meat},
	{"surgele", Frozen},
	{"surgelé", Frozen},
	{"frozen", Frozen},
	{"lessive", Household},
	{"eponge", Household},
	{"detergent", Household},
	{"savon", Hygiene},
	{"shampoing", Hygiene},
	{"dentifrice", Hygiene},
	{"soap", Hygiene},
	{"shampoo", Hygiene},
}
