// internal/classify/keyword/matcher.go
package keyword

import (
	"fmt"
	"strings"
	"unicode"

	"menu-classifier/internal/models"
)

// Evidence strengths per match outcome. A clear disqualifying
// ingredient is the strongest lexical signal; a clear positive marker
// slightly weaker; conflicting signals need more context and stay below
// any sane review threshold.
const (
	NonVegetarianStrength = 0.9
	VegetarianStrength    = 0.8
	ConflictStrength      = 0.5
)

// vegetarianTokens indicate a vegetarian dish.
var vegetarianTokens = []string{
	// Explicit markers
	"vegetarian", "veggie", "vegan", "meatless",
	// Proteins
	"tofu", "tempeh", "seitan", "paneer", "halloumi",
	// Legumes
	"beans", "lentils", "chickpea", "hummus", "falafel", "dal", "daal",
	// Vegetables as main ingredient
	"vegetable", "mushroom", "eggplant", "aubergine",
	"zucchini", "courgette", "spinach", "broccoli", "cauliflower",
	// Cheese dishes
	"cheese", "mozzarella", "parmesan", "cheddar", "feta",
	// Common vegetarian dishes
	"salad", "caprese", "margherita", "primavera", "marinara", "alfredo",
	"garden", "harvest",
}

// nonVegetarianTokens indicate meat, poultry or seafood.
var nonVegetarianTokens = []string{
	// Poultry
	"chicken", "turkey", "duck", "poultry", "wing", "wings",
	// Red meat
	"beef", "steak", "lamb", "pork", "veal", "venison", "bison",
	"burger", "meatball", "meatloaf", "meat",
	// Processed meats
	"bacon", "ham", "sausage", "salami", "pepperoni", "prosciutto",
	"chorizo", "pastrami", "carnitas",
	// Seafood
	"fish", "salmon", "tuna", "cod", "halibut", "tilapia", "trout",
	"shrimp", "prawn", "prawns", "lobster", "crab", "clam", "clams",
	"mussel", "mussels", "oyster", "oysters", "scallop", "scallops",
	"calamari", "squid", "octopus", "seafood", "anchovy", "anchovies",
	"sardine", "sardines",
	// Other
	"ribs", "brisket", "roast",
}

// Matcher is the deterministic lexical classifier. It never errors and
// never blocks.
type Matcher struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

func NewMatcher() *Matcher {
	return &Matcher{
		positive: toSet(vegetarianTokens),
		negative: toSet(nonVegetarianTokens),
	}
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Evaluate classifies the case-folded, tokenized text against the two
// fixed token sets. A clear match on one set alone is a strong signal;
// when both sets match, the non-vegetarian reading wins (one
// disqualifying ingredient outweighs a generic positive word) but at a
// weaker strength, since conflicting text needs more context.
func (m *Matcher) Evaluate(text string) models.Evidence {
	tokens := Tokenize(text)

	var negHits, posHits []string
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := m.negative[tok]; ok {
			negHits = append(negHits, tok)
		} else if _, ok := m.positive[tok]; ok {
			posHits = append(posHits, tok)
		}
	}

	switch {
	case len(negHits) > 0 && len(posHits) == 0:
		return models.Evidence{
			Source:    models.SourceKeyword,
			Leaning:   models.LeanNonVegetarian,
			Strength:  NonVegetarianStrength,
			Rationale: fmt.Sprintf("matched non-vegetarian keywords: %s", strings.Join(negHits, ", ")),
		}
	case len(posHits) > 0 && len(negHits) == 0:
		return models.Evidence{
			Source:    models.SourceKeyword,
			Leaning:   models.LeanVegetarian,
			Strength:  VegetarianStrength,
			Rationale: fmt.Sprintf("matched vegetarian keywords: %s", strings.Join(posHits, ", ")),
		}
	case len(negHits) > 0 && len(posHits) > 0:
		return models.Evidence{
			Source:   models.SourceKeyword,
			Leaning:  models.LeanNonVegetarian,
			Strength: ConflictStrength,
			Rationale: fmt.Sprintf("conflicting keywords, non-vegetarian takes precedence: %s vs %s",
				strings.Join(negHits, ", "), strings.Join(posHits, ", ")),
		}
	}

	return models.Evidence{
		Source:  models.SourceKeyword,
		Leaning: models.LeanNone,
	}
}

// Tokenize case-folds text and splits on non-alphanumeric boundaries.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
