// internal/classify/retrieval/seed.go
package retrieval

import "menu-classifier/internal/models"

// seedDish is one built-in labeled descriptor.
type seedDish struct {
	text       string
	vegetarian bool
}

// builtinCorpus is the starter knowledge base of labeled dishes. The
// corpus grows at runtime via Upsert; these rows only make a cold start
// useful.
var builtinCorpus = []seedDish{
	{"greek salad with feta cheese olives and cucumber", true},
	{"caprese salad tomato mozzarella basil", true},
	{"margherita pizza tomato mozzarella", true},
	{"vegetable stir fry with tofu", true},
	{"mushroom risotto with parmesan", true},
	{"falafel wrap with hummus and tahini", true},
	{"paneer tikka masala", true},
	{"dal makhani slow cooked black lentils", true},
	{"eggplant parmesan baked with marinara", true},
	{"spinach and ricotta ravioli", true},
	{"vegetable spring rolls", true},
	{"cheese quesadilla with peppers", true},
	{"pasta primavera seasonal vegetables", true},
	{"garden burger plant based patty", true},
	{"butternut squash soup", true},
	{"grilled chicken breast with herbs", false},
	{"chicken caesar salad with grilled chicken", false},
	{"beef burger with bacon and cheddar", false},
	{"pepperoni pizza", false},
	{"spaghetti bolognese ground beef sauce", false},
	{"fish and chips battered cod", false},
	{"grilled salmon with lemon butter", false},
	{"shrimp scampi in garlic sauce", false},
	{"pork ribs with barbecue sauce", false},
	{"lamb curry with basmati rice", false},
	{"tuna melt sandwich", false},
	{"duck confit with roasted potatoes", false},
	{"meatball sub with marinara", false},
	{"clam chowder creamy soup", false},
	{"turkey club sandwich with bacon", false},
}

// SeedBuiltins loads the built-in labeled corpus into the index.
func SeedBuiltins(idx Upserter) {
	for _, d := range builtinCorpus {
		label := models.LeanNonVegetarian
		if d.vegetarian {
			label = models.LeanVegetarian
		}
		idx.Upsert(d.text, label)
	}
}
