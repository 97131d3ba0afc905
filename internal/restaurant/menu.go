// ABOUTME: Default restaurant menu seeded into an empty store
// ABOUTME: Gives the getMenu tool something to read on a fresh database

package restaurant

import "github.com/2389/concierge-gateway/internal/store"

// DefaultMenu returns the menu seeded when the store has no items.
func DefaultMenu() []*store.MenuItem {
	return []*store.MenuItem{
		{
			ID:            "menu-bruschetta",
			Name:          "Bruschetta al Pomodoro",
			Description:   "Grilled sourdough with heirloom tomatoes, garlic and basil",
			Price:         9.50,
			Category:      "Appetizers",
			IsBestSelling: true,
			Ingredients:   []string{"sourdough", "tomato", "garlic", "basil", "olive oil"},
		},
		{
			ID:          "menu-burrata",
			Name:        "Burrata",
			Description: "Creamy burrata with roasted peaches and aged balsamic",
			Price:       14.00,
			Category:    "Appetizers",
			Ingredients: []string{"burrata", "peach", "balsamic", "arugula"},
		},
		{
			ID:            "menu-tagliatelle",
			Name:          "Tagliatelle al Ragù",
			Description:   "Hand-cut egg pasta with a slow-cooked beef and pork ragù",
			Price:         22.00,
			Category:      "Mains",
			IsBestSelling: true,
			Ingredients:   []string{"egg pasta", "beef", "pork", "tomato", "parmigiano"},
		},
		{
			ID:          "menu-risotto",
			Name:        "Wild Mushroom Risotto",
			Description: "Carnaroli rice with porcini, thyme and mascarpone",
			Price:       20.00,
			Category:    "Mains",
			Ingredients: []string{"carnaroli rice", "porcini", "thyme", "mascarpone"},
		},
		{
			ID:          "menu-branzino",
			Name:        "Grilled Branzino",
			Description: "Whole Mediterranean sea bass with lemon and salsa verde",
			Price:       28.00,
			Category:    "Mains",
			Ingredients: []string{"sea bass", "lemon", "parsley", "capers"},
		},
		{
			ID:            "menu-tiramisu",
			Name:          "Tiramisu",
			Description:   "Espresso-soaked ladyfingers layered with mascarpone cream",
			Price:         10.00,
			Category:      "Desserts",
			IsBestSelling: true,
			Ingredients:   []string{"ladyfingers", "espresso", "mascarpone", "cocoa"},
		},
		{
			ID:          "menu-panna-cotta",
			Name:        "Vanilla Panna Cotta",
			Description: "Set vanilla cream with seasonal berry compote",
			Price:       9.00,
			Category:    "Desserts",
			Ingredients: []string{"cream", "vanilla", "berries"},
		},
	}
}
