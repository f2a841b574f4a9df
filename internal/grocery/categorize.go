package grocery

import (
	"strings"

	"github.com/dukerupert/moveready/internal/model"
)

const (
	fresh    = model.GroceryFresh
	pantry   = model.GroceryPantry
	cleaning = model.GroceryCleaning
	hygiene  = model.GroceryHygiene
)

// Categorize guesses the grocery category of an item name, in English or
// French. Matching is case-insensitive: exact names first, then keywords.
// Unknown names fall back to GroceryOther.
func Categorize(itemName string) model.GroceryCategory {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return model.GroceryOther
	}
	if cat, ok := exactMatch[name]; ok {
		return cat
	}
	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}
	return model.GroceryOther
}

// Resolve keeps a valid requested category and infers one otherwise.
func Resolve(name string, requested model.GroceryCategory) model.GroceryCategory {
	if requested.Valid() {
		return requested
	}
	return Categorize(name)
}

var exactMatch = map[string]model.GroceryCategory{
	// Produce
	"apple":       fresh,
	"apples":      fresh,
	"banana":      fresh,
	"bananas":     fresh,
	"orange":      fresh,
	"oranges":     fresh,
	"lemon":       fresh,
	"lemons":      fresh,
	"lime":        fresh,
	"limes":       fresh,
	"avocado":     fresh,
	"avocados":    fresh,
	"tomato":      fresh,
	"tomatoes":    fresh,
	"potato":      fresh,
	"potatoes":    fresh,
	"onion":       fresh,
	"onions":      fresh,
	"garlic":      fresh,
	"lettuce":     fresh,
	"spinach":     fresh,
	"kale":        fresh,
	"broccoli":    fresh,
	"carrots":     fresh,
	"celery":      fresh,
	"cucumber":    fresh,
	"cucumbers":   fresh,
	"peppers":     fresh,
	"mushrooms":   fresh,
	"corn":        fresh,
	"grapes":      fresh,
	"strawberries": fresh,
	"blueberries": fresh,
	"raspberries": fresh,
	"watermelon":  fresh,
	"pineapple":   fresh,
	"mango":       fresh,
	"peach":       fresh,
	"peaches":     fresh,
	"pear":        fresh,
	"pears":       fresh,
	"cilantro":    fresh,
	"basil":       fresh,
	"parsley":     fresh,
	"ginger":      fresh,
	"jalapeño":    fresh,
	"zucchini":    fresh,
	"asparagus":   fresh,
	"green beans": fresh,

	// Dairy
	"milk":          fresh,
	"eggs":          fresh,
	"butter":        fresh,
	"cheese":        fresh,
	"yogurt":        fresh,
	"cream cheese":  fresh,
	"sour cream":    fresh,
	"heavy cream":   fresh,
	"half and half": fresh,
	"cottage cheese": fresh,

	// Meat & Seafood
	"chicken":       fresh,
	"beef":          fresh,
	"pork":          fresh,
	"turkey":        fresh,
	"bacon":         fresh,
	"sausage":       fresh,
	"ham":           fresh,
	"steak":         fresh,
	"salmon":        fresh,
	"shrimp":        fresh,
	"tuna":          fresh,
	"fish":          fresh,
	"ground beef":   fresh,
	"ground turkey": fresh,
	"hot dogs":      fresh,
	"deli meat":     fresh,
	"lamb":          fresh,
	"crab":          fresh,
	"lobster":       fresh,
	"tilapia":       fresh,

	// Bakery
	"bread":    fresh,
	"bagels":   fresh,
	"tortillas": fresh,
	"rolls":    fresh,
	"buns":     fresh,
	"muffins":  fresh,
	"croissants": fresh,
	"pita":     fresh,

	// Pantry
	"rice":           pantry,
	"pasta":          pantry,
	"flour":          pantry,
	"sugar":          pantry,
	"salt":           pantry,
	"pepper":         pantry,
	"oil":            pantry,
	"olive oil":      pantry,
	"vinegar":        pantry,
	"soy sauce":      pantry,
	"ketchup":        pantry,
	"mustard":        pantry,
	"mayonnaise":     pantry,
	"honey":          pantry,
	"peanut butter":  pantry,
	"jelly":          pantry,
	"jam":            pantry,
	"cereal":         pantry,
	"oatmeal":        pantry,
	"canned beans":   pantry,
	"canned tomatoes": pantry,
	"soup":           pantry,
	"broth":          pantry,
	"beans":          pantry,
	"lentils":        pantry,
	"nuts":           pantry,
	"almonds":        pantry,
	"spaghetti":      pantry,
	"noodles":        pantry,
	"maple syrup":    pantry,
	"hot sauce":      pantry,
	"salsa":          pantry,

	// Frozen
	"ice cream":      fresh,
	"frozen pizza":   fresh,
	"frozen veggies": fresh,
	"frozen fruit":   fresh,
	"frozen waffles": fresh,
	"popsicles":      fresh,

	// Beverages
	"water":       pantry,
	"juice":       pantry,
	"coffee":      pantry,
	"tea":         pantry,
	"soda":        pantry,
	"beer":        pantry,
	"wine":        pantry,
	"kombucha":    pantry,
	"lemonade":    pantry,
	"sparkling water": pantry,

	// Snacks
	"chips":      pantry,
	"crackers":   pantry,
	"cookies":    pantry,
	"popcorn":    pantry,
	"pretzels":   pantry,
	"granola bars": pantry,
	"trail mix":  pantry,
	"candy":      pantry,
	"chocolate":  pantry,
	"fruit snacks": pantry,

	// Household
	"paper towels":   cleaning,
	"toilet paper":   cleaning,
	"trash bags":     cleaning,
	"dish soap":      cleaning,
	"laundry detergent": cleaning,
	"sponges":        cleaning,
	"aluminum foil":  cleaning,
	"plastic wrap":   cleaning,
	"zip bags":       cleaning,
	"ziplock bags":   cleaning,
	"light bulbs":    cleaning,
	"batteries":      cleaning,
	"napkins":        cleaning,
	"cleaning spray": cleaning,
	"bleach":         cleaning,

	// Personal Care
	"shampoo":     hygiene,
	"conditioner": hygiene,
	"soap":        hygiene,
	"body wash":   hygiene,
	"toothpaste":  hygiene,
	"toothbrush":  hygiene,
	"deodorant":   hygiene,
	"lotion":      hygiene,
	"sunscreen":   hygiene,
	"floss":       hygiene,
	"razors":      hygiene,
	"tissues":     hygiene,
	"band-aids":   hygiene,

	// French names
	"lait":              fresh,
	"pain":              fresh,
	"baguette":          fresh,
	"oeufs":             fresh,
	"beurre":            fresh,
	"fromage":           fresh,
	"yaourts":           fresh,
	"pommes":            fresh,
	"poulet":            fresh,
	"légumes":           fresh,
	"pâtes":             pantry,
	"riz":               pantry,
	"café":              pantry,
	"farine":            pantry,
	"huile":             pantry,
	"sel":               pantry,
	"sucre":             pantry,
	"eau":               pantry,
	"lessive":           cleaning,
	"éponges":           cleaning,
	"liquide vaisselle": cleaning,
	"sacs poubelle":     cleaning,
	"papier toilette":   hygiene,
	"dentifrice":        hygiene,
	"shampoing":         hygiene,
	"gel douche":        hygiene,
	"savon":             hygiene,
}

type substringEntry struct {
	keyword  string
	category model.GroceryCategory
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var substringMatches = []substringEntry{
	// Meat & Seafood, longer phrases first
	{"chicken breast", fresh},
	{"chicken thigh", fresh},
	{"chicken wing", fresh},
	{"ground beef", fresh},
	{"ground turkey", fresh},
	{"deli meat", fresh},
	{"pork chop", fresh},
	{"hot dog", fresh},

	// Dairy
	{"cream cheese", fresh},
	{"sour cream", fresh},
	{"heavy cream", fresh},
	{"cottage cheese", fresh},
	{"half and half", fresh},
	{"greek yogurt", fresh},
	{"almond milk", fresh},
	{"oat milk", fresh},
	{"yogurt", fresh},
	{"cheese", fresh},
	{"milk", fresh},
	{"butter", fresh},
	{"cream", fresh},
	{"egg", fresh},

	// Produce
	{"salad mix", fresh},
	{"baby spinach", fresh},
	{"green onion", fresh},
	{"sweet potato", fresh},
	{"bell pepper", fresh},
	{"cherry tomato", fresh},
	{"romaine", fresh},
	{"arugula", fresh},
	{"cabbage", fresh},
	{"cauliflower", fresh},
	{"squash", fresh},
	{"melon", fresh},
	{"berry", fresh},
	{"berries", fresh},
	{"fruit", fresh},
	{"herb", fresh},
	{"lettuce", fresh},
	{"spinach", fresh},
	{"kale", fresh},
	{"apple", fresh},
	{"banana", fresh},
	{"tomato", fresh},
	{"potato", fresh},
	{"onion", fresh},
	{"pepper", fresh},
	{"carrot", fresh},
	{"celery", fresh},

	// Bakery
	{"sourdough", fresh},
	{"whole wheat", fresh},
	{"bread", fresh},
	{"bagel", fresh},
	{"tortilla", fresh},
	{"bun", fresh},
	{"roll", fresh},
	{"muffin", fresh},
	{"croissant", fresh},

	// Pantry
	{"peanut butter", pantry},
	{"olive oil", pantry},
	{"coconut oil", pantry},
	{"maple syrup", pantry},
	{"hot sauce", pantry},
	{"soy sauce", pantry},
	{"pasta sauce", pantry},
	{"tomato sauce", pantry},
	{"canned", pantry},
	{"cereal", pantry},
	{"oatmeal", pantry},
	{"granola", pantry},
	{"rice", pantry},
	{"pasta", pantry},
	{"noodle", pantry},
	{"flour", pantry},
	{"sugar", pantry},
	{"spice", pantry},
	{"seasoning", pantry},
	{"sauce", pantry},
	{"broth", pantry},
	{"stock", pantry},
	{"soup", pantry},
	{"bean", pantry},
	{"lentil", pantry},

	// Frozen
	{"frozen", fresh},
	{"ice cream", fresh},
	{"popsicle", fresh},

	// Beverages
	{"sparkling water", pantry},
	{"orange juice", pantry},
	{"apple juice", pantry},
	{"coffee", pantry},
	{"tea", pantry},
	{"juice", pantry},
	{"soda", pantry},
	{"water", pantry},
	{"beer", pantry},
	{"wine", pantry},
	{"drink", pantry},

	// Snacks
	{"granola bar", pantry},
	{"trail mix", pantry},
	{"fruit snack", pantry},
	{"chip", pantry},
	{"cracker", pantry},
	{"cookie", pantry},
	{"popcorn", pantry},
	{"pretzel", pantry},
	{"candy", pantry},
	{"chocolate", pantry},
	{"snack", pantry},

	// Household
	{"paper towel", cleaning},
	{"toilet paper", cleaning},
	{"trash bag", cleaning},
	{"garbage bag", cleaning},
	{"dish soap", cleaning},
	{"laundry", cleaning},
	{"detergent", cleaning},
	{"cleaner", cleaning},
	{"cleaning", cleaning},
	{"sponge", cleaning},
	{"foil", cleaning},
	{"plastic wrap", cleaning},
	{"ziplock", cleaning},
	{"battery", cleaning},
	{"light bulb", cleaning},

	// Personal Care
	{"body wash", hygiene},
	{"shampoo", hygiene},
	{"conditioner", hygiene},
	{"toothpaste", hygiene},
	{"toothbrush", hygiene},
	{"deodorant", hygiene},
	{"lotion", hygiene},
	{"sunscreen", hygiene},
	{"razor", hygiene},
	{"tissue", hygiene},
	{"band-aid", hygiene},

	// French keywords
	{"liquide vaisselle", cleaning},
	{"nettoyant", cleaning},
	{"lessive", cleaning},
	{"javel", cleaning},
	{"gel douche", hygiene},
	{"dentifrice", hygiene},
	{"brosse à dents", hygiene},
	{"fromage", fresh},
	{"yaourt", fresh},
	{"jambon", fresh},
	{"lait", fresh},
	{"pâtes", pantry},
	{"conserve", pantry},
}
