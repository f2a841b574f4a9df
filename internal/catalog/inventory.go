package catalog

import "github.com/dukerupert/moveready/internal/model"

func item(id, name string, cat model.CategoryID, store model.StoreType, price float64, priority bool, subs ...model.SubItem) model.Item {
	return model.Item{
		ID:             id,
		Name:           name,
		Category:       cat,
		Store:          store,
		EstimatedPrice: price,
		Priority:       priority,
		SubItems:       subs,
	}
}

func sub(id, label string) model.SubItem {
	return model.SubItem{ID: id, Label: label}
}

const (
	kitchen    = model.CategoryKitchen
	living     = model.CategoryLiving
	bedroom    = model.CategoryBedroom
	kids       = model.CategoryKids
	multimedia = model.CategoryMultimedia
	bathroom   = model.CategoryBathroom
	cleaning   = model.CategoryCleaning
	tools      = model.CategoryTools
	groceries  = model.CategoryGroceries

	furniture   = model.StoreFurniture
	supermarket = model.StoreSupermarket
	diy         = model.StoreDIY
	tech        = model.StoreTech
	pharmacy    = model.StorePharmacy
)

var kidsInventory = []model.Item{
	item("kid-bed", "Child / baby bed", kids, furniture, 200, true),
	item("kid-mattress", "Child mattress", kids, furniture, 100, true),
	item("kid-storage", "Toy storage", kids, furniture, 60, false),
	item("kid-desk", "Desk / play corner", kids, furniture, 80, false),
	item("kid-light", "Night light", kids, tech, 20, true),
	item("kid-textile", "Child bed linen", kids, furniture, 40, true),
	item("kid-curtains", "Curtains for bedroom 2", kids, furniture, 30, false),
}

var initialInventory = []model.Item{
	item("k-table", "Table & chairs", kitchen, furniture, 150, false,
		sub("k-table-t", "Table"),
		sub("k-table-c", "Chairs (x2 or x4)")),
	item("k-fridge", "Fridge", kitchen, tech, 300, true),
	item("k-oven", "Oven / cooker", kitchen, tech, 250, false),
	item("k-micro", "Microwave", kitchen, tech, 60, false),
	item("k-storage", "Kitchen cabinet", kitchen, furniture, 80, false),
	item("k-coffee", "Coffee maker + filters", kitchen, tech, 30, false),
	item("k-toaster", "Toaster", kitchen, tech, 20, false),
	item("k-scale", "Kitchen scale", kitchen, supermarket, 15, false),
	item("k-plates", "Plates (set)", kitchen, furniture, 40, true,
		sub("k-plates-flat", "Dinner plates"),
		sub("k-plates-soup", "Soup plates"),
		sub("k-plates-dessert", "Dessert plates")),
	item("k-glasses", "Glasses", kitchen, furniture, 20, true,
		sub("k-glasses-water", "Water glasses"),
		sub("k-glasses-wine", "Wine / juice glasses")),
	item("k-mugs", "Mugs & bowls", kitchen, furniture, 20, false),
	item("k-cutlery", "Cutlery", kitchen, furniture, 25, true,
		sub("k-cut-fork", "Forks"),
		sub("k-cut-knife", "Knives"),
		sub("k-cut-spoon", "Soup spoons"),
		sub("k-cut-tsp", "Teaspoons")),
	item("k-knives", "Kitchen knives", kitchen, furniture, 30, false),
	item("k-pans", "Pots & pans", kitchen, furniture, 60, true,
		sub("k-pans-pan", "Frying pans (x2)"),
		sub("k-pans-pot", "Saucepans (x2)")),
	item("k-wok", "Wok / oven dishes", kitchen, furniture, 30, false),
	item("k-colander", "Colander", kitchen, supermarket, 10, false),
	item("k-board", "Cutting board", kitchen, supermarket, 10, false),
	item("k-utensils", "Assorted utensils", kitchen, supermarket, 20, false,
		sub("k-u-open", "Can opener"),
		sub("k-u-cork", "Corkscrew"),
		sub("k-u-peel", "Peeler"),
		sub("k-u-laddle", "Ladle / whisk")),
	item("k-trash", "Kitchen bin", kitchen, diy, 25, true),
	item("k-tupper", "Food boxes & wrap/foil", kitchen, supermarket, 20, false),

	item("l-sofa", "Sofa / sofa bed", living, furniture, 400, false),
	item("l-coffee-table", "Coffee table", living, furniture, 50, false),
	item("l-tv-unit", "TV stand", living, furniture, 100, false),
	item("l-lamps", "Lamps & lighting", living, furniture, 40, false,
		sub("l-lamps-floor", "Floor lamp"),
		sub("l-lamps-table", "Mood lamp")),
	item("l-rug", "Rug", living, furniture, 60, false),
	item("l-curtains", "Curtains", living, furniture, 40, true),
	item("l-decor", "Soft furnishings", living, furniture, 30, false,
		sub("l-decor-cushion", "Cushions"),
		sub("l-decor-plaid", "Throws")),

	item("m-tv", "Television", multimedia, tech, 250, false),
	item("m-box", "Internet box / router", multimedia, tech, 0, true),
	item("m-computer", "Computer & peripherals", multimedia, tech, 600, false),
	item("m-audio", "Speaker / audio", multimedia, tech, 80, false),

	item("b-bed", "Bed & mattress", bedroom, furniture, 400, true,
		sub("b-bed-frame", "Bed frame"),
		sub("b-bed-mattress", "Mattress"),
		sub("b-bed-slats", "Slatted base")),
	item("b-duvet", "Duvet & pillows", bedroom, furniture, 80, true,
		sub("b-duvet-d", "Duvet"),
		sub("b-duvet-p", "Pillows (x2)")),
	item("b-sheets", "Bed linen", bedroom, furniture, 50, true,
		sub("b-sheets-fitted", "Fitted sheets"),
		sub("b-sheets-cover", "Duvet cover"),
		sub("b-sheets-pillow", "Pillowcases")),
	item("b-nightstand", "Nightstand", bedroom, furniture, 30, false),
	item("b-lamp", "Bedside lamp", bedroom, furniture, 20, false),
	item("b-wardrobe", "Wardrobe", bedroom, furniture, 100, false,
		sub("b-ward-struct", "Frame"),
		sub("b-ward-hangers", "Hangers")),

	item("s-towels", "Bath linen", bathroom, furniture, 40, true,
		sub("s-towels-body", "Bath towels"),
		sub("s-towels-hand", "Hand towels")),
	item("s-rug", "Bath mat", bathroom, furniture, 15, false),
	item("s-curtain", "Shower curtain", bathroom, diy, 15, false),
	item("s-bin", "Bathroom bin", bathroom, diy, 10, false),
	item("s-hair", "Hair dryer", bathroom, tech, 25, false),
	item("s-pharmacy", "First aid kit", bathroom, pharmacy, 20, true),
	item("s-brush", "Toilet brush", bathroom, diy, 10, true),
	item("s-paper-holder", "Toilet roll holder", bathroom, diy, 10, false),

	item("c-vacuum", "Vacuum cleaner", cleaning, tech, 100, false),
	item("c-broom", "Broom & dustpan", cleaning, supermarket, 25, true,
		sub("c-broom-b", "Broom"),
		sub("c-broom-p", "Dustpan + brush")),
	item("c-mop", "Bucket & mop", cleaning, supermarket, 20, false),
	item("c-dryer", "Clothes horse", cleaning, supermarket, 25, false),
	item("c-iron", "Iron & ironing board", cleaning, tech, 50, false),
	item("c-machine", "Washing machine", cleaning, tech, 300, false),
	item("c-rags", "Cloths & sponges", cleaning, supermarket, 10, true),

	item("t-box", "Toolbox", tools, diy, 40, false,
		sub("t-box-ham", "Hammer"),
		sub("t-box-screw", "Screwdrivers"),
		sub("t-box-meas", "Tape measure"),
		sub("t-box-pli", "Pliers")),
	item("t-desk", "Desk & chair", tools, furniture, 150, false),
	item("t-office", "Stationery", tools, supermarket, 15, false,
		sub("t-off-pen", "Pens"),
		sub("t-off-tape", "Tape"),
		sub("t-off-cis", "Scissors")),
	item("t-elec", "Electrical", tools, diy, 30, true,
		sub("t-elec-bulb", "Light bulbs"),
		sub("t-elec-batt", "Batteries"),
		sub("t-elec-multi", "Power strips")),

	item("g-base", "Cooking basics", groceries, supermarket, 20, true,
		sub("g-base-oil", "Oil & vinegar"),
		sub("g-base-salt", "Salt & pepper"),
		sub("g-base-spice", "Spices")),
	item("g-stock", "Food stock", groceries, supermarket, 30, true,
		sub("g-stock-pasta", "Pasta / rice"),
		sub("g-stock-can", "Canned food")),
	item("g-breakfast", "Breakfast", groceries, supermarket, 20, false,
		sub("g-br-coffee", "Coffee / tea"),
		sub("g-br-milk", "Milk / juice")),
	item("g-hygiene", "Personal hygiene", groceries, supermarket, 25, true,
		sub("g-hyg-gel", "Shower gel / shampoo"),
		sub("g-hyg-teeth", "Toothpaste"),
		sub("g-hyg-paper", "Toilet paper")),
	item("g-clean", "Cleaning products", groceries, supermarket, 20, true,
		sub("g-cl-dish", "Washing-up liquid"),
		sub("g-cl-floor", "Floor cleaner"),
		sub("g-cl-trash", "Bin bags")),
}

// InitialInventory returns a fresh copy of the seed inventory.
func InitialInventory() []model.Item {
	return model.CloneItems(initialInventory)
}

// KidsInventory returns the extra items seeded for family housing.
func KidsInventory() []model.Item {
	return model.CloneItems(kidsInventory)
}

// InventoryFor returns the seed inventory scaled to a housing type.
func InventoryFor(h model.HousingType) []model.Item {
	items := InitialInventory()
	if h == model.HousingFamily {
		items = append(items, KidsInventory()...)
	}
	return items
}
