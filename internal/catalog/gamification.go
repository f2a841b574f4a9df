package catalog

import "github.com/dukerupert/moveready/internal/model"

// XPPerItem is the experience granted for every acquired item.
const XPPerItem = 20

type LevelDef struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	MinXP int    `json:"minXP"`
}

// Levels is sorted by ascending MinXP.
var Levels = []LevelDef{
	{1, "Cardboard Novice", 0},
	{2, "Sunday Handyman", 200},
	{3, "Amateur Decorator", 600},
	{4, "Site Foreman", 1200},
	{5, "Master of Keys", 2000},
}

type BadgeID string

const (
	BadgeFirstStep   BadgeID = "first_step"
	BadgeKitchenKing BadgeID = "kitchen_king"
	BadgeSurvivor    BadgeID = "survivor"
	BadgeBigSpender  BadgeID = "big_spender"
	BadgeHalfway     BadgeID = "halfway"
	BadgeTechGuru    BadgeID = "tech_guru"
	BadgeMaster      BadgeID = "master"
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Secret      bool    `json:"secret,omitempty"`
}

var Badges = []Badge{
	{BadgeFirstStep, "First Step", "Acquire at least one item", "🌱", false},
	{BadgeKitchenKing, "Head Chef", "Kitchen 100% complete", "👨‍🍳", false},
	{BadgeSurvivor, "Survivor", "Every vital item acquired", "🆘", false},
	{BadgeBigSpender, "Big Spender", "More than 1000 spent", "💸", true},
	{BadgeHalfway, "Halfway", "Half of the inventory acquired", "🏁", false},
	{BadgeTechGuru, "Connected", "Internet box, TV and computer acquired", "📡", false},
	{BadgeMaster, "The Boss", "Everything is ready", "🏆", true},
}

// BigSpenderThreshold is the spent amount unlocking BadgeBigSpender.
const BigSpenderThreshold = 1000

// TechGuruItems must all be acquired for BadgeTechGuru.
var TechGuruItems = []string{"m-box", "m-tv", "m-computer"}

type TemplateItem struct {
	Name           string           `json:"name"`
	Category       model.CategoryID `json:"category"`
	Store          model.StoreType  `json:"store"`
	EstimatedPrice float64          `json:"estimatedPrice"`
	Priority       bool             `json:"priority,omitempty"`
}

// Template is a shared item list users can import into their inventory.
type Template struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Author      string         `json:"author"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags"`
	Likes       int            `json:"likes"`
	Items       []TemplateItem `json:"items"`
}

var Templates = []Template{
	{
		ID:          "setup_gamer",
		Title:       "The Ultimate Gamer Setup",
		Author:      "Lucas G.",
		Description: "Everything needed to stream comfortably: desk, ergonomic chair, LED lighting and soundproofing.",
		Tags:        []string{"Tech", "Comfort", "Pricey"},
		Likes:       1240,
		Items: []TemplateItem{
			{"Ergonomic chair", model.CategoryTools, model.StoreFurniture, 350, true},
			{"Monitor arm", model.CategoryMultimedia, model.StoreTech, 50, false},
			{"Acoustic foam", model.CategoryLiving, model.StoreDIY, 40, false},
			{"RGB LED strip", model.CategoryLiving, model.StoreDIY, 20, false},
			{"Sit-stand desk", model.CategoryTools, model.StoreFurniture, 400, false},
		},
	},
	{
		ID:          "studio_minimal",
		Title:       "Minimalist 20m² Studio",
		Author:      "Marie Kon.",
		Description: "The essentials for living light in a small space. Multi-purpose furniture and clever storage.",
		Tags:        []string{"Eco", "Small budget", "Design"},
		Likes:       856,
		Items: []TemplateItem{
			{"Compact sofa bed", model.CategoryLiving, model.StoreFurniture, 300, true},
			{"Wall-mounted folding table", model.CategoryKitchen, model.StoreFurniture, 60, false},
			{"Storage ottomans", model.CategoryLiving, model.StoreFurniture, 40, false},
			{"Air-purifying plants", model.CategoryLiving, model.StoreDIY, 30, false},
		},
	},
	{
		ID:          "eco_friendly",
		Title:       "Zero Waste Flat",
		Author:      "GreenTeam",
		Description: "Starter kit for plastic-free living. Jars, bulk bags and durable goods.",
		Tags:        []string{"Ecology", "Durable"},
		Likes:       2100,
		Items: []TemplateItem{
			{"Glass jar set", model.CategoryKitchen, model.StoreSupermarket, 40, false},
			{"Cloth bulk bags", model.CategoryGroceries, model.StoreSupermarket, 15, false},
			{"Stainless water bottle", model.CategoryKitchen, model.StoreSupermarket, 20, false},
			{"Marseille soap bar", model.CategoryGroceries, model.StoreSupermarket, 5, false},
		},
	},
}

// TemplateByID returns the community template with the given id.
func TemplateByID(id string) (Template, bool) {
	for _, t := range Templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// InventoryItems converts the template into inventory items without ids.
func (t Template) InventoryItems() []model.Item {
	out := make([]model.Item, 0, len(t.Items))
	for _, ti := range t.Items {
		out = append(out, model.Item{
			Name:           ti.Name,
			Category:       ti.Category,
			Store:          ti.Store,
			EstimatedPrice: ti.EstimatedPrice,
			Priority:       ti.Priority,
		})
	}
	return out
}
