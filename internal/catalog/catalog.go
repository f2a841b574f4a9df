// Package catalog holds the fixed reference data of the application: room
// categories, stores, seed inventories, default administrative tasks,
// level and badge tables, and community templates.
package catalog

import (
	"github.com/dukerupert/moveready/internal/model"
)

type Category struct {
	ID    model.CategoryID `json:"id"`
	Label string           `json:"label"`
	Emoji string           `json:"emoji"`
}

// Categories is in display order.
var Categories = []Category{
	{model.CategoryKitchen, "Kitchen", "🍳"},
	{model.CategoryLiving, "Living room", "🛋️"},
	{model.CategoryBedroom, "Main bedroom", "🛏️"},
	{model.CategoryKids, "Kids room", "🧸"},
	{model.CategoryMultimedia, "Multimedia & tech", "📺"},
	{model.CategoryBathroom, "Bathroom & WC", "🛁"},
	{model.CategoryCleaning, "Cleaning", "🧹"},
	{model.CategoryTools, "Tools & office", "🛠️"},
	{model.CategoryGroceries, "First groceries", "🛒"},
}

type Store struct {
	ID    model.StoreType `json:"id"`
	Label string          `json:"label"`
}

var Stores = []Store{
	{model.StoreFurniture, "Furniture store"},
	{model.StoreSupermarket, "Supermarket"},
	{model.StoreDIY, "DIY / home"},
	{model.StoreTech, "Electronics"},
	{model.StorePharmacy, "Pharmacy"},
}

// CategoryLabel returns the display label of a category, or its id.
func CategoryLabel(id model.CategoryID) string {
	for _, c := range Categories {
		if c.ID == id {
			return c.Label
		}
	}
	return string(id)
}

func StoreLabel(id model.StoreType) string {
	for _, s := range Stores {
		if s.ID == id {
			return s.Label
		}
	}
	return string(id)
}

var defaultAdminTasks = []model.AdminTask{
	{ID: "1", Label: "Send notice to current landlord", Category: model.AdminHousing, Status: model.StatusTodo},
	{ID: "2", Label: "Move-out inspection", Category: model.AdminHousing, Status: model.StatusTodo},
	{ID: "3", Label: "Take out home insurance", Category: model.AdminHousing, Status: model.StatusTodo},
	{ID: "4", Label: "Open electricity / gas contract", Category: model.AdminEnergy, Status: model.StatusTodo},
	{ID: "5", Label: "Subscribe to an internet box", Category: model.AdminInternet, Status: model.StatusTodo},
	{ID: "6", Label: "Change of address (postal service)", Category: model.AdminGeneral, Status: model.StatusTodo},
	{ID: "7", Label: "Apply for housing benefit", Category: model.AdminGeneral, Status: model.StatusTodo},
	{ID: "8", Label: "Update vehicle registration", Category: model.AdminGeneral, Status: model.StatusTodo},
}

var socialAidTasks = []model.AdminTask{
	{ID: "soc-1", Label: "Housing benefit simulation", Category: model.AdminSocial, Status: model.StatusTodo},
	{ID: "soc-2", Label: "Housing solidarity fund request", Category: model.AdminSocial, Status: model.StatusTodo},
	{ID: "soc-3", Label: "Rent guarantee application", Category: model.AdminSocial, Status: model.StatusTodo},
	{ID: "soc-4", Label: "Young worker moving aid request", Category: model.AdminSocial, Status: model.StatusTodo},
	{ID: "soc-5", Label: "Meeting with the social worker", Category: model.AdminSocial, Status: model.StatusTodo},
}

func DefaultAdminTasks() []model.AdminTask {
	return model.CloneTasks(defaultAdminTasks)
}

func SocialAidTasks() []model.AdminTask {
	return model.CloneTasks(socialAidTasks)
}

// DefaultDocument is the state a new identity starts with.
func DefaultDocument() model.Document {
	return model.Document{
		Inventory:       InitialInventory(),
		AdminTasks:      DefaultAdminTasks(),
		BoxCounts:       model.BoxCounts{},
		MovingDate:      "",
		FurnitureVolume: 0,
		DailyGroceries:  []model.DailyGroceryItem{},
		Snapshots:       []model.Snapshot{},
		Roommates:       []string{},
		BoxSize:         model.BoxMedium,
	}
}
