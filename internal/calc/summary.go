package calc

import (
	"time"

	"github.com/dukerupert/moveready/internal/catalog"
	"github.com/dukerupert/moveready/internal/model"
)

// Dashboard is the home screen view of a document.
type Dashboard struct {
	Progress          int               `json:"progress"`
	XP                int               `json:"xp"`
	Level             catalog.LevelDef  `json:"level"`
	NextLevel         *catalog.LevelDef `json:"nextLevel,omitempty"`
	MissingPriorities int               `json:"missingPriorities"`
	GroceriesToBuy    int               `json:"groceriesToBuy"`
	Budget            Budget            `json:"budget"`
	UrgentTasks       []TaskUrgency     `json:"urgentTasks"`
	Volume            Volume            `json:"volume"`
	Badges            []catalog.BadgeID `json:"badges"`
}

// Summarize computes the dashboard from a document at the given instant.
func Summarize(doc model.Document, now time.Time) Dashboard {
	xp := XP(doc.Inventory)
	d := Dashboard{
		Progress:    Progress(doc.Inventory, ""),
		XP:          xp,
		Level:       LevelFor(xp),
		Budget:      ComputeBudget(doc.Inventory),
		Volume:      ComputeVolume(doc.BoxCounts, doc.BoxSize, doc.FurnitureVolume),
		Badges:      EarnedBadges(doc.Inventory),
		UrgentTasks: []TaskUrgency{},
	}
	if next, ok := NextLevel(d.Level); ok {
		d.NextLevel = &next
	}
	for _, it := range doc.Inventory {
		if it.Priority && !it.Acquired {
			d.MissingPriorities++
		}
	}
	for _, g := range doc.DailyGroceries {
		if !g.IsChecked {
			d.GroceriesToBuy++
		}
	}
	for _, t := range ClassifyTasks(doc.AdminTasks, doc.MovingDate, now) {
		if t.Urgency == UrgencyCritical || t.Urgency == UrgencyWarning {
			d.UrgentTasks = append(d.UrgentTasks, t)
		}
	}
	return d
}

// StoreGroup is the shopping list for one kind of store.
type StoreGroup struct {
	Store model.StoreType `json:"store"`
	Label string          `json:"label"`
	Items []model.Item    `json:"items"`
	Total float64         `json:"total"`
}

type ShoppingList struct {
	Groups []StoreGroup `json:"groups"`
	Total  float64      `json:"total"`
}

// MissingByStore groups unacquired items by store in catalog order. Stores
// with nothing left to buy are omitted.
func MissingByStore(items []model.Item) ShoppingList {
	var list ShoppingList
	var total float64
	for _, s := range catalog.Stores {
		g := StoreGroup{Store: s.ID, Label: s.Label}
		for _, it := range items {
			if it.Acquired || it.Store != s.ID {
				continue
			}
			g.Items = append(g.Items, it)
			g.Total += it.EstimatedPrice
		}
		if len(g.Items) > 0 {
			list.Groups = append(list.Groups, g)
			total += g.Total
		}
	}
	list.Total = total
	return list
}
