package model

import "slices"

type SubItem struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Acquired bool   `json:"acquired"`
}

// Item is a purchasable object in the move-in inventory.
type Item struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Category       CategoryID `json:"category"`
	Store          StoreType  `json:"store"`
	Acquired       bool       `json:"acquired"`
	Priority       bool       `json:"priority"`
	EstimatedPrice float64    `json:"estimatedPrice"`
	PaidPrice      *float64   `json:"paidPrice,omitempty"`
	PaidBy         Payer      `json:"paidBy,omitzero"`
	Dimensions     string     `json:"dimensions,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	SubItems       []SubItem  `json:"subItems,omitempty"`
}

// Cost is what the item weighs in the budget: the paid price once acquired
// (falling back to the estimate), the estimate otherwise.
func (i Item) Cost() float64 {
	if i.Acquired && i.PaidPrice != nil {
		return *i.PaidPrice
	}
	return i.EstimatedPrice
}

// SubItemsComplete reports whether the item has sub-items and all of them
// are acquired.
func (i Item) SubItemsComplete() bool {
	if len(i.SubItems) == 0 {
		return false
	}
	for _, s := range i.SubItems {
		if !s.Acquired {
			return false
		}
	}
	return true
}

func (i Item) Clone() Item {
	c := i
	if i.PaidPrice != nil {
		p := *i.PaidPrice
		c.PaidPrice = &p
	}
	c.SubItems = slices.Clone(i.SubItems)
	return c
}

func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// AdminTask is a bureaucratic to-do with a deadline relative to the moving
// date, or fixed manually.
type AdminTask struct {
	ID            string        `json:"id"`
	Label         string        `json:"label"`
	Category      AdminCategory `json:"category"`
	Status        TaskStatus    `json:"status"`
	ManualDate    string        `json:"manualDate,omitempty"`
	DueDateOffset *int          `json:"dueDateOffset,omitempty"`
}

func CloneTasks(tasks []AdminTask) []AdminTask {
	if tasks == nil {
		return nil
	}
	out := make([]AdminTask, len(tasks))
	for i, t := range tasks {
		out[i] = t
		if t.DueDateOffset != nil {
			o := *t.DueDateOffset
			out[i].DueDateOffset = &o
		}
	}
	return out
}

// BoxDetail is the packing state of one room.
type BoxDetail struct {
	Count     int  `json:"count"`
	IsFragile bool `json:"isFragile"`
	IsHeavy   bool `json:"isHeavy"`
}

type BoxCounts map[CategoryID]BoxDetail

type DailyGroceryItem struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Quantity   float64         `json:"quantity"`
	Unit       string          `json:"unit"`
	Category   GroceryCategory `json:"category"`
	IsChecked  bool            `json:"isChecked"`
	IsFavorite bool            `json:"isFavorite"`
}
