package syncstore

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/moveready/internal/catalog"
	"github.com/dukerupert/moveready/internal/model"
)

func invalid(format string, args ...any) *Pending {
	return resolved(Ack{}, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
}

func fields(f ...model.Field) []model.Field { return f }

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func itemIndex(items []model.Item, id string) int {
	return slices.IndexFunc(items, func(it model.Item) bool { return it.ID == id })
}

func taskIndex(tasks []model.AdminTask, id string) int {
	return slices.IndexFunc(tasks, func(t model.AdminTask) bool { return t.ID == id })
}

func groceryIndex(items []model.DailyGroceryItem, id string) int {
	return slices.IndexFunc(items, func(g model.DailyGroceryItem) bool { return g.ID == id })
}

// ---- inventory ----

func (s *Store) ToggleItem(id string) *Pending {
	return s.Update(func(d *model.Document) []model.Field {
		i := itemIndex(d.Inventory, id)
		if i < 0 {
			return nil
		}
		d.Inventory[i].Acquired = !d.Inventory[i].Acquired
		return fields(model.FieldInventory)
	})
}

// ItemPatch lists the item attributes to change. Nil fields are kept.
type ItemPatch struct {
	Name           *string           `json:"name,omitempty"`
	Category       *model.CategoryID `json:"category,omitempty"`
	Store          *model.StoreType  `json:"store,omitempty"`
	Acquired       *bool             `json:"acquired,omitempty"`
	Priority       *bool             `json:"priority,omitempty"`
	EstimatedPrice *float64          `json:"estimatedPrice,omitempty"`
	PaidPrice      *float64          `json:"paidPrice,omitempty"`
	PaidBy         *model.Payer      `json:"paidBy,omitempty"`
	Dimensions     *string           `json:"dimensions,omitempty"`
	Notes          *string           `json:"notes,omitempty"`
}

func (p ItemPatch) validate() error {
	switch {
	case p.Category != nil && !p.Category.Valid():
		return fmt.Errorf("%w: category %q", ErrInvalid, *p.Category)
	case p.Store != nil && !p.Store.Valid():
		return fmt.Errorf("%w: store %q", ErrInvalid, *p.Store)
	case p.EstimatedPrice != nil && *p.EstimatedPrice < 0:
		return fmt.Errorf("%w: negative estimated price", ErrInvalid)
	case p.PaidPrice != nil && *p.PaidPrice < 0:
		return fmt.Errorf("%w: negative paid price", ErrInvalid)
	}
	return nil
}

func (p ItemPatch) apply(it *model.Item) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Store != nil {
		it.Store = *p.Store
	}
	if p.Acquired != nil {
		it.Acquired = *p.Acquired
	}
	if p.Priority != nil {
		it.Priority = *p.Priority
	}
	if p.EstimatedPrice != nil {
		it.EstimatedPrice = *p.EstimatedPrice
	}
	if p.PaidPrice != nil {
		v := *p.PaidPrice
		it.PaidPrice = &v
	}
	if p.PaidBy != nil {
		it.PaidBy = *p.PaidBy
	}
	if p.Dimensions != nil {
		it.Dimensions = *p.Dimensions
	}
	if p.Notes != nil {
		it.Notes = *p.Notes
	}
}

// UpdateItem merges patch into the item.
func (s *Store) UpdateItem(id string, patch ItemPatch) *Pending {
	if err := patch.validate(); err != nil {
		return resolved(Ack{}, err)
	}
	return s.Update(func(d *model.Document) []model.Field {
		i := itemIndex(d.Inventory, id)
		if i < 0 {
			return nil
		}
		patch.apply(&d.Inventory[i])
		return fields(model.FieldInventory)
	})
}

func newItem(it model.Item, fallbackName string) model.Item {
	it = it.Clone()
	it.ID = uuid.NewString()
	if strings.TrimSpace(it.Name) == "" {
		it.Name = fallbackName
	}
	if it.Category == "" {
		it.Category = model.CategoryTools
	}
	if it.Store == "" {
		it.Store = model.StoreSupermarket
	}
	if it.EstimatedPrice < 0 {
		it.EstimatedPrice = 0
	}
	return it
}

func validItem(it model.Item) error {
	if !it.Category.Valid() {
		return fmt.Errorf("%w: category %q", ErrInvalid, it.Category)
	}
	if !it.Store.Valid() {
		return fmt.Errorf("%w: store %q", ErrInvalid, it.Store)
	}
	return nil
}

// AddItem appends a new item with a fresh id. Missing attributes default
// to "Untitled", the tools category and the supermarket.
func (s *Store) AddItem(it model.Item) (model.Item, *Pending) {
	it = newItem(it, "Untitled")
	if err := validItem(it); err != nil {
		return model.Item{}, resolved(Ack{}, err)
	}
	p := s.Update(func(d *model.Document) []model.Field {
		d.Inventory = append(d.Inventory, it.Clone())
		return fields(model.FieldInventory)
	})
	return it, p
}

func (s *Store) DeleteItem(id string) *Pending {
	return s.Update(func(d *model.Document) []model.Field {
		i := itemIndex(d.Inventory, id)
		if i < 0 {
			return nil
		}
		d.Inventory = slices.Delete(d.Inventory, i, i+1)
		return fields(model.FieldInventory)
	})
}

// SetItemsAcquired sets acquired on every listed item and returns how many
// items matched.
func (s *Store) SetItemsAcquired(ids []string, acquired bool) (int, *Pending) {
	matched := 0
	p := s.Update(func(d *model.Document) []model.Field {
		for i := range d.Inventory {
			if slices.Contains(ids, d.Inventory[i].ID) {
				d.Inventory[i].Acquired = acquired
				matched++
			}
		}
		if matched == 0 {
			return nil
		}
		return fields(model.FieldInventory)
	})
	return matched, p
}

// ToggleSubItem flips one sub-item. The parent becomes acquired when all of
// its sub-items are; it is never un-acquired here.
func (s *Store) ToggleSubItem(itemID, subID string) *Pending {
	return s.Update(func(d *model.Document) []model.Field {
		i := itemIndex(d.Inventory, itemID)
		if i < 0 {
			return nil
		}
		it := &d.Inventory[i]
		j := slices.IndexFunc(it.SubItems, func(sub model.SubItem) bool { return sub.ID == subID })
		if j < 0 {
			return nil
		}
		it.SubItems[j].Acquired = !it.SubItems[j].Acquired
		if it.SubItemsComplete() {
			it.Acquired = true
		}
		return fields(model.FieldInventory)
	})
}

// ImportTemplate appends items as new, unacquired entries.
func (s *Store) ImportTemplate(items []model.Item) *Pending {
	added := make([]model.Item, 0, len(items))
	for _, it := range items {
		it = newItem(it, "Item")
		it.Acquired = false
		it.PaidPrice = nil
		it.PaidBy = model.PayerMe
		if err := validItem(it); err != nil {
			return resolved(Ack{}, err)
		}
		added = append(added, it)
	}
	return s.Update(func(d *model.Document) []model.Field {
		if len(added) == 0 {
			return nil
		}
		d.Inventory = append(d.Inventory, added...)
		return fields(model.FieldInventory)
	})
}

// ImportInventory replaces the whole inventory.
func (s *Store) ImportInventory(items []model.Item) *Pending {
	items = model.CloneItems(items)
	if items == nil {
		items = []model.Item{}
	}
	return s.Update(func(d *model.Document) []model.Field {
		d.Inventory = items
		return fields(model.FieldInventory)
	})
}

// ---- admin tasks ----

// ToggleAdminTask marks a task done, or back to todo when it already is.
func (s *Store) ToggleAdminTask(id string) *Pending {
	return s.Update(func(d *model.Document) []model.Field {
		i := taskIndex(d.AdminTasks, id)
		if i < 0 {
			return nil
		}
		if d.AdminTasks[i].Status == model.StatusDone {
			d.AdminTasks[i].Status = model.StatusTodo
		} else {
			d.AdminTasks[i].Status = model.StatusDone
		}
		return fields(model.FieldAdminTasks)
	})
}

func (s *Store) SetAdminTaskStatus(id string, status model.TaskStatus) *Pending {
	if !status.Valid() {
		return invalid("status %q", status)
	}
	return s.Update(func(d *model.Document) []model.Field {
		i := taskIndex(d.AdminTasks, id)
		if i < 0 {
			return nil
		}
		d.AdminTasks[i].Status = status
		return fields(model.FieldAdminTasks)
	})
}

// SetAdminTaskDate fixes the task deadline. An empty date falls back to the
// offset from the moving date.
func (s *Store) SetAdminTaskDate(id, date string) *Pending {
	if !validDate(date) {
		return invalid("date %q", date)
	}
	return s.Update(func(d *model.Document) []model.Field {
		i := taskIndex(d.AdminTasks, id)
		if i < 0 {
			return nil
		}
		d.AdminTasks[i].ManualDate = date
		return fields(model.FieldAdminTasks)
	})
}

// ---- moving ----

func (s *Store) SetMovingDate(date string) *Pending {
	if !validDate(date) {
		return invalid("date %q", date)
	}
	return s.Update(func(d *model.Document) []model.Field {
		d.MovingDate = date
		return fields(model.FieldMovingDate)
	})
}

func (s *Store) SetFurnitureVolume(volume float64) *Pending {
	if volume < 0 {
		return invalid("negative volume")
	}
	return s.Update(func(d *model.Document) []model.Field {
		d.FurnitureVolume = volume
		return fields(model.FieldFurnitureVolume)
	})
}

func (s *Store) SetBoxSize(size model.BoxSize) *Pending {
	if !slices.Contains(model.BoxSizes, size) {
		return invalid("box size %q", size)
	}
	return s.Update(func(d *model.Document) []model.Field {
		d.BoxSize = size
		return fields(model.FieldBoxSize)
	})
}

func (s *Store) updateBox(cat model.CategoryID, fn func(b *model.BoxDetail)) *Pending {
	if !cat.Valid() {
		return invalid("category %q", cat)
	}
	return s.Update(func(d *model.Document) []model.Field {
		if d.BoxCounts == nil {
			d.BoxCounts = model.BoxCounts{}
		}
		b := d.BoxCounts[cat]
		fn(&b)
		d.BoxCounts[cat] = b
		return fields(model.FieldBoxCounts)
	})
}

// SetBox replaces the packing state of one room.
func (s *Store) SetBox(cat model.CategoryID, box model.BoxDetail) *Pending {
	if box.Count < 0 {
		return invalid("negative box count")
	}
	return s.updateBox(cat, func(b *model.BoxDetail) { *b = box })
}

// SetBoxCount changes the number of boxes of a room, keeping its flags.
func (s *Store) SetBoxCount(cat model.CategoryID, count int) *Pending {
	if count < 0 {
		return invalid("negative box count")
	}
	return s.updateBox(cat, func(b *model.BoxDetail) { b.Count = count })
}

// SetBoxFlags changes the fragile and heavy flags of a room, keeping its count.
func (s *Store) SetBoxFlags(cat model.CategoryID, fragile, heavy bool) *Pending {
	return s.updateBox(cat, func(b *model.BoxDetail) { b.IsFragile, b.IsHeavy = fragile, heavy })
}

// ---- groceries ----

// AddGrocery prepends a new grocery item with a fresh id.
func (s *Store) AddGrocery(g model.DailyGroceryItem) (model.DailyGroceryItem, *Pending) {
	g.ID = uuid.NewString()
	if strings.TrimSpace(g.Name) == "" {
		g.Name = "Item"
	}
	if g.Quantity <= 0 {
		g.Quantity = 1
	}
	if g.Unit == "" {
		g.Unit = "pce"
	}
	if g.Category == "" {
		g.Category = model.GroceryPantry
	}
	if !g.Category.Valid() {
		return model.DailyGroceryItem{}, invalid("grocery category %q", g.Category)
	}
	g.IsChecked, g.IsFavorite = false, false
	p := s.Update(func(d *model.Document) []model.Field {
		d.DailyGroceries = append([]model.DailyGroceryItem{g}, d.DailyGroceries...)
		return fields(model.FieldDailyGroceries)
	})
	return g, p
}

func (s *Store) updateGrocery(id string, fn func(g *model.DailyGroceryItem)) *Pending {
	return s.Update(func(d *model.Document) []model.Field {
		i := groceryIndex(d.DailyGroceries, id)
		if i < 0 {
			return nil
		}
		fn(&d.DailyGroceries[i])
		return fields(model.FieldDailyGroceries)
	})
}

func (s *Store) ToggleGrocery(id string) *Pending {
	return s.updateGrocery(id, func(g *model.DailyGroceryItem) { g.IsChecked = !g.IsChecked })
}

func (s *Store) ToggleGroceryFavorite(id string) *Pending {
	return s.updateGrocery(id, func(g *model.DailyGroceryItem) { g.IsFavorite = !g.IsFavorite })
}

// GroceryPatch lists the grocery attributes to change. Nil fields are kept.
type GroceryPatch struct {
	Name     *string                `json:"name,omitempty"`
	Quantity *float64               `json:"quantity,omitempty"`
	Unit     *string                `json:"unit,omitempty"`
	Category *model.GroceryCategory `json:"category,omitempty"`
}

func (s *Store) UpdateGrocery(id string, patch GroceryPatch) *Pending {
	if patch.Category != nil && !patch.Category.Valid() {
		return invalid("grocery category %q", *patch.Category)
	}
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		return invalid("quantity must be positive")
	}
	return s.updateGrocery(id, func(g *model.DailyGroceryItem) {
		if patch.Name != nil {
			g.Name = *patch.Name
		}
		if patch.Quantity != nil {
			g.Quantity = *patch.Quantity
		}
		if patch.Unit != nil {
			g.Unit = *patch.Unit
		}
		if patch.Category != nil {
			g.Category = *patch.Category
		}
	})
}

func (s *Store) DeleteGrocery(id string) *Pending {
	return s.Update(func(d *model.Document) []model.Field {
		i := groceryIndex(d.DailyGroceries, id)
		if i < 0 {
			return nil
		}
		d.DailyGroceries = slices.Delete(d.DailyGroceries, i, i+1)
		return fields(model.FieldDailyGroceries)
	})
}

// ClearCheckedGroceries removes every checked item, favorites included.
func (s *Store) ClearCheckedGroceries() *Pending {
	return s.Update(func(d *model.Document) []model.Field {
		n := len(d.DailyGroceries)
		d.DailyGroceries = slices.DeleteFunc(d.DailyGroceries, func(g model.DailyGroceryItem) bool { return g.IsChecked })
		if len(d.DailyGroceries) == n {
			return nil
		}
		return fields(model.FieldDailyGroceries)
	})
}

// ---- roommates ----

// AddRoommate adds a cost-sharing label. Duplicates are ignored.
func (s *Store) AddRoommate(name string) *Pending {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, model.MeLabel) {
		return invalid("roommate name %q", name)
	}
	return s.Update(func(d *model.Document) []model.Field {
		if slices.Contains(d.Roommates, name) {
			return nil
		}
		d.Roommates = append(d.Roommates, name)
		return fields(model.FieldRoommates)
	})
}

// RemoveRoommate drops a label. Items it paid for keep their payer.
func (s *Store) RemoveRoommate(name string) *Pending {
	name = strings.TrimSpace(name)
	return s.Update(func(d *model.Document) []model.Field {
		i := slices.Index(d.Roommates, name)
		if i < 0 {
			return nil
		}
		d.Roommates = slices.Delete(d.Roommates, i, i+1)
		return fields(model.FieldRoommates)
	})
}

// ---- whole document ----

// Onboarding holds the answers of the first-run questionnaire.
type Onboarding struct {
	Name        string            `json:"name"`
	HousingType model.HousingType `json:"housingType"`
	MovingDate  string            `json:"movingDate"`
	Roommates   []string          `json:"roommates"`
	SocialAid   bool              `json:"socialAid"`
}

// Onboard seeds the inventory and task list for the housing type.
func (s *Store) Onboard(o Onboarding) *Pending {
	if o.HousingType != "" && !slices.Contains(model.HousingTypes, o.HousingType) {
		return invalid("housing type %q", o.HousingType)
	}
	if !validDate(o.MovingDate) {
		return invalid("date %q", o.MovingDate)
	}
	roommates := []string{}
	for _, r := range o.Roommates {
		r = strings.TrimSpace(r)
		if r != "" && !strings.EqualFold(r, model.MeLabel) && !slices.Contains(roommates, r) {
			roommates = append(roommates, r)
		}
	}
	tasks := catalog.DefaultAdminTasks()
	if o.SocialAid {
		tasks = append(tasks, catalog.SocialAidTasks()...)
	}
	return s.Update(func(d *model.Document) []model.Field {
		d.Inventory = catalog.InventoryFor(o.HousingType)
		d.AdminTasks = tasks
		d.MovingDate = o.MovingDate
		d.Roommates = roommates
		d.Profile = model.Profile{Name: strings.TrimSpace(o.Name), HousingType: o.HousingType, Onboarded: true}
		return fields(model.FieldInventory, model.FieldAdminTasks, model.FieldMovingDate, model.FieldRoommates, model.FieldProfile)
	})
}

// Reset puts every collection back to its default. The profile and the
// roommates are kept.
func (s *Store) Reset() *Pending {
	def := s.defaults()
	return s.Update(func(d *model.Document) []model.Field {
		profile, roommates := d.Profile, d.Roommates
		*d = def.Clone()
		d.Profile, d.Roommates = profile, roommates
		return fields(model.FieldInventory, model.FieldAdminTasks, model.FieldBoxCounts, model.FieldMovingDate,
			model.FieldFurnitureVolume, model.FieldDailyGroceries, model.FieldSnapshots, model.FieldBoxSize)
	})
}

// ImportData restores an exported inventory, and the roommates when the
// export carries them.
func (s *Store) ImportData(inventory []model.Item, roommates []string) *Pending {
	if inventory == nil {
		return invalid("import has no inventory")
	}
	for _, it := range inventory {
		if err := validItem(it); err != nil {
			return resolved(Ack{}, err)
		}
	}
	inventory = model.CloneItems(inventory)
	roommates = slices.Clone(roommates)
	return s.Update(func(d *model.Document) []model.Field {
		d.Inventory = inventory
		if roommates == nil {
			return fields(model.FieldInventory)
		}
		d.Roommates = roommates
		return fields(model.FieldInventory, model.FieldRoommates)
	})
}
