package catalog

import (
	"testing"

	"github.com/dukerupert/moveready/internal/model"
)

func TestSeedInventoryIsValid(t *testing.T) {
	seen := map[string]bool{}
	for _, it := range InventoryFor(model.HousingFamily) {
		if seen[it.ID] {
			t.Errorf("duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
		if !it.Category.Valid() {
			t.Errorf("item %q: invalid category %q", it.ID, it.Category)
		}
		if !it.Store.Valid() {
			t.Errorf("item %q: invalid store %q", it.ID, it.Store)
		}
		if it.Acquired {
			t.Errorf("item %q seeded as acquired", it.ID)
		}
	}
	for _, id := range TechGuruItems {
		if !seen[id] {
			t.Errorf("tech badge item %q missing from seed", id)
		}
	}
}

func TestInventoryForHousingType(t *testing.T) {
	base := len(InitialInventory())
	if got := len(InventoryFor(model.HousingStudio)); got != base {
		t.Errorf("studio inventory = %d items, want %d", got, base)
	}
	if got := len(InventoryFor(model.HousingFamily)); got != base+len(kidsInventory) {
		t.Errorf("family inventory = %d items, want %d", got, base+len(kidsInventory))
	}
}

func TestInitialInventoryReturnsCopy(t *testing.T) {
	a := InitialInventory()
	a[0].Acquired = true
	a[0].SubItems[0].Acquired = true

	b := InitialInventory()
	if b[0].Acquired || b[0].SubItems[0].Acquired {
		t.Error("seed inventory was mutated through a returned copy")
	}
}

func TestLevelsAscending(t *testing.T) {
	for i := 1; i < len(Levels); i++ {
		if Levels[i].MinXP <= Levels[i-1].MinXP {
			t.Errorf("level %d minXP %d not above level %d", Levels[i].Level, Levels[i].MinXP, Levels[i-1].Level)
		}
	}
	if Levels[0].MinXP != 0 {
		t.Errorf("first level minXP = %d, want 0", Levels[0].MinXP)
	}
}

func TestDefaultDocument(t *testing.T) {
	d := DefaultDocument()
	if len(d.AdminTasks) != 8 {
		t.Errorf("admin tasks = %d, want 8", len(d.AdminTasks))
	}
	if d.BoxCounts == nil || d.DailyGroceries == nil || d.Snapshots == nil {
		t.Error("default collections must be empty, not nil")
	}
	if d.Profile.Onboarded {
		t.Error("new document must not be onboarded")
	}
}

func TestTemplateInventoryItems(t *testing.T) {
	tpl, ok := TemplateByID("setup_gamer")
	if !ok {
		t.Fatal("setup_gamer template not found")
	}
	items := tpl.InventoryItems()
	if len(items) != 5 {
		t.Fatalf("items = %d, want 5", len(items))
	}
	if items[0].Name != "Ergonomic chair" || !items[0].Priority {
		t.Errorf("first item = %+v", items[0])
	}
	if _, ok := TemplateByID("nope"); ok {
		t.Error("unknown template should not be found")
	}
}
