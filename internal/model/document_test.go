package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestItemUnknownCategoryRejected(t *testing.T) {
	var it Item
	err := json.Unmarshal([]byte(`{"id":"x","name":"Lamp","category":"garage","store":"diy"}`), &it)
	if !errors.Is(err, ErrUnknownEnum) {
		t.Fatalf("err = %v, want ErrUnknownEnum", err)
	}
}

func TestItemPayerDefaultsToMe(t *testing.T) {
	var it Item
	if err := json.Unmarshal([]byte(`{"id":"x","name":"Lamp","category":"living","store":"diy","acquired":true}`), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !it.PaidBy.IsMe() {
		t.Errorf("PaidBy = %q, want me", it.PaidBy)
	}

	if err := json.Unmarshal([]byte(`{"id":"x","name":"Lamp","category":"living","store":"diy","paidBy":"Alice"}`), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if it.PaidBy.Name() != "Alice" {
		t.Errorf("PaidBy = %q, want %q", it.PaidBy, "Alice")
	}
}

func TestItemPayerMeOmitted(t *testing.T) {
	b, err := json.Marshal(Item{ID: "x", Category: CategoryLiving, Store: StoreDIY})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	json.Unmarshal(b, &m)
	if _, ok := m["paidBy"]; ok {
		t.Errorf("paidBy present for owner payer: %s", b)
	}
}

func TestItemCost(t *testing.T) {
	paid := 80.0
	tests := []struct {
		name string
		item Item
		want float64
	}{
		{"missing uses estimate", Item{EstimatedPrice: 100, PaidPrice: &paid}, 100},
		{"acquired uses paid", Item{EstimatedPrice: 100, PaidPrice: &paid, Acquired: true}, 80},
		{"acquired without paid", Item{EstimatedPrice: 100, Acquired: true}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Cost(); got != tt.want {
				t.Errorf("Cost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocumentPatchApply(t *testing.T) {
	src := Document{
		Inventory:  []Item{{ID: "k-fridge", Name: "Fridge", Category: CategoryKitchen, Store: StoreTech}},
		MovingDate: "2026-05-01",
		BoxCounts:  BoxCounts{CategoryKitchen: {Count: 4, IsFragile: true}},
	}
	p, err := src.Patch(FieldInventory, FieldBoxCounts)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got := p.Fields(); len(got) != 2 || got[0] != FieldInventory || got[1] != FieldBoxCounts {
		t.Fatalf("Fields() = %v", got)
	}

	var dst Document
	dst.MovingDate = "2027-01-01"
	if err := dst.Apply(p); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(dst.Inventory) != 1 || dst.Inventory[0].ID != "k-fridge" {
		t.Errorf("Inventory = %+v", dst.Inventory)
	}
	if dst.BoxCounts[CategoryKitchen].Count != 4 {
		t.Errorf("kitchen boxes = %d, want 4", dst.BoxCounts[CategoryKitchen].Count)
	}
	if dst.MovingDate != "2027-01-01" {
		t.Errorf("MovingDate = %q, field not in patch must be kept", dst.MovingDate)
	}
}

func TestDocumentSetInvalidKeepsField(t *testing.T) {
	d := Document{BoxSize: BoxLarge}
	if err := d.Set(FieldBoxSize, json.RawMessage(`"XXL"`)); err == nil {
		t.Fatal("expected error for unknown box size")
	}
	if d.BoxSize != BoxLarge {
		t.Errorf("BoxSize = %q, want %q", d.BoxSize, BoxLarge)
	}
}

func TestDocumentCloneIsDeep(t *testing.T) {
	paid := 10.0
	d := Document{
		Inventory: []Item{{ID: "a", PaidPrice: &paid, SubItems: []SubItem{{ID: "s"}}}},
		Snapshots: []Snapshot{{ID: "snap", Data: SnapshotData{Inventory: []Item{{ID: "a"}}}}},
		BoxCounts: BoxCounts{CategoryKids: {Count: 1}},
	}
	c := d.Clone()
	c.Inventory[0].SubItems[0].Acquired = true
	*c.Inventory[0].PaidPrice = 99
	c.Snapshots[0].Data.Inventory[0].Acquired = true
	c.BoxCounts[CategoryKids] = BoxDetail{Count: 9}

	if d.Inventory[0].SubItems[0].Acquired {
		t.Error("sub-item shared with clone")
	}
	if *d.Inventory[0].PaidPrice != 10 {
		t.Error("paid price shared with clone")
	}
	if d.Snapshots[0].Data.Inventory[0].Acquired {
		t.Error("snapshot data shared with clone")
	}
	if d.BoxCounts[CategoryKids].Count != 1 {
		t.Error("box counts shared with clone")
	}
}
