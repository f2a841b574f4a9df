package model

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownEnum is returned when a closed enumeration is decoded from a
// value outside its set.
var ErrUnknownEnum = errors.New("unknown enum value")

func decodeEnum[T ~string](dst *T, raw []byte, valid []T, name string) error {
	v := T(raw)
	if !slices.Contains(valid, v) {
		return fmt.Errorf("%s %q: %w", name, string(raw), ErrUnknownEnum)
	}
	*dst = v
	return nil
}

// CategoryID identifies a room category of the inventory.
type CategoryID string

const (
	CategoryKitchen    CategoryID = "kitchen"
	CategoryLiving     CategoryID = "living"
	CategoryBedroom    CategoryID = "bedroom"
	CategoryKids       CategoryID = "kids"
	CategoryMultimedia CategoryID = "multimedia"
	CategoryBathroom   CategoryID = "bathroom"
	CategoryCleaning   CategoryID = "cleaning"
	CategoryTools      CategoryID = "tools"
	CategoryGroceries  CategoryID = "groceries"
)

// CategoryIDs lists every category in display order.
var CategoryIDs = []CategoryID{
	CategoryKitchen, CategoryLiving, CategoryBedroom, CategoryKids, CategoryMultimedia,
	CategoryBathroom, CategoryCleaning, CategoryTools, CategoryGroceries,
}

func (c CategoryID) Valid() bool { return slices.Contains(CategoryIDs, c) }

func (c *CategoryID) UnmarshalText(b []byte) error {
	return decodeEnum(c, b, CategoryIDs, "category")
}

// StoreType routes an item to the kind of shop it is bought in.
type StoreType string

const (
	StoreFurniture   StoreType = "furniture"
	StoreSupermarket StoreType = "supermarket"
	StoreDIY         StoreType = "diy"
	StoreTech        StoreType = "tech"
	StorePharmacy    StoreType = "pharmacy"
)

var StoreTypes = []StoreType{StoreFurniture, StoreSupermarket, StoreDIY, StoreTech, StorePharmacy}

func (s StoreType) Valid() bool { return slices.Contains(StoreTypes, s) }

func (s *StoreType) UnmarshalText(b []byte) error {
	return decodeEnum(s, b, StoreTypes, "store")
}

type AdminCategory string

const (
	AdminHousing  AdminCategory = "housing"
	AdminEnergy   AdminCategory = "energy"
	AdminInternet AdminCategory = "internet"
	AdminGeneral  AdminCategory = "admin"
	AdminSocial   AdminCategory = "social"
)

var AdminCategories = []AdminCategory{AdminHousing, AdminEnergy, AdminInternet, AdminGeneral, AdminSocial}

func (c *AdminCategory) UnmarshalText(b []byte) error {
	return decodeEnum(c, b, AdminCategories, "admin category")
}

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

func (s TaskStatus) Valid() bool { return slices.Contains(TaskStatuses, s) }

func (s *TaskStatus) UnmarshalText(b []byte) error {
	return decodeEnum(s, b, TaskStatuses, "task status")
}

type GroceryCategory string

const (
	GroceryFresh    GroceryCategory = "fresh"
	GroceryPantry   GroceryCategory = "pantry"
	GroceryCleaning GroceryCategory = "cleaning"
	GroceryHygiene  GroceryCategory = "hygiene"
	GroceryOther    GroceryCategory = "other"
)

var GroceryCategories = []GroceryCategory{GroceryFresh, GroceryPantry, GroceryCleaning, GroceryHygiene, GroceryOther}

func (g GroceryCategory) Valid() bool { return slices.Contains(GroceryCategories, g) }

func (g *GroceryCategory) UnmarshalText(b []byte) error {
	return decodeEnum(g, b, GroceryCategories, "grocery category")
}

// BoxSize is the standard moving box used for volume estimates. The empty
// value means the default medium box.
type BoxSize string

const (
	BoxSmall  BoxSize = "S"
	BoxMedium BoxSize = "M"
	BoxLarge  BoxSize = "L"
)

var BoxSizes = []BoxSize{BoxSmall, BoxMedium, BoxLarge}

// Volume returns the unit volume of one box in cubic meters.
func (b BoxSize) Volume() float64 {
	switch b {
	case BoxSmall:
		return 0.035
	case BoxLarge:
		return 0.09
	default:
		return 0.06
	}
}

func (b *BoxSize) UnmarshalText(raw []byte) error {
	if len(raw) == 0 {
		*b = ""
		return nil
	}
	return decodeEnum(b, raw, BoxSizes, "box size")
}

// HousingType is chosen at onboarding and scales the seed inventory.
type HousingType string

const (
	HousingStudio HousingType = "studio"
	HousingT2     HousingType = "t2"
	HousingColoc  HousingType = "coloc"
	HousingFamily HousingType = "family"
)

var HousingTypes = []HousingType{HousingStudio, HousingT2, HousingColoc, HousingFamily}

func (h *HousingType) UnmarshalText(raw []byte) error {
	if len(raw) == 0 {
		*h = ""
		return nil
	}
	return decodeEnum(h, raw, HousingTypes, "housing type")
}
