package calc

import (
	"math"

	"github.com/dukerupert/moveready/internal/model"
)

// GaugeCapacity is the volume shown as a full gauge, in cubic meters.
const GaugeCapacity = 25.0

type Truck struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

type truckTier struct {
	below float64
	truck Truck
}

var truckTiers = []truckTier{
	{3, Truck{"Kangoo / 3m³", "🚗"}},
	{6, Truck{"Trafic / 6m³", "🚐"}},
	{12, Truck{"Master / 10-12m³", "🚚"}},
	{20, Truck{"Truck 20-22m³", "🚛"}},
}

var largestTruck = Truck{"Heavy goods vehicle / 30m³+", "🚛"}

// RecommendTruck maps a volume to the smallest vehicle tier whose upper
// bound is strictly above it.
func RecommendTruck(volume float64) Truck {
	for _, t := range truckTiers {
		if volume < t.below {
			return t.truck
		}
	}
	return largestTruck
}

type Volume struct {
	TotalBoxes   int     `json:"totalBoxes"`
	FragileBoxes int     `json:"fragileBoxes"`
	HeavyBoxes   int     `json:"heavyBoxes"`
	BoxSize      string  `json:"boxSize"`
	Furniture    float64 `json:"furnitureVolume"`
	Total        float64 `json:"totalVolume"`
	Truck        Truck   `json:"truck"`
	GaugePercent float64 `json:"gaugePercent"`
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// ComputeVolume estimates the moving volume from box counts and furniture,
// rounded to one decimal, and picks a truck for the rounded value.
func ComputeVolume(counts model.BoxCounts, size model.BoxSize, furniture float64) Volume {
	v := Volume{BoxSize: string(size), Furniture: furniture}
	if size == "" {
		v.BoxSize = string(model.BoxMedium)
	}
	for _, b := range counts {
		v.TotalBoxes += b.Count
		if b.IsFragile {
			v.FragileBoxes += b.Count
		}
		if b.IsHeavy {
			v.HeavyBoxes += b.Count
		}
	}
	v.Total = roundTenth(float64(v.TotalBoxes)*size.Volume() + furniture)
	v.Truck = RecommendTruck(v.Total)
	v.GaugePercent = math.Min(100, v.Total/GaugeCapacity*100)
	return v
}
