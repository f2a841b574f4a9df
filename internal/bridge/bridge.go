// Package bridge exposes a fixed set of tools to a conversational agent.
// Tools take a JSON object of arguments and always answer with a JSON
// object; failures are reported as {"success": false, "error": ...} and
// never as Go errors or panics.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/moveready/internal/calc"
	"github.com/dukerupert/moveready/internal/grocery"
	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/syncstore"
)

// Tool names.
const (
	ToolUpdateInventoryStatus = "updateInventoryStatus"
	ToolUpdateInventory       = "updateInventory"
	ToolManageDailyGroceries  = "manageDailyGroceries"
	ToolGetInventoryAnalysis  = "getInventoryAnalysis"
	ToolGetPlatinumData       = "getPlatinumData"
)

type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func fail(format string, args ...any) Failure {
	return Failure{Error: fmt.Sprintf(format, args...)}
}

// Bridge dispatches tool calls to a store.
type Bridge struct {
	store  *syncstore.Store
	logger *slog.Logger
}

func New(s *syncstore.Store, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{store: s, logger: logger.With("component", "bridge")}
}

// Call runs the named tool and returns its JSON answer.
func (b *Bridge) Call(ctx context.Context, name string, args json.RawMessage) (out json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("tool panicked", "tool", name, "panic", r)
			out = encode(fail("internal error in %s", name))
		}
	}()
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}

	var result any
	switch name {
	case ToolUpdateInventoryStatus, ToolUpdateInventory:
		result = b.updateInventoryStatus(args)
	case ToolManageDailyGroceries:
		result = b.manageDailyGroceries(args)
	case ToolGetInventoryAnalysis:
		result = b.inventoryAnalysis(args)
	case ToolGetPlatinumData:
		result = b.platinumData(args, b.store.Now())
	default:
		result = fail("Unknown tool %q", name)
	}
	if f, ok := result.(Failure); ok {
		b.logger.Debug("tool failed", "tool", name, "error", f.Error)
	}
	return encode(result)
}

func encode(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		raw, _ = json.Marshal(fail("encode result: %v", err))
	}
	return raw
}

// decodeArgs unmarshals a JSON object into dst.
func decodeArgs(args json.RawMessage, dst any) error {
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// ---- updateInventoryStatus ----

type updateArgs struct {
	ItemIDs json.RawMessage `json:"itemIds"`
	Status  *bool           `json:"status"`
}

type UpdateResult struct {
	Success   bool     `json:"success"`
	Updated   []string `json:"updated"`
	NewStatus bool     `json:"newStatus"`
}

func (b *Bridge) updateInventoryStatus(raw json.RawMessage) any {
	var args updateArgs
	if err := decodeArgs(raw, &args); err != nil {
		return fail("%v", err)
	}
	// anything other than a list of strings counts as no ids
	var ids []string
	_ = json.Unmarshal(args.ItemIDs, &ids)
	if len(ids) == 0 {
		return fail("No itemIds provided")
	}
	if args.Status == nil {
		return fail("status must be a boolean")
	}
	n, p := b.store.SetItemsAcquired(ids, *args.Status)
	// stopped or rejected updates resolve at once
	if err := p.Err(); err != nil {
		return fail("update inventory: %v", err)
	}
	b.logger.Info("inventory updated by tool", "ids", len(ids), "matched", n, "acquired", *args.Status)
	return UpdateResult{Success: true, Updated: ids, NewStatus: *args.Status}
}

// ---- manageDailyGroceries ----

type AddedResult struct {
	Success bool `json:"success"`
	Added   int  `json:"added"`
}

func (b *Bridge) manageDailyGroceries(raw json.RawMessage) any {
	// categories are checked below so unknown ones can be inferred
	var probe struct {
		Action string          `json:"action"`
		Items  json.RawMessage `json:"items"`
	}
	if err := decodeArgs(raw, &probe); err != nil {
		return fail("%v", err)
	}
	var items []map[string]json.RawMessage
	if probe.Action != "add" || json.Unmarshal(probe.Items, &items) != nil || len(items) == 0 {
		return fail("Unsupported action or missing items")
	}

	groceries := make([]model.DailyGroceryItem, 0, len(items))
	for i, it := range items {
		var name, category, unit string
		var quantity float64
		if err := json.Unmarshal(it["name"], &name); err != nil || strings.TrimSpace(name) == "" {
			return fail("item %d has no name", i)
		}
		if c, ok := it["category"]; ok {
			_ = json.Unmarshal(c, &category)
		}
		if q, ok := it["quantity"]; ok {
			if err := json.Unmarshal(q, &quantity); err != nil {
				return fail("item %d has an invalid quantity", i)
			}
		}
		if u, ok := it["unit"]; ok {
			_ = json.Unmarshal(u, &unit)
		}
		groceries = append(groceries, model.DailyGroceryItem{
			Name:     strings.TrimSpace(name),
			Quantity: quantity,
			Unit:     unit,
			Category: grocery.Resolve(name, model.GroceryCategory(category)),
		})
	}
	for i, g := range groceries {
		if _, p := b.store.AddGrocery(g); p.Err() != nil {
			return fail("add grocery %d: %v", i, p.Err())
		}
	}
	b.logger.Info("groceries added by tool", "count", len(groceries))
	return AddedResult{Success: true, Added: len(groceries)}
}

// ---- getInventoryAnalysis ----

const (
	FilterAll      = "all"
	FilterMissing  = "missing"
	FilterAcquired = "acquired"
	FilterPriority = "priority"
)

type analysisArgs struct {
	Filter   string `json:"filter"`
	Category string `json:"category"`
}

type AnalysisMeta struct {
	FilterApplied  string   `json:"filterApplied"`
	CategoryFilter string   `json:"categoryFilter"`
	Count          int      `json:"count"`
	TotalValue     float64  `json:"totalValue"`
	Roommates      []string `json:"roommates"`
}

type AnalysisItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Cost       float64 `json:"cost"`
	IsPriority bool    `json:"isPriority"`
	PaidBy     string  `json:"paidBy,omitempty"`
}

type Analysis struct {
	Meta  AnalysisMeta   `json:"meta"`
	Items []AnalysisItem `json:"items"`
}

func (b *Bridge) inventoryAnalysis(raw json.RawMessage) any {
	var args analysisArgs
	if err := decodeArgs(raw, &args); err != nil {
		return fail("%v", err)
	}
	if args.Filter == "" {
		args.Filter = FilterAll
	}
	var keep func(model.Item) bool
	switch args.Filter {
	case FilterAll:
		keep = func(model.Item) bool { return true }
	case FilterMissing:
		keep = func(it model.Item) bool { return !it.Acquired }
	case FilterAcquired:
		keep = func(it model.Item) bool { return it.Acquired }
	case FilterPriority:
		keep = func(it model.Item) bool { return it.Priority && !it.Acquired }
	default:
		return fail("Unknown filter %q", args.Filter)
	}
	return analyze(b.store.State(), args.Filter, args.Category, keep)
}

func analyze(doc model.Document, filter, category string, keep func(model.Item) bool) Analysis {
	out := Analysis{
		Meta: AnalysisMeta{
			FilterApplied:  filter,
			CategoryFilter: category,
			Roommates:      doc.Roommates,
		},
		Items: []AnalysisItem{},
	}
	if category == "" {
		out.Meta.CategoryFilter = "all"
	}
	if out.Meta.Roommates == nil {
		out.Meta.Roommates = []string{}
	}
	total := decimal.Zero
	for _, it := range doc.Inventory {
		if category != "" && string(it.Category) != category {
			continue
		}
		if !keep(it) {
			continue
		}
		ai := AnalysisItem{
			ID:         it.ID,
			Name:       it.Name,
			Status:     "Missing",
			Cost:       it.Cost(),
			IsPriority: it.Priority,
		}
		if it.Acquired {
			ai.Status = "Acquired"
			ai.PaidBy = it.PaidBy.Name()
		}
		out.Items = append(out.Items, ai)
		total = total.Add(decimal.NewFromFloat(ai.Cost))
	}
	out.Meta.Count = len(out.Items)
	out.Meta.TotalValue = total.Round(2).InexactFloat64()
	return out
}

// ---- getPlatinumData ----

type TodoTask struct {
	ID       string              `json:"id"`
	Label    string              `json:"label"`
	Category model.AdminCategory `json:"category"`
	Urgency  calc.Urgency        `json:"urgency"`
	DaysLeft *int                `json:"daysLeft,omitempty"`
}

type AdminSummary struct {
	Status    string     `json:"status"`
	TasksTodo []TodoTask `json:"tasks_todo"`
	TasksDone []string   `json:"tasks_done"`
}

type MovingSummary struct {
	TotalBoxes   int             `json:"total_boxes"`
	FragileCount int             `json:"fragile_count"`
	HeavyCount   int             `json:"heavy_count"`
	VolumeM3     float64         `json:"estimated_volume_m3"`
	Truck        string          `json:"truck"`
	BoxesPerRoom model.BoxCounts `json:"boxes_per_room"`
}

type PlatinumData struct {
	Admin  *AdminSummary  `json:"admin,omitempty"`
	Moving *MovingSummary `json:"moving,omitempty"`
}

func (b *Bridge) platinumData(raw json.RawMessage, now time.Time) any {
	var args struct {
		Type string `json:"type"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return fail("%v", err)
	}
	if args.Type == "" {
		args.Type = "all"
	}
	if args.Type != "all" && args.Type != "admin" && args.Type != "moving" {
		return fail("Unknown type %q", args.Type)
	}
	doc := b.store.State()
	var out PlatinumData
	if args.Type != "moving" {
		out.Admin = adminSummary(doc, now)
	}
	if args.Type != "admin" {
		out.Moving = movingSummary(doc)
	}
	return out
}

func adminSummary(doc model.Document, now time.Time) *AdminSummary {
	s := &AdminSummary{TasksTodo: []TodoTask{}, TasksDone: []string{}}
	for _, t := range doc.AdminTasks {
		if t.Status == model.StatusDone {
			s.TasksDone = append(s.TasksDone, t.Label)
			continue
		}
		tu := calc.ClassifyTask(t, doc.MovingDate, now)
		s.TasksTodo = append(s.TasksTodo, TodoTask{
			ID:       t.ID,
			Label:    t.Label,
			Category: t.Category,
			Urgency:  tu.Urgency,
			DaysLeft: tu.DaysLeft,
		})
	}
	s.Status = fmt.Sprintf("%d/%d completed", len(s.TasksDone), len(doc.AdminTasks))
	return s
}

func movingSummary(doc model.Document) *MovingSummary {
	v := calc.ComputeVolume(doc.BoxCounts, doc.BoxSize, doc.FurnitureVolume)
	rooms := doc.BoxCounts
	if rooms == nil {
		rooms = model.BoxCounts{}
	}
	return &MovingSummary{
		TotalBoxes:   v.TotalBoxes,
		FragileCount: v.FragileBoxes,
		HeavyCount:   v.HeavyBoxes,
		VolumeM3:     v.Total,
		Truck:        v.Truck.Label,
		BoxesPerRoom: rooms,
	}
}
