package handler

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/dukerupert/moveready/internal/calc"
	"github.com/dukerupert/moveready/internal/catalog"
	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/syncstore"
)

// DocumentHandler serves the document and its derived views, plus the
// moving-day settings.
type DocumentHandler struct {
	docs
}

func NewDocumentHandler(replicas Replicas, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{docs{replicas: replicas, logger: logger}}
}

type stateResponse struct {
	Document model.Document                        `json:"document"`
	Version  uint64                                `json:"version"`
	Statuses map[model.Field]syncstore.FieldStatus `json:"statuses"`
}

func stateOf(s *syncstore.Store) stateResponse {
	return stateResponse{Document: s.State(), Version: s.Version(), Statuses: s.Statuses()}
}

// State handles GET /api/state
func (h *DocumentHandler) State(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(s))
}

// Dashboard handles GET /api/dashboard
func (h *DocumentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, calc.Summarize(s.State(), s.Now()))
}

type budgetResponse struct {
	Budget     calc.Budget           `json:"budget"`
	ByCategory []calc.CategoryBudget `json:"byCategory"`
	Balances   calc.BalanceSheet     `json:"balances"`
}

// Budget handles GET /api/budget
func (h *DocumentHandler) Budget(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	doc := s.State()
	writeJSON(w, http.StatusOK, budgetResponse{
		Budget:     calc.ComputeBudget(doc.Inventory),
		ByCategory: calc.BudgetByCategory(doc.Inventory),
		Balances:   calc.Balances(doc.Inventory, doc.Roommates),
	})
}

type badgeView struct {
	catalog.Badge
	Earned bool `json:"earned"`
}

// Badges handles GET /api/badges. Secret badges stay hidden until earned.
func (h *DocumentHandler) Badges(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	earned := calc.EarnedBadges(s.State().Inventory)
	out := []badgeView{}
	for _, b := range catalog.Badges {
		got := slices.Contains(earned, b.ID)
		if b.Secret && !got {
			continue
		}
		out = append(out, badgeView{Badge: b, Earned: got})
	}
	writeJSON(w, http.StatusOK, out)
}

// Shopping handles GET /api/shopping
func (h *DocumentHandler) Shopping(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, calc.MissingByStore(s.State().Inventory))
}

type movingResponse struct {
	MovingDate      string          `json:"movingDate"`
	BoxCounts       model.BoxCounts `json:"boxCounts"`
	BoxSize         model.BoxSize   `json:"boxSize"`
	FurnitureVolume float64         `json:"furnitureVolume"`
	Volume          calc.Volume     `json:"volume"`
}

// Moving handles GET /api/moving
func (h *DocumentHandler) Moving(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, moving(s.State()))
}

func moving(doc model.Document) movingResponse {
	return movingResponse{
		MovingDate:      doc.MovingDate,
		BoxCounts:       doc.BoxCounts,
		BoxSize:         doc.BoxSize,
		FurnitureVolume: doc.FurnitureVolume,
		Volume:          calc.ComputeVolume(doc.BoxCounts, doc.BoxSize, doc.FurnitureVolume),
	}
}

func (h *DocumentHandler) movingResult(s *syncstore.Store) func() any {
	return func() any { return moving(s.State()) }
}

// SetMovingDate handles PUT /api/moving/date
func (h *DocumentHandler) SetMovingDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.SetMovingDate(req.Date), http.StatusOK, h.movingResult(s))
}

// SetFurniture handles PUT /api/moving/furniture
func (h *DocumentHandler) SetFurniture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume float64 `json:"volume"`
	}
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.SetFurnitureVolume(req.Volume), http.StatusOK, h.movingResult(s))
}

// SetBoxSize handles PUT /api/moving/box-size
func (h *DocumentHandler) SetBoxSize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size model.BoxSize `json:"size"`
	}
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.SetBoxSize(req.Size), http.StatusOK, h.movingResult(s))
}

// SetBox handles PUT /api/boxes/{category}
func (h *DocumentHandler) SetBox(w http.ResponseWriter, r *http.Request) {
	cat := model.CategoryID(r.PathValue("category"))
	if !cat.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	var box model.BoxDetail
	if !decode(w, r, &box) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.SetBox(cat, box), http.StatusOK, h.movingResult(s))
}

// Templates handles GET /api/templates
func (h *DocumentHandler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Templates)
}

// ImportTemplate handles POST /api/templates/{id}/import
func (h *DocumentHandler) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	t, found := catalog.TemplateByID(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.ImportTemplate(t.InventoryItems()), http.StatusOK, func() any { return s.State().Inventory })
}
