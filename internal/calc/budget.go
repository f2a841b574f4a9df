package calc

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/moveready/internal/catalog"
	"github.com/dukerupert/moveready/internal/model"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func cents(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }

// Budget summarizes spending over an inventory. Delta is positive when the
// projection exceeds the original estimate.
type Budget struct {
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
	Projected float64 `json:"projected"`
	Estimated float64 `json:"estimated"`
	Delta     float64 `json:"delta"`
}

func ComputeBudget(items []model.Item) Budget {
	var spent, remaining, estimated decimal.Decimal
	for _, it := range items {
		estimated = estimated.Add(dec(it.EstimatedPrice))
		if it.Acquired {
			spent = spent.Add(dec(it.Cost()))
		} else {
			remaining = remaining.Add(dec(it.EstimatedPrice))
		}
	}
	projected := spent.Add(remaining)
	return Budget{
		Spent:     cents(spent),
		Remaining: cents(remaining),
		Projected: cents(projected),
		Estimated: cents(estimated),
		Delta:     cents(projected.Sub(estimated)),
	}
}

type CategoryBudget struct {
	Category  model.CategoryID `json:"category"`
	Label     string           `json:"label"`
	Spent     float64          `json:"spent"`
	Remaining float64          `json:"remaining"`
	Total     float64          `json:"total"`
}

// BudgetByCategory splits the budget per category in catalog order,
// skipping categories whose total is zero.
func BudgetByCategory(items []model.Item) []CategoryBudget {
	var out []CategoryBudget
	for _, c := range catalog.Categories {
		var spent, remaining decimal.Decimal
		for _, it := range items {
			if it.Category != c.ID {
				continue
			}
			if it.Acquired {
				spent = spent.Add(dec(it.Cost()))
			} else {
				remaining = remaining.Add(dec(it.EstimatedPrice))
			}
		}
		total := spent.Add(remaining)
		if !total.IsPositive() {
			continue
		}
		out = append(out, CategoryBudget{
			Category:  c.ID,
			Label:     c.Label,
			Spent:     cents(spent),
			Remaining: cents(remaining),
			Total:     cents(total),
		})
	}
	return out
}

// Balance is one participant's position in the shared costs.
type Balance struct {
	Name    string  `json:"name"`
	Paid    float64 `json:"paid"`
	Share   float64 `json:"share"`
	Balance float64 `json:"balance"`
}

// Owed reports whether the participant is owed money (or is even).
func (b Balance) Owed() bool { return b.Balance >= 0 }

type BalanceSheet struct {
	Total     float64   `json:"total"`
	FairShare float64   `json:"fairShare"`
	Balances  []Balance `json:"balances"`
}

// Participants returns "me" followed by the distinct roommate labels.
func Participants(roommates []string) []string {
	out := []string{model.MeLabel}
	for _, r := range roommates {
		r = strings.TrimSpace(r)
		if r == "" || r == model.MeLabel || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Balances splits the cost of acquired items evenly between the owner and
// the roommates. Amounts paid by someone who is no longer a participant
// count toward the total but toward nobody's paid sum.
func Balances(items []model.Item, roommates []string) BalanceSheet {
	people := Participants(roommates)
	paid := make(map[string]decimal.Decimal, len(people))
	var total decimal.Decimal
	for _, it := range items {
		if !it.Acquired {
			continue
		}
		cost := dec(it.Cost())
		total = total.Add(cost)
		name := it.PaidBy.Name()
		if slices.Contains(people, name) {
			paid[name] = paid[name].Add(cost)
		}
	}
	share := total.Div(decimal.NewFromInt(int64(len(people))))
	sheet := BalanceSheet{
		Total:     cents(total),
		FairShare: cents(share),
		Balances:  make([]Balance, 0, len(people)),
	}
	for _, p := range people {
		sheet.Balances = append(sheet.Balances, Balance{
			Name:    p,
			Paid:    cents(paid[p]),
			Share:   cents(share),
			Balance: cents(paid[p].Sub(share)),
		})
	}
	return sheet
}
