// Package calc derives views from the document collections: progress,
// experience, deadlines, budgets and moving volume. Every function is pure;
// time-dependent ones take "now" as a parameter.
package calc

import (
	"math"
	"slices"
	"sync"

	"github.com/dukerupert/moveready/internal/catalog"
	"github.com/dukerupert/moveready/internal/model"
)

// Progress is the rounded percentage of acquired items, over the whole
// inventory when category is empty or over one category otherwise. It only
// reaches 100 when every item is acquired.
func Progress(items []model.Item, category model.CategoryID) int {
	var total, acquired int
	for _, it := range items {
		if category != "" && it.Category != category {
			continue
		}
		total++
		if it.Acquired {
			acquired++
		}
	}
	if total == 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(acquired) / float64(total)))
	if pct == 100 && acquired < total {
		return 99
	}
	return pct
}

func CountAcquired(items []model.Item) int {
	n := 0
	for _, it := range items {
		if it.Acquired {
			n++
		}
	}
	return n
}

func XP(items []model.Item) int {
	return CountAcquired(items) * catalog.XPPerItem
}

// LevelFor returns the highest level whose threshold is reached.
func LevelFor(xp int) catalog.LevelDef {
	lvl := catalog.Levels[0]
	for _, l := range catalog.Levels {
		if xp >= l.MinXP {
			lvl = l
		}
	}
	return lvl
}

// NextLevel returns the level after current, if any.
func NextLevel(current catalog.LevelDef) (catalog.LevelDef, bool) {
	for _, l := range catalog.Levels {
		if l.Level > current.Level {
			return l, true
		}
	}
	return catalog.LevelDef{}, false
}

// LevelWatcher detects forward level transitions across successive
// observations. The first observation only primes it, so reloading an
// existing state never reports a level-up.
type LevelWatcher struct {
	mu     sync.Mutex
	primed bool
	level  int
}

// Observe records xp and returns the new level when it is strictly above
// the previously observed one.
func (w *LevelWatcher) Observe(xp int) (catalog.LevelDef, bool) {
	lvl := LevelFor(xp)
	w.mu.Lock()
	defer w.mu.Unlock()
	prev, primed := w.level, w.primed
	w.level, w.primed = lvl.Level, true
	if !primed || lvl.Level <= prev {
		return lvl, false
	}
	return lvl, true
}

// EarnedBadges returns the ids of unlocked badges in catalog order.
func EarnedBadges(items []model.Item) []catalog.BadgeID {
	acquired := CountAcquired(items)
	var out []catalog.BadgeID
	for _, b := range catalog.Badges {
		if badgeEarned(b.ID, items, acquired) {
			out = append(out, b.ID)
		}
	}
	return out
}

func badgeEarned(id catalog.BadgeID, items []model.Item, acquired int) bool {
	switch id {
	case catalog.BadgeFirstStep:
		return acquired > 0
	case catalog.BadgeKitchenKing:
		return allAcquired(items, func(it model.Item) bool { return it.Category == model.CategoryKitchen })
	case catalog.BadgeSurvivor:
		return allAcquired(items, func(it model.Item) bool { return it.Priority })
	case catalog.BadgeBigSpender:
		return ComputeBudget(items).Spent >= catalog.BigSpenderThreshold
	case catalog.BadgeHalfway:
		return len(items) > 0 && 2*acquired >= len(items)
	case catalog.BadgeTechGuru:
		for _, id := range catalog.TechGuruItems {
			i := slices.IndexFunc(items, func(it model.Item) bool { return it.ID == id })
			if i < 0 || !items[i].Acquired {
				return false
			}
		}
		return true
	case catalog.BadgeMaster:
		return len(items) > 0 && acquired == len(items)
	}
	return false
}

// allAcquired reports whether at least one item matches and all matching
// items are acquired.
func allAcquired(items []model.Item, match func(model.Item) bool) bool {
	n := 0
	for _, it := range items {
		if !match(it) {
			continue
		}
		if !it.Acquired {
			return false
		}
		n++
	}
	return n > 0
}
