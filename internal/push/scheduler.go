package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/moveready/internal/calc"
	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/store"
	"github.com/dukerupert/moveready/internal/syncstore"
)

// reminderRetention is how long sent-reminder records are kept for dedup.
const reminderRetention = 30 * 24 * time.Hour

// Replicas lists the documents currently open.
type Replicas interface {
	Active() []*syncstore.Store
}

// Scheduler periodically sends one reminder per urgent task per day.
type Scheduler struct {
	mu       sync.RWMutex
	sender   Sender
	push     *store.PushStore
	replicas Replicas
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a notification scheduler. A zero interval ticks
// every minute.
func NewScheduler(sender Sender, pushStore *store.PushStore, replicas Replicas, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		sender:   sender,
		push:     pushStore,
		replicas: replicas,
		interval: interval,
		now:      time.Now,
		logger:   logger.With("component", "push"),
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// RunOnce checks every open document and returns the number of
// notifications delivered.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	now := s.now()
	if err := s.push.CleanupSent(ctx, now.Add(-reminderRetention)); err != nil {
		s.logger.Warn("cleanup sent reminders", "error", err)
	}
	sent := 0
	for _, st := range s.replicas.Active() {
		sent += s.remindUser(ctx, st.UserID(), st.State(), now)
	}
	return sent
}

func reminderFor(t calc.TaskUrgency) (string, Payload, bool) {
	if t.DaysLeft == nil {
		return "", Payload{}, false
	}
	days := *t.DaysLeft
	var notifType, body string
	switch t.Urgency {
	case calc.UrgencyCritical:
		notifType = model.NotifTypeDeadlineCritical
		body = fmt.Sprintf("%s is %d days overdue", t.Label, -days)
	case calc.UrgencyWarning:
		notifType = model.NotifTypeDeadlineWarning
		switch days {
		case 0:
			body = fmt.Sprintf("%s is due today", t.Label)
		case 1:
			body = fmt.Sprintf("%s is due tomorrow", t.Label)
		default:
			body = fmt.Sprintf("%s is due in %d days", t.Label, days)
		}
	default:
		return "", Payload{}, false
	}
	return notifType, Payload{
		Title: "Moving paperwork",
		Body:  body,
		URL:   "/admin",
		Tag:   "task-" + t.ID,
	}, true
}

func (s *Scheduler) remindUser(ctx context.Context, userID string, doc model.Document, now time.Time) int {
	subs, err := s.push.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("list subscriptions", "user_id", userID, "error", err)
		return 0
	}
	if len(subs) == 0 {
		return 0
	}

	day := now.Format(time.DateOnly)
	delivered := 0
	for _, t := range calc.ClassifyTasks(doc.AdminTasks, doc.MovingDate, now) {
		notifType, payload, ok := reminderFor(t)
		if !ok {
			continue
		}
		done, err := s.push.WasSent(ctx, userID, notifType, t.ID, day)
		if err != nil {
			s.logger.Error("check sent reminder", "user_id", userID, "error", err)
			continue
		}
		if done {
			continue
		}

		for i := range subs {
			if err := s.sender.Send(ctx, &subs[i], payload); err != nil {
				if errors.Is(err, ErrExpired) {
					if err := s.push.DeleteByEndpoint(ctx, subs[i].Endpoint); err != nil {
						s.logger.Warn("delete expired subscription", "error", err)
					}
				} else {
					s.logger.Warn("send reminder", "user_id", userID, "task", t.ID, "error", err)
				}
				continue
			}
			delivered++
		}

		if err := s.push.RecordSent(ctx, userID, notifType, t.ID, day); err != nil {
			s.logger.Error("record sent reminder", "user_id", userID, "error", err)
		}
	}
	return delivered
}
