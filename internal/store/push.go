package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/moveready/internal/database"
	"github.com/dukerupert/moveready/internal/model"
)

type PushStore struct {
	db *database.DB
}

func NewPushStore(db *database.DB) *PushStore {
	return &PushStore{db: db}
}

const subscriptionCols = `id, user_id, endpoint, p256dh_key, auth_key, device_name, created_at`

func scanSubscription(scanner interface{ Scan(...any) error }) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := scanner.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.DeviceName, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscription registers a browser endpoint. Registering a known
// endpoint again refreshes its keys and moves it to userID.
func (s *PushStore) CreateSubscription(ctx context.Context, userID, endpoint, p256dh, auth, deviceName string) (*model.PushSubscription, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.db.Rebind(
		`INSERT INTO push_subscriptions (user_id, endpoint, p256dh_key, auth_key, device_name)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET user_id = excluded.user_id, p256dh_key = excluded.p256dh_key,
		   auth_key = excluded.auth_key, device_name = excluded.device_name
		 RETURNING id`),
		userID, endpoint, p256dh, auth, deviceName,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create push subscription: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PushStore) GetByID(ctx context.Context, id int64) (*model.PushSubscription, error) {
	row := s.db.QueryRowContext(ctx,
		s.db.Rebind(`SELECT `+subscriptionCols+` FROM push_subscriptions WHERE id = ?`), id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get push subscription: %w", err)
	}
	return sub, nil
}

func (s *PushStore) ListByUser(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(
		`SELECT `+subscriptionCols+` FROM push_subscriptions WHERE user_id = ? ORDER BY created_at DESC, id DESC`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions by user: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// ListUserIDs returns distinct users that have push subscriptions.
func (s *PushStore) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM push_subscriptions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list push user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PushStore) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM push_subscriptions WHERE endpoint = ?`), endpoint)
	if err != nil {
		return fmt.Errorf("delete push subscription by endpoint: %w", err)
	}
	return nil
}

// DeleteUserEndpoint removes an endpoint only if it belongs to userID.
func (s *PushStore) DeleteUserEndpoint(ctx context.Context, userID, endpoint string) error {
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`DELETE FROM push_subscriptions WHERE user_id = ? AND endpoint = ?`), userID, endpoint)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}

// RecordSent records that a reminder was sent on day (for dedup).
func (s *PushStore) RecordSent(ctx context.Context, userID, notifType, refID, day string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO push_reminders (user_id, notification_type, reference_id, day)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`),
		userID, notifType, refID, day,
	)
	if err != nil {
		return fmt.Errorf("record sent reminder: %w", err)
	}
	return nil
}

// WasSent checks if a reminder was already sent on day.
func (s *PushStore) WasSent(ctx context.Context, userID, notifType, refID, day string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, s.db.Rebind(
		`SELECT COUNT(*) FROM push_reminders
		 WHERE user_id = ? AND notification_type = ? AND reference_id = ? AND day = ?`),
		userID, notifType, refID, day,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check sent reminder: %w", err)
	}
	return count > 0, nil
}

// CleanupSent deletes reminder records older than the given time.
func (s *PushStore) CleanupSent(ctx context.Context, before time.Time) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM push_reminders WHERE sent_at < ?`), before.UTC())
	if err != nil {
		return fmt.Errorf("cleanup sent reminders: %w", err)
	}
	return nil
}
