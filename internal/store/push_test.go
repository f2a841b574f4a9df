package store

import (
	"context"
	"testing"

	"github.com/dukerupert/moveready/internal/model"
)

func setupPushTestDB(t *testing.T) (*PushStore, string) {
	t.Helper()
	db := setupTestDB(t)
	u, err := NewUserStore(db).Create(context.Background(), "test@example.com", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewPushStore(db), u.ID
}

func TestCreateSubscription(t *testing.T) {
	ps, uid := setupPushTestDB(t)

	sub, err := ps.CreateSubscription(context.Background(), uid, "https://push.example.com/sub1", "p256dh_key1", "auth_key1", "Chrome Desktop")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if sub.UserID != uid {
		t.Errorf("user_id = %q, want %q", sub.UserID, uid)
	}
	if sub.DeviceName != "Chrome Desktop" {
		t.Errorf("device_name = %q, want %q", sub.DeviceName, "Chrome Desktop")
	}
}

func TestCreateSubscriptionUpsert(t *testing.T) {
	ps, uid := setupPushTestDB(t)
	ctx := context.Background()

	sub1, _ := ps.CreateSubscription(ctx, uid, "https://push.example.com/sub1", "key1", "auth1", "Device A")
	sub2, err := ps.CreateSubscription(ctx, uid, "https://push.example.com/sub1", "key2", "auth2", "Device B")
	if err != nil {
		t.Fatalf("upsert subscription: %v", err)
	}
	if sub2.ID != sub1.ID {
		t.Errorf("expected same ID on upsert, got %d != %d", sub2.ID, sub1.ID)
	}
	if sub2.P256dhKey != "key2" {
		t.Errorf("p256dh = %q, want %q", sub2.P256dhKey, "key2")
	}
}

func TestListAndDeleteSubscriptions(t *testing.T) {
	ps, uid := setupPushTestDB(t)
	ctx := context.Background()

	ps.CreateSubscription(ctx, uid, "https://push.example.com/1", "k1", "a1", "Device 1")
	ps.CreateSubscription(ctx, uid, "https://push.example.com/2", "k2", "a2", "Device 2")

	subs, err := ps.ListByUser(ctx, uid)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("len = %d, want 2", len(subs))
	}

	ids, err := ps.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("list user ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != uid {
		t.Errorf("ids = %v, want [%s]", ids, uid)
	}

	if err := ps.DeleteUserEndpoint(ctx, "someone-else", "https://push.example.com/1"); err != nil {
		t.Fatalf("delete foreign endpoint: %v", err)
	}
	if err := ps.DeleteByEndpoint(ctx, "https://push.example.com/2"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}
	subs, _ = ps.ListByUser(ctx, uid)
	if len(subs) != 1 || subs[0].Endpoint != "https://push.example.com/1" {
		t.Errorf("remaining = %+v, want only endpoint 1", subs)
	}
}

func TestSentReminderDedup(t *testing.T) {
	ps, uid := setupPushTestDB(t)
	ctx := context.Background()

	sent, err := ps.WasSent(ctx, uid, model.NotifTypeDeadlineWarning, "task-1", "2026-03-10")
	if err != nil {
		t.Fatalf("was sent: %v", err)
	}
	if sent {
		t.Error("expected not sent")
	}

	if err := ps.RecordSent(ctx, uid, model.NotifTypeDeadlineWarning, "task-1", "2026-03-10"); err != nil {
		t.Fatalf("record sent: %v", err)
	}
	if err := ps.RecordSent(ctx, uid, model.NotifTypeDeadlineWarning, "task-1", "2026-03-10"); err != nil {
		t.Fatalf("record sent twice: %v", err)
	}

	sent, _ = ps.WasSent(ctx, uid, model.NotifTypeDeadlineWarning, "task-1", "2026-03-10")
	if !sent {
		t.Error("expected sent after recording")
	}

	// a new day is a new reminder
	sent, _ = ps.WasSent(ctx, uid, model.NotifTypeDeadlineWarning, "task-1", "2026-03-11")
	if sent {
		t.Error("expected next day not sent")
	}
}
