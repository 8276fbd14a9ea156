package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/repositories"
)

func newTestDeduper(start time.Time) (*Deduper, *repositories.MemoryNotificationRepository, *time.Time) {
	repo := repositories.NewMemoryNotificationRepository()
	now := start
	d := NewDeduper(repo)
	d.now = func() time.Time { return now }
	return d, repo, &now
}

func countFor(t *testing.T, repo *repositories.MemoryNotificationRepository, recipientID string) int64 {
	t.Helper()
	_, total, err := repo.ListByRecipient(context.Background(), recipientID, 1, 100)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return total
}

func TestEmitSelfNotificationIsNoop(t *testing.T) {
	d, repo, _ := newTestDeduper(time.Now())

	if err := d.Emit(context.Background(), "1", "1", models.NotificationLike, "post1", "liked your post"); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if got := countFor(t, repo, "1"); got != 0 {
		t.Fatalf("got %d notifications, want 0 for self-notification", got)
	}
}

func TestEmitDedupsWithinWindow(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d, repo, now := newTestDeduper(base)
	ctx := context.Background()

	if err := d.Emit(ctx, "1", "2", models.NotificationLike, "post1", "liked your post"); err != nil {
		t.Fatalf("first emit: %v", err)
	}

	// Recipient reads the notification before the repeat event.
	list, _, err := repo.ListByRecipient(ctx, "1", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := repo.MarkAsRead(ctx, list[0].ID.Hex(), "1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	*now = base.Add(time.Hour)
	if err := d.Emit(ctx, "1", "2", models.NotificationLike, "post1", "liked your post"); err != nil {
		t.Fatalf("second emit: %v", err)
	}

	list, total, err := repo.ListByRecipient(ctx, "1", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Fatalf("got %d notifications, want 1 (deduped)", total)
	}
	if !list[0].CreatedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("created_at not refreshed: got %v, want %v", list[0].CreatedAt, base.Add(time.Hour))
	}
	if list[0].IsRead {
		t.Fatal("is_read not reset on refresh")
	}
}

func TestEmitNewRecordAfterWindow(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d, repo, now := newTestDeduper(base)
	ctx := context.Background()

	if err := d.Emit(ctx, "1", "2", models.NotificationLike, "post1", "liked your post"); err != nil {
		t.Fatalf("first emit: %v", err)
	}

	*now = base.Add(models.DedupWindow + time.Minute)
	if err := d.Emit(ctx, "1", "2", models.NotificationLike, "post1", "liked your post"); err != nil {
		t.Fatalf("second emit: %v", err)
	}

	if got := countFor(t, repo, "1"); got != 2 {
		t.Fatalf("got %d notifications, want 2 after the window lapsed", got)
	}
}

func TestEmitDistinctTuplesDoNotDedup(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d, repo, _ := newTestDeduper(base)
	ctx := context.Background()

	emits := []struct {
		recipient, actor, kind, subject string
	}{
		{"1", "2", models.NotificationLike, "post1"},
		{"1", "2", models.NotificationComment, "post1"}, // different kind
		{"1", "2", models.NotificationLike, "post2"},    // different subject
		{"1", "3", models.NotificationLike, "post1"},    // different actor
	}
	for _, e := range emits {
		if err := d.Emit(ctx, e.recipient, e.actor, e.kind, e.subject, "msg"); err != nil {
			t.Fatalf("emit %+v: %v", e, err)
		}
	}

	if got := countFor(t, repo, "1"); got != 4 {
		t.Fatalf("got %d notifications, want 4 distinct tuples", got)
	}
}
