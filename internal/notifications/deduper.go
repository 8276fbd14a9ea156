// Package notifications collapses repeated like/comment/follow events from
// the same actor toward the same recipient into a single refreshed
// notification within a rolling 24-hour window.
package notifications

import (
	"context"
	"time"

	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/repositories"
)

// Deduper emits notifications with at most one fresh record per
// (recipient, actor, kind, subject) tuple inside the dedup window.
type Deduper struct {
	repo   repositories.NotificationRepository
	window time.Duration
	now    func() time.Time
}

// NewDeduper creates a Deduper with the standard 24-hour window.
func NewDeduper(repo repositories.NotificationRepository) *Deduper {
	return &Deduper{
		repo:   repo,
		window: models.DedupWindow,
		now:    time.Now,
	}
}

// Emit records a notification event. A self-notification
// (recipient == actor) is a no-op. When a fresh record for the tuple already
// exists, its created_at is bumped to now and is_read is reset instead of
// inserting a new row.
//
// Callers treat failures as best-effort: a failed notification never rolls
// back the like/comment/follow that triggered it.
func (d *Deduper) Emit(ctx context.Context, recipientID, actorID, kind, subjectID, message string) error {
	if recipientID == "" || recipientID == actorID {
		return nil
	}

	now := d.now()
	existing, err := d.repo.FindFresh(ctx, recipientID, actorID, kind, subjectID, now.Add(-d.window))
	if err != nil {
		return err
	}
	if existing != nil {
		return d.repo.Refresh(ctx, existing.ID.Hex(), now)
	}

	return d.repo.Insert(ctx, &models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Kind:        kind,
		SubjectID:   subjectID,
		Message:     message,
		IsRead:      false,
		CreatedAt:   now,
	})
}
