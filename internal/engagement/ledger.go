// Package engagement maintains like sets, comment lists, and view lists on
// posts, reels, and stories, and derives their counts.
package engagement

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/repositories"
)

// Notifier is the side channel for like/comment events. Implemented by
// notifications.Deduper.
type Notifier interface {
	Emit(ctx context.Context, recipientID, actorID, kind, subjectID, message string) error
}

// Ledger performs engagement mutations against the content repositories.
// Array membership is enforced by the store's atomic set operators; counts
// are derived from the document read plus the applied delta.
type Ledger struct {
	repos    map[models.ContentKind]repositories.ContentRepository
	notifier Notifier
	now      func() time.Time
}

// NewLedger wires the ledger to one repository per content kind.
func NewLedger(posts, reels repositories.ContentRepository, stories repositories.StoryRepository, notifier Notifier) *Ledger {
	return &Ledger{
		repos: map[models.ContentKind]repositories.ContentRepository{
			models.KindPost:  posts,
			models.KindReel:  reels,
			models.KindStory: stories,
		},
		notifier: notifier,
		now:      time.Now,
	}
}

func (l *Ledger) repo(kind models.ContentKind) (repositories.ContentRepository, error) {
	repo, ok := l.repos[kind]
	if !ok {
		return nil, fmt.Errorf("unknown content kind %q: %w", kind, models.ErrNotFound)
	}
	return repo, nil
}

// ToggleLike flips userID's membership in the like set and returns the new
// state with the derived count. A transition to liked notifies the owner.
func (l *Ledger) ToggleLike(ctx context.Context, kind models.ContentKind, contentID, userID string) (liked bool, likeCount int, err error) {
	repo, err := l.repo(kind)
	if err != nil {
		return false, 0, err
	}

	item, err := repo.GetByID(ctx, contentID)
	if err != nil {
		return false, 0, err
	}

	if item.LikedBy(userID) {
		if err := repo.RemoveLike(ctx, contentID, userID); err != nil {
			return false, 0, err
		}
		return false, len(item.Likes) - 1, nil
	}

	if err := repo.AddLike(ctx, contentID, userID); err != nil {
		return false, 0, err
	}
	l.notify(ctx, item.OwnerID, userID, models.NotificationLike, contentID,
		fmt.Sprintf("liked your %s", kind))
	return true, len(item.Likes) + 1, nil
}

// AddComment appends a trimmed comment and returns it with the derived count.
// Empty or over-length text is rejected.
func (l *Ledger) AddComment(ctx context.Context, kind models.ContentKind, contentID, userID, text string) (models.Comment, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, 0, fmt.Errorf("comment text is empty: %w", models.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return models.Comment{}, 0, fmt.Errorf("comment exceeds %d characters: %w", models.MaxCommentLength, models.ErrInvalidArgument)
	}

	repo, err := l.repo(kind)
	if err != nil {
		return models.Comment{}, 0, err
	}

	item, err := repo.GetByID(ctx, contentID)
	if err != nil {
		return models.Comment{}, 0, err
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		AuthorID:  userID,
		Text:      text,
		CreatedAt: l.now(),
	}
	if err := repo.AppendComment(ctx, contentID, comment); err != nil {
		return models.Comment{}, 0, err
	}

	l.notify(ctx, item.OwnerID, userID, models.NotificationComment, contentID,
		fmt.Sprintf("commented on your %s", kind))
	return comment, len(item.Comments) + 1, nil
}

// RecordView records a view and returns the derived count. Posts and reels
// accumulate every view event; stories keep at most one record per viewer.
// Viewing an expired or deactivated story fails with ErrExpired. Self-views
// count like any other.
func (l *Ledger) RecordView(ctx context.Context, kind models.ContentKind, contentID, viewerID string) (int, error) {
	repo, err := l.repo(kind)
	if err != nil {
		return 0, err
	}

	item, err := repo.GetByID(ctx, contentID)
	if err != nil {
		return 0, err
	}

	view := models.View{ViewerID: viewerID, ViewedAt: l.now()}

	if kind == models.KindStory {
		if item.Expired(l.now()) {
			return 0, fmt.Errorf("story %s: %w", contentID, models.ErrExpired)
		}
		added, err := repo.AppendViewOnce(ctx, contentID, view)
		if err != nil {
			return 0, err
		}
		count := len(item.Views)
		if added {
			count++
		}
		return count, nil
	}

	if err := repo.AppendView(ctx, contentID, view); err != nil {
		return 0, err
	}
	return len(item.Views) + 1, nil
}

// notify emits best-effort: a failed notification never aborts the mutation.
// The Deduper itself suppresses self-notifications.
func (l *Ledger) notify(ctx context.Context, recipientID, actorID, kind, subjectID, message string) {
	if l.notifier == nil {
		return
	}
	if err := l.notifier.Emit(ctx, recipientID, actorID, kind, subjectID, message); err != nil {
		log.Printf("engagement: failed to emit %s notification for %s: %v", kind, subjectID, err)
	}
}
