package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lumora-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository implementations. They mirror the Mongo repositories'
// semantics and back the test suites and local runs without a database.

// MemoryContentRepository implements ContentRepository over a map.
type MemoryContentRepository struct {
	mu    sync.Mutex
	kind  models.ContentKind
	items map[string]*models.ContentItem
}

// NewMemoryContentRepository creates an empty in-memory content repository.
func NewMemoryContentRepository(kind models.ContentKind) *MemoryContentRepository {
	return &MemoryContentRepository{
		kind:  kind,
		items: make(map[string]*models.ContentItem),
	}
}

func cloneContentItem(item *models.ContentItem) *models.ContentItem {
	clone := *item
	clone.Media = append([]models.MediaAsset(nil), item.Media...)
	clone.Likes = append([]string{}, item.Likes...)
	clone.Comments = append([]models.Comment{}, item.Comments...)
	clone.Views = append([]models.View{}, item.Views...)
	return &clone
}

func (r *MemoryContentRepository) Insert(ctx context.Context, item *models.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = primitive.NewObjectID()
	item.Kind = r.kind
	if item.Likes == nil {
		item.Likes = []string{}
	}
	if item.Comments == nil {
		item.Comments = []models.Comment{}
	}
	if item.Views == nil {
		item.Views = []models.View{}
	}
	r.items[item.ID.Hex()] = cloneContentItem(item)
	return nil
}

func (r *MemoryContentRepository) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", r.kind, id, models.ErrNotFound)
	}
	return cloneContentItem(item), nil
}

func (r *MemoryContentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%s %s: %w", r.kind, id, models.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryContentRepository) ListByOwners(ctx context.Context, ownerIDs []string, skip, limit int64) ([]models.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owners := make(map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}

	var matched []models.ContentItem
	for _, item := range r.items {
		if len(ownerIDs) > 0 && !owners[item.OwnerID] {
			continue
		}
		matched = append(matched, *cloneContentItem(item))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if skip >= int64(len(matched)) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit > 0 && int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *MemoryContentRepository) AddLike(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", r.kind, id, models.ErrNotFound)
	}
	if !item.LikedBy(userID) {
		item.Likes = append(item.Likes, userID)
	}
	return nil
}

func (r *MemoryContentRepository) RemoveLike(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", r.kind, id, models.ErrNotFound)
	}
	likes := item.Likes[:0]
	for _, uid := range item.Likes {
		if uid != userID {
			likes = append(likes, uid)
		}
	}
	item.Likes = likes
	return nil
}

func (r *MemoryContentRepository) AppendComment(ctx context.Context, id string, comment models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", r.kind, id, models.ErrNotFound)
	}
	item.Comments = append(item.Comments, comment)
	return nil
}

func (r *MemoryContentRepository) AppendView(ctx context.Context, id string, view models.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", r.kind, id, models.ErrNotFound)
	}
	item.Views = append(item.Views, view)
	return nil
}

func (r *MemoryContentRepository) AppendViewOnce(ctx context.Context, id string, view models.View) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return false, fmt.Errorf("%s %s: %w", r.kind, id, models.ErrNotFound)
	}
	if item.ViewedBy(view.ViewerID) {
		return false, nil
	}
	item.Views = append(item.Views, view)
	return true, nil
}

// MemoryStoryRepository implements StoryRepository over a map.
type MemoryStoryRepository struct {
	MemoryContentRepository
}

// NewMemoryStoryRepository creates an empty in-memory story repository.
func NewMemoryStoryRepository() *MemoryStoryRepository {
	r := &MemoryStoryRepository{}
	r.kind = models.KindStory
	r.items = make(map[string]*models.ContentItem)
	return r
}

func (r *MemoryStoryRepository) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("story %s: %w", id, models.ErrNotFound)
	}
	item.IsActive = false
	return nil
}

func (r *MemoryStoryRepository) FindPurgeable(ctx context.Context, now time.Time) ([]models.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purgeable []models.ContentItem
	for _, item := range r.items {
		if !item.ExpiresAt.After(now) || !item.IsActive {
			purgeable = append(purgeable, *cloneContentItem(item))
		}
	}
	return purgeable, nil
}

func (r *MemoryStoryRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		if _, ok := r.items[id]; ok {
			delete(r.items, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryStoryRepository) ListActive(ctx context.Context, now time.Time) ([]models.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var active []models.ContentItem
	for _, item := range r.items {
		if item.ExpiresAt.After(now) && item.IsActive {
			active = append(active, *cloneContentItem(item))
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active, nil
}

// MemoryNotificationRepository implements NotificationRepository over a slice.
type MemoryNotificationRepository struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

// NewMemoryNotificationRepository creates an empty in-memory notification
// repository.
func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{}
}

func (r *MemoryNotificationRepository) Insert(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification.ID = primitive.NewObjectID()
	clone := *notification
	r.notifications = append(r.notifications, &clone)
	return nil
}

func (r *MemoryNotificationRepository) FindFresh(ctx context.Context, recipientID, actorID, kind, subjectID string, since time.Time) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.RecipientID == recipientID && n.ActorID == actorID &&
			n.Kind == kind && n.SubjectID == subjectID && !n.CreatedAt.Before(since) {
			clone := *n
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *MemoryNotificationRepository) Refresh(ctx context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.ID.Hex() == id {
			n.CreatedAt = now
			n.IsRead = false
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
}

func (r *MemoryNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			matched = append(matched, *n)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	skip := (page - 1) * limit
	if skip >= len(matched) {
		return nil, total, nil
	}
	matched = matched[skip:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *MemoryNotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *MemoryNotificationRepository) MarkAsRead(ctx context.Context, id, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.ID.Hex() == id && n.RecipientID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
}

func (r *MemoryNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}
