// Package stories governs the ephemeral content lifecycle: creation with a
// 24-hour expiry, owner deactivation, and the purge sweep that removes
// expired stories together with their media.
package stories

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/lumora-app/backend/internal/metrics"
	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/repositories"
)

// MediaDeleter deletes an uploaded media object by its deletion handle.
// Implemented by the media uploaders.
type MediaDeleter interface {
	Delete(ctx context.Context, handle string) error
}

// Lifecycle implements story creation, deactivation, purging, and the
// grouped active-stories listing.
type Lifecycle struct {
	repo    repositories.StoryRepository
	deleter MediaDeleter
	now     func() time.Time
}

// NewLifecycle creates a story lifecycle bound to the stories repository and
// a media deleter for purge-time cleanup.
func NewLifecycle(repo repositories.StoryRepository, deleter MediaDeleter) *Lifecycle {
	return &Lifecycle{repo: repo, deleter: deleter, now: time.Now}
}

// Create stores a new story expiring 24 hours from now.
func (l *Lifecycle) Create(ctx context.Context, ownerID string, media models.MediaAsset, caption string) (*models.ContentItem, error) {
	now := l.now()
	story := &models.ContentItem{
		Kind:      models.KindStory,
		OwnerID:   ownerID,
		Caption:   caption,
		Media:     []models.MediaAsset{media},
		CreatedAt: now,
		ExpiresAt: now.Add(models.StoryTTL),
		IsActive:  true,
	}
	if err := l.repo.Insert(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// Deactivate marks the story inactive. Only the owner may deactivate; the
// record is removed later by the purge sweep, not here.
func (l *Lifecycle) Deactivate(ctx context.Context, storyID, callerID string) error {
	story, err := l.repo.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if story.OwnerID != callerID {
		return fmt.Errorf("story %s belongs to another user: %w", storyID, models.ErrForbidden)
	}
	return l.repo.Deactivate(ctx, storyID)
}

// PurgeExpired hard-deletes every story whose expiry has passed (inclusive)
// or that was deactivated, attempting media deletion first. Media failures
// are logged and never block removal of the record. Re-running with nothing
// eligible is a no-op returning 0.
func (l *Lifecycle) PurgeExpired(ctx context.Context) (int, error) {
	eligible, err := l.repo.FindPurgeable(ctx, l.now())
	if err != nil {
		return 0, err
	}
	if len(eligible) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(eligible))
	for _, story := range eligible {
		ids = append(ids, story.ID.Hex())
		for _, asset := range story.Media {
			if asset.DeleteHandle == "" || l.deleter == nil {
				continue
			}
			if err := l.deleter.Delete(ctx, asset.DeleteHandle); err != nil {
				log.Printf("stories: failed to delete media %q for story %s: %v", asset.DeleteHandle, story.ID.Hex(), err)
			}
		}
	}

	deleted, err := l.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	metrics.StoriesPurged.Add(float64(deleted))
	return int(deleted), nil
}

// OwnerStories is one user's group of active stories.
type OwnerStories struct {
	OwnerID string               `json:"owner_id"`
	Stories []models.ContentItem `json:"stories"`
	// HasViewed is true when the requesting viewer has seen any story in
	// the group.
	HasViewed bool `json:"has_viewed"`

	latest time.Time
}

// ListActiveGroupedByOwner purges opportunistically, then returns the
// remaining active stories grouped by owner. Groups are ordered by their most
// recent story, newest group first; stories within a group are oldest-first
// for chronological viewing. The flat list is also returned, oldest-first.
func (l *Lifecycle) ListActiveGroupedByOwner(ctx context.Context, viewerID string) ([]OwnerStories, []models.ContentItem, error) {
	// Read-path cleanup bounds the staleness readers can observe. The active
	// filter below excludes expired rows anyway, so a failed purge only
	// delays deletion.
	if _, err := l.PurgeExpired(ctx); err != nil {
		log.Printf("stories: opportunistic purge failed: %v", err)
	}

	active, err := l.repo.ListActive(ctx, l.now())
	if err != nil {
		return nil, nil, err
	}

	byOwner := make(map[string]*OwnerStories)
	order := make([]string, 0)
	for _, story := range active {
		group, ok := byOwner[story.OwnerID]
		if !ok {
			group = &OwnerStories{OwnerID: story.OwnerID}
			byOwner[story.OwnerID] = group
			order = append(order, story.OwnerID)
		}
		group.Stories = append(group.Stories, story)
		if story.CreatedAt.After(group.latest) {
			group.latest = story.CreatedAt
		}
		if viewerID != "" && story.ViewedBy(viewerID) {
			group.HasViewed = true
		}
	}

	groups := make([]OwnerStories, 0, len(byOwner))
	for _, ownerID := range order {
		group := byOwner[ownerID]
		sort.Slice(group.Stories, func(i, j int) bool {
			return group.Stories[i].CreatedAt.Before(group.Stories[j].CreatedAt)
		})
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].latest.After(groups[j].latest)
	})

	return groups, active, nil
}
