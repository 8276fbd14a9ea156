package stories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/repositories"
)

type recordingDeleter struct {
	deleted []string
}

func (d *recordingDeleter) Delete(ctx context.Context, handle string) error {
	d.deleted = append(d.deleted, handle)
	return nil
}

type failingDeleter struct {
	calls int
}

func (d *failingDeleter) Delete(ctx context.Context, handle string) error {
	d.calls++
	return errors.New("storage backend unavailable")
}

func newTestLifecycle(start time.Time) (*Lifecycle, *repositories.MemoryStoryRepository, *recordingDeleter, *time.Time) {
	repo := repositories.NewMemoryStoryRepository()
	deleter := &recordingDeleter{}
	now := start
	l := NewLifecycle(repo, deleter)
	l.now = func() time.Time { return now }
	return l, repo, deleter, &now
}

func TestCreateSetsExpiry(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l, _, _, _ := newTestLifecycle(base)

	story, err := l.Create(context.Background(), "1", models.MediaAsset{URL: "u", Type: "image"}, "hello")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !story.ExpiresAt.Equal(base.Add(models.StoryTTL)) {
		t.Fatalf("expires_at = %v, want creation + 24h", story.ExpiresAt)
	}
	if !story.IsActive {
		t.Fatal("new story not active")
	}
	if story.Kind != models.KindStory {
		t.Fatalf("kind = %q, want story", story.Kind)
	}
}

func TestDeactivateOwnerOnly(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l, repo, _, _ := newTestLifecycle(base)
	ctx := context.Background()

	story, err := l.Create(ctx, "1", models.MediaAsset{URL: "u", Type: "image"}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := l.Deactivate(ctx, story.ID.Hex(), "2"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("non-owner deactivate: got %v, want ErrForbidden", err)
	}

	if err := l.Deactivate(ctx, story.ID.Hex(), "1"); err != nil {
		t.Fatalf("owner deactivate: %v", err)
	}
	stored, err := repo.GetByID(ctx, story.ID.Hex())
	if err != nil {
		t.Fatalf("get story: %v", err)
	}
	if stored.IsActive {
		t.Fatal("story still active after deactivation")
	}
}

func TestPurgeExpiredDeletesMediaAndRecords(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l, repo, deleter, now := newTestLifecycle(base)
	ctx := context.Background()

	story, err := l.Create(ctx, "1", models.MediaAsset{URL: "u", Type: "image", DeleteHandle: "media/abc.jpg"}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Still inside the 24-hour window: nothing eligible.
	*now = base.Add(23*time.Hour + 59*time.Minute)
	count, err := l.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("early purge: %v", err)
	}
	if count != 0 {
		t.Fatalf("early purge removed %d stories, want 0", count)
	}
	active, err := repo.ListActive(ctx, *now)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("got %d active stories before expiry, want 1", len(active))
	}

	// Past expiry: the story and its media go away.
	*now = base.Add(24*time.Hour + time.Minute)
	count, err = l.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if count != 1 {
		t.Fatalf("purged %d stories, want 1", count)
	}
	if len(deleter.deleted) != 1 || deleter.deleted[0] != "media/abc.jpg" {
		t.Fatalf("media deletions = %v, want the story's handle once", deleter.deleted)
	}
	if _, err := repo.GetByID(ctx, story.ID.Hex()); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("story still present after purge: %v", err)
	}

	// Idempotent: a second run finds nothing.
	count, err = l.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("second purge: %v", err)
	}
	if count != 0 {
		t.Fatalf("second purge removed %d stories, want 0", count)
	}
	if len(deleter.deleted) != 1 {
		t.Fatalf("media deleted %d times, want 1", len(deleter.deleted))
	}
}

func TestPurgeProceedsWhenMediaDeleteFails(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := repositories.NewMemoryStoryRepository()
	deleter := &failingDeleter{}
	now := base
	l := NewLifecycle(repo, deleter)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	story, err := l.Create(ctx, "1", models.MediaAsset{URL: "u", Type: "image", DeleteHandle: "media/abc.jpg"}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	now = base.Add(24*time.Hour + time.Minute)
	count, err := l.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge with failing deleter: %v", err)
	}
	if count != 1 {
		t.Fatalf("purged %d stories with failing deleter, want 1", count)
	}
	if deleter.calls != 1 {
		t.Fatalf("deleter called %d times, want 1", deleter.calls)
	}
	// The record goes away even though the media deletion failed.
	if _, err := repo.GetByID(ctx, story.ID.Hex()); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("story still present after purge: %v", err)
	}
}

func TestPurgeBoundaryIsInclusive(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l, _, _, now := newTestLifecycle(base)
	ctx := context.Background()

	if _, err := l.Create(ctx, "1", models.MediaAsset{URL: "u", Type: "image"}, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	*now = base.Add(models.StoryTTL) // exactly at expires_at
	count, err := l.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if count != 1 {
		t.Fatalf("purged %d stories at the exact expiry instant, want 1", count)
	}
}

func TestPurgeRemovesDeactivatedStories(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l, _, _, _ := newTestLifecycle(base)
	ctx := context.Background()

	story, err := l.Create(ctx, "1", models.MediaAsset{URL: "u", Type: "image"}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := l.Deactivate(ctx, story.ID.Hex(), "1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	count, err := l.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if count != 1 {
		t.Fatalf("purged %d stories, want the deactivated one", count)
	}
}

func TestListActiveGroupedByOwner(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l, repo, _, now := newTestLifecycle(base)
	ctx := context.Background()

	mkStory := func(owner string, at time.Time) *models.ContentItem {
		*now = at
		story, err := l.Create(ctx, owner, models.MediaAsset{URL: "u", Type: "image"}, "")
		if err != nil {
			t.Fatalf("create for %s: %v", owner, err)
		}
		return story
	}

	aliceOld := mkStory("1", base)
	mkStory("2", base.Add(time.Hour))
	aliceNew := mkStory("1", base.Add(2*time.Hour))

	// Viewer 9 has seen only Alice's older story.
	if _, err := repo.AppendViewOnce(ctx, aliceOld.ID.Hex(), models.View{ViewerID: "9", ViewedAt: *now}); err != nil {
		t.Fatalf("append view: %v", err)
	}

	*now = base.Add(3 * time.Hour)
	groups, flat, err := l.ListActiveGroupedByOwner(ctx, "9")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	// Alice's newest story is the most recent overall, so her group leads.
	if groups[0].OwnerID != "1" || groups[1].OwnerID != "2" {
		t.Fatalf("group order = [%s %s], want [1 2]", groups[0].OwnerID, groups[1].OwnerID)
	}
	if !groups[0].HasViewed {
		t.Fatal("viewer 9 saw one of Alice's stories, HasViewed should be true")
	}
	if groups[1].HasViewed {
		t.Fatal("viewer 9 never saw Bob's story, HasViewed should be false")
	}
	// Within a group stories run oldest first.
	if len(groups[0].Stories) != 2 || groups[0].Stories[0].ID != aliceOld.ID || groups[0].Stories[1].ID != aliceNew.ID {
		t.Fatalf("unexpected story order in group: %+v", groups[0].Stories)
	}
	if len(flat) != 3 {
		t.Fatalf("got %d flat stories, want 3", len(flat))
	}
}
