package engagement

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/repositories"
)

type emittedEvent struct {
	recipientID string
	actorID     string
	kind        string
	subjectID   string
	message     string
}

type recordingNotifier struct {
	events []emittedEvent
}

func (n *recordingNotifier) Emit(ctx context.Context, recipientID, actorID, kind, subjectID, message string) error {
	n.events = append(n.events, emittedEvent{recipientID, actorID, kind, subjectID, message})
	return nil
}

type failingNotifier struct {
	calls int
}

func (n *failingNotifier) Emit(ctx context.Context, recipientID, actorID, kind, subjectID, message string) error {
	n.calls++
	return errors.New("notification backend unavailable")
}

func newTestLedger() (*Ledger, *repositories.MemoryContentRepository, *repositories.MemoryStoryRepository, *recordingNotifier) {
	posts := repositories.NewMemoryContentRepository(models.KindPost)
	reels := repositories.NewMemoryContentRepository(models.KindReel)
	stories := repositories.NewMemoryStoryRepository()
	notifier := &recordingNotifier{}
	return NewLedger(posts, reels, stories, notifier), posts, stories, notifier
}

func insertPost(t *testing.T, repo *repositories.MemoryContentRepository, ownerID string) string {
	t.Helper()
	post := &models.ContentItem{OwnerID: ownerID, CreatedAt: time.Now()}
	if err := repo.Insert(context.Background(), post); err != nil {
		t.Fatalf("insert post: %v", err)
	}
	return post.ID.Hex()
}

func insertStory(t *testing.T, repo *repositories.MemoryStoryRepository, ownerID string, createdAt time.Time) string {
	t.Helper()
	story := &models.ContentItem{
		OwnerID:   ownerID,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(models.StoryTTL),
		IsActive:  true,
	}
	if err := repo.Insert(context.Background(), story); err != nil {
		t.Fatalf("insert story: %v", err)
	}
	return story.ID.Hex()
}

func TestToggleLikeFlipsMembership(t *testing.T) {
	ledger, posts, _, _ := newTestLedger()
	ctx := context.Background()
	postID := insertPost(t, posts, "1")

	liked, count, err := ledger.ToggleLike(ctx, models.KindPost, postID, "2")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !liked || count != 1 {
		t.Fatalf("first toggle: got liked=%v count=%d, want true 1", liked, count)
	}

	liked, count, err = ledger.ToggleLike(ctx, models.KindPost, postID, "2")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if liked || count != 0 {
		t.Fatalf("second toggle: got liked=%v count=%d, want false 0", liked, count)
	}

	item, err := posts.GetByID(ctx, postID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if item.LikedBy("2") {
		t.Fatal("like set still contains user after unlike")
	}
}

func TestToggleLikeNotifiesOnLikeOnly(t *testing.T) {
	ledger, posts, _, notifier := newTestLedger()
	ctx := context.Background()
	postID := insertPost(t, posts, "1")

	if _, _, err := ledger.ToggleLike(ctx, models.KindPost, postID, "2"); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, _, err := ledger.ToggleLike(ctx, models.KindPost, postID, "2"); err != nil {
		t.Fatalf("unlike: %v", err)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("got %d notification events, want 1", len(notifier.events))
	}
	event := notifier.events[0]
	if event.recipientID != "1" || event.actorID != "2" || event.kind != models.NotificationLike {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.message != "liked your post" {
		t.Fatalf("unexpected message: %q", event.message)
	}
}

func TestMutationsSurviveNotifierFailure(t *testing.T) {
	posts := repositories.NewMemoryContentRepository(models.KindPost)
	reels := repositories.NewMemoryContentRepository(models.KindReel)
	stories := repositories.NewMemoryStoryRepository()
	notifier := &failingNotifier{}
	ledger := NewLedger(posts, reels, stories, notifier)
	ctx := context.Background()
	postID := insertPost(t, posts, "1")

	liked, count, err := ledger.ToggleLike(ctx, models.KindPost, postID, "2")
	if err != nil {
		t.Fatalf("like with failing notifier: %v", err)
	}
	if !liked || count != 1 {
		t.Fatalf("like with failing notifier: got liked=%v count=%d, want true 1", liked, count)
	}

	if _, count, err = ledger.AddComment(ctx, models.KindPost, postID, "2", "still works"); err != nil {
		t.Fatalf("comment with failing notifier: %v", err)
	} else if count != 1 {
		t.Fatalf("comment with failing notifier: got count %d, want 1", count)
	}

	// The mutations landed despite both emissions failing.
	item, err := posts.GetByID(ctx, postID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if !item.LikedBy("2") {
		t.Fatal("like missing after notifier failure")
	}
	if len(item.Comments) != 1 {
		t.Fatalf("got %d comments after notifier failure, want 1", len(item.Comments))
	}
	if notifier.calls != 2 {
		t.Fatalf("notifier called %d times, want 2", notifier.calls)
	}
}

func TestToggleLikeUnknownContent(t *testing.T) {
	ledger, _, _, _ := newTestLedger()

	_, _, err := ledger.ToggleLike(context.Background(), models.KindPost, "missing", "2")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestAddComment(t *testing.T) {
	ledger, posts, _, notifier := newTestLedger()
	ctx := context.Background()
	postID := insertPost(t, posts, "1")

	comment, count, err := ledger.AddComment(ctx, models.KindPost, postID, "2", "  nice shot  ")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if comment.Text != "nice shot" {
		t.Fatalf("comment text not trimmed: %q", comment.Text)
	}
	if comment.ID == "" {
		t.Fatal("comment has no ID")
	}
	if count != 1 {
		t.Fatalf("got count %d, want 1", count)
	}
	if len(notifier.events) != 1 || notifier.events[0].kind != models.NotificationComment {
		t.Fatalf("expected one comment notification, got %+v", notifier.events)
	}
}

func TestAddCommentLengthLimit(t *testing.T) {
	ledger, posts, _, _ := newTestLedger()
	ctx := context.Background()
	postID := insertPost(t, posts, "1")

	atLimit := strings.Repeat("é", models.MaxCommentLength)
	if _, count, err := ledger.AddComment(ctx, models.KindPost, postID, "2", atLimit); err != nil {
		t.Fatalf("comment at limit rejected: %v", err)
	} else if count != 1 {
		t.Fatalf("got count %d, want 1", count)
	}

	overLimit := strings.Repeat("é", models.MaxCommentLength+1)
	_, _, err := ledger.AddComment(ctx, models.KindPost, postID, "2", overLimit)
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("over-limit comment: got %v, want ErrInvalidArgument", err)
	}
}

func TestAddCommentEmpty(t *testing.T) {
	ledger, posts, _, _ := newTestLedger()
	postID := insertPost(t, posts, "1")

	for _, text := range []string{"", "   ", "\n\t"} {
		_, _, err := ledger.AddComment(context.Background(), models.KindPost, postID, "2", text)
		if !errors.Is(err, models.ErrInvalidArgument) {
			t.Fatalf("text %q: got %v, want ErrInvalidArgument", text, err)
		}
	}
}

func TestRecordViewPostAccumulates(t *testing.T) {
	ledger, posts, _, _ := newTestLedger()
	ctx := context.Background()
	postID := insertPost(t, posts, "1")

	var count int
	var err error
	for i := 0; i < 3; i++ {
		count, err = ledger.RecordView(ctx, models.KindPost, postID, "2")
		if err != nil {
			t.Fatalf("view %d: %v", i, err)
		}
	}
	if count != 3 {
		t.Fatalf("got count %d, want 3 (every view event counts)", count)
	}
}

func TestRecordViewStoryDedupsPerViewer(t *testing.T) {
	ledger, _, stories, _ := newTestLedger()
	ctx := context.Background()
	storyID := insertStory(t, stories, "1", time.Now())

	var count int
	var err error
	for i := 0; i < 3; i++ {
		count, err = ledger.RecordView(ctx, models.KindStory, storyID, "2")
		if err != nil {
			t.Fatalf("view %d: %v", i, err)
		}
	}
	if count != 1 {
		t.Fatalf("got count %d, want 1 (one record per viewer)", count)
	}

	count, err = ledger.RecordView(ctx, models.KindStory, storyID, "3")
	if err != nil {
		t.Fatalf("second viewer: %v", err)
	}
	if count != 2 {
		t.Fatalf("got count %d, want 2", count)
	}
}

func TestRecordViewSelfViewCounts(t *testing.T) {
	ledger, _, stories, _ := newTestLedger()
	storyID := insertStory(t, stories, "1", time.Now())

	count, err := ledger.RecordView(context.Background(), models.KindStory, storyID, "1")
	if err != nil {
		t.Fatalf("self view: %v", err)
	}
	if count != 1 {
		t.Fatalf("got count %d, want 1", count)
	}
}

func TestRecordViewExpiredStory(t *testing.T) {
	ledger, _, stories, _ := newTestLedger()
	created := time.Now().Add(-25 * time.Hour)
	storyID := insertStory(t, stories, "1", created)

	_, err := ledger.RecordView(context.Background(), models.KindStory, storyID, "2")
	if !errors.Is(err, models.ErrExpired) {
		t.Fatalf("got %v, want ErrExpired", err)
	}
}
