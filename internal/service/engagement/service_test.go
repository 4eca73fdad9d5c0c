package engagement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
	"github.com/MetehanCam/real-estate-social-app/internal/repository/memory"
	"github.com/MetehanCam/real-estate-social-app/pkg/config"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.TimelineEvent
}

func (r *recordingPublisher) Publish(evt domain.TimelineEvent) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

func setup(t *testing.T) (Service, *recordingPublisher) {
	t.Helper()
	svc, events, _ := setupWithRepo(t)
	return svc, events
}

func setupWithRepo(t *testing.T) (Service, *recordingPublisher, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	ctx := context.Background()
	now := time.Now().UTC()
	for _, id := range []string{"alice", "bob"} {
		if err := repo.CreateUser(ctx, &domain.User{ID: id, Email: id + "@example.com", FullName: id, CreatedAt: now}); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	if err := repo.CreatePost(ctx, &domain.Post{ID: "p1", AuthorID: "alice", Content: "Lake house", CreatedAt: now}); err != nil {
		t.Fatalf("seed post: %v", err)
	}
	events := &recordingPublisher{}
	svc := New(repo, events, slog.New(slog.NewTextHandler(io.Discard, nil)), config.APIConfig{MaxCommentLength: 500})
	return svc, events, repo
}

func TestToggleLikeRoundTrip(t *testing.T) {
	svc, events := setup(t)
	ctx := context.Background()

	post, liked, err := svc.ToggleLike(ctx, "p1", "bob")
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !liked || !post.LikedBy("bob") {
		t.Fatalf("expected bob to like the post: %+v", post.Likes)
	}

	post, liked, err = svc.ToggleLike(ctx, "p1", "bob")
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if liked || len(post.Likes) != 0 {
		t.Fatalf("expected like set restored, got %v", post.Likes)
	}

	if len(events.events) != 2 || events.events[0].Type != domain.EventPostLiked || events.events[1].Type != domain.EventPostUnliked {
		t.Fatalf("unexpected events: %+v", events.events)
	}
}

func TestConcurrentTogglesFromTwoUsersBothPersist(t *testing.T) {
	svc, events, repo := setupWithRepo(t)
	ctx := context.Background()

	// Each user toggles an odd number of times, racing the other.
	const rounds = 7
	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	for _, userID := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if _, _, err := svc.ToggleLike(ctx, "p1", userID); err != nil {
					errs <- err
				}
			}
		}(userID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("toggle: %v", err)
	}

	post, err := repo.GetPost(ctx, "p1")
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if len(post.Likes) != 2 || !post.LikedBy("alice") || !post.LikedBy("bob") {
		t.Fatalf("expected both likes to persist, got %v", post.Likes)
	}
	events.mu.Lock()
	defer events.mu.Unlock()
	if len(events.events) != 2*rounds {
		t.Fatalf("expected %d events, got %d", 2*rounds, len(events.events))
	}
}

func TestToggleLikeMissingPost(t *testing.T) {
	svc, events := setup(t)
	if _, _, err := svc.ToggleLike(context.Background(), "nope", "bob"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(events.events) != 0 {
		t.Fatalf("expected no events")
	}
}

func TestAddComment(t *testing.T) {
	svc, events := setup(t)
	ctx := context.Background()

	comment, err := svc.AddComment(ctx, "p1", "bob", "  Is the dock private? ")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if comment.ID == "" || comment.Content != "Is the dock private?" || comment.Author.ID != "bob" {
		t.Fatalf("unexpected comment: %+v", comment)
	}
	if len(events.events) != 1 || events.events[0].Comment == nil {
		t.Fatalf("expected comment event, got %+v", events.events)
	}

	if _, err := svc.AddComment(ctx, "p1", "bob", "  "); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for blank comment, got %v", err)
	}
	if _, err := svc.AddComment(ctx, "p1", "bob", strings.Repeat("x", 501)); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for long comment, got %v", err)
	}
	if _, err := svc.AddComment(ctx, "missing", "bob", "hello"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
