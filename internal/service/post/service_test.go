package post

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
	"github.com/MetehanCam/real-estate-social-app/internal/repository/memory"
	"github.com/MetehanCam/real-estate-social-app/pkg/config"
)

type recordingPublisher struct {
	events []domain.TimelineEvent
}

func (r *recordingPublisher) Publish(evt domain.TimelineEvent) {
	r.events = append(r.events, evt)
}

func newTestService(t *testing.T) (Service, *memory.Repository, *recordingPublisher, *domain.User, *domain.User) {
	t.Helper()
	repo := memory.New()
	now := time.Now().UTC()
	alice := &domain.User{ID: "alice", Email: "alice@example.com", FullName: "Alice", CreatedAt: now}
	bob := &domain.User{ID: "bob", Email: "bob@example.com", FullName: "Bob", CreatedAt: now}
	for _, u := range []*domain.User{alice, bob} {
		if err := repo.CreateUser(context.Background(), u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	events := &recordingPublisher{}
	cfg := config.APIConfig{MaxPostLength: 280}
	svc := New(repo, events, slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
	return svc, repo, events, alice, bob
}

func TestCreateTrimsAndPublishes(t *testing.T) {
	svc, repo, events, alice, _ := newTestService(t)

	post, err := svc.Create(context.Background(), alice, CreateInput{Content: "  Open house Sunday  ", Image: "https://img.example.com/a.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Content != "Open house Sunday" {
		t.Fatalf("expected trimmed content, got %q", post.Content)
	}
	if post.Author.FullName != "Alice" {
		t.Fatalf("expected author summary, got %+v", post.Author)
	}
	if post.Likes == nil || post.Comments == nil {
		t.Fatalf("expected empty collections, got nil")
	}
	if _, err := repo.GetPost(context.Background(), post.ID); err != nil {
		t.Fatalf("expected post stored: %v", err)
	}
	if len(events.events) != 1 || events.events[0].Type != domain.EventPostCreated {
		t.Fatalf("expected created event, got %+v", events.events)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, events, alice, _ := newTestService(t)
	cases := map[string]CreateInput{
		"empty":     {Content: "   "},
		"too long":  {Content: strings.Repeat("a", 281)},
		"bad image": {Content: "ok", Image: "javascript:alert(1)"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), alice, in); !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(events.events) != 0 {
		t.Fatalf("expected no events, got %d", len(events.events))
	}
}

func TestCreateAllowsExactLimitInRunes(t *testing.T) {
	svc, _, _, alice, _ := newTestService(t)
	if _, err := svc.Create(context.Background(), alice, CreateInput{Content: strings.Repeat("é", 280)}); err != nil {
		t.Fatalf("expected 280 runes accepted, got %v", err)
	}
}

func TestDeleteByNonAuthorIsForbidden(t *testing.T) {
	svc, repo, events, alice, bob := newTestService(t)
	ctx := context.Background()
	post, err := svc.Create(ctx, alice, CreateInput{Content: "Condo for rent"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if CanDelete(post, bob) {
		t.Fatalf("expected bob not to own the post")
	}
	if err := svc.Delete(ctx, post.ID, bob); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	stored, err := repo.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("expected post to survive: %v", err)
	}
	if stored.Content != post.Content {
		t.Fatalf("post changed: %+v", stored)
	}
	if len(events.events) != 1 {
		t.Fatalf("expected only the create event, got %d", len(events.events))
	}
}

func TestDeleteByAuthor(t *testing.T) {
	svc, repo, events, alice, _ := newTestService(t)
	ctx := context.Background()
	post, err := svc.Create(ctx, alice, CreateInput{Content: "Sold!"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, post.ID, alice); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetPost(ctx, post.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if last := events.events[len(events.events)-1]; last.Type != domain.EventPostDeleted {
		t.Fatalf("expected delete event, got %s", last.Type)
	}
	if err := svc.Delete(ctx, post.ID, alice); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
