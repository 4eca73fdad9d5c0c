package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
	"github.com/MetehanCam/real-estate-social-app/internal/repository/memory"
)

func strPtr(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	if err := repo.CreateUser(ctx, &domain.User{ID: "u1", Email: "u1@example.com", FullName: "Old Name", Bio: "keep me", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := New(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	user, err := svc.UpdateProfile(ctx, "u1", domain.ProfileUpdate{FullName: strPtr("  New Name "), Location: strPtr("Austin, TX")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if user.FullName != "New Name" || user.Location != "Austin, TX" || user.Bio != "keep me" {
		t.Fatalf("unexpected profile: %+v", user)
	}

	if _, err := svc.UpdateProfile(ctx, "u1", domain.ProfileUpdate{FullName: strPtr("   ")}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "ghost", domain.ProfileUpdate{Bio: strPtr("x")}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAndGet(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	base := time.Now().UTC()
	_ = repo.CreateUser(ctx, &domain.User{ID: "old", Email: "old@example.com", CreatedAt: base.Add(-time.Hour)})
	_ = repo.CreateUser(ctx, &domain.User{ID: "new", Email: "new@example.com", CreatedAt: base})
	svc := New(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	users, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 || users[0].ID != "new" {
		t.Fatalf("expected newest first, got %+v", users)
	}
	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
