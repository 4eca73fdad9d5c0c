package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
	"github.com/MetehanCam/real-estate-social-app/internal/repository/memory"
)

func TestTimelineNewestFirst(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateUser(ctx, &domain.User{ID: "u1", Email: "u1@example.com", CreatedAt: base}))
	require.NoError(t, repo.CreateUser(ctx, &domain.User{ID: "u2", Email: "u2@example.com", CreatedAt: base}))
	for i, at := range []time.Duration{3, 1, 2} {
		author := "u1"
		if i == 1 {
			author = "u2"
		}
		require.NoError(t, repo.CreatePost(ctx, &domain.Post{ID: string(rune('a' + i)), AuthorID: author, Content: "x", CreatedAt: base.Add(at * time.Hour)}))
	}
	svc := New(repo, repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	posts, err := svc.Timeline(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for i := 1; i < len(posts); i++ {
		require.True(t, posts[i-1].CreatedAt.After(posts[i].CreatedAt), "timeline not newest first")
	}

	mine, err := svc.ByAuthor(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, "a", mine[0].ID)

	_, err = svc.ByAuthor(ctx, "ghost")
	require.True(t, errors.Is(err, repository.ErrNotFound))

	post, err := svc.Get(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, "u2", post.AuthorID)
	require.NotNil(t, post.Likes)
}

func TestTimelineEmpty(t *testing.T) {
	svc := New(memory.New(), memory.New(), nil)
	posts, err := svc.Timeline(context.Background())
	require.NoError(t, err)
	require.NotNil(t, posts)
	require.Empty(t, posts)
}
