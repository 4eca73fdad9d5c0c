package feed

import (
	"context"
	"log/slog"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
)

// Publisher receives timeline events after successful mutations.
type Publisher interface {
	Publish(domain.TimelineEvent)
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(domain.TimelineEvent) {}

// Service serves read views over posts.
type Service struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(posts repository.PostRepository, users repository.UserRepository, logger *slog.Logger) Service {
	return Service{posts: posts, users: users, logger: logger}
}

// Timeline returns every post, newest first.
func (s Service) Timeline(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	return normalized(posts), nil
}

// ByAuthor returns one author's posts, newest first. An unknown author
// yields repository.ErrNotFound.
func (s Service) ByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	if _, err := s.users.GetUserByID(ctx, authorID); err != nil {
		return nil, err
	}
	posts, err := s.posts.ListPostsByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return normalized(posts), nil
}

// Get returns a single post.
func (s Service) Get(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Normalize()
	return post, nil
}

func normalized(posts []domain.Post) []domain.Post {
	if posts == nil {
		return []domain.Post{}
	}
	for i := range posts {
		posts[i].Normalize()
	}
	domain.SortNewestFirst(posts)
	return posts
}
