package post

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
	"github.com/MetehanCam/real-estate-social-app/internal/service/feed"
	"github.com/MetehanCam/real-estate-social-app/pkg/config"
)

// CreateInput holds the fields of a new post.
type CreateInput struct {
	Content string
	Image   string
}

// Service creates and deletes posts and enforces ownership.
type Service struct {
	posts  repository.PostRepository
	events feed.Publisher
	logger *slog.Logger
	cfg    config.APIConfig
	now    func() time.Time
}

// New constructs a Service. A nil publisher discards events.
func New(posts repository.PostRepository, events feed.Publisher, logger *slog.Logger, cfg config.APIConfig) Service {
	if events == nil {
		events = feed.NopPublisher{}
	}
	return Service{posts: posts, events: events, logger: logger, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// Create publishes a new post by author.
func (s Service) Create(ctx context.Context, author *domain.User, input CreateInput) (*domain.Post, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, domain.Invalid("content", "is required")
	}
	if limit := s.cfg.MaxPostLength; limit > 0 && utf8.RuneCountInString(content) > limit {
		return nil, domain.Invalid("content", fmt.Sprintf("must be at most %d characters", limit))
	}
	image := strings.TrimSpace(input.Image)
	if image != "" && !validImageURL(image) {
		return nil, domain.Invalid("image", "must be an http or https URL")
	}

	post := &domain.Post{
		ID:        uuid.NewString(),
		AuthorID:  author.ID,
		Author:    author.Summary(),
		Content:   content,
		Image:     image,
		CreatedAt: s.now(),
	}
	post.Normalize()
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Info("post created", "post_id", post.ID, "user_id", author.ID)
	snapshot := post.Clone()
	s.events.Publish(domain.TimelineEvent{
		Type:       domain.EventPostCreated,
		PostID:     post.ID,
		ActorID:    author.ID,
		Post:       &snapshot,
		OccurredAt: post.CreatedAt,
	})
	return post, nil
}

// CanDelete reports whether requester owns post.
func CanDelete(post *domain.Post, requester *domain.User) bool {
	return post != nil && requester != nil && post.AuthorID == requester.ID
}

// Delete removes postID when requester is its author. Other callers get
// domain.ErrForbidden and the post is left untouched.
func (s Service) Delete(ctx context.Context, postID string, requester *domain.User) error {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if !CanDelete(post, requester) {
		s.logger.Warn("post delete forbidden", "post_id", postID, "user_id", requester.ID)
		return domain.ErrForbidden
	}
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return err
	}
	s.logger.Info("post deleted", "post_id", postID, "user_id", requester.ID)
	s.events.Publish(domain.TimelineEvent{
		Type:       domain.EventPostDeleted,
		PostID:     postID,
		ActorID:    requester.ID,
		OccurredAt: s.now(),
	})
	return nil
}

func validImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
