package engagement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
	"github.com/MetehanCam/real-estate-social-app/internal/service/feed"
	"github.com/MetehanCam/real-estate-social-app/pkg/config"
)

// Service applies likes and comments to existing posts.
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

// ToggleLike likes the post for userID, or removes the like if present.
// It returns the updated post and whether the user now likes it.
func (s Service) ToggleLike(ctx context.Context, postID, userID string) (*domain.Post, bool, error) {
	post, liked, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, false, err
	}
	post.Normalize()
	eventType := domain.EventPostUnliked
	if liked {
		eventType = domain.EventPostLiked
	}
	s.logger.Debug("like toggled", "post_id", postID, "user_id", userID, "liked", liked)
	snapshot := post.Clone()
	s.events.Publish(domain.TimelineEvent{
		Type:       eventType,
		PostID:     postID,
		ActorID:    userID,
		Post:       &snapshot,
		OccurredAt: s.now(),
	})
	return post, liked, nil
}

// AddComment appends a comment by authorID to postID.
func (s Service) AddComment(ctx context.Context, postID, authorID, content string) (*domain.Comment, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return nil, domain.Invalid("content", "is required")
	}
	if limit := s.cfg.MaxCommentLength; limit > 0 && utf8.RuneCountInString(text) > limit {
		return nil, domain.Invalid("content", fmt.Sprintf("must be at most %d characters", limit))
	}
	comment := &domain.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   text,
		CreatedAt: s.now(),
	}
	if err := s.posts.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	s.logger.Info("comment added", "post_id", postID, "user_id", authorID, "comment_id", comment.ID)
	snapshot := *comment
	s.events.Publish(domain.TimelineEvent{
		Type:       domain.EventCommentAdded,
		PostID:     postID,
		ActorID:    authorID,
		Comment:    &snapshot,
		OccurredAt: comment.CreatedAt,
	})
	return comment, nil
}
