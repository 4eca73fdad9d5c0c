package repository

import (
	"context"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
)

// UserRepository persists users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
}

// PostRepository persists posts together with their likes and comments.
//
// ToggleLike and AddComment must be atomic per post: concurrent calls on the
// same post never lose each other's writes.
type PostRepository interface {
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context) ([]domain.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID string) ([]domain.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) (*domain.Post, bool, error)
	AddComment(ctx context.Context, comment *domain.Comment) error
}
