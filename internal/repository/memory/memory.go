// Package memory provides an in-process implementation of the repository
// interfaces for local runs and tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
)

// Repository stores users and posts in memory. All methods return copies.
type Repository struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	byEmail map[string]string
	posts   map[string]*domain.Post
	now     func() time.Time
}

var (
	_ repository.UserRepository = (*Repository)(nil)
	_ repository.PostRepository = (*Repository)(nil)
)

// New constructs an empty Repository.
func New() *Repository {
	return &Repository{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
		posts:   make(map[string]*domain.Post),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser stores a user. Emails are unique.
func (r *Repository) CreateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrConflict
	}
	stored := *user
	stored.PasswordHash = slices.Clone(user.PasswordHash)
	r.users[user.ID] = stored
	r.byEmail[user.Email] = user.ID
	return nil
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.users[id]
	return &u, nil
}

// GetUserByID fetches a user by id.
func (r *Repository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// ListUsers returns users newest first.
func (r *Repository) ListUsers(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	slices.SortStableFunc(users, func(a, b domain.User) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return users, nil
}

// UpdateProfile applies the provided fields to the stored user.
func (r *Repository) UpdateProfile(_ context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !update.Empty() {
		update.Apply(&u)
		u.UpdatedAt = r.now()
		r.users[id] = u
		r.refreshAuthor(u)
	}
	return &u, nil
}

// refreshAuthor rewrites the embedded author summaries after a profile change.
// Callers hold the write lock.
func (r *Repository) refreshAuthor(u domain.User) {
	summary := u.Summary()
	for _, p := range r.posts {
		if p.AuthorID == u.ID {
			p.Author = summary
		}
		for i := range p.Comments {
			if p.Comments[i].AuthorID == u.ID {
				p.Comments[i].Author = summary
			}
		}
	}
}

// CreatePost stores a post with the author summary resolved.
func (r *Repository) CreatePost(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	author, ok := r.users[post.AuthorID]
	if !ok {
		return repository.ErrNotFound
	}
	if _, exists := r.posts[post.ID]; exists {
		return repository.ErrConflict
	}
	stored := post.Clone()
	stored.Author = author.Summary()
	stored.Normalize()
	r.posts[post.ID] = &stored
	return nil
}

// GetPost fetches a post by id.
func (r *Repository) GetPost(_ context.Context, id string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := p.Clone()
	return &out, nil
}

// DeletePost removes a post together with its likes and comments.
func (r *Repository) DeletePost(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

// ListPosts returns all posts newest first.
func (r *Repository) ListPosts(_ context.Context) ([]domain.Post, error) {
	return r.filter(func(*domain.Post) bool { return true }), nil
}

// ListPostsByAuthor returns the author's posts newest first.
func (r *Repository) ListPostsByAuthor(_ context.Context, authorID string) ([]domain.Post, error) {
	return r.filter(func(p *domain.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *Repository) filter(keep func(*domain.Post) bool) []domain.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()
	posts := make([]domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if keep(p) {
			posts = append(posts, p.Clone())
		}
	}
	domain.SortNewestFirst(posts)
	return posts
}

// ToggleLike adds userID to the like set, or removes it when already present.
func (r *Repository) ToggleLike(_ context.Context, postID, userID string) (*domain.Post, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	liked := false
	if i := slices.Index(p.Likes, userID); i >= 0 {
		p.Likes = slices.Delete(p.Likes, i, i+1)
	} else {
		p.Likes = append(p.Likes, userID)
		liked = true
	}
	out := p.Clone()
	return &out, liked, nil
}

// AddComment appends a comment and fills in its author summary.
func (r *Repository) AddComment(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[comment.PostID]
	if !ok {
		return repository.ErrNotFound
	}
	author, ok := r.users[comment.AuthorID]
	if !ok {
		return repository.ErrNotFound
	}
	comment.Author = author.Summary()
	p.Comments = append(p.Comments, *comment)
	return nil
}

// Ping always succeeds.
func (r *Repository) Ping(context.Context) error { return nil }
