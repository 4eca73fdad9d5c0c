package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
)

const postSelect = `SELECT p.id, p.author_id, p.content, p.image, p.created_at,
		u.username, u.full_name, u.avatar
	FROM posts p
	INNER JOIN users u ON u.id = p.author_id`

// CreatePost inserts a post. Likes and comments start empty.
func (r *Repository) CreatePost(ctx context.Context, post *domain.Post) error {
	const query = `INSERT INTO posts (id, author_id, content, image, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.pool.Exec(ctx, query, post.ID, post.AuthorID, post.Content, post.Image, post.CreatedAt); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// GetPost loads a post with its likes and comments.
func (r *Repository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	return getPost(ctx, r.pool, id)
}

// DeletePost removes a post; likes and comments cascade.
func (r *Repository) DeletePost(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListPosts returns every post, newest first.
func (r *Repository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return listPosts(ctx, r.pool, postSelect+` ORDER BY p.created_at DESC, p.id DESC`)
}

// ListPostsByAuthor returns the author's posts, newest first.
func (r *Repository) ListPostsByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	return listPosts(ctx, r.pool, postSelect+` WHERE p.author_id = $1 ORDER BY p.created_at DESC, p.id DESC`, authorID)
}

// ToggleLike flips userID's membership in the post's like set. The post row is
// locked for the duration so toggles on one post are serialised.
func (r *Repository) ToggleLike(ctx context.Context, postID, userID string) (*domain.Post, bool, error) {
	var (
		post  *domain.Post
		liked bool
	)
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := lockPost(ctx, tx, postID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
		if err != nil {
			return fmt.Errorf("remove like: %w", err)
		}
		if tag.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx, `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID); err != nil {
				return fmt.Errorf("add like: %w", err)
			}
			liked = true
		}
		post, err = getPost(ctx, tx, postID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return post, liked, nil
}

// AddComment appends a comment to an existing post.
func (r *Repository) AddComment(ctx context.Context, comment *domain.Comment) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := lockPost(ctx, tx, comment.PostID); err != nil {
			return err
		}
		const query = `INSERT INTO post_comments (id, post_id, author_id, content, created_at) VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.Exec(ctx, query, comment.ID, comment.PostID, comment.AuthorID, comment.Content, comment.CreatedAt); err != nil {
			return fmt.Errorf("add comment: %w", err)
		}
		const author = `SELECT username, full_name, avatar FROM users WHERE id = $1`
		comment.Author.ID = comment.AuthorID
		if err := tx.QueryRow(ctx, author, comment.AuthorID).Scan(&comment.Author.Username, &comment.Author.FullName, &comment.Author.Avatar); err != nil {
			return fmt.Errorf("load comment author: %w", err)
		}
		return nil
	})
}

func lockPost(ctx context.Context, q querier, postID string) error {
	var id string
	if err := q.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("lock post: %w", err)
	}
	return nil
}

func getPost(ctx context.Context, q querier, id string) (*domain.Post, error) {
	posts, err := listPosts(ctx, q, postSelect+` WHERE p.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, repository.ErrNotFound
	}
	return &posts[0], nil
}

func listPosts(ctx context.Context, q querier, query string, args ...any) ([]domain.Post, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	index := make(map[string]int)
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.Image, &p.CreatedAt, &p.Author.Username, &p.Author.FullName, &p.Author.Avatar); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Author.ID = p.AuthorID
		p.Normalize()
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	if len(posts) == 0 {
		return posts, nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	if err := attachLikes(ctx, q, ids, posts, index); err != nil {
		return nil, err
	}
	if err := attachComments(ctx, q, ids, posts, index); err != nil {
		return nil, err
	}
	return posts, nil
}

func attachLikes(ctx context.Context, q querier, ids []string, posts []domain.Post, index map[string]int) error {
	rows, err := q.Query(ctx, `SELECT post_id, user_id FROM post_likes WHERE post_id = ANY($1) ORDER BY seq`, ids)
	if err != nil {
		return fmt.Errorf("list likes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var postID, userID string
		if err := rows.Scan(&postID, &userID); err != nil {
			return fmt.Errorf("scan like: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Likes = append(posts[i].Likes, userID)
		}
	}
	return rows.Err()
}

func attachComments(ctx context.Context, q querier, ids []string, posts []domain.Post, index map[string]int) error {
	const query = `SELECT c.id, c.post_id, c.author_id, c.content, c.created_at,
			u.username, u.full_name, u.avatar
		FROM post_comments c
		INNER JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.seq`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.Author.Username, &c.Author.FullName, &c.Author.Avatar); err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}
		c.Author.ID = c.AuthorID
		if i, ok := index[c.PostID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
	}
	return rows.Err()
}
