package domain

import (
	"slices"
	"sort"
	"time"
)

// Post is a short text update. It owns its likes and comments.
type Post struct {
	ID        string      `json:"id"`
	AuthorID  string      `json:"authorId"`
	Author    UserSummary `json:"author"`
	Content   string      `json:"content"`
	Image     string      `json:"image,omitempty"`
	Likes     []string    `json:"likes"`
	Comments  []Comment   `json:"comments"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        string      `json:"id"`
	PostID    string      `json:"postId"`
	AuthorID  string      `json:"authorId"`
	Author    UserSummary `json:"author"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

// LikedBy reports whether userID is in the like set.
func (p *Post) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

// Normalize replaces nil collections so they encode as empty JSON arrays.
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

// Clone returns a deep copy.
func (p Post) Clone() Post {
	out := p
	out.Likes = append([]string{}, p.Likes...)
	out.Comments = append([]Comment{}, p.Comments...)
	return out
}

// SortNewestFirst orders posts by creation time descending, breaking ties by
// id descending so the order is total.
func SortNewestFirst(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
