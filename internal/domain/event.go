package domain

import "time"

// Timeline event types.
const (
	EventPostCreated  = "post.created"
	EventPostDeleted  = "post.deleted"
	EventPostLiked    = "post.liked"
	EventPostUnliked  = "post.unliked"
	EventCommentAdded = "comment.added"
)

// TimelineEvent is pushed to live timeline subscribers after a mutation.
type TimelineEvent struct {
	Type       string    `json:"type"`
	PostID     string    `json:"postId"`
	ActorID    string    `json:"actorId"`
	Post       *Post     `json:"post,omitempty"`
	Comment    *Comment  `json:"comment,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
