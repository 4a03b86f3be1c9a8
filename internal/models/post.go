package model

import "time"

// PostVisibility correspond à l'état ACTIVE / HIDDEN d'un post
type PostVisibility int

const (
	PostActive PostVisibility = 0
	PostHidden PostVisibility = 1
)

// ParsePostVisibility convertit "ACTIVE" / "HIDDEN"
func ParsePostVisibility(s string) (PostVisibility, bool) {
	switch s {
	case "ACTIVE":
		return PostActive, true
	case "HIDDEN":
		return PostHidden, true
	}
	return 0, false
}

type Post struct {
	ID          int64          `json:"id"`
	AuthorID    int64          `json:"authorId"`
	Author      *UserSummary   `json:"author,omitempty"`
	Caption     string         `json:"caption"`
	GPSTag      string         `json:"gpsTag,omitempty"`
	ImageURL    string         `json:"imageUrl"`
	Upvotes     int            `json:"upvotes"`
	Views       int            `json:"views"`
	Visibility  PostVisibility `json:"visibility"`
	ChannelID   *int64         `json:"channelId,omitempty"`
	Tags        []string       `json:"tags"`
	TaggedUsers []string       `json:"taggedUsers"`
	UserUpvoted bool           `json:"userUpvoted"`
	DateCreated time.Time      `json:"dateCreated"`
}

type Comment struct {
	ID          int64        `json:"id"`
	PostID      int64        `json:"postId"`
	AuthorID    int64        `json:"authorId"`
	Author      *UserSummary `json:"author,omitempty"`
	Content     string       `json:"content"`
	ReplyTo     *int64       `json:"replyTo,omitempty"`
	DateCreated time.Time    `json:"dateCreated"`
}

type Tag struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedOn   time.Time `json:"createdOn"`
}
