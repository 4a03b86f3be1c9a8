package model

import "time"

type ChatRoom struct {
	ID             int64         `json:"id"`
	UUID           string        `json:"uuid"`
	Name           string        `json:"name"`
	CreatedBy      int64         `json:"createdBy"`
	Members        []UserSummary `json:"members,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	LastMessagedAt *time.Time    `json:"lastMessagedAt,omitempty"`
}

type Message struct {
	ID        int64        `json:"id"`
	UUID      string       `json:"uuid"`
	RoomID    int64        `json:"roomId"`
	AuthorID  int64        `json:"authorId"`
	Author    *UserSummary `json:"author,omitempty"`
	Text      *string      `json:"text,omitempty"`
	PostID    *int64       `json:"postId,omitempty"`
	Image     *string      `json:"image,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
