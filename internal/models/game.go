package model

import "time"

type Channel struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CoverImage  string    `json:"coverImage,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	Subscribers int       `json:"subscribers"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Game struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CreatorID     int64     `json:"creatorId"`
	ChannelID     int64     `json:"channelId"`
	ChannelName   string    `json:"channelName,omitempty"`
	LeaderboardID *int64    `json:"leaderboardId,omitempty"`
	Image         string    `json:"image,omitempty"`
	PinColorHex   string    `json:"pinColorHex"`
	Subscribers   int       `json:"subscribers"`
	Posts         int       `json:"posts"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PendingSubmission est un post proposé pour un game, en attente de validation
type PendingSubmission struct {
	ID            int64     `json:"id"`
	GameID        int64     `json:"gameId"`
	PostID        int64     `json:"postId"`
	CreatorPostID int64     `json:"creatorPostId"`
	ChannelID     int64     `json:"channelId"`
	Timestamp     time.Time `json:"timestamp"`
}

// Decision est le verdict d'un modérateur sur une soumission
type Decision string

const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReject Decision = "REJECT"
)
