package model

import "time"

// LeaderboardRow enregistre un événement de score (append-only)
type LeaderboardRow struct {
	ID            int64     `json:"id"`
	LeaderboardID int64     `json:"leaderboardId"`
	UserID        int64     `json:"userId"`
	Username      string    `json:"username,omitempty"`
	Points        int       `json:"points"`
	Timestamp     time.Time `json:"timestamp"`
}

// LeaderboardEntry est le total d'un utilisateur dans un classement
type LeaderboardEntry struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Image    string `json:"image,omitempty"`
	Rank     int    `json:"rank"`
	Points   int    `json:"points"`
}

// GameLeaderboard regroupe l'historique et le classement d'un game
type GameLeaderboard struct {
	GameID        int64              `json:"gameId"`
	LeaderboardID int64              `json:"leaderboardId"`
	Rows          []LeaderboardRow   `json:"rows"`
	Standings     []LeaderboardEntry `json:"standings"`
}

type UserRank struct {
	UserID     int64   `json:"userId"`
	Username   string  `json:"username"`
	Rank       int     `json:"rank"`
	Points     int     `json:"points"`
	TotalUsers int     `json:"totalUsers"`
	Percentile float64 `json:"percentile"`
}
