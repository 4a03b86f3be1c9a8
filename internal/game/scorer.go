package game

import (
	"context"
	"fmt"
	"time"

	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

// Accepted est émis après l'acceptation d'une soumission; les noms servent aux logs
type Accepted struct {
	SubmittingUserID   int64
	SubmittingUsername string
	GameName           string
	ChannelName        string
}

// Award décrit la ligne ajoutée par Score, s'il y en a une
type Award struct {
	Awarded bool                  `json:"awarded"`
	Points  int                   `json:"points"`
	Rank    int                   `json:"rank"`
	Row     *model.LeaderboardRow `json:"row,omitempty"`
}

// Score ajoute une ligne au leaderboard quand l'utilisateur a exactement
// autant de posts acceptés que le créateur du game.
//
// Doit tourner dans la transaction qui verrouille le game: la comparaison,
// le comptage des lignes et l'insertion forment une seule lecture-écriture.
func Score(ctx context.Context, tx Tx, ev Accepted, g *model.Game) (Award, error) {
	if g.LeaderboardID == nil {
		return Award{}, ErrLeaderboardMissing
	}

	userCount, err := tx.CountAcceptedPosts(ctx, g.ID, ev.SubmittingUserID)
	if err != nil {
		return Award{}, fmt.Errorf("count submitter posts: %w", err)
	}
	creatorCount, err := tx.CountAcceptedPosts(ctx, g.ID, g.CreatorID)
	if err != nil {
		return Award{}, fmt.Errorf("count creator posts: %w", err)
	}
	if userCount != creatorCount {
		return Award{}, nil
	}

	n, err := tx.CountLeaderboardRows(ctx, *g.LeaderboardID)
	if err != nil {
		return Award{}, fmt.Errorf("count leaderboard rows: %w", err)
	}
	points := PointsForRank(n)

	row := &model.LeaderboardRow{
		LeaderboardID: *g.LeaderboardID,
		UserID:        ev.SubmittingUserID,
		Username:      ev.SubmittingUsername,
		Points:        points,
		Timestamp:     time.Now().UTC(),
	}
	if err := tx.InsertLeaderboardRow(ctx, row); err != nil {
		return Award{}, fmt.Errorf("insert leaderboard row: %w", err)
	}
	if err := tx.IncrementUserPoints(ctx, ev.SubmittingUserID, points); err != nil {
		return Award{}, fmt.Errorf("award points: %w", err)
	}

	return Award{Awarded: true, Points: points, Rank: n + 1, Row: row}, nil
}
