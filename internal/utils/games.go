package utils

import (
	"context"
	"fmt"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/database"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/scanner"
)

// ListGames liste les games, filtrés par channel si channelID > 0
func ListGames(ctx context.Context, channelID int64) ([]model.Game, error) {
	sql := scanner.GameSelect + ` ORDER BY g.created_at DESC`
	args := []interface{}{}
	if channelID > 0 {
		sql = scanner.GameSelect + ` WHERE g.channel_id = $1 ORDER BY g.created_at DESC`
		args = append(args, channelID)
	}

	rows, err := database.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []model.Game{}
	for rows.Next() {
		g, err := scanner.ScanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

// GamePosts liste les posts acceptés d'un game
func GamePosts(ctx context.Context, viewerID, gameID int64) ([]model.Post, error) {
	return queryPosts(ctx,
		`JOIN game_posts gp ON gp.post_id = p.id WHERE gp.game_id = $2`,
		viewerID, gameID)
}
