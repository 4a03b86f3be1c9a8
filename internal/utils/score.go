package utils

import (
	"context"
	"fmt"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/database"
)

// IncrementUserPoints ajoute delta (éventuellement négatif) aux points d'un utilisateur
func IncrementUserPoints(ctx context.Context, q database.Querier, userID int64, delta int) error {
	_, err := q.Exec(ctx,
		`UPDATE users SET points = points + $1, updated_at = NOW() WHERE id = $2`,
		delta, userID,
	)
	if err != nil {
		return fmt.Errorf("impossible de mettre à jour les points: %w", err)
	}
	return nil
}
