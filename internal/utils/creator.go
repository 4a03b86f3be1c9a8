package utils

import (
	"context"
	"fmt"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/database"
)

// ResolveUsernames convertit des usernames en ids; un nom inconnu est une erreur NotFound
func ResolveUsernames(ctx context.Context, q database.Querier, usernames []string) ([]int64, error) {
	ids := make([]int64, 0, len(usernames))
	for _, name := range usernames {
		var id int64
		err := q.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, name).Scan(&id)
		if err != nil {
			return nil, database.MapError(err, fmt.Sprintf("user %q", name))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
