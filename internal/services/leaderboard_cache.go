package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

const leaderboardPrefix = "leaderboard:game:"

// LeaderboardCache garde en Redis le classement calculé de chaque game.
// Chaque game a un numéro de version incrémenté à chaque décision; un
// classement est stocké sous la version lue avant sa requête SQL, donc un
// classement lu avant une décision n'est jamais resservi après elle.
// Un cache nil (Redis non configuré) ne fait rien.
type LeaderboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLeaderboardCache(rdb *redis.Client, ttl time.Duration) *LeaderboardCache {
	if rdb == nil {
		return nil
	}
	return &LeaderboardCache{rdb: rdb, ttl: ttl}
}

func versionKey(gameID int64) string {
	return fmt.Sprintf("%s%d:v", leaderboardPrefix, gameID)
}

func leaderboardKey(gameID, version int64) string {
	return fmt.Sprintf("%s%d:%d", leaderboardPrefix, gameID, version)
}

// Version renvoie la version courante du classement d'un game.
// ok vaut false si Redis ne répond pas: l'appelant doit alors ignorer le cache.
func (c *LeaderboardCache) Version(ctx context.Context, gameID int64) (int64, bool) {
	if c == nil {
		return 0, false
	}
	v, err := c.rdb.Get(ctx, versionKey(gameID)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		logger.Warning("leaderboard cache version %d: %v", gameID, err)
		return 0, false
	}
	return v, true
}

// Get renvoie le classement mis en cache pour cette version. Toute erreur Redis est un cache miss.
func (c *LeaderboardCache) Get(ctx context.Context, gameID, version int64) (*model.GameLeaderboard, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, leaderboardKey(gameID, version)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warning("leaderboard cache get %d: %v", gameID, err)
		}
		return nil, false
	}

	var board model.GameLeaderboard
	if err := json.Unmarshal(raw, &board); err != nil {
		logger.Warning("leaderboard cache decode %d: %v", gameID, err)
		return nil, false
	}
	return &board, true
}

// Set stocke board sous la version lue avant de le calculer
func (c *LeaderboardCache) Set(ctx context.Context, version int64, board *model.GameLeaderboard) {
	if c == nil || board == nil {
		return
	}
	raw, err := json.Marshal(board)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, leaderboardKey(board.GameID, version), raw, c.ttl).Err(); err != nil {
		logger.Warning("leaderboard cache set %d: %v", board.GameID, err)
	}
}

// InvalidateGame passe le game à la version suivante après une décision
func (c *LeaderboardCache) InvalidateGame(ctx context.Context, gameID int64) {
	if c == nil {
		return
	}
	if err := c.rdb.Incr(ctx, versionKey(gameID)).Err(); err != nil {
		logger.Warning("leaderboard cache invalidate %d: %v", gameID, err)
	}
}
