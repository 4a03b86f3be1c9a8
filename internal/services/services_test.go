package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/config"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

func TestPublicID(t *testing.T) {
	id, overwrite := PublicID(ImageAvatar, 42)
	assert.Equal(t, "avatars/42", id)
	assert.True(t, overwrite)

	id, overwrite = PublicID(ImageGame, 7)
	assert.Equal(t, "games/7", id)
	assert.True(t, overwrite)

	first, overwrite := PublicID(ImagePost, 42)
	second, _ := PublicID(ImagePost, 42)
	assert.False(t, overwrite)
	assert.True(t, strings.HasPrefix(first, "posts/42-"))
	assert.NotEqual(t, first, second)
}

func TestNewCloudinaryService_MissingConfig(t *testing.T) {
	_, err := NewCloudinaryService(&config.Config{CloudinaryCloudName: "demo"})
	assert.Error(t, err)
}

func TestLeaderboardCache_Disabled(t *testing.T) {
	cache := NewLeaderboardCache(nil, time.Minute)
	assert.Nil(t, cache)

	ctx := context.Background()
	_, ok := cache.Version(ctx, 1)
	assert.False(t, ok)
	cache.Set(ctx, 0, &model.GameLeaderboard{GameID: 1})
	cache.InvalidateGame(ctx, 1)
	_, ok = cache.Get(ctx, 1, 0)
	assert.False(t, ok)
}

func TestLeaderboardCache_UnreachableIsMiss(t *testing.T) {
	logger.SetOutput(io.Discard)
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	cache := NewLeaderboardCache(rdb, time.Minute)
	ctx := context.Background()

	_, ok := cache.Version(ctx, 3)
	assert.False(t, ok)
	cache.Set(ctx, 0, &model.GameLeaderboard{GameID: 3})
	_, ok = cache.Get(ctx, 3, 0)
	assert.False(t, ok)
	cache.InvalidateGame(ctx, 3)
}

func TestLeaderboardKey(t *testing.T) {
	assert.Equal(t, "leaderboard:game:12:v", versionKey(12))
	assert.Equal(t, "leaderboard:game:12:3", leaderboardKey(12, 3))
}
