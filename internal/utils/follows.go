package utils

import (
	"context"
	"fmt"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/database"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

// Follow crée la relation follower -> followee (idempotent)
func Follow(ctx context.Context, followerID int64, username string) error {
	followee, err := GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if followee.ID == followerID {
		return game.InvalidArgument("you cannot follow yourself")
	}

	_, err = database.DB.Exec(ctx,
		`INSERT INTO user_follows (follower_id, followee_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		followerID, followee.ID,
	)
	return database.MapError(err, "follow")
}

// Unfollow supprime la relation; NotFound si elle n'existait pas
func Unfollow(ctx context.Context, followerID int64, username string) error {
	followee, err := GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}

	res, err := database.DB.Exec(ctx,
		`DELETE FROM user_follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followee.ID,
	)
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	if res.RowsAffected() == 0 {
		return game.NotFound(fmt.Sprintf("you are not following %s", username))
	}
	return nil
}

// IsFollowing indique si followerID suit followeeID
func IsFollowing(ctx context.Context, q database.Querier, followerID, followeeID int64) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_follows WHERE follower_id = $1 AND followee_id = $2)`,
		followerID, followeeID,
	).Scan(&ok)
	return ok, err
}

// Followers liste les utilisateurs qui suivent username
func Followers(ctx context.Context, username string) ([]model.UserProfile, error) {
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	rows, err := database.DB.Query(ctx,
		userSelect+` JOIN user_follows uf ON uf.follower_id = u.id
		WHERE uf.followee_id = $1 ORDER BY uf.created_at DESC`,
		user.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("followers: %w", err)
	}
	return collectUsers(rows)
}

// Following liste les utilisateurs suivis par username
func Following(ctx context.Context, username string) ([]model.UserProfile, error) {
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	rows, err := database.DB.Query(ctx,
		userSelect+` JOIN user_follows uf ON uf.followee_id = u.id
		WHERE uf.follower_id = $1 ORDER BY uf.created_at DESC`,
		user.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("following: %w", err)
	}
	return collectUsers(rows)
}
