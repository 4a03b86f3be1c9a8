package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/database"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/scanner"
)

// CreateChannel crée le channel; le créateur en est le premier abonné et modérateur
func CreateChannel(ctx context.Context, actorID int64, name, description string, tags []string) (*model.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, game.InvalidArgument("channel name is required")
	}

	var channelID int64
	err := database.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO channels (name, description) VALUES ($1, $2) RETURNING id`,
			name, SanitizeText(description),
		).Scan(&channelID)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return game.Conflict(fmt.Sprintf("channel %q already exists", name))
			}
			return fmt.Errorf("insert channel: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO channel_subscribers (channel_id, user_id) VALUES ($1, $2)`, channelID, actorID,
		); err != nil {
			return fmt.Errorf("subscribe creator: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO channel_moderators (channel_id, user_id) VALUES ($1, $2)`, channelID, actorID,
		); err != nil {
			return fmt.Errorf("add moderator: %w", err)
		}

		for _, t := range normalizeTags(tags) {
			tagID, err := EnsureTag(ctx, tx, t)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO channel_tags (channel_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				channelID, tagID,
			); err != nil {
				return fmt.Errorf("tag channel: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetChannel(ctx, channelID)
}

func GetChannel(ctx context.Context, channelID int64) (*model.Channel, error) {
	c, err := scanner.ScanChannel(database.DB.QueryRow(ctx, scanner.ChannelSelect+` WHERE c.id = $1`, channelID))
	if err != nil {
		return nil, database.MapError(err, fmt.Sprintf("channel %d", channelID))
	}
	return c, nil
}

func ListChannels(ctx context.Context) ([]model.Channel, error) {
	rows, err := database.DB.Query(ctx, scanner.ChannelSelect+` ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	channels := []model.Channel{}
	for rows.Next() {
		c, err := scanner.ScanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, *c)
	}
	return channels, rows.Err()
}

// IsChannelModerator indique si userID modère le channel
func IsChannelModerator(ctx context.Context, q database.Querier, channelID, userID int64) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM channel_moderators WHERE channel_id = $1 AND user_id = $2)`,
		channelID, userID,
	).Scan(&ok)
	return ok, err
}

func requireModerator(ctx context.Context, q database.Querier, actorID, channelID int64) error {
	if err := requireChannel(ctx, q, channelID); err != nil {
		return err
	}
	ok, err := IsChannelModerator(ctx, q, channelID, actorID)
	if err != nil {
		return fmt.Errorf("check moderator: %w", err)
	}
	if !ok {
		return game.Unauthorized("only channel moderators can do that")
	}
	return nil
}

// RequireChannelModerator échoue si actorID ne modère pas le channel
func RequireChannelModerator(ctx context.Context, actorID, channelID int64) error {
	return requireModerator(ctx, database.DB, actorID, channelID)
}

// moderate exécute fn si actorID modère le channel
func moderate(ctx context.Context, actorID, channelID int64, fn func(tx pgx.Tx) error) error {
	return database.WithTx(ctx, func(tx pgx.Tx) error {
		if err := requireModerator(ctx, tx, actorID, channelID); err != nil {
			return err
		}
		return fn(tx)
	})
}

func DeleteChannel(ctx context.Context, actorID, channelID int64) error {
	return moderate(ctx, actorID, channelID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM channels WHERE id = $1`, channelID)
		return err
	})
}

func ChangeChannelDescription(ctx context.Context, actorID, channelID int64, description string) error {
	return moderate(ctx, actorID, channelID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `UPDATE channels SET description = $2 WHERE id = $1`, channelID, SanitizeText(description))
		return err
	})
}

// ChannelImageField désigne l'image de channel modifiée
type ChannelImageField string

const (
	ChannelCover  ChannelImageField = "cover_image"
	ChannelAvatar ChannelImageField = "avatar"
)

func SetChannelImage(ctx context.Context, actorID, channelID int64, field ChannelImageField, url string) error {
	if field != ChannelCover && field != ChannelAvatar {
		return fmt.Errorf("unknown image field %q", field)
	}
	return moderate(ctx, actorID, channelID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `UPDATE channels SET `+string(field)+` = $2 WHERE id = $1`, channelID, url)
		return err
	})
}

// ChannelSubscription abonne ou désabonne actorID (idempotent)
func ChannelSubscription(ctx context.Context, actorID, channelID int64, modifier model.Modifier) error {
	return database.WithTx(ctx, func(tx pgx.Tx) error {
		if err := requireChannel(ctx, tx, channelID); err != nil {
			return err
		}
		var err error
		if modifier == model.ModifierAdd {
			_, err = tx.Exec(ctx,
				`INSERT INTO channel_subscribers (channel_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				channelID, actorID)
		} else {
			_, err = tx.Exec(ctx,
				`DELETE FROM channel_subscribers WHERE channel_id = $1 AND user_id = $2`,
				channelID, actorID)
		}
		return database.MapError(err, "channel subscription")
	})
}
