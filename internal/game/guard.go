package game

import (
	"context"
	"fmt"

	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

// Verdict est le résultat étiqueté d'un contrôle de capacité
type Verdict struct {
	Allowed bool
	Reason  string
}

func Allow() Verdict { return Verdict{Allowed: true} }

func Deny(reason string) Verdict { return Verdict{Reason: reason} }

// Err convertit un refus en erreur Unauthorized
func (v Verdict) Err() error {
	if v.Allowed {
		return nil
	}
	return Unauthorized(v.Reason)
}

// CanPropose: l'acteur doit être abonné au channel et au game, et auteur du post
func CanPropose(ctx context.Context, tx Tx, g *model.Game, post *model.Post, actorID int64) (Verdict, error) {
	inChannel, err := tx.IsChannelSubscriber(ctx, g.ChannelID, actorID)
	if err != nil {
		return Verdict{}, fmt.Errorf("check channel subscription: %w", err)
	}
	if !inChannel {
		return Deny("you must be subscribed to the channel to propose posts"), nil
	}

	inGame, err := tx.IsGameSubscriber(ctx, g.ID, actorID)
	if err != nil {
		return Verdict{}, fmt.Errorf("check game subscription: %w", err)
	}
	if !inGame {
		return Deny("you must be subscribed to the game to propose posts"), nil
	}

	if post.AuthorID != actorID {
		return Deny("you must be the post author to propose it"), nil
	}

	return Allow(), nil
}

// CanDecide: tout abonné du channel peut valider ou refuser une soumission
func CanDecide(ctx context.Context, tx Tx, g *model.Game, actorID int64) (Verdict, error) {
	return channelMember(ctx, tx, g.ChannelID, actorID, "you must be subscribed to the channel to validate posts")
}

// CanCreateGame: il faut être abonné au channel
func CanCreateGame(ctx context.Context, tx Tx, channelID, actorID int64) (Verdict, error) {
	return channelMember(ctx, tx, channelID, actorID, "you must be subscribed to the channel to add games")
}

func CanJoinGame(ctx context.Context, tx Tx, g *model.Game, actorID int64) (Verdict, error) {
	return channelMember(ctx, tx, g.ChannelID, actorID, "you must be subscribed to the channel to join its games")
}

func CanViewSubmissions(ctx context.Context, tx Tx, g *model.Game, actorID int64) (Verdict, error) {
	return channelMember(ctx, tx, g.ChannelID, actorID, "you must be subscribed to the channel to see pending posts")
}

// CanManageGame: réservé au créateur du game
func CanManageGame(g *model.Game, actorID int64) Verdict {
	if g.CreatorID != actorID {
		return Deny("only the game creator can do that")
	}
	return Allow()
}

func channelMember(ctx context.Context, tx Tx, channelID, actorID int64, reason string) (Verdict, error) {
	ok, err := tx.IsChannelSubscriber(ctx, channelID, actorID)
	if err != nil {
		return Verdict{}, fmt.Errorf("check channel subscription: %w", err)
	}
	if !ok {
		return Deny(reason), nil
	}
	return Allow(), nil
}
