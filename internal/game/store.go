package game

import (
	"context"

	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

// Store est la persistance relationnelle du workflow des games
type Store interface {
	// InGame exécute fn dans une transaction qui verrouille la ligne du game:
	// les séquences lecture-comptage-écriture d'un même game sont sérialisées.
	// ErrNotFound si le game n'existe pas.
	InGame(ctx context.Context, gameID int64, fn func(tx Tx) error) error

	// InTx exécute fn dans une transaction, sans verrou
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// PendingSubmissionGame renvoie le game d'une soumission en attente
	PendingSubmissionGame(ctx context.Context, id int64) (int64, error)
}

// Tx regroupe les lectures et écritures d'une transaction Store.
// Une ligne absente donne ErrNotFound, une clé unique violée ErrConflict.
// InsertGame renvoie ErrPinColorTaken si seule la couleur est déjà prise.
type Tx interface {
	GetUser(ctx context.Context, userID int64) (*model.UserProfile, error)
	GetChannel(ctx context.Context, channelID int64) (*model.Channel, error)
	GetChannelByName(ctx context.Context, name string) (*model.Channel, error)
	GetGame(ctx context.Context, gameID int64) (*model.Game, error)
	GetPost(ctx context.Context, postID int64) (*model.Post, error)

	IsChannelSubscriber(ctx context.Context, channelID, userID int64) (bool, error)
	IsGameSubscriber(ctx context.Context, gameID, userID int64) (bool, error)
	AddGameSubscriber(ctx context.Context, gameID, userID int64) error
	RemoveGameSubscriber(ctx context.Context, gameID, userID int64) error

	PinColorTaken(ctx context.Context, hex string) (bool, error)
	InsertGame(ctx context.Context, g *model.Game) error
	InsertLeaderboard(ctx context.Context, gameID int64) (int64, error)
	DeleteGame(ctx context.Context, gameID int64) error
	SetGameDescription(ctx context.Context, gameID int64, description string) error
	SetGameImage(ctx context.Context, gameID int64, imageURL string) error

	InsertPendingSubmission(ctx context.Context, p *model.PendingSubmission) error
	GetPendingSubmission(ctx context.Context, id int64) (*model.PendingSubmission, error)
	DeletePendingSubmission(ctx context.Context, id int64) error
	ListPendingSubmissions(ctx context.Context, gameID int64) ([]model.PendingSubmission, error)

	AddGamePost(ctx context.Context, gameID, postID int64) error
	CountAcceptedPosts(ctx context.Context, gameID, authorID int64) (int, error)

	CountLeaderboardRows(ctx context.Context, leaderboardID int64) (int, error)
	InsertLeaderboardRow(ctx context.Context, row *model.LeaderboardRow) error
	ListLeaderboardRows(ctx context.Context, leaderboardID int64) ([]model.LeaderboardRow, error)

	IncrementUserPoints(ctx context.Context, userID int64, delta int) error
}
