package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/metrics"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

// Invalidator invalide le cache d'un game après un changement de son classement
type Invalidator interface {
	InvalidateGame(ctx context.Context, gameID int64)
}

// Service porte le workflow des games: soumissions, décisions et classement
type Service struct {
	store       Store
	cache       Invalidator
	pinColor    func() string
	maxColors   int
	maxAttempts int
}

type Option func(*Service)

// WithInvalidator enregistre le cache invalidé après chaque décision validée
func WithInvalidator(inv Invalidator) Option {
	return func(s *Service) { s.cache = inv }
}

// WithPinColors remplace le générateur aléatoire de couleurs
func WithPinColors(gen func() string) Option {
	return func(s *Service) { s.pinColor = gen }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		pinColor:    randomPinColor,
		maxColors:   32,
		maxAttempts: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomPinColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0x1000000))
}

type DecisionResult struct {
	Decision   model.Decision          `json:"decision"`
	Submission model.PendingSubmission `json:"submission"`
	Award      *Award                  `json:"award,omitempty"`
}

// ProposeSubmission enregistre candidatePostID comme soumission en attente
// pour le game, en réponse au post originalPostID du créateur
func (s *Service) ProposeSubmission(ctx context.Context, gameID, candidatePostID, originalPostID, actorID int64) (*model.PendingSubmission, error) {
	if actorID == 0 {
		return nil, ErrUnauthenticated
	}

	var pending *model.PendingSubmission
	err := s.store.InGame(ctx, gameID, func(tx Tx) error {
		g, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		candidate, err := tx.GetPost(ctx, candidatePostID)
		if err != nil {
			return err
		}
		if _, err := tx.GetPost(ctx, originalPostID); err != nil {
			return err
		}

		verdict, err := CanPropose(ctx, tx, g, candidate, actorID)
		if err != nil {
			return err
		}
		if err := verdict.Err(); err != nil {
			return err
		}

		pending = &model.PendingSubmission{
			GameID:        g.ID,
			PostID:        candidate.ID,
			CreatorPostID: originalPostID,
			ChannelID:     g.ChannelID,
			Timestamp:     time.Now().UTC(),
		}
		if err := tx.InsertPendingSubmission(ctx, pending); err != nil {
			if errors.Is(err, ErrConflict) {
				return Conflict("post already submitted to this game")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SubmissionsProposed.Inc()
	logger.Info("Submission %d proposée: post %d pour le game %d", pending.ID, pending.PostID, gameID)
	return pending, nil
}

// Decide accepte ou refuse une soumission. Une acceptation est classée
// avant le retour de Decide.
func (s *Service) Decide(ctx context.Context, pendingID int64, decision model.Decision, actorID int64) (*DecisionResult, error) {
	if actorID == 0 {
		return nil, ErrUnauthenticated
	}
	if decision != model.DecisionAccept && decision != model.DecisionReject {
		return nil, InvalidArgument(fmt.Sprintf("unknown decision %q", decision))
	}

	gameID, err := s.store.PendingSubmissionGame(ctx, pendingID)
	if err != nil {
		return nil, err
	}

	result := &DecisionResult{Decision: decision}
	err = s.store.InGame(ctx, gameID, func(tx Tx) error {
		// relu sous verrou: une décision concurrente a pu la supprimer
		pending, err := tx.GetPendingSubmission(ctx, pendingID)
		if err != nil {
			return err
		}
		g, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}

		verdict, err := CanDecide(ctx, tx, g, actorID)
		if err != nil {
			return err
		}
		if err := verdict.Err(); err != nil {
			return err
		}
		result.Submission = *pending

		if decision == model.DecisionReject {
			if err := creditUsers(ctx, tx, map[int64]int{actorID: RejectModeratorBonus}); err != nil {
				return err
			}
			return tx.DeletePendingSubmission(ctx, pending.ID)
		}

		award, err := s.accept(ctx, tx, g, pending, actorID)
		if err != nil {
			return err
		}
		result.Award = &award
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Decisions.WithLabelValues(string(decision)).Inc()
	if decision == model.DecisionReject {
		metrics.PointsAwarded.Add(RejectModeratorBonus)
	} else {
		metrics.PointsAwarded.Add(AcceptAuthorBonus + AcceptModeratorBonus)
		if result.Award.Awarded {
			metrics.LeaderboardAwards.Inc()
			metrics.PointsAwarded.Add(float64(result.Award.Points))
		}
		s.invalidate(ctx, gameID)
	}
	logger.Info("Submission %d: %s par l'utilisateur %d", pendingID, decision, actorID)

	return result, nil
}

func (s *Service) accept(ctx context.Context, tx Tx, g *model.Game, pending *model.PendingSubmission, actorID int64) (Award, error) {
	post, err := tx.GetPost(ctx, pending.PostID)
	if err != nil {
		return Award{}, err
	}
	author, err := tx.GetUser(ctx, post.AuthorID)
	if err != nil {
		return Award{}, err
	}
	channel, err := tx.GetChannel(ctx, g.ChannelID)
	if err != nil {
		return Award{}, err
	}

	if err := tx.AddGamePost(ctx, g.ID, post.ID); err != nil {
		return Award{}, fmt.Errorf("add game post: %w", err)
	}
	credits := map[int64]int{author.ID: AcceptAuthorBonus}
	credits[actorID] += AcceptModeratorBonus
	if err := creditUsers(ctx, tx, credits); err != nil {
		return Award{}, err
	}
	if err := tx.DeletePendingSubmission(ctx, pending.ID); err != nil {
		return Award{}, err
	}

	award, err := Score(ctx, tx, Accepted{
		SubmittingUserID:   author.ID,
		SubmittingUsername: author.Username,
		GameName:           g.Name,
		ChannelName:        channel.Name,
	}, g)
	if err != nil {
		return Award{}, err
	}
	if award.Awarded {
		logger.Success("%s classé #%d sur %s/%s (+%d)", author.Username, award.Rank, channel.Name, g.Name, award.Points)
	}
	return award, nil
}

// creditUsers met à jour les points par id croissant: deux décisions
// concurrentes verrouillent les lignes users dans le même ordre
func creditUsers(ctx context.Context, tx Tx, credits map[int64]int) error {
	ids := make([]int64, 0, len(credits))
	for id := range credits {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	for _, id := range ids {
		if err := tx.IncrementUserPoints(ctx, id, credits[id]); err != nil {
			return fmt.Errorf("credit user %d: %w", id, err)
		}
	}
	return nil
}

// CreateGame crée un game et son leaderboard dans la même transaction.
// Le créateur est abonné au game.
func (s *Service) CreateGame(ctx context.Context, channelID int64, name, description string, actorID int64) (*model.Game, error) {
	if actorID == 0 {
		return nil, ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, InvalidArgument("game name is required")
	}

	// une autre transaction peut prendre la couleur entre la vérification et l'insertion
	var g *model.Game
	var err error
	for attempt := 1; ; attempt++ {
		g, err = s.insertGame(ctx, channelID, name, description, actorID)
		if !errors.Is(err, ErrPinColorTaken) {
			break
		}
		if attempt == s.maxAttempts {
			return nil, Conflict("no free pin color")
		}
		logger.Warning("Couleur de pin déjà prise, nouvel essai (%d/%d)", attempt, s.maxAttempts)
	}
	if err != nil {
		return nil, err
	}

	logger.Success("Game créé: %s dans %s", g.Name, g.ChannelName)
	return g, nil
}

func (s *Service) insertGame(ctx context.Context, channelID int64, name, description string, actorID int64) (*model.Game, error) {
	var g *model.Game
	err := s.store.InTx(ctx, func(tx Tx) error {
		channel, err := tx.GetChannel(ctx, channelID)
		if err != nil {
			return err
		}
		verdict, err := CanCreateGame(ctx, tx, channel.ID, actorID)
		if err != nil {
			return err
		}
		if err := verdict.Err(); err != nil {
			return err
		}

		color, err := s.freePinColor(ctx, tx)
		if err != nil {
			return err
		}

		g = &model.Game{
			Name:        name,
			Description: description,
			CreatorID:   actorID,
			ChannelID:   channel.ID,
			ChannelName: channel.Name,
			PinColorHex: color,
			Tags:        []string{},
			CreatedAt:   time.Now().UTC(),
		}
		if err := tx.InsertGame(ctx, g); err != nil {
			if errors.Is(err, ErrConflict) {
				return Conflict("a game with this name already exists in the channel")
			}
			return err
		}

		lbID, err := tx.InsertLeaderboard(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("create leaderboard: %w", err)
		}
		g.LeaderboardID = &lbID

		if err := tx.AddGameSubscriber(ctx, g.ID, actorID); err != nil {
			return fmt.Errorf("subscribe creator: %w", err)
		}
		g.Subscribers = 1
		return nil
	})
	return g, err
}

func (s *Service) freePinColor(ctx context.Context, tx Tx) (string, error) {
	for i := 0; i < s.maxColors; i++ {
		color := s.pinColor()
		taken, err := tx.PinColorTaken(ctx, color)
		if err != nil {
			return "", fmt.Errorf("check pin color: %w", err)
		}
		if !taken {
			return color, nil
		}
	}
	return "", Conflict("no free pin color")
}

// DeleteGame supprime le game et son leaderboard (créateur uniquement)
func (s *Service) DeleteGame(ctx context.Context, gameID, actorID int64) error {
	err := s.manage(ctx, gameID, actorID, func(tx Tx) error {
		return tx.DeleteGame(ctx, gameID)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, gameID)
	logger.Info("Game %d supprimé par l'utilisateur %d", gameID, actorID)
	return nil
}

func (s *Service) ChangeDescription(ctx context.Context, gameID int64, description string, actorID int64) error {
	return s.manage(ctx, gameID, actorID, func(tx Tx) error {
		return tx.SetGameDescription(ctx, gameID, description)
	})
}

func (s *Service) ChangeImage(ctx context.Context, gameID int64, imageURL string, actorID int64) error {
	return s.manage(ctx, gameID, actorID, func(tx Tx) error {
		return tx.SetGameImage(ctx, gameID, imageURL)
	})
}

func (s *Service) manage(ctx context.Context, gameID, actorID int64, fn func(tx Tx) error) error {
	if actorID == 0 {
		return ErrUnauthenticated
	}
	return s.store.InGame(ctx, gameID, func(tx Tx) error {
		g, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if err := CanManageGame(g, actorID).Err(); err != nil {
			return err
		}
		return fn(tx)
	})
}

// Subscription ajoute ou retire l'acteur des abonnés du game, de façon idempotente
func (s *Service) Subscription(ctx context.Context, gameID int64, modifier model.Modifier, actorID int64) error {
	if actorID == 0 {
		return ErrUnauthenticated
	}
	if !modifier.Valid() {
		return InvalidArgument(fmt.Sprintf("unknown modifier %q", modifier))
	}

	return s.store.InGame(ctx, gameID, func(tx Tx) error {
		if modifier == model.ModifierRemove {
			return tx.RemoveGameSubscriber(ctx, gameID, actorID)
		}

		g, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		verdict, err := CanJoinGame(ctx, tx, g, actorID)
		if err != nil {
			return err
		}
		if err := verdict.Err(); err != nil {
			return err
		}
		return tx.AddGameSubscriber(ctx, gameID, actorID)
	})
}

func (s *Service) GetGame(ctx context.Context, gameID int64) (*model.Game, error) {
	var g *model.Game
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		g, err = tx.GetGame(ctx, gameID)
		return err
	})
	return g, err
}

// Leaderboard renvoie les lignes dans l'ordre d'insertion et les totaux par
// utilisateur, du plus haut au plus bas
func (s *Service) Leaderboard(ctx context.Context, gameID int64) (*model.GameLeaderboard, error) {
	var board *model.GameLeaderboard
	err := s.store.InTx(ctx, func(tx Tx) error {
		g, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if g.LeaderboardID == nil {
			return ErrLeaderboardMissing
		}
		rows, err := tx.ListLeaderboardRows(ctx, *g.LeaderboardID)
		if err != nil {
			return err
		}
		board = &model.GameLeaderboard{
			GameID:        g.ID,
			LeaderboardID: *g.LeaderboardID,
			Rows:          rows,
			Standings:     Standings(rows),
		}
		return nil
	})
	return board, err
}

// Standings additionne les lignes par utilisateur; à égalité le premier classé reste devant
func Standings(rows []model.LeaderboardRow) []model.LeaderboardEntry {
	index := map[int64]int{}
	entries := []model.LeaderboardEntry{}
	for _, row := range rows {
		i, ok := index[row.UserID]
		if !ok {
			i = len(entries)
			index[row.UserID] = i
			entries = append(entries, model.LeaderboardEntry{UserID: row.UserID, Username: row.Username})
		}
		entries[i].Points += row.Points
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Points > entries[b].Points
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// PendingSubmissions liste les soumissions en attente de décision
func (s *Service) PendingSubmissions(ctx context.Context, gameID, actorID int64) ([]model.PendingSubmission, error) {
	if actorID == 0 {
		return nil, ErrUnauthenticated
	}

	var pending []model.PendingSubmission
	err := s.store.InTx(ctx, func(tx Tx) error {
		g, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		verdict, err := CanViewSubmissions(ctx, tx, g, actorID)
		if err != nil {
			return err
		}
		if err := verdict.Err(); err != nil {
			return err
		}
		pending, err = tx.ListPendingSubmissions(ctx, gameID)
		return err
	})
	return pending, err
}

func (s *Service) invalidate(ctx context.Context, gameID int64) {
	if s.cache != nil {
		s.cache.InvalidateGame(ctx, gameID)
	}
}
