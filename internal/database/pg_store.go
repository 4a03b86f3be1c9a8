package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/scanner"
)

// contrainte UNIQUE de games.pin_color (schema.go)
const pinColorConstraint = "games_pin_color_key"

// Pool est satisfait par *pgxpool.Pool
type Pool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PGStore implémente game.Store sur PostgreSQL
type PGStore struct {
	pool Pool
}

var _ game.Store = (*PGStore)(nil)

func NewPGStore(pool Pool) *PGStore {
	return &PGStore{pool: pool}
}

// run ouvre une transaction, commit si fn réussit, rollback sinon
func (s *PGStore) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.Warning("rollback: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// InGame verrouille la ligne du game (SELECT ... FOR UPDATE) pendant toute la transaction
func (s *PGStore) InGame(ctx context.Context, gameID int64, fn func(tx game.Tx) error) error {
	return s.run(ctx, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, `SELECT id FROM games WHERE id = $1 FOR UPDATE`, gameID).Scan(&id)
		if err != nil {
			return MapError(err, fmt.Sprintf("game %d", gameID))
		}
		return fn(&pgTx{tx: tx})
	})
}

func (s *PGStore) InTx(ctx context.Context, fn func(tx game.Tx) error) error {
	return s.run(ctx, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

func (s *PGStore) PendingSubmissionGame(ctx context.Context, id int64) (int64, error) {
	var gameID int64
	err := s.pool.QueryRow(ctx, `SELECT game_id FROM pending_submissions WHERE id = $1`, id).Scan(&gameID)
	if err != nil {
		return 0, MapError(err, fmt.Sprintf("pending submission %d", id))
	}
	return gameID, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetUser(ctx context.Context, userID int64) (*model.UserProfile, error) {
	u, err := scanner.ScanUserProfile(t.tx.QueryRow(ctx,
		`SELECT `+scanner.UserColumns+` FROM users u WHERE u.id = $1`, userID))
	if err != nil {
		return nil, MapError(err, fmt.Sprintf("user %d", userID))
	}
	return u, nil
}

func (t *pgTx) GetChannel(ctx context.Context, channelID int64) (*model.Channel, error) {
	c, err := scanner.ScanChannel(t.tx.QueryRow(ctx, scanner.ChannelSelect+` WHERE c.id = $1`, channelID))
	if err != nil {
		return nil, MapError(err, fmt.Sprintf("channel %d", channelID))
	}
	return c, nil
}

func (t *pgTx) GetChannelByName(ctx context.Context, name string) (*model.Channel, error) {
	c, err := scanner.ScanChannel(t.tx.QueryRow(ctx, scanner.ChannelSelect+` WHERE c.name = $1`, name))
	if err != nil {
		return nil, MapError(err, fmt.Sprintf("channel %q", name))
	}
	return c, nil
}

func (t *pgTx) GetGame(ctx context.Context, gameID int64) (*model.Game, error) {
	g, err := scanner.ScanGame(t.tx.QueryRow(ctx, scanner.GameSelect+` WHERE g.id = $1`, gameID))
	if err != nil {
		return nil, MapError(err, fmt.Sprintf("game %d", gameID))
	}
	return g, nil
}

func (t *pgTx) GetPost(ctx context.Context, postID int64) (*model.Post, error) {
	p, err := scanner.ScanPost(t.tx.QueryRow(ctx, scanner.PostSelect+` WHERE p.id = $2`, 0, postID))
	if err != nil {
		return nil, MapError(err, fmt.Sprintf("post %d", postID))
	}
	return p, nil
}

func (t *pgTx) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var ok bool
	if err := t.tx.QueryRow(ctx, `SELECT EXISTS(`+query+`)`, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (t *pgTx) IsChannelSubscriber(ctx context.Context, channelID, userID int64) (bool, error) {
	return t.exists(ctx, `SELECT 1 FROM channel_subscribers WHERE channel_id = $1 AND user_id = $2`, channelID, userID)
}

func (t *pgTx) IsGameSubscriber(ctx context.Context, gameID, userID int64) (bool, error) {
	return t.exists(ctx, `SELECT 1 FROM game_subscribers WHERE game_id = $1 AND user_id = $2`, gameID, userID)
}

func (t *pgTx) AddGameSubscriber(ctx context.Context, gameID, userID int64) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO game_subscribers (game_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		gameID, userID,
	)
	return MapError(err, "game subscriber")
}

func (t *pgTx) RemoveGameSubscriber(ctx context.Context, gameID, userID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM game_subscribers WHERE game_id = $1 AND user_id = $2`, gameID, userID)
	return MapError(err, "game subscriber")
}

func (t *pgTx) PinColorTaken(ctx context.Context, hex string) (bool, error) {
	return t.exists(ctx, `SELECT 1 FROM games WHERE pin_color = $1`, hex)
}

func (t *pgTx) InsertGame(ctx context.Context, g *model.Game) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO games (name, description, creator_id, channel_id, image, pin_color, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		g.Name, g.Description, g.CreatorID, g.ChannelID, g.Image, g.PinColorHex, g.CreatedAt,
	).Scan(&g.ID)
	if name, ok := UniqueConstraint(err); ok && name == pinColorConstraint {
		return fmt.Errorf("game pin color %s: %w", g.PinColorHex, game.ErrPinColorTaken)
	}
	return MapError(err, "game")
}

func (t *pgTx) InsertLeaderboard(ctx context.Context, gameID int64) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO leaderboards (game_id) VALUES ($1) RETURNING id`, gameID).Scan(&id)
	if err != nil {
		return 0, MapError(err, "leaderboard")
	}
	return id, nil
}

func (t *pgTx) DeleteGame(ctx context.Context, gameID int64) error {
	return t.execOne(ctx, fmt.Sprintf("game %d", gameID), `DELETE FROM games WHERE id = $1`, gameID)
}

func (t *pgTx) SetGameDescription(ctx context.Context, gameID int64, description string) error {
	return t.execOne(ctx, fmt.Sprintf("game %d", gameID),
		`UPDATE games SET description = $2 WHERE id = $1`, gameID, description)
}

func (t *pgTx) SetGameImage(ctx context.Context, gameID int64, imageURL string) error {
	return t.execOne(ctx, fmt.Sprintf("game %d", gameID),
		`UPDATE games SET image = $2 WHERE id = $1`, gameID, imageURL)
}

// execOne exécute une requête qui doit toucher exactement une ligne
func (t *pgTx) execOne(ctx context.Context, what, query string, args ...interface{}) error {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return MapError(err, what)
	}
	if tag.RowsAffected() == 0 {
		return game.NotFound(what + " not found")
	}
	return nil
}

func (t *pgTx) InsertPendingSubmission(ctx context.Context, p *model.PendingSubmission) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO pending_submissions (game_id, post_id, creator_post_id, channel_id, timestamp)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		p.GameID, p.PostID, p.CreatorPostID, p.ChannelID, p.Timestamp,
	).Scan(&p.ID)
	return MapError(err, "pending submission")
}

const pendingColumns = `id, game_id, post_id, creator_post_id, channel_id, timestamp`

func scanPending(row scanner.Row) (*model.PendingSubmission, error) {
	var p model.PendingSubmission
	if err := row.Scan(&p.ID, &p.GameID, &p.PostID, &p.CreatorPostID, &p.ChannelID, &p.Timestamp); err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *pgTx) GetPendingSubmission(ctx context.Context, id int64) (*model.PendingSubmission, error) {
	p, err := scanPending(t.tx.QueryRow(ctx, `SELECT `+pendingColumns+` FROM pending_submissions WHERE id = $1`, id))
	if err != nil {
		return nil, MapError(err, fmt.Sprintf("pending submission %d", id))
	}
	return p, nil
}

func (t *pgTx) DeletePendingSubmission(ctx context.Context, id int64) error {
	return t.execOne(ctx, fmt.Sprintf("pending submission %d", id), `DELETE FROM pending_submissions WHERE id = $1`, id)
}

func (t *pgTx) ListPendingSubmissions(ctx context.Context, gameID int64) ([]model.PendingSubmission, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+pendingColumns+` FROM pending_submissions WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return nil, MapError(err, "pending submissions")
	}
	defer rows.Close()

	out := []model.PendingSubmission{}
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (t *pgTx) AddGamePost(ctx context.Context, gameID, postID int64) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO game_posts (game_id, post_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		gameID, postID,
	)
	return MapError(err, "game post")
}

func (t *pgTx) CountAcceptedPosts(ctx context.Context, gameID, authorID int64) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM game_posts gp
		 JOIN posts p ON p.id = gp.post_id
		 WHERE gp.game_id = $1 AND p.author_id = $2`,
		gameID, authorID,
	).Scan(&n)
	return n, MapError(err, "accepted posts")
}

func (t *pgTx) CountLeaderboardRows(ctx context.Context, leaderboardID int64) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM leaderboard_rows WHERE leaderboard_id = $1`, leaderboardID,
	).Scan(&n)
	return n, MapError(err, "leaderboard rows")
}

func (t *pgTx) InsertLeaderboardRow(ctx context.Context, row *model.LeaderboardRow) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO leaderboard_rows (leaderboard_id, user_id, points, timestamp)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		row.LeaderboardID, row.UserID, row.Points, row.Timestamp,
	).Scan(&row.ID)
	return MapError(err, "leaderboard row")
}

func (t *pgTx) ListLeaderboardRows(ctx context.Context, leaderboardID int64) ([]model.LeaderboardRow, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT r.id, r.leaderboard_id, r.user_id, u.username, r.points, r.timestamp
		 FROM leaderboard_rows r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.leaderboard_id = $1
		 ORDER BY r.id`,
		leaderboardID,
	)
	if err != nil {
		return nil, MapError(err, "leaderboard rows")
	}
	defer rows.Close()

	out := []model.LeaderboardRow{}
	for rows.Next() {
		r, err := scanner.ScanLeaderboardRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (t *pgTx) IncrementUserPoints(ctx context.Context, userID int64, delta int) error {
	return t.execOne(ctx, fmt.Sprintf("user %d", userID),
		`UPDATE users SET points = points + $2, updated_at = NOW() WHERE id = $1`, userID, delta)
}
