package database

import (
	"context"
	"errors"
	"io"
	"os"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

var lockGame = regexp.QuoteMeta(`SELECT id FROM games WHERE id = $1 FOR UPDATE`)

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *PGStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPGStore(mock)
}

func TestPGStore_InGameLocksGameRow(t *testing.T) {
	ctx := context.Background()
	mock, store := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockGame).
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(4)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM game_posts gp`)).
		WithArgs(int64(4), int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectCommit()

	var n int
	err := store.InGame(ctx, 4, func(tx game.Tx) error {
		var err error
		n, err = tx.CountAcceptedPosts(ctx, 4, 9)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_InGameUnknownGame(t *testing.T) {
	ctx := context.Background()
	mock, store := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockGame).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	called := false
	err := store.InGame(ctx, 5, func(tx game.Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, game.ErrNotFound)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_FailedWorkRollsBack(t *testing.T) {
	ctx := context.Background()
	mock, store := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET points = points + $2`)).
		WithArgs(int64(7), 100).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectRollback()

	stop := errors.New("stop")
	err := store.InTx(ctx, func(tx game.Tx) error {
		if err := tx.IncrementUserPoints(ctx, 7, 100); err != nil {
			return err
		}
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_ExecOneMissingRow(t *testing.T) {
	ctx := context.Background()
	mock, store := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM pending_submissions WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := store.InTx(ctx, func(tx game.Tx) error {
		return tx.DeletePendingSubmission(ctx, 3)
	})
	require.ErrorIs(t, err, game.ErrNotFound)
	assert.Contains(t, err.Error(), "pending submission 3 not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_InsertGameUniqueViolations(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
		notWant    error
	}{
		{"pin colour", pinColorConstraint, game.ErrPinColorTaken, game.ErrConflict},
		{"name in channel", "games_name_channel_id_key", game.ErrConflict, game.ErrPinColorTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mock, store := newMockStore(t)

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO games`)).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})
			mock.ExpectRollback()

			err := store.InTx(ctx, func(tx game.Tx) error {
				return tx.InsertGame(ctx, &model.Game{Name: "murals", ChannelID: 2, PinColorHex: "#000001"})
			})
			require.ErrorIs(t, err, tt.want)
			assert.NotErrorIs(t, err, tt.notWant)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPGStore_PendingSubmissionGame(t *testing.T) {
	ctx := context.Background()
	mock, store := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT game_id FROM pending_submissions WHERE id = $1`)).
		WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows([]string{"game_id"}).AddRow(int64(4)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT game_id FROM pending_submissions WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"game_id"}))

	gameID, err := store.PendingSubmissionGame(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(4), gameID)

	_, err = store.PendingSubmissionGame(ctx, 9)
	assert.ErrorIs(t, err, game.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
