package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/database"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

// Period fenêtre de calcul du classement global
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "all-time"
)

// ParsePeriod accepte une période vide (all-time)
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodAllTime, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return p, nil
	}
	return "", game.InvalidArgument(fmt.Sprintf("unknown period %q", s))
}

// Start renvoie le début de la fenêtre, zéro pour all-time
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case PeriodDaily:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case PeriodWeekly:
		return now.AddDate(0, 0, -7)
	case PeriodMonthly:
		return now.AddDate(0, 0, -30)
	}
	return time.Time{}
}

// all-time lit users.points, les autres périodes sommes les lignes de leaderboard
func scoresCTE(p Period) (string, []interface{}) {
	if p == PeriodAllTime {
		return `user_scores AS (
				SELECT id AS user_id, points AS score FROM users WHERE is_active
			)`, nil
	}
	return `user_scores AS (
				SELECT lr.user_id, SUM(lr.points) AS score
				FROM leaderboard_rows lr
				WHERE lr.timestamp >= $1
				GROUP BY lr.user_id
			)`, []interface{}{p.Start(time.Now())}
}

const rankedCTE = `ranked_users AS (
				SELECT us.user_id, us.score,
					ROW_NUMBER() OVER (ORDER BY us.score DESC, us.user_id) AS rank
				FROM user_scores us
			)`

// GlobalLeaderboard renvoie le top des utilisateurs sur la période
func GlobalLeaderboard(ctx context.Context, p Period, limit int) ([]model.LeaderboardEntry, error) {
	scores, args := scoresCTE(p)
	args = append(args, limit)

	rows, err := database.DB.Query(ctx, fmt.Sprintf(`
		WITH %s, %s
		SELECT ru.user_id, u.username, u.image, ru.rank, ru.score
		FROM ranked_users ru
		JOIN users u ON u.id = ru.user_id
		ORDER BY ru.rank
		LIMIT $%d`, scores, rankedCTE, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Image, &e.Rank, &e.Points); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetUserRank calcule le rang d'un utilisateur; absent du classement il est classé dernier
func GetUserRank(ctx context.Context, p Period, username string) (*model.UserRank, error) {
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	scores, args := scoresCTE(p)
	args = append(args, user.ID)
	rank := model.UserRank{UserID: user.ID, Username: user.Username}

	err = database.DB.QueryRow(ctx, fmt.Sprintf(`
		WITH %s, %s,
			total_count AS (SELECT COUNT(*) AS total FROM ranked_users)
		SELECT
			COALESCE(ru.rank, (SELECT total FROM total_count) + 1),
			COALESCE(ru.score, 0),
			(SELECT total FROM total_count)
		FROM (SELECT $%d::bigint AS uid) target
		LEFT JOIN ranked_users ru ON ru.user_id = target.uid`, scores, rankedCTE, len(args)), args...,
	).Scan(&rank.Rank, &rank.Points, &rank.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("user rank: %w", err)
	}

	rank.Percentile = Percentile(rank.Rank, rank.TotalUsers)
	return &rank, nil
}

// Percentile position en pourcentage (1 = meilleur), 100 si personne n'est classé
func Percentile(rank, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(rank) / float64(total) * 100
}

// NearbyUsers renvoie les utilisateurs classés à +/- span places
func NearbyUsers(ctx context.Context, p Period, username string, span int) ([]model.LeaderboardEntry, error) {
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	scores, args := scoresCTE(p)
	args = append(args, user.ID, span)
	n := len(args)

	rows, err := database.DB.Query(ctx, fmt.Sprintf(`
		WITH %s, %s,
			target_rank AS (SELECT rank FROM ranked_users WHERE user_id = $%d)
		SELECT ru.user_id, u.username, u.image, ru.rank, ru.score
		FROM ranked_users ru
		JOIN users u ON u.id = ru.user_id
		WHERE ru.rank BETWEEN (SELECT rank FROM target_rank) - $%d AND (SELECT rank FROM target_rank) + $%d
		ORDER BY ru.rank`, scores, rankedCTE, n-1, n, n), args...)
	if err != nil {
		return nil, fmt.Errorf("query nearby users: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Image, &e.Rank, &e.Points); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
