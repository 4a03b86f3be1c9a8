package utils

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/database"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

// UpvotePost ajoute ou retire l'upvote de userID. Un changement effectif
// fait gagner ou perdre un point à l'auteur du post.
func UpvotePost(ctx context.Context, userID, postID int64, modifier model.Modifier) (*model.UpvoteInfo, error) {
	err := database.WithTx(ctx, func(tx pgx.Tx) error {
		post, err := checkPostAccess(ctx, tx, userID, postID)
		if err != nil {
			return err
		}

		var query string
		delta := 1
		if modifier == model.ModifierAdd {
			query = `INSERT INTO post_upvotes (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		} else {
			query = `DELETE FROM post_upvotes WHERE post_id = $1 AND user_id = $2`
			delta = -1
		}

		res, err := tx.Exec(ctx, query, postID, userID)
		if err != nil {
			return fmt.Errorf("upvote: %w", err)
		}
		if res.RowsAffected() == 0 {
			return nil
		}
		return IncrementUserPoints(ctx, tx, post.AuthorID, delta)
	})
	if err != nil {
		return nil, err
	}
	return GetUpvoteInfo(ctx, userID, postID)
}

// GetUpvoteInfo récupère le nombre d'upvotes d'un post et le vote de userID
func GetUpvoteInfo(ctx context.Context, userID, postID int64) (*model.UpvoteInfo, error) {
	info := model.UpvoteInfo{PostID: postID}
	err := database.DB.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(BOOL_OR(user_id = $2), FALSE)
		FROM post_upvotes
		WHERE post_id = $1
	`, postID, userID).Scan(&info.TotalVotes, &info.UserUpvoted)
	if err != nil {
		return nil, fmt.Errorf("upvote info: %w", err)
	}
	return &info, nil
}

// GetUserUpvotes liste les posts upvotés par un utilisateur, les plus récents d'abord
func GetUserUpvotes(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := database.DB.Query(ctx, `
		SELECT post_id FROM post_upvotes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postIDs := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		postIDs = append(postIDs, id)
	}
	return postIDs, rows.Err()
}
