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

// CanViewAuthor applique la règle de visibilité des profils privés:
// seuls l'auteur et ses followers voient ses posts.
func CanViewAuthor(viewerID, authorID int64, visibility model.ProfileVisibility, follows bool) bool {
	return visibility == model.ProfilePublic || viewerID == authorID || follows
}

// checkPostAccess charge le post et vérifie que viewerID peut le voir
func checkPostAccess(ctx context.Context, q database.Querier, viewerID, postID int64) (*model.Post, error) {
	post, err := scanner.ScanPost(q.QueryRow(ctx, scanner.PostSelect+` WHERE p.id = $2`, viewerID, postID))
	if err != nil {
		return nil, database.MapError(err, fmt.Sprintf("post %d", postID))
	}

	var visibility int
	if err := q.QueryRow(ctx, `SELECT visibility FROM users WHERE id = $1`, post.AuthorID).Scan(&visibility); err != nil {
		return nil, database.MapError(err, "post author")
	}
	follows, err := IsFollowing(ctx, q, viewerID, post.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("check follow: %w", err)
	}
	if !CanViewAuthor(viewerID, post.AuthorID, model.ProfileVisibility(visibility), follows) {
		return nil, game.Unauthorized("you must be following the author to access this private post")
	}
	return post, nil
}

// checkPostAuthor charge le post et vérifie que actorID en est l'auteur
func checkPostAuthor(ctx context.Context, q database.Querier, actorID, postID int64) (*model.Post, error) {
	post, err := scanner.ScanPost(q.QueryRow(ctx, scanner.PostSelect+` WHERE p.id = $2`, actorID, postID))
	if err != nil {
		return nil, database.MapError(err, fmt.Sprintf("post %d", postID))
	}
	if post.AuthorID != actorID {
		return nil, game.Unauthorized("only the post author can do that")
	}
	return post, nil
}

// NewPost contient les champs d'un post à créer
type NewPost struct {
	Caption     string
	GPSTag      string
	ImageURL    string
	Tags        []string
	TaggedUsers []string
	ChannelID   *int64
}

// CreatePost crée le post avec ses tags (créés si besoin) et ses utilisateurs tagués
func CreatePost(ctx context.Context, authorID int64, in NewPost) (*model.Post, error) {
	var postID int64
	err := database.WithTx(ctx, func(tx pgx.Tx) error {
		if in.ChannelID != nil {
			if err := requireChannel(ctx, tx, *in.ChannelID); err != nil {
				return err
			}
		}

		err := tx.QueryRow(ctx,
			`INSERT INTO posts (author_id, caption, gps_tag, image_url, channel_id)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			authorID, SanitizeText(in.Caption), in.GPSTag, in.ImageURL, in.ChannelID,
		).Scan(&postID)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}

		if err := addPostTags(ctx, tx, postID, in.Tags); err != nil {
			return err
		}
		return addTaggedUsers(ctx, tx, postID, in.TaggedUsers)
	})
	if err != nil {
		return nil, err
	}
	return GetPost(ctx, authorID, postID)
}

func requireChannel(ctx context.Context, q database.Querier, channelID int64) error {
	var id int64
	err := q.QueryRow(ctx, `SELECT id FROM channels WHERE id = $1`, channelID).Scan(&id)
	return database.MapError(err, fmt.Sprintf("channel %d", channelID))
}

func addPostTags(ctx context.Context, q database.Querier, postID int64, tags []string) error {
	for _, name := range normalizeTags(tags) {
		tagID, err := EnsureTag(ctx, q, name)
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID, tagID,
		); err != nil {
			return fmt.Errorf("tag post: %w", err)
		}
	}
	return nil
}

func addTaggedUsers(ctx context.Context, q database.Querier, postID int64, usernames []string) error {
	ids, err := ResolveUsernames(ctx, q, usernames)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := q.Exec(ctx,
			`INSERT INTO post_tagged_users (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID, id,
		); err != nil {
			return fmt.Errorf("tag user: %w", err)
		}
	}
	return nil
}

func normalizeTags(tags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// GetPost renvoie un post si viewerID a le droit de le voir
func GetPost(ctx context.Context, viewerID, postID int64) (*model.Post, error) {
	return checkPostAccess(ctx, database.DB, viewerID, postID)
}

func queryPosts(ctx context.Context, where string, args ...interface{}) ([]model.Post, error) {
	rows, err := database.DB.Query(ctx, scanner.PostSelect+` `+where+` ORDER BY p.date_created DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanner.ScanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// ListPublicPosts liste les posts actifs des profils publics
func ListPublicPosts(ctx context.Context, viewerID int64) ([]model.Post, error) {
	return queryPosts(ctx, `WHERE a.visibility = 0 AND p.visibility = 0`, viewerID)
}

// Feed liste les posts actifs de l'utilisateur et des comptes qu'il suit
func Feed(ctx context.Context, viewerID int64) ([]model.Post, error) {
	return queryPosts(ctx,
		`WHERE p.visibility = 0 AND (p.author_id = $1
			OR p.author_id IN (SELECT followee_id FROM user_follows WHERE follower_id = $1))`,
		viewerID)
}

// PostsByTags liste les posts actifs portant au moins un des tags, visibles par viewerID
func PostsByTags(ctx context.Context, viewerID int64, tags []string) ([]model.Post, error) {
	return queryPosts(ctx,
		`WHERE p.visibility = 0
			AND EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
				WHERE pt.post_id = p.id AND t.name = ANY($2))
			AND (a.visibility = 0 OR p.author_id = $1
				OR p.author_id IN (SELECT followee_id FROM user_follows WHERE follower_id = $1))`,
		viewerID, normalizeTags(tags))
}

// PostsByUser liste les posts d'un utilisateur si son profil est visible
func PostsByUser(ctx context.Context, viewerID int64, username string) ([]model.Post, error) {
	author, err := GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	follows, err := IsFollowing(ctx, database.DB, viewerID, author.ID)
	if err != nil {
		return nil, err
	}
	if !CanViewAuthor(viewerID, author.ID, author.Visibility, follows) {
		return nil, game.Unauthorized("this profile is private")
	}
	return queryPosts(ctx, `WHERE p.author_id = $2 AND (p.visibility = 0 OR p.author_id = $1)`, viewerID, author.ID)
}

// IncrementViews incrémente le compteur de vues et renvoie la nouvelle valeur
func IncrementViews(ctx context.Context, viewerID, postID int64) (int, error) {
	if _, err := checkPostAccess(ctx, database.DB, viewerID, postID); err != nil {
		return 0, err
	}
	var views int
	err := database.DB.QueryRow(ctx,
		`UPDATE posts SET views = views + 1 WHERE id = $1 RETURNING views`, postID,
	).Scan(&views)
	return views, database.MapError(err, "post views")
}

func DeletePost(ctx context.Context, actorID, postID int64) error {
	return database.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := checkPostAuthor(ctx, tx, actorID, postID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID)
		return database.MapError(err, "post")
	})
}

func EditCaption(ctx context.Context, actorID, postID int64, caption string) (*model.Post, error) {
	return editPost(ctx, actorID, postID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `UPDATE posts SET caption = $2 WHERE id = $1`, postID, SanitizeText(caption))
		return err
	})
}

func EditVisibility(ctx context.Context, actorID, postID int64, visibility model.PostVisibility) (*model.Post, error) {
	return editPost(ctx, actorID, postID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `UPDATE posts SET visibility = $2 WHERE id = $1`, postID, int(visibility))
		return err
	})
}

// EditChannel déplace le post dans un channel (nil le retire de tout channel)
func EditChannel(ctx context.Context, actorID, postID int64, channelID *int64) (*model.Post, error) {
	return editPost(ctx, actorID, postID, func(tx pgx.Tx) error {
		if channelID != nil {
			if err := requireChannel(ctx, tx, *channelID); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `UPDATE posts SET channel_id = $2 WHERE id = $1`, postID, channelID)
		return err
	})
}

func EditTags(ctx context.Context, actorID, postID int64, modifier model.Modifier, tags []string) (*model.Post, error) {
	return editPost(ctx, actorID, postID, func(tx pgx.Tx) error {
		if modifier == model.ModifierAdd {
			return addPostTags(ctx, tx, postID, tags)
		}
		_, err := tx.Exec(ctx,
			`DELETE FROM post_tags WHERE post_id = $1
			 AND tag_id IN (SELECT id FROM tags WHERE name = ANY($2))`,
			postID, normalizeTags(tags),
		)
		return err
	})
}

func EditTaggedUsers(ctx context.Context, actorID, postID int64, modifier model.Modifier, usernames []string) (*model.Post, error) {
	return editPost(ctx, actorID, postID, func(tx pgx.Tx) error {
		if modifier == model.ModifierAdd {
			return addTaggedUsers(ctx, tx, postID, usernames)
		}
		_, err := tx.Exec(ctx,
			`DELETE FROM post_tagged_users WHERE post_id = $1
			 AND user_id IN (SELECT id FROM users WHERE username = ANY($2))`,
			postID, usernames,
		)
		return err
	})
}

func editPost(ctx context.Context, actorID, postID int64, fn func(tx pgx.Tx) error) (*model.Post, error) {
	err := database.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := checkPostAuthor(ctx, tx, actorID, postID); err != nil {
			return err
		}
		return fn(tx)
	})
	if err != nil {
		return nil, err
	}
	return GetPost(ctx, actorID, postID)
}

// AddComment commente un post visible; replyTo doit appartenir au même post
func AddComment(ctx context.Context, actorID, postID int64, text string, replyTo *int64) (*model.Comment, error) {
	text = SanitizeText(text)
	if text == "" {
		return nil, game.InvalidArgument("comment text is required")
	}

	var commentID int64
	err := database.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := checkPostAccess(ctx, tx, actorID, postID); err != nil {
			return err
		}
		if replyTo != nil {
			var parentPost int64
			err := tx.QueryRow(ctx, `SELECT post_id FROM comments WHERE id = $1`, *replyTo).Scan(&parentPost)
			if err != nil {
				return database.MapError(err, fmt.Sprintf("comment %d", *replyTo))
			}
			if parentPost != postID {
				return game.InvalidArgument("reply must target a comment of the same post")
			}
		}
		return tx.QueryRow(ctx,
			`INSERT INTO comments (post_id, author_id, content, reply_to) VALUES ($1, $2, $3, $4) RETURNING id`,
			postID, actorID, text, replyTo,
		).Scan(&commentID)
	})
	if err != nil {
		return nil, err
	}

	c, err := scanner.ScanComment(database.DB.QueryRow(ctx, scanner.CommentSelect+` WHERE cm.id = $1`, commentID))
	if err != nil {
		return nil, database.MapError(err, "comment")
	}
	return c, nil
}

// ListComments liste les commentaires d'un post, les plus anciens d'abord
func ListComments(ctx context.Context, viewerID, postID int64) ([]model.Comment, error) {
	if _, err := checkPostAccess(ctx, database.DB, viewerID, postID); err != nil {
		return nil, err
	}
	rows, err := database.DB.Query(ctx,
		scanner.CommentSelect+` WHERE cm.post_id = $1 ORDER BY cm.date_created, cm.id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanner.ScanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}
