package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/database"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/scanner"
)

// EnsureTag renvoie l'id du tag, en le créant s'il n'existe pas
func EnsureTag(ctx context.Context, q database.Querier, name string) (int64, error) {
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO tags (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure tag %q: %w", name, err)
	}
	return id, nil
}

func CreateTag(ctx context.Context, name, description string) (*model.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, game.InvalidArgument("tag name is required")
	}
	t, err := scanner.ScanTag(database.DB.QueryRow(ctx,
		`INSERT INTO tags (name, description) VALUES ($1, $2)
		 RETURNING id, name, description, created_on`,
		name, SanitizeText(description),
	))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, game.Conflict(fmt.Sprintf("tag %q already exists", name))
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return t, nil
}

func GetTag(ctx context.Context, name string) (*model.Tag, error) {
	t, err := scanner.ScanTag(database.DB.QueryRow(ctx, scanner.TagSelect+` WHERE name = $1`, name))
	if err != nil {
		return nil, database.MapError(err, fmt.Sprintf("tag %q", name))
	}
	return t, nil
}

func DeleteTag(ctx context.Context, name string) error {
	res, err := database.DB.Exec(ctx, `DELETE FROM tags WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if res.RowsAffected() == 0 {
		return game.NotFound(fmt.Sprintf("tag %q not found", name))
	}
	return nil
}

func ChangeTagDescription(ctx context.Context, name, description string) (*model.Tag, error) {
	t, err := scanner.ScanTag(database.DB.QueryRow(ctx,
		`UPDATE tags SET description = $2 WHERE name = $1
		 RETURNING id, name, description, created_on`,
		name, SanitizeText(description),
	))
	if err != nil {
		return nil, database.MapError(err, fmt.Sprintf("tag %q", name))
	}
	return t, nil
}

// ListTags liste tous les tags; query non vide filtre par sous-chaîne (insensible à la casse)
func ListTags(ctx context.Context, query string) ([]model.Tag, error) {
	sql := scanner.TagSelect + ` ORDER BY name`
	args := []interface{}{}
	if query = strings.TrimSpace(query); query != "" {
		sql = scanner.TagSelect + ` WHERE name ILIKE '%' || $1 || '%' ORDER BY name`
		args = append(args, query)
	}

	rows, err := database.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		t, err := scanner.ScanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}
