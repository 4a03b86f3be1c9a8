package utils

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/database"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/scanner"
)

const userSelect = `SELECT ` + scanner.UserColumns + ` FROM users u`

// CreateUser crée un nouvel utilisateur avec un avatar par défaut
func CreateUser(ctx context.Context, username, email, passwordHash string) (*model.UserProfile, error) {
	var id int64
	err := database.DB.QueryRow(ctx,
		`INSERT INTO users(username, email, password_hash, image)
		 VALUES($1, $2, $3, $4)
		 RETURNING id`,
		username, email, passwordHash, DefaultAvatarURL(username),
	).Scan(&id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, game.Conflict("username or email already taken")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return GetUserByID(ctx, id)
}

// FindUserForLogin recherche un utilisateur par username ou email et retourne aussi le hash du mot de passe
func FindUserForLogin(ctx context.Context, login string) (*model.UserProfile, string, error) {
	var passwordHash string
	var id int64
	err := database.DB.QueryRow(ctx,
		`SELECT id, password_hash FROM users WHERE (username = $1 OR email = $1) AND is_active`,
		login,
	).Scan(&id, &passwordHash)
	if err != nil {
		return nil, "", database.MapError(err, "user")
	}

	user, err := GetUserByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return user, passwordHash, nil
}

func GetUserByID(ctx context.Context, id int64) (*model.UserProfile, error) {
	user, err := scanner.ScanUserProfile(database.DB.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id))
	if err != nil {
		return nil, database.MapError(err, fmt.Sprintf("user %d", id))
	}
	return user, nil
}

func GetUserByUsername(ctx context.Context, username string) (*model.UserProfile, error) {
	user, err := scanner.ScanUserProfile(database.DB.QueryRow(ctx, userSelect+` WHERE u.username = $1`, username))
	if err != nil {
		return nil, database.MapError(err, fmt.Sprintf("user %q", username))
	}
	return user, nil
}

// ListUsers liste les utilisateurs actifs par username
func ListUsers(ctx context.Context) ([]model.UserProfile, error) {
	rows, err := database.DB.Query(ctx, userSelect+` WHERE u.is_active ORDER BY u.username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]model.UserProfile, error) {
	defer rows.Close()
	users := []model.UserProfile{}
	for rows.Next() {
		u, err := scanner.ScanUserProfile(rows)
		if err != nil {
			return nil, err
		}
		u.Email = ""
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ProfileUpdate contient les champs modifiables du profil (nil = inchangé)
type ProfileUpdate struct {
	FirstName  *string                  `json:"firstName" validate:"omitempty,max=150"`
	LastName   *string                  `json:"lastName" validate:"omitempty,max=150"`
	Bio        *string                  `json:"bio" validate:"omitempty,max=500"`
	Visibility *model.ProfileVisibility `json:"visibility" validate:"omitempty,oneof=0 1"`
}

func UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*model.UserProfile, error) {
	if upd.Bio != nil {
		bio := SanitizeText(*upd.Bio)
		upd.Bio = &bio
	}
	_, err := database.DB.Exec(ctx,
		`UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			bio = COALESCE($4, bio),
			visibility = COALESCE($5, visibility),
			updated_at = NOW()
		 WHERE id = $1`,
		userID, upd.FirstName, upd.LastName, upd.Bio, visibilityParam(upd.Visibility),
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return GetUserByID(ctx, userID)
}

func visibilityParam(v *model.ProfileVisibility) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

// UserImageField désigne la colonne d'image modifiée
type UserImageField string

const (
	UserAvatar UserImageField = "image"
	UserCover  UserImageField = "cover_image"
)

func SetUserImage(ctx context.Context, userID int64, field UserImageField, url string) error {
	if field != UserAvatar && field != UserCover {
		return fmt.Errorf("unknown image field %q", field)
	}
	_, err := database.DB.Exec(ctx,
		`UPDATE users SET `+string(field)+` = $2, updated_at = NOW() WHERE id = $1`,
		userID, url,
	)
	return database.MapError(err, "user image")
}
