package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/database"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
)

// CreateRefreshToken crée un nouveau refresh token pour un utilisateur.
// Seul le hash est stocké.
func CreateRefreshToken(ctx context.Context, userID int64, ipAddress, userAgent string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	now := time.Now()

	var refreshTokenID int64
	err := database.DB.QueryRow(ctx,
		`INSERT INTO refresh_tokens(user_id, token_hash, ip_address, user_agent, expires_at, created_at)
		 VALUES($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		userID, hashToken(token), ipAddress, userAgent, now.Add(ttl), now,
	).Scan(&refreshTokenID)
	if err != nil {
		return "", fmt.Errorf("erreur lors de la création du refresh token: %w", err)
	}

	logger.Debug("Refresh token %d créé pour l'utilisateur %d", refreshTokenID, userID)
	return token, nil
}

// ValidateRefreshToken valide un refresh token et retourne l'ID utilisateur
func ValidateRefreshToken(ctx context.Context, token string) (int64, error) {
	var userID int64
	var expiresAt time.Time
	var revokedAt *time.Time

	err := database.DB.QueryRow(ctx,
		`SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=$1`,
		hashToken(token),
	).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		return 0, game.ErrUnauthenticated
	}

	if revokedAt != nil || time.Now().After(expiresAt) {
		return 0, game.ErrUnauthenticated
	}

	return userID, nil
}

// RevokeRefreshToken révoque un refresh token
func RevokeRefreshToken(ctx context.Context, token string) error {
	res, err := database.DB.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at=NOW()
		 WHERE token_hash=$1 AND revoked_at IS NULL`,
		hashToken(token),
	)
	if err != nil {
		return fmt.Errorf("erreur lors de la révocation: %w", err)
	}
	if res.RowsAffected() == 0 {
		return game.NotFound("refresh token not found or already revoked")
	}
	return nil
}

// RevokeAllUserRefreshTokens révoque tous les refresh tokens d'un utilisateur
func RevokeAllUserRefreshTokens(ctx context.Context, userID int64) error {
	res, err := database.DB.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=$1 AND revoked_at IS NULL`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("erreur lors de la révocation: %w", err)
	}

	logger.Info("%d refresh tokens révoqués pour l'utilisateur %d", res.RowsAffected(), userID)
	return nil
}

// hashToken génère un hash SHA-256 du token
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
