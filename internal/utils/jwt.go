package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

const tokenIssuer = "socialpixel"

type accessClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer signe et vérifie les access tokens (HS256)
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue crée un access token pour l'utilisateur
func (ti *TokenIssuer) Issue(userID int64, username string) (string, time.Time, error) {
	now := ti.now()
	expiresAt := now.Add(ti.ttl)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := tok.SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse vérifie la signature et l'expiration puis renvoie l'identité
func (ti *TokenIssuer) Parse(raw string) (*model.AuthUser, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (interface{}, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid token subject %q", claims.Subject)
	}
	return &model.AuthUser{ID: id, Username: claims.Username}, nil
}
