package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

// Context keys
type contextKey string

const (
	userContextKey  = contextKey("user")
	tokenContextKey = contextKey("token")
)

// TokenParser vérifie un access token (utils.TokenIssuer)
type TokenParser interface {
	Parse(raw string) (*model.AuthUser, error)
}

// AuthMiddleware valide le token et injecte l'utilisateur dans le contexte
func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := utils.BearerToken(r)
			if err != nil {
				utils.DomainError(w, game.Unauthenticated(err.Error()))
				return
			}

			user, err := tokens.Parse(token)
			if err != nil {
				utils.DomainError(w, game.Unauthenticated("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, *user)
			ctx = context.WithValue(ctx, tokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth injecte l'utilisateur si un token valide est présent, sans jamais rejeter
func OptionalAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, err := utils.BearerToken(r); err == nil {
				if user, err := tokens.Parse(token); err == nil {
					r = r.WithContext(WithUser(r.Context(), *user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser place l'utilisateur dans le contexte
func WithUser(ctx context.Context, user model.AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext récupère l'utilisateur depuis le contexte de la requête
func GetUserFromContext(r *http.Request) (model.AuthUser, error) {
	user, ok := r.Context().Value(userContextKey).(model.AuthUser)
	if !ok {
		return model.AuthUser{}, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// UserID renvoie l'ID de l'utilisateur connecté, 0 pour un visiteur anonyme
func UserID(r *http.Request) int64 {
	user, err := GetUserFromContext(r)
	if err != nil {
		return 0
	}
	return user.ID
}

// GetTokenFromContext récupère le token depuis le contexte de la requête
func GetTokenFromContext(r *http.Request) (string, error) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	if !ok || token == "" {
		return "", fmt.Errorf("token not found in context")
	}
	return token, nil
}
