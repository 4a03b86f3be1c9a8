package model

import "time"

// RefreshToken représente un refresh token en base de données
type RefreshToken struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	TokenHash string     `json:"-"` // Ne jamais exposer le hash dans l'API
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	IPAddress string     `json:"ipAddress,omitempty"`
	UserAgent string     `json:"userAgent,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// AuthResponse représente la réponse complète lors de l'authentification
type AuthResponse struct {
	User         *UserProfile `json:"user"`
	Token        string       `json:"token"`
	ExpiresAt    time.Time    `json:"expiresAt"`
	RefreshToken string       `json:"refreshToken,omitempty"`
}
