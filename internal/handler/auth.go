package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResponse est renvoyé par signup, login et refresh
type AuthResponse struct {
	User         *model.UserProfile `json:"user,omitempty"`
	AccessToken  string             `json:"accessToken"`
	ExpiresAt    time.Time          `json:"expiresAt"`
	RefreshToken string             `json:"refreshToken"`
}

// AuthHandler gère l'inscription et les sessions (JWT + refresh token)
type AuthHandler struct {
	tokens     *utils.TokenIssuer
	refreshTTL time.Duration
}

func NewAuthHandler(tokens *utils.TokenIssuer, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{tokens: tokens, refreshTTL: refreshTTL}
}

var errInvalidCredentials = &game.Error{
	HTTP:    http.StatusUnauthorized,
	Code:    game.ErrUnauthenticated.Code,
	Message: "invalid credentials",
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not hash password", err)
		return
	}

	user, err := utils.CreateUser(r.Context(), req.Username, strings.ToLower(req.Email), string(hashed))
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	logger.Success("Nouvel utilisateur %s (ID: %d)", user.Username, user.ID)

	resp, err := h.session(r, user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not create session", err)
		return
	}
	utils.Created(w, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}

	user, hash, err := utils.FindUserForLogin(r.Context(), req.Login)
	if err != nil {
		if errors.Is(err, game.ErrNotFound) {
			utils.DomainError(w, errInvalidCredentials)
			return
		}
		utils.DomainError(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		utils.DomainError(w, errInvalidCredentials)
		return
	}

	resp, err := h.session(r, user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not create session", err)
		return
	}
	utils.Success(w, resp)
}

// Refresh échange un refresh token contre un nouvel access token (rotation)
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := utils.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	if err := utils.RevokeRefreshToken(r.Context(), req.RefreshToken); err != nil {
		utils.DomainError(w, err)
		return
	}

	user, err := utils.GetUserByID(r.Context(), userID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}

	resp, err := h.session(r, user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not create session", err)
		return
	}
	resp.User = nil
	utils.Success(w, resp)
}

// Logout révoque le refresh token fourni, ou toutes les sessions avec ?all=true
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("all") == "true" {
		if err := utils.RevokeAllUserRefreshTokens(r.Context(), user.ID); err != nil {
			utils.DomainError(w, err)
			return
		}
		utils.Message(w, "logged out from all sessions")
		return
	}

	var req RefreshRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.RevokeRefreshToken(r.Context(), req.RefreshToken); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Message(w, "logged out")
}

// Me renvoie le profil de l'utilisateur connecté
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	profile, err := utils.GetUserByID(r.Context(), user.ID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, profile)
}

func (h *AuthHandler) session(r *http.Request, user *model.UserProfile) (*AuthResponse, error) {
	access, expiresAt, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	ip, ua := utils.ExtractIPAndUserAgent(r)
	refresh, err := utils.CreateRefreshToken(r.Context(), user.ID, ip, ua, h.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  access,
		ExpiresAt:    expiresAt,
		RefreshToken: refresh,
	}, nil
}
