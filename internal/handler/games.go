package handler

import (
	"context"
	"net/http"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/middleware"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/services"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

type CreateGameRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

type ProposeRequest struct {
	PostID        int64 `json:"postId" validate:"required,gt=0"`
	CreatorPostID int64 `json:"creatorPostId" validate:"required,gt=0"`
}

type DecisionRequest struct {
	Decision model.Decision `json:"decision" validate:"required,oneof=ACCEPT REJECT"`
}

// StandingsCache garde le classement d'un game entre deux décisions.
// Version est lue avant la requête SQL et Set écrit sous cette version: une
// décision validée entre les deux change la version et l'écriture est perdue.
type StandingsCache interface {
	Version(ctx context.Context, gameID int64) (int64, bool)
	Get(ctx context.Context, gameID, version int64) (*model.GameLeaderboard, bool)
	Set(ctx context.Context, version int64, board *model.GameLeaderboard)
}

// GameHandler expose le workflow des games (création, soumissions, décisions, classement)
type GameHandler struct {
	games    *game.Service
	cache    StandingsCache
	uploader services.ImageUploader
}

func NewGameHandler(games *game.Service, cache StandingsCache, uploader services.ImageUploader) *GameHandler {
	return &GameHandler{games: games, cache: cache, uploader: uploader}
}

// CreateGame crée un game dans le channel {id}
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	channelID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CreateGameRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := h.games.CreateGame(r.Context(), channelID, req.Name, utils.SanitizeText(req.Description), me.ID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Created(w, g)
}

func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	g, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, g)
}

// GetGames liste tous les games
func GetGames(w http.ResponseWriter, r *http.Request) {
	games, err := utils.ListGames(r.Context(), 0)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, games)
}

// GetGamePosts liste les posts acceptés d'un game
func GetGamePosts(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	posts, err := utils.GamePosts(r.Context(), middleware.UserID(r), gameID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, posts)
}

func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	gameID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.games.DeleteGame(r.Context(), gameID, me.ID); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Message(w, "game deleted")
}

func (h *GameHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	gameID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req DescriptionRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.games.ChangeDescription(r.Context(), gameID, utils.SanitizeText(req.Description), me.ID); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Message(w, "description updated")
}

// UploadImage vérifie que l'utilisateur est le créateur avant l'upload
func (h *GameHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	gameID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	g, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	if err := game.CanManageGame(g, me.ID).Err(); err != nil {
		utils.DomainError(w, err)
		return
	}

	url, err := uploadImage(r.Context(), h.uploader, r, "image", services.ImageGame, gameID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	if err := h.games.ChangeImage(r.Context(), gameID, url, me.ID); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, map[string]string{"url": url})
}

func (h *GameHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	gameID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SubscriptionRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.games.Subscription(r.Context(), gameID, req.Modifier, me.ID); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Message(w, "subscription updated")
}

// Propose soumet un post au game en réponse au post du créateur
func (h *GameHandler) Propose(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	gameID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ProposeRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}

	pending, err := h.games.ProposeSubmission(r.Context(), gameID, req.PostID, req.CreatorPostID, me.ID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Created(w, pending)
}

func (h *GameHandler) PendingSubmissions(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	gameID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	pending, err := h.games.PendingSubmissions(r.Context(), gameID, me.ID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, pending)
}

// Decide accepte ou rejette la soumission {id}
func (h *GameHandler) Decide(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	pendingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req DecisionRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.games.Decide(r.Context(), pendingID, req.Decision, me.ID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, result)
}

// Leaderboard renvoie l'historique et les totaux du game, servis depuis le cache si possible
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var version int64
	cached := false
	if h.cache != nil {
		version, cached = h.cache.Version(r.Context(), gameID)
	}
	if cached {
		if board, hit := h.cache.Get(r.Context(), gameID, version); hit {
			utils.Success(w, board)
			return
		}
	}

	board, err := h.games.Leaderboard(r.Context(), gameID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	if cached {
		h.cache.Set(r.Context(), version, board)
	}
	utils.Success(w, board)
}
