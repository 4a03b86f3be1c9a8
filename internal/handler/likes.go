package handler

import (
	"net/http"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/middleware"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

type UpvoteRequest struct {
	Modifier model.Modifier `json:"modifier" validate:"required,oneof=ADD REMOVE"`
}

// UpvotePost ajoute ou retire l'upvote de l'utilisateur; l'auteur gagne ou perd un point
func UpvotePost(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpvoteRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := utils.UpvotePost(r.Context(), me.ID, postID, req.Modifier)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, info)
}

func GetUpvoteInfo(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	info, err := utils.GetUpvoteInfo(r.Context(), middleware.UserID(r), postID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, info)
}

// GetMyUpvotes liste les IDs des posts upvotés par l'utilisateur
func GetMyUpvotes(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	ids, err := utils.GetUserUpvotes(r.Context(), me.ID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, ids)
}
