package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

type CreateTagRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=500"`
}

type DescriptionRequest struct {
	Description string `json:"description" validate:"max=2000"`
}

// GetTags liste les tags, filtrés par ?q=
func GetTags(w http.ResponseWriter, r *http.Request) {
	tags, err := utils.ListTags(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, tags)
}

func GetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := utils.GetTag(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, tag)
}

func CreateTag(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	var req CreateTagRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	tag, err := utils.CreateTag(r.Context(), req.Name, req.Description)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Created(w, tag)
}

func UpdateTagDescription(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	var req DescriptionRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	tag, err := utils.ChangeTagDescription(r.Context(), mux.Vars(r)["name"], req.Description)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, tag)
}

func DeleteTag(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	if err := utils.DeleteTag(r.Context(), mux.Vars(r)["name"]); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Message(w, "tag deleted")
}
