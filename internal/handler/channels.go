package handler

import (
	"net/http"

	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

type CreateChannelRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=2000"`
	Tags        []string `json:"tags" validate:"omitempty,dive,required,max=50"`
}

type SubscriptionRequest struct {
	Modifier model.Modifier `json:"modifier" validate:"required,oneof=ADD REMOVE"`
}

func GetChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := utils.ListChannels(r.Context())
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, channels)
}

func GetChannel(w http.ResponseWriter, r *http.Request) {
	channelID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	channel, err := utils.GetChannel(r.Context(), channelID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, channel)
}

// CreateChannel crée un channel dont l'auteur devient abonné et modérateur
func CreateChannel(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CreateChannelRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	channel, err := utils.CreateChannel(r.Context(), me.ID, req.Name, req.Description, req.Tags)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Created(w, channel)
}

func DeleteChannel(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	channelID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := utils.DeleteChannel(r.Context(), me.ID, channelID); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Message(w, "channel deleted")
}

func UpdateChannelDescription(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	channelID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req DescriptionRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ChangeChannelDescription(r.Context(), me.ID, channelID, req.Description); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Message(w, "description updated")
}

func ChannelSubscription(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	channelID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SubscriptionRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ChannelSubscription(r.Context(), me.ID, channelID, req.Modifier); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Message(w, "subscription updated")
}

// GetChannelGames liste les games d'un channel
func GetChannelGames(w http.ResponseWriter, r *http.Request) {
	channelID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	games, err := utils.ListGames(r.Context(), channelID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, games)
}
