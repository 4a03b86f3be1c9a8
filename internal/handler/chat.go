package handler

import (
	"net/http"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

type CreateChatRoomRequest struct {
	Name    string   `json:"name" validate:"max=100"`
	Members []string `json:"members" validate:"omitempty,dive,required"`
}

type MessageRequest struct {
	Text   *string `json:"text" validate:"omitempty,max=4000"`
	PostID *int64  `json:"postId" validate:"omitempty,gt=0"`
}

func CreateChatRoom(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CreateChatRoomRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	room, err := utils.CreateChatRoom(r.Context(), me.ID, req.Name, req.Members)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Created(w, room)
}

// GetChatRooms liste les rooms de l'utilisateur, la plus récemment active d'abord
func GetChatRooms(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	rooms, err := utils.ListChatRooms(r.Context(), me.ID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, rooms)
}

func GetChatRoom(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	roomID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	room, err := utils.GetChatRoom(r.Context(), me.ID, roomID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, room)
}

func GetMessages(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	roomID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	messages, err := utils.ListMessages(r.Context(), me.ID, roomID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, messages)
}

// SendMessage envoie un texte ou partage un post; les images passent par l'upload
func SendMessage(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	roomID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req MessageRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	msg, err := utils.SendMessage(r.Context(), me.ID, roomID, utils.NewMessage{Text: req.Text, PostID: req.PostID})
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Created(w, msg)
}
