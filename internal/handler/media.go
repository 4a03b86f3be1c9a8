package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/services"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

// MediaHandler regroupe les endpoints qui reçoivent une image (multipart)
type MediaHandler struct {
	uploader services.ImageUploader
}

// NewMediaHandler accepte un uploader nil: les uploads répondent alors 503
func NewMediaHandler(uploader services.ImageUploader) *MediaHandler {
	return &MediaHandler{uploader: uploader}
}

// CreatePost crée un post depuis un formulaire multipart:
// image, caption, gpsTag, tags (a,b), taggedUsers (a,b), channelId
func (h *MediaHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}

	url, err := uploadImage(r.Context(), h.uploader, r, "image", services.ImagePost, me.ID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}

	in := utils.NewPost{
		Caption:     r.FormValue("caption"),
		GPSTag:      r.FormValue("gpsTag"),
		ImageURL:    url,
		Tags:        splitList(r.FormValue("tags")),
		TaggedUsers: splitList(r.FormValue("taggedUsers")),
	}
	if raw := r.FormValue("channelId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			utils.ErrorSimple(w, http.StatusBadRequest, "invalid channelId")
			return
		}
		in.ChannelID = &id
	}

	post, err := utils.CreatePost(r.Context(), me.ID, in)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	logger.Info("Post %d créé par %s", post.ID, me.Username)
	utils.Created(w, post)
}

func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	h.uploadUserImage(w, r, services.ImageAvatar, utils.UserAvatar)
}

func (h *MediaHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	h.uploadUserImage(w, r, services.ImageCover, utils.UserCover)
}

func (h *MediaHandler) uploadUserImage(w http.ResponseWriter, r *http.Request, kind services.ImageKind, field utils.UserImageField) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	url, err := uploadImage(r.Context(), h.uploader, r, "image", kind, me.ID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	if err := utils.SetUserImage(r.Context(), me.ID, field, url); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, map[string]string{"url": url})
}

func (h *MediaHandler) UploadChannelAvatar(w http.ResponseWriter, r *http.Request) {
	h.uploadChannelImage(w, r, services.ImageChannelAvatar, utils.ChannelAvatar)
}

func (h *MediaHandler) UploadChannelCover(w http.ResponseWriter, r *http.Request) {
	h.uploadChannelImage(w, r, services.ImageChannelCover, utils.ChannelCover)
}

// uploadChannelImage vérifie le rôle de modérateur avant l'upload
func (h *MediaHandler) uploadChannelImage(w http.ResponseWriter, r *http.Request, kind services.ImageKind, field utils.ChannelImageField) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	channelID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := utils.RequireChannelModerator(r.Context(), me.ID, channelID); err != nil {
		utils.DomainError(w, err)
		return
	}

	url, err := uploadImage(r.Context(), h.uploader, r, "image", kind, channelID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	if err := utils.SetChannelImage(r.Context(), me.ID, channelID, field, url); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, map[string]string{"url": url})
}

// SendChatImage envoie une image dans une room
func (h *MediaHandler) SendChatImage(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	roomID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := utils.RequireChatMember(r.Context(), me.ID, roomID); err != nil {
		utils.DomainError(w, err)
		return
	}

	url, err := uploadImage(r.Context(), h.uploader, r, "image", services.ImageChat, roomID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	msg, err := utils.SendMessage(r.Context(), me.ID, roomID, utils.NewMessage{ImageURL: &url})
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Created(w, msg)
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
