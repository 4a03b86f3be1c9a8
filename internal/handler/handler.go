package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/middleware"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/services"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

const maxUploadSize = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var errUploadsDisabled = &game.Error{
	HTTP:    http.StatusServiceUnavailable,
	Code:    "Unavailable",
	Message: "image uploads are not configured",
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.Message(w, "ok")
}

// currentUser renvoie l'utilisateur authentifié, ou écrit un 401
func currentUser(w http.ResponseWriter, r *http.Request) (model.AuthUser, bool) {
	user, err := middleware.GetUserFromContext(r)
	if err != nil {
		utils.DomainError(w, game.ErrUnauthenticated)
		return model.AuthUser{}, false
	}
	return user, true
}

// pathID lit un ID de route, ou écrit un 400
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := utils.PathID(r, name)
	if err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// uploadImage lit le fichier multipart `field` et l'envoie au stockage d'images
func uploadImage(ctx context.Context, uploader services.ImageUploader, r *http.Request, field string, kind services.ImageKind, ownerID int64) (string, error) {
	if uploader == nil {
		return "", errUploadsDisabled
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", game.InvalidArgument("invalid multipart form")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", game.InvalidArgument(fmt.Sprintf("no %s file uploaded", field))
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		return "", game.InvalidArgument("image exceeds 10MB")
	}
	if ct := header.Header.Get("Content-Type"); !allowedImageTypes[ct] {
		return "", game.InvalidArgument(fmt.Sprintf("unsupported image type %q", ct))
	}

	return uploader.Upload(ctx, file, kind, ownerID)
}
