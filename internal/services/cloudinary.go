package services

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/config"
)

// ImageKind détermine le dossier et la transformation appliqués à un upload
type ImageKind string

const (
	ImagePost          ImageKind = "posts"
	ImageAvatar        ImageKind = "avatars"
	ImageCover         ImageKind = "covers"
	ImageChannelCover  ImageKind = "channel_covers"
	ImageChannelAvatar ImageKind = "channel_avatars"
	ImageGame          ImageKind = "games"
	ImageChat          ImageKind = "chat"
)

var transformations = map[ImageKind]string{
	ImageAvatar:        "c_fill,g_face,h_500,w_500",
	ImageChannelAvatar: "c_fill,h_500,w_500",
	ImageCover:         "c_fill,h_600,w_1800",
	ImageChannelCover:  "c_fill,h_600,w_1800",
	ImageGame:          "c_fill,h_800,w_1200",
}

// ImageUploader stocke une image et renvoie son URL publique
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, kind ImageKind, ownerID int64) (string, error)
}

// CloudinaryService handles all Cloudinary operations
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

var _ ImageUploader = (*CloudinaryService)(nil)

// NewCloudinaryService creates a new Cloudinary service instance
func NewCloudinaryService(cfg *config.Config) (*CloudinaryService, error) {
	if !cfg.CloudinaryEnabled() {
		return nil, fmt.Errorf("cloudinary configuration is missing")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld: cld,
	}, nil
}

// PublicID construit le chemin Cloudinary d'une image.
// Les avatars et couvertures écrasent l'image précédente du propriétaire.
func PublicID(kind ImageKind, ownerID int64) (string, bool) {
	switch kind {
	case ImageAvatar, ImageCover, ImageChannelCover, ImageChannelAvatar, ImageGame:
		return fmt.Sprintf("%s/%d", kind, ownerID), true
	default:
		return fmt.Sprintf("%s/%d-%s", kind, ownerID, uuid.NewString()), false
	}
}

// Upload envoie une image dans le dossier correspondant à kind
func (s *CloudinaryService) Upload(ctx context.Context, file io.Reader, kind ImageKind, ownerID int64) (string, error) {
	publicID, overwrite := PublicID(kind, ownerID)

	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         "socialpixel",
		Overwrite:      &overwrite,
		ResourceType:   "image",
		Transformation: transformations[kind],
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s image: %w", kind, err)
	}

	return uploadResult.SecureURL, nil
}
