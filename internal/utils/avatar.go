package utils

import (
	"fmt"
	"net/url"
)

// DefaultAvatarURL renvoie un avatar DiceBear (initiales) pour un nouvel utilisateur
func DefaultAvatarURL(username string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/initials/svg?seed=%s", url.QueryEscape(username))
}
