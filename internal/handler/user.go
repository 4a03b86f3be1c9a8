package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/middleware"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

func GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := utils.ListUsers(r.Context())
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, users)
}

// GetUser renvoie un profil par username; l'email n'est visible que par son propriétaire
func GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := utils.GetUserByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	if user.ID != middleware.UserID(r) {
		user.Email = ""
	}
	utils.Success(w, user)
}

func UpdateMe(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}

	var upd utils.ProfileUpdate
	if err := utils.DecodeAndValidate(r, &upd); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := utils.UpdateProfile(r.Context(), me.ID, upd)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, user)
}

func FollowUser(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := utils.Follow(r.Context(), me.ID, mux.Vars(r)["username"]); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Message(w, "followed")
}

func UnfollowUser(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := utils.Unfollow(r.Context(), me.ID, mux.Vars(r)["username"]); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Message(w, "unfollowed")
}

func GetFollowers(w http.ResponseWriter, r *http.Request) {
	users, err := utils.Followers(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, users)
}

func GetFollowing(w http.ResponseWriter, r *http.Request) {
	users, err := utils.Following(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, users)
}

// GetUserPosts applique la visibilité du profil (privé: auteur et followers)
func GetUserPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := utils.PostsByUser(r.Context(), middleware.UserID(r), mux.Vars(r)["username"])
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, posts)
}
