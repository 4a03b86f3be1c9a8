package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

// GetLeaderboard récupère le classement général (params: period, limit)
func GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	period, err := utils.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		utils.DomainError(w, err)
		return
	}

	entries, err := utils.GlobalLeaderboard(r.Context(), period, queryInt(r, "limit", 50, 200))
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, entries)
}

// GetUserRank récupère le rang d'un utilisateur dans le classement
func GetUserRank(w http.ResponseWriter, r *http.Request) {
	period, err := utils.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		utils.DomainError(w, err)
		return
	}

	rank, err := utils.GetUserRank(r.Context(), period, mux.Vars(r)["username"])
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, rank)
}

// GetNearbyUsers récupère les utilisateurs proches dans le classement (params: period, range)
func GetNearbyUsers(w http.ResponseWriter, r *http.Request) {
	period, err := utils.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		utils.DomainError(w, err)
		return
	}

	entries, err := utils.NearbyUsers(r.Context(), period, mux.Vars(r)["username"], queryInt(r, "range", 5, 50))
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, entries)
}
