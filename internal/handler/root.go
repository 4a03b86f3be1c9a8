package handler

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

type routeDoc struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// RouteIndex affiche toutes les routes disponibles de l'API
func RouteIndex(router *mux.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var routes []routeDoc
		err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
			path, err := route.GetPathTemplate()
			if err != nil {
				return nil
			}
			methods, err := route.GetMethods()
			if err != nil {
				return nil
			}
			for _, m := range methods {
				routes = append(routes, routeDoc{Method: m, Path: path})
			}
			return nil
		})
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "could not list routes", err)
			return
		}

		sort.SliceStable(routes, func(i, j int) bool {
			if routes[i].Path != routes[j].Path {
				return routes[i].Path < routes[j].Path
			}
			return routes[i].Method < routes[j].Method
		})

		utils.Success(w, map[string]interface{}{
			"name":    "SocialPixel API",
			"version": "1.0.0",
			"status":  "running",
			"routes":  routes,
		})
	}
}
