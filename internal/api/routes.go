package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/handler"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/metrics"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/middleware"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/services"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

// Deps regroupe les services injectés dans les handlers
type Deps struct {
	Tokens         *utils.TokenIssuer
	RefreshTTL     time.Duration
	Games          *game.Service
	Cache          handler.StandingsCache
	Uploader       services.ImageUploader
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func SetupRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.LoggerMiddleware)
	r.Use(middleware.TimeoutMiddleware(d.RequestTimeout))
	r.Use(middleware.OptionalAuth(d.Tokens))

	auth := handler.NewAuthHandler(d.Tokens, d.RefreshTTL)
	media := handler.NewMediaHandler(d.Uploader)
	games := handler.NewGameHandler(d.Games, d.Cache, d.Uploader)

	// Root - API documentation
	r.HandleFunc("/", handler.RouteIndex(r)).Methods(http.MethodGet)
	r.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// Auth
	r.HandleFunc("/auth/signup", auth.Signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", auth.Refresh).Methods(http.MethodPost)

	// Users
	r.HandleFunc("/users", handler.GetUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/{username}", handler.GetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{username}/followers", handler.GetFollowers).Methods(http.MethodGet)
	r.HandleFunc("/users/{username}/following", handler.GetFollowing).Methods(http.MethodGet)
	r.HandleFunc("/users/{username}/posts", handler.GetUserPosts).Methods(http.MethodGet)

	// Posts
	r.HandleFunc("/posts", handler.ListPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/tags", handler.GetPostsByTags).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id:[0-9]+}", handler.GetPost).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id:[0-9]+}/views", handler.AddPostView).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id:[0-9]+}/comments", handler.GetComments).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id:[0-9]+}/upvotes", handler.GetUpvoteInfo).Methods(http.MethodGet)

	// Tags
	r.HandleFunc("/tags", handler.GetTags).Methods(http.MethodGet)
	r.HandleFunc("/tags/{name}", handler.GetTag).Methods(http.MethodGet)

	// Channels
	r.HandleFunc("/channels", handler.GetChannels).Methods(http.MethodGet)
	r.HandleFunc("/channels/{id:[0-9]+}", handler.GetChannel).Methods(http.MethodGet)
	r.HandleFunc("/channels/{id:[0-9]+}/games", handler.GetChannelGames).Methods(http.MethodGet)

	// Games
	r.HandleFunc("/games", handler.GetGames).Methods(http.MethodGet)
	r.HandleFunc("/games/{id:[0-9]+}", games.GetGame).Methods(http.MethodGet)
	r.HandleFunc("/games/{id:[0-9]+}/posts", handler.GetGamePosts).Methods(http.MethodGet)
	r.HandleFunc("/games/{id:[0-9]+}/leaderboard", games.Leaderboard).Methods(http.MethodGet)

	// Leaderboard
	r.HandleFunc("/leaderboard", handler.GetLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard/users/{username}", handler.GetUserRank).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard/users/{username}/nearby", handler.GetNearbyUsers).Methods(http.MethodGet)

	// Enregistré en dernier: les routes publiques de même chemin sont essayées d'abord
	authenticatedRoutes := r.PathPrefix("/").Subrouter()
	authenticatedRoutes.Use(middleware.AuthMiddleware(d.Tokens))

	authenticatedRoutes.HandleFunc("/auth/logout", auth.Logout).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/me", auth.Me).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/me", handler.UpdateMe).Methods(http.MethodPatch)
	authenticatedRoutes.HandleFunc("/me/avatar", media.UploadAvatar).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/me/cover", media.UploadCover).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/me/feed", handler.GetFeed).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/me/upvotes", handler.GetMyUpvotes).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/users/{username}/follow", handler.FollowUser).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/users/{username}/follow", handler.UnfollowUser).Methods(http.MethodDelete)

	authenticatedRoutes.HandleFunc("/posts", media.CreatePost).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/posts/{id:[0-9]+}", handler.DeletePost).Methods(http.MethodDelete)
	authenticatedRoutes.HandleFunc("/posts/{id:[0-9]+}/caption", handler.EditPostCaption).Methods(http.MethodPatch)
	authenticatedRoutes.HandleFunc("/posts/{id:[0-9]+}/visibility", handler.EditPostVisibility).Methods(http.MethodPatch)
	authenticatedRoutes.HandleFunc("/posts/{id:[0-9]+}/channel", handler.EditPostChannel).Methods(http.MethodPatch)
	authenticatedRoutes.HandleFunc("/posts/{id:[0-9]+}/tags", handler.EditPostTags).Methods(http.MethodPatch)
	authenticatedRoutes.HandleFunc("/posts/{id:[0-9]+}/tagged-users", handler.EditPostTaggedUsers).Methods(http.MethodPatch)
	authenticatedRoutes.HandleFunc("/posts/{id:[0-9]+}/comments", handler.AddComment).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/posts/{id:[0-9]+}/upvote", handler.UpvotePost).Methods(http.MethodPost)

	authenticatedRoutes.HandleFunc("/tags", handler.CreateTag).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/tags/{name}", handler.UpdateTagDescription).Methods(http.MethodPatch)
	authenticatedRoutes.HandleFunc("/tags/{name}", handler.DeleteTag).Methods(http.MethodDelete)

	authenticatedRoutes.HandleFunc("/channels", handler.CreateChannel).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/channels/{id:[0-9]+}", handler.DeleteChannel).Methods(http.MethodDelete)
	authenticatedRoutes.HandleFunc("/channels/{id:[0-9]+}/description", handler.UpdateChannelDescription).Methods(http.MethodPatch)
	authenticatedRoutes.HandleFunc("/channels/{id:[0-9]+}/avatar", media.UploadChannelAvatar).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/channels/{id:[0-9]+}/cover", media.UploadChannelCover).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/channels/{id:[0-9]+}/subscription", handler.ChannelSubscription).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/channels/{id:[0-9]+}/games", games.CreateGame).Methods(http.MethodPost)

	authenticatedRoutes.HandleFunc("/games/{id:[0-9]+}", games.DeleteGame).Methods(http.MethodDelete)
	authenticatedRoutes.HandleFunc("/games/{id:[0-9]+}/description", games.UpdateDescription).Methods(http.MethodPatch)
	authenticatedRoutes.HandleFunc("/games/{id:[0-9]+}/image", games.UploadImage).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/games/{id:[0-9]+}/subscription", games.Subscription).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/games/{id:[0-9]+}/submissions", games.Propose).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/games/{id:[0-9]+}/submissions", games.PendingSubmissions).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/submissions/{id:[0-9]+}/decision", games.Decide).Methods(http.MethodPost)

	authenticatedRoutes.HandleFunc("/chat/rooms", handler.CreateChatRoom).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/chat/rooms", handler.GetChatRooms).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/chat/rooms/{id:[0-9]+}", handler.GetChatRoom).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/chat/rooms/{id:[0-9]+}/messages", handler.GetMessages).Methods(http.MethodGet)
	authenticatedRoutes.HandleFunc("/chat/rooms/{id:[0-9]+}/messages", handler.SendMessage).Methods(http.MethodPost)
	authenticatedRoutes.HandleFunc("/chat/rooms/{id:[0-9]+}/images", media.SendChatImage).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warning("404 Not Found: %s %s", r.Method, r.URL.Path)
		utils.ErrorSimple(w, http.StatusNotFound, "route not found")
	})

	return middleware.CORSMiddleware(d.CORSOrigins)(r)
}
