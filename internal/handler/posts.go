package handler

import (
	"net/http"
	"strings"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/middleware"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

type CaptionRequest struct {
	Caption string `json:"caption" validate:"max=2200"`
}

type PostVisibilityRequest struct {
	Visibility string `json:"visibility" validate:"required,oneof=ACTIVE HIDDEN"`
}

type PostChannelRequest struct {
	ChannelID *int64 `json:"channelId" validate:"omitempty,gt=0"`
}

type TagsRequest struct {
	Modifier model.Modifier `json:"modifier" validate:"required,oneof=ADD REMOVE"`
	Tags     []string       `json:"tags" validate:"required,min=1,dive,required,max=50"`
}

type TaggedUsersRequest struct {
	Modifier  model.Modifier `json:"modifier" validate:"required,oneof=ADD REMOVE"`
	Usernames []string       `json:"usernames" validate:"required,min=1,dive,required"`
}

type CommentRequest struct {
	Text    string `json:"text" validate:"required,max=1000"`
	ReplyTo *int64 `json:"replyTo" validate:"omitempty,gt=0"`
}

func ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := utils.ListPublicPosts(r.Context(), middleware.UserID(r))
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, posts)
}

// GetFeed renvoie les posts des comptes suivis et de l'utilisateur
func GetFeed(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	posts, err := utils.Feed(r.Context(), me.ID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, posts)
}

// GetPostsByTags lit ?tags=a,b
func GetPostsByTags(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("tags")
	if strings.TrimSpace(raw) == "" {
		utils.ErrorSimple(w, http.StatusBadRequest, "missing tags parameter")
		return
	}
	posts, err := utils.PostsByTags(r.Context(), middleware.UserID(r), strings.Split(raw, ","))
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, posts)
}

func GetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	post, err := utils.GetPost(r.Context(), middleware.UserID(r), postID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, post)
}

func AddPostView(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	views, err := utils.IncrementViews(r.Context(), middleware.UserID(r), postID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, map[string]int{"views": views})
}

func DeletePost(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := utils.DeletePost(r.Context(), me.ID, postID); err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Message(w, "post deleted")
}

// editPostRequest factorise les éditions réservées à l'auteur
func editPostRequest(w http.ResponseWriter, r *http.Request, req interface{}, edit func(actorID, postID int64) (*model.Post, error)) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := utils.DecodeAndValidate(r, req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	post, err := edit(me.ID, postID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, post)
}

func EditPostCaption(w http.ResponseWriter, r *http.Request) {
	var req CaptionRequest
	editPostRequest(w, r, &req, func(actorID, postID int64) (*model.Post, error) {
		return utils.EditCaption(r.Context(), actorID, postID, req.Caption)
	})
}

func EditPostVisibility(w http.ResponseWriter, r *http.Request) {
	var req PostVisibilityRequest
	editPostRequest(w, r, &req, func(actorID, postID int64) (*model.Post, error) {
		visibility, _ := model.ParsePostVisibility(req.Visibility)
		return utils.EditVisibility(r.Context(), actorID, postID, visibility)
	})
}

func EditPostChannel(w http.ResponseWriter, r *http.Request) {
	var req PostChannelRequest
	editPostRequest(w, r, &req, func(actorID, postID int64) (*model.Post, error) {
		return utils.EditChannel(r.Context(), actorID, postID, req.ChannelID)
	})
}

func EditPostTags(w http.ResponseWriter, r *http.Request) {
	var req TagsRequest
	editPostRequest(w, r, &req, func(actorID, postID int64) (*model.Post, error) {
		return utils.EditTags(r.Context(), actorID, postID, req.Modifier, req.Tags)
	})
}

func EditPostTaggedUsers(w http.ResponseWriter, r *http.Request) {
	var req TaggedUsersRequest
	editPostRequest(w, r, &req, func(actorID, postID int64) (*model.Post, error) {
		return utils.EditTaggedUsers(r.Context(), actorID, postID, req.Modifier, req.Usernames)
	})
}

func GetComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	comments, err := utils.ListComments(r.Context(), middleware.UserID(r), postID)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Success(w, comments)
}

// AddComment ajoute un commentaire ou une réponse (replyTo)
func AddComment(w http.ResponseWriter, r *http.Request) {
	me, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorSimple(w, http.StatusBadRequest, err.Error())
		return
	}
	comment, err := utils.AddComment(r.Context(), me.ID, postID, req.Text, req.ReplyTo)
	if err != nil {
		utils.DomainError(w, err)
		return
	}
	utils.Created(w, comment)
}
