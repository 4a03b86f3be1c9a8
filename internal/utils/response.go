package utils

import (
	"encoding/json"
	"net/http"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("encode response: %v", err)
	}
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, APIResponse{Success: true, Data: data})
}

// Error renvoie une erreur; la cause éventuelle est loguée mais jamais exposée
func Error(w http.ResponseWriter, status int, msg string, cause ...error) {
	if len(cause) > 0 && cause[0] != nil {
		logger.Error("[%d] %s: %v", status, msg, cause[0])
	} else {
		logger.Warning("[%d] %s", status, msg)
	}
	JSON(w, status, APIResponse{Success: false, Error: msg})
}

// ErrorSimple renvoie une erreur sans log (erreurs de validation attendues)
func ErrorSimple(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, APIResponse{Success: false, Error: msg})
}

// DomainError traduit une erreur métier en réponse HTTP; sinon 500
func DomainError(w http.ResponseWriter, err error) {
	if e, ok := game.AsError(err); ok {
		JSON(w, e.HTTP, APIResponse{Success: false, Error: e.Message, Code: e.Code})
		return
	}
	Error(w, http.StatusInternalServerError, "internal error", err)
}

func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, APIResponse{Success: true, Message: msg})
}
