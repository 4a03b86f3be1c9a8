package game

import (
	"errors"
	"fmt"
	"net/http"
)

// Error est l'échec structuré d'une opération {code, message}
type Error struct {
	HTTP    int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Code, e.Message)
}

// Is compare sur Code: une erreur avec un message précis reste égale à sa sentinelle
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	// ErrUnauthenticated: aucun utilisateur authentifié
	ErrUnauthenticated = &Error{
		HTTP:    http.StatusUnauthorized,
		Code:    "Unauthenticated",
		Message: "you must be logged in",
	}

	// ErrUnauthorized: abonnement ou autorat manquant
	ErrUnauthorized = &Error{
		HTTP:    http.StatusForbidden,
		Code:    "Unauthorized",
		Message: "not allowed",
	}

	ErrConflict = &Error{
		HTTP:    http.StatusConflict,
		Code:    "Conflict",
		Message: "already exists",
	}

	ErrNotFound = &Error{
		HTTP:    http.StatusNotFound,
		Code:    "NotFound",
		Message: "not found",
	}

	ErrInvalidArgument = &Error{
		HTTP:    http.StatusBadRequest,
		Code:    "InvalidArgument",
		Message: "invalid argument",
	}

	// ErrLeaderboardMissing: le game n'a plus de leaderboard
	ErrLeaderboardMissing = NotFound("game has no leaderboard")

	// ErrPinColorTaken est renvoyée par Tx.InsertGame quand la couleur a été
	// prise par une autre transaction après la vérification. Erreur interne,
	// jamais renvoyée au client.
	ErrPinColorTaken = errors.New("pin color already used")
)

// Unauthenticated renvoie une erreur Unauthenticated avec un message précis
func Unauthenticated(msg string) error {
	return &Error{HTTP: ErrUnauthenticated.HTTP, Code: ErrUnauthenticated.Code, Message: msg}
}

// Unauthorized nomme la précondition qui a échoué
func Unauthorized(reason string) error {
	return &Error{HTTP: ErrUnauthorized.HTTP, Code: ErrUnauthorized.Code, Message: reason}
}

func Conflict(msg string) error {
	return &Error{HTTP: ErrConflict.HTTP, Code: ErrConflict.Code, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{HTTP: ErrNotFound.HTTP, Code: ErrNotFound.Code, Message: msg}
}

func InvalidArgument(msg string) error {
	return &Error{HTTP: ErrInvalidArgument.HTTP, Code: ErrInvalidArgument.Code, Message: msg}
}

// AsError extrait l'erreur structurée de err, s'il y en a une
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
