package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
)

const uniqueViolation = "23505"

// IsUniqueViolation indique si err vient d'une contrainte UNIQUE
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// UniqueConstraint renvoie le nom de la contrainte UNIQUE violée, s'il y en a une
func UniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// MapError traduit les erreurs pgx en erreurs métier (NotFound / Conflict)
func MapError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return game.NotFound(what + " not found")
	case IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", what, game.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
