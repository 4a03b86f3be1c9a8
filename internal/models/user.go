package model

import (
	"time"
)

// ProfileVisibility contrôle qui peut voir les posts d'un utilisateur
type ProfileVisibility int

const (
	ProfilePublic  ProfileVisibility = 0
	ProfilePrivate ProfileVisibility = 1
)

type UserProfile struct {
	ID         int64             `json:"id"`
	Username   string            `json:"username"`
	Email      string            `json:"email,omitempty"`
	FirstName  string            `json:"firstName,omitempty"`
	LastName   string            `json:"lastName,omitempty"`
	Bio        string            `json:"bio,omitempty"`
	Visibility ProfileVisibility `json:"visibility"`
	Points     int               `json:"points"`
	Image      string            `json:"image,omitempty"`
	CoverImage string            `json:"coverImage,omitempty"`
	IsActive   bool              `json:"isActive"`
	DateJoined time.Time         `json:"dateJoined"`
	Followers  int               `json:"followers"`
	Following  int               `json:"following"`
	UpdatedAt  time.Time         `json:"updatedAt,omitempty"`
}

// AuthUser est l'identité extraite du token d'accès
type AuthUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// UserSummary contient les informations minimales d'un utilisateur lié à une entité
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Image    string `json:"image,omitempty"`
}

// Follow représente une relation user -> following
type Follow struct {
	UserID      int64     `json:"userId"`
	FollowingID int64     `json:"followingId"`
	FollowedOn  time.Time `json:"followedOn"`
}
