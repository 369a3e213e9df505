package user

import (
	"time"
	"whisp-chat-svc/src/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         string             `json:"userId" bson:"userId"`
	Username       string             `json:"username" bson:"username"`
	Password       string             `json:"-" bson:"password"`
	ProfilePicture string             `json:"profilePicture" bson:"profilePicture"`
	Bio            string             `json:"bio" bson:"bio"`
	Status         string             `json:"status" bson:"status"`
	IsOnline       bool               `json:"isOnline" bson:"isOnline"`
	LastSeen       *time.Time         `json:"lastSeen,omitempty" bson:"lastSeen,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	Friends        []Friend           `json:"friends" bson:"friends"`
}

// Friend is one entry of a user's friends list.
type Friend struct {
	UserID      string    `json:"userId" bson:"userId"`
	Status      string    `json:"status" bson:"status"`
	RequestedBy string    `json:"requestedBy" bson:"requestedBy"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// Friend status constants
const (
	FriendPending  = "pending"
	FriendAccepted = "accepted"
	FriendBlocked  = "blocked"
)

type Profile struct {
	UserID         string     `json:"userId"`
	Username       string     `json:"username"`
	ProfilePicture string     `json:"profilePicture"`
	Bio            string     `json:"bio"`
	Status         string     `json:"status"`
	IsOnline       bool       `json:"isOnline"`
	LastSeen       *time.Time `json:"lastSeen,omitempty"`
}

// LoginRequest carries the credentials posted to the login route.
type LoginRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *Profile  `json:"user"`
}

// OnlineUsersResponse lists users with at least one joined session on this node.
type OnlineUsersResponse struct {
	Users []string `json:"users"`
	Count int      `json:"count"`
}

// ToProfile converts User to Profile
func (u *User) ToProfile() *Profile {
	return &Profile{
		UserID:         u.UserID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		Bio:            u.Bio,
		Status:         u.Status,
		IsOnline:       u.IsOnline,
		LastSeen:       u.LastSeen,
	}
}

func (u *User) ToPresence() *models.Presence {
	return &models.Presence{
		UserID:   u.UserID,
		IsOnline: u.IsOnline,
		LastSeen: u.LastSeen,
	}
}
