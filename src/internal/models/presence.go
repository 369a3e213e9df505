package models

import "time"

// Presence is the durable online flag of a user as exposed over REST and cached in Redis.
type Presence struct {
	UserID   string     `json:"userId" bson:"userId"`
	IsOnline bool       `json:"isOnline" bson:"isOnline"`
	LastSeen *time.Time `json:"lastSeen,omitempty" bson:"lastSeen,omitempty"`
}
