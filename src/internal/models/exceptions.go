package models

import "errors"

var (
	ErrRedisConnection = errors.New("redis connection error")
	ErrRedisGet        = errors.New("redis get error")
	ErrRedisSet        = errors.New("redis set error")
	ErrRedisDelete     = errors.New("redis delete error")
	ErrRedisPublish    = errors.New("redis publish error")
)

var (
	ErrAuthentication     = errors.New("authentication error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)

var (
	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseQuery      = errors.New("database query error")
	ErrDatabaseUpdate     = errors.New("database update error")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidParams      = errors.New("invalid parameters")
)

var (
	ErrNotJoined      = errors.New("connection has not joined")
	ErrConnClosed     = errors.New("connection closed")
	ErrUnknownEvent   = errors.New("unknown event")
	ErrInvalidPayload = errors.New("invalid event payload")
	ErrAdapterClosed  = errors.New("adapter closed")
	ErrAdapterPublish = errors.New("adapter publish error")
	ErrUnknownAdapter = errors.New("unknown realtime adapter")
)
