package model

import "time"

const DefaultTimeout = 500 * time.Millisecond
const DefaultWorkerCount = 4
const DefaultChannelCapacity = 64

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

const (
	HeaderContentType     = "Content-Type"
	HeaderAuthorization   = "Authorization"
	HeaderWWWAuthenticate = "WWW-Authenticate"
)

const (
	ScopeResetPassword = "reset-password"
	TokenTypeBearer    = "bearer"
)

type ContextKey string

const (
	KeyContextLogger ContextKey = "logger"
	KeyContextToken  ContextKey = "token"
	KeyContextUser   ContextKey = "user"
)

const KeyLoggerError = "error"
