package constants

// Context keys
const (
	ContextKeyRequestID = "request_id"
)

// Headers
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderRetryAfter = "Retry-After"
)

// Field lengths for the users and tasks tables
const (
	MaxNameLength       = 100
	MaxEmailLength      = 255
	MaxCredentialLength = 255
	MaxRoleLength       = 50
	MaxDateLength       = 32
)

// Login rate limiting key prefix in Redis
const LoginRateLimitPrefix = "ratelimit:login:"
