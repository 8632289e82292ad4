package config

// EnvPrefix is handed to envconfig; individual fields carry the full
// ADIGART_* name so the prefix stays informational.
const EnvPrefix = "ADIGART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "ADIGART_APP_ENV"
	EnvPort                   = "ADIGART_APP_PORT"
	EnvDBDSN                  = "ADIGART_DB_DSN"
	EnvDBHost                 = "ADIGART_DB_HOST"
	EnvDBUser                 = "ADIGART_DB_USER"
	EnvDBName                 = "ADIGART_DB_NAME"
	EnvRedisURL               = "ADIGART_REDIS_URL"
	EnvJWTSecret              = "ADIGART_JWT_SECRET"
	EnvJWTIssuer              = "ADIGART_JWT_ISSUER"
	EnvJWTExpMins             = "ADIGART_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "ADIGART_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
