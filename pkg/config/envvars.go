package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so it
// stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Supported database drivers.
const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// Environment variable names shared with tests and the DSN fallback logic.
const (
	EnvAppEnv                 = "RATIONSETU_APP_ENV"
	EnvPort                   = "RATIONSETU_APP_PORT"
	EnvDBDSN                  = "RATIONSETU_DB_DSN"
	EnvDBHost                 = "RATIONSETU_DB_HOST"
	EnvDBUser                 = "RATIONSETU_DB_USER"
	EnvDBName                 = "RATIONSETU_DB_NAME"
	EnvRedisURL               = "RATIONSETU_REDIS_URL"
	EnvJWTSecret              = "RATIONSETU_JWT_SECRET"
	EnvJWTIssuer              = "RATIONSETU_JWT_ISSUER"
	EnvJWTExpMins             = "RATIONSETU_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "RATIONSETU_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
