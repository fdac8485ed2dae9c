package config

const (
	EnvPrefix = "DIRECTORY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "DIRECTORY_APP_ENV"
	EnvPort       = "DIRECTORY_APP_PORT"
	EnvAppURL     = "DIRECTORY_APP_URL"
	EnvDBDSN      = "DIRECTORY_DB_DSN"
	EnvDBHost     = "DIRECTORY_DB_HOST"
	EnvDBUser     = "DIRECTORY_DB_USER"
	EnvDBName     = "DIRECTORY_DB_NAME"
	EnvRedisURL   = "DIRECTORY_REDIS_URL"
	EnvJWTSecret  = "DIRECTORY_JWT_SECRET"
	EnvJWTIssuer  = "DIRECTORY_JWT_ISSUER"
	EnvJWTExpMin  = "DIRECTORY_JWT_EXPIRATION_MINUTES"
	EnvSMTPHost   = "DIRECTORY_SMTP_HOST"
	EnvStaleAfter = "DIRECTORY_REMINDERS_STALE_AFTER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
