package config

// EnvPrefix is empty because every variable carries its full PRICING_ name in the struct tags.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	DefaultSQLiteDSN = "file:products.db?_foreign_keys=on"
)

const (
	EnvAppEnv   = "PRICING_APP_ENV"
	EnvPort     = "PRICING_APP_PORT"
	EnvLogLevel = "PRICING_LOG_LEVEL"

	EnvDBDSN    = "PRICING_DB_DSN"
	EnvDBDriver = "PRICING_DB_DRIVER"
	EnvDBHost   = "PRICING_DB_HOST"
	EnvDBUser   = "PRICING_DB_USER"
	EnvDBName   = "PRICING_DB_NAME"

	EnvRedisURL = "PRICING_REDIS_URL"

	EnvUseSQLite   = "PRICING_USE_SQLITE"
	EnvAutoMigrate = "PRICING_AUTO_MIGRATE"

	EnvSaveLockTTL    = "PRICING_PROFILE_SAVE_LOCK_TTL"
	EnvCORSOrigins    = "PRICING_CORS_ALLOWED_ORIGINS"
	EnvIdempotencyTTL = "PRICING_IDEMPOTENCY_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
