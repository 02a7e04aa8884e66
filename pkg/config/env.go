package config

const (
	EnvPrefix = "LIVEHAUL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "LIVEHAUL_APP_ENV"
	EnvPort   = "LIVEHAUL_APP_PORT"

	EnvDBDSN  = "LIVEHAUL_DB_DSN"
	EnvDBHost = "LIVEHAUL_DB_HOST"
	EnvDBUser = "LIVEHAUL_DB_USER"
	EnvDBName = "LIVEHAUL_DB_NAME"

	EnvRedisURL = "LIVEHAUL_REDIS_URL"

	EnvEscrowAutoReleaseDelay  = "LIVEHAUL_ESCROW_AUTO_RELEASE_DELAY"
	EnvEscrowAutoReleaseBatch  = "LIVEHAUL_ESCROW_AUTO_RELEASE_BATCH_SIZE"
	EnvEscrowCommissionPercent = "LIVEHAUL_ESCROW_COMMISSION_PERCENT"

	EnvCronSchedule = "LIVEHAUL_CRON_SCHEDULE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
