package config

// EnvPrefix namespaces every environment variable read by envconfig.
const EnvPrefix = "JUICE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "JUICE_DB_DSN"
	EnvDBHost = "JUICE_DB_HOST"
	EnvDBUser = "JUICE_DB_USER"
	EnvDBName = "JUICE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
