package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for fields without a tag.
const EnvPrefix = "velora"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "VELORA_DB_DSN"
	EnvDBHost = "VELORA_DB_HOST"
	EnvDBUser = "VELORA_DB_USER"
	EnvDBName = "VELORA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
