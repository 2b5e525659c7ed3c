package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified
// envconfig tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "PROJECT45_DB_DSN"
	EnvDBHost = "PROJECT45_DB_HOST"
	EnvDBUser = "PROJECT45_DB_USER"
	EnvDBName = "PROJECT45_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
