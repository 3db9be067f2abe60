package config

// EnvPrefix is passed to envconfig; individual fields carry fully
// qualified envconfig tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv  = "FRIMOUSSE_APP_ENV"
	EnvPort    = "FRIMOUSSE_APP_PORT"
	EnvBaseURL = "FRIMOUSSE_PUBLIC_BASE_URL"

	EnvDBDSN  = "FRIMOUSSE_DB_DSN"
	EnvDBHost = "FRIMOUSSE_DB_HOST"
	EnvDBUser = "FRIMOUSSE_DB_USER"
	EnvDBName = "FRIMOUSSE_DB_NAME"

	EnvStorageBackend = "FRIMOUSSE_STORAGE_BACKEND"
	EnvGCSBucket      = "FRIMOUSSE_GCS_BUCKET_NAME"
	EnvGCSClientEmail = "FRIMOUSSE_GCS_CLIENT_EMAIL"
	EnvGCSPrivateKey  = "FRIMOUSSE_GCS_PRIVATE_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
