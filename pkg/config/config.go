package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Storage StorageConfig
	Upload  UploadConfig
	Contact ContactConfig
	Render  RenderConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FRIMOUSSE_APP_ENV" required:"true"`
	Port         string `envconfig:"FRIMOUSSE_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"FRIMOUSSE_PUBLIC_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"FRIMOUSSE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"FRIMOUSSE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"FRIMOUSSE_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"FRIMOUSSE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FRIMOUSSE_DB_DSN"`
	Driver string `envconfig:"FRIMOUSSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FRIMOUSSE_DB_HOST"`
	LegacyPort     int    `envconfig:"FRIMOUSSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FRIMOUSSE_DB_USER"`
	LegacyPassword string `envconfig:"FRIMOUSSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"FRIMOUSSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"FRIMOUSSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FRIMOUSSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRIMOUSSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRIMOUSSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRIMOUSSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	UseSQLite   bool `envconfig:"FRIMOUSSE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FRIMOUSSE_AUTO_MIGRATE" default:"false"`
}

// StorageBackend values accepted by FRIMOUSSE_STORAGE_BACKEND.
const (
	StorageBackendLocal = "local"
	StorageBackendGCS   = "gcs"
)

type StorageConfig struct {
	Backend  string `envconfig:"FRIMOUSSE_STORAGE_BACKEND" default:"local"`
	LocalDir string `envconfig:"FRIMOUSSE_STORAGE_LOCAL_DIR" default:"uploads"`
	GCS      GCSConfig
}

type GCSConfig struct {
	BucketName  string `envconfig:"FRIMOUSSE_GCS_BUCKET_NAME"`
	ClientEmail string `envconfig:"FRIMOUSSE_GCS_CLIENT_EMAIL"`
	PrivateKey  string `envconfig:"FRIMOUSSE_GCS_PRIVATE_KEY"`
	Folder      string `envconfig:"FRIMOUSSE_GCS_FOLDER" default:"quotes"`
}

// validate enforces that remote-backend credentials are a startup concern,
// never a per-request one.
func (s StorageConfig) validate() error {
	switch strings.ToLower(s.Backend) {
	case StorageBackendLocal:
		if s.LocalDir == "" {
			return fmt.Errorf("%s is required for the local backend", "FRIMOUSSE_STORAGE_LOCAL_DIR")
		}
		return nil
	case StorageBackendGCS:
		missing := []string{}
		if s.GCS.BucketName == "" {
			missing = append(missing, EnvGCSBucket)
		}
		if s.GCS.ClientEmail == "" {
			missing = append(missing, EnvGCSClientEmail)
		}
		if s.GCS.PrivateKey == "" {
			missing = append(missing, EnvGCSPrivateKey)
		}
		if len(missing) > 0 {
			return fmt.Errorf("gcs backend selected but %s missing", strings.Join(missing, ", "))
		}
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}

type UploadConfig struct {
	MaxFileMB    int      `envconfig:"FRIMOUSSE_UPLOAD_MAX_FILE_MB" default:"5"`
	MaxFiles     int      `envconfig:"FRIMOUSSE_UPLOAD_MAX_FILES" default:"5"`
	AllowedTypes []string `envconfig:"FRIMOUSSE_UPLOAD_ALLOWED_TYPES" default:"image/jpeg,image/png,image/webp,image/gif"`
}

// MaxFileBytes converts the configured ceiling to bytes.
func (u UploadConfig) MaxFileBytes() int64 {
	return int64(u.MaxFileMB) * 1024 * 1024
}

type ContactConfig struct {
	WhatsAppNumber string `envconfig:"FRIMOUSSE_WHATSAPP_NUMBER" default:"+52 771-722-7089"`
	WhatsAppID     string `envconfig:"FRIMOUSSE_WHATSAPP_ID" default:"527717227089"`
}

type RenderConfig struct {
	ChromePath string        `envconfig:"FRIMOUSSE_CHROME_PATH" default:"/usr/bin/chromium"`
	Timeout    time.Duration `envconfig:"FRIMOUSSE_RENDER_TIMEOUT" default:"30s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.UseSQLite || db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
