package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "POINTSHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Data     DataConfig
	JWT      JWTConfig
	Password PasswordConfig
	Topup    TopupConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POINTSHOP_APP_ENV" default:"dev"`
	Port         string `envconfig:"POINTSHOP_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"POINTSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POINTSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DataConfig locates the directory holding the JSON record collections.
type DataConfig struct {
	Dir string `envconfig:"POINTSHOP_DATA_DIR" default:"./data"`
}

type JWTConfig struct {
	Secret            string `envconfig:"POINTSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"POINTSHOP_JWT_ISSUER" default:"pointshop"`
	ExpirationMinutes int    `envconfig:"POINTSHOP_JWT_EXPIRATION_MINUTES" default:"10080"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"POINTSHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"POINTSHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"POINTSHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"POINTSHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"POINTSHOP_ARGON_KEY_LEN" default:"32"`
}

// TopupConfig bounds admin code generation.
type TopupConfig struct {
	CodeLength  int `envconfig:"POINTSHOP_TOPUP_CODE_LENGTH" default:"8"`
	MaxPerBatch int `envconfig:"POINTSHOP_TOPUP_MAX_PER_BATCH" default:"100"`
}
