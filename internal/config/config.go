// Package config assembles the service configuration from defaults, an
// optional JSON file, a .env file, environment variables and command-line
// flags, in increasing order of priority.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" json:"server_address" validate:"hostname_port"`
	ShortURLBase        string        `env:"BASE_URL" json:"base_url" validate:"omitempty,url"`
	LogLevel            string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	DatabaseDSN         string        `env:"DATABASE_DSN" json:"database_dsn"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" json:"-" validate:"gt=0"`
	DBPreReset          bool          `env:"DB_PRE_RESET" json:"db_pre_reset"`
	GRPCHealthAddr      string        `env:"GRPC_HEALTH_ADDRESS" json:"grpc_health_address" validate:"omitempty,hostname_port"`
	TrustedSubnet       string        `env:"TRUSTED_SUBNET" json:"trusted_subnet" validate:"omitempty,cidr"`
	MaxCodeAttempts     int           `env:"MAX_CODE_ATTEMPTS" json:"max_code_attempts" validate:"gte=1"`
	SeedSampleUsers     bool          `env:"SEED_SAMPLE_USERS" json:"seed_sample_users"`
	EnableHTTPS         bool          `env:"ENABLE_HTTPS" json:"enable_https"`
	TLSCertFile         string        `env:"TLS_CERT_FILE" json:"tls_cert_file" validate:"required_if=EnableHTTPS true"`
	TLSKeyFile          string        `env:"TLS_KEY_FILE" json:"tls_key_file" validate:"required_if=EnableHTTPS true"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" json:"-" validate:"gt=0"`
	ConfigFile          string        `env:"CONFIG" json:"-"`
}

var defaultConfig = Config{
	RunAddr:             ":5000",
	ShortURLBase:        "",
	LogLevel:            "info",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	GRPCHealthAddr:      "",
	TrustedSubnet:       "",
	MaxCodeAttempts:     100,
	SeedSampleUsers:     false,
	EnableHTTPS:         false,
	ShutdownTimeout:     5 * time.Second,
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	defaultRunAddr      string
	args                []string
}

// WithDisableFlagsParsing skips the command-line layer.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithDefaultRunAddr overrides the built-in default listen address.
func WithDefaultRunAddr(addr string) InitOption {
	return func(options *initOptions) {
		options.defaultRunAddr = addr
	}
}

// WithArgs sets the command-line arguments to parse instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// New builds and validates the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	values := Config{}
	applyDefaults(&values, defaultConfig)
	if options.defaultRunAddr != "" {
		values.RunAddr = options.defaultRunAddr
	}

	var cli *flagValues
	if !options.disableFlagsParsing {
		var err error
		cli, err = parseFlags(options.args)
		if err != nil {
			return nil, err
		}
	}

	configFile := os.Getenv("CONFIG")
	if cli != nil && cli.set["c"] {
		configFile = cli.values.ConfigFile
	}
	if configFile != "" {
		if err := values.loadJSON(configFile); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `godotenv.Load()` calling: %w", err)
	}

	if err := env.Parse(&values); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `env.Parse()` calling: %w", err)
	}

	if cli != nil {
		cli.apply(&values)
	}
	values.ConfigFile = configFile

	if err := values.clarifyShortURLBase(); err != nil {
		return nil, err
	}

	if err := validate(&values); err != nil {
		return nil, err
	}

	return &values, nil
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
}

func (c *Config) loadJSON(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/loadJSON(): error while `os.ReadFile()` calling: %w", err)
	}
	if err := json.Unmarshal(content, c); err != nil {
		return fmt.Errorf("in internal/config/config.go/loadJSON(): error while `json.Unmarshal()` calling: %w", err)
	}

	return nil
}

// clarifyShortURLBase switches a configured base to https when HTTPS is enabled.
// The default http port is dropped, any other port is kept.
func (c *Config) clarifyShortURLBase() error {
	if !c.EnableHTTPS || c.ShortURLBase == "" {
		return nil
	}

	base, err := url.Parse(c.ShortURLBase)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/clarifyShortURLBase(): error while `url.Parse()` calling: %w", err)
	}
	base.Scheme = "https"
	if base.Port() == "80" {
		base.Host = base.Hostname()
	}
	c.ShortURLBase = base.String()

	return nil
}

type flagValues struct {
	values Config
	set    map[string]bool
}

func parseFlags(args []string) (*flagValues, error) {
	result := &flagValues{set: map[string]bool{}}
	v := &result.values

	flags := flag.NewFlagSet("config", flag.ContinueOnError)
	flags.StringVar(&v.RunAddr, "a", "", "address and port to run server")
	flags.StringVar(&v.ShortURLBase, "b", "", "base address of the resulting shortened URL")
	flags.StringVar(&v.LogLevel, "l", "", "logger level")
	flags.StringVar(&v.DatabaseDSN, "d", "", "a string with the database connection details")
	flags.DurationVar(&v.DBConnectionTimeout, "db-timeout", 0, "database connection timeout")
	flags.StringVar(&v.GRPCHealthAddr, "g", "", "address and port of the gRPC health server")
	flags.StringVar(&v.TrustedSubnet, "t", "", "CIDR of the clients allowed to read /metrics")
	flags.IntVar(&v.MaxCodeAttempts, "max-code-attempts", 0, "attempts to find a free short code")
	flags.BoolVar(&v.SeedSampleUsers, "seed", false, "insert sample users into an empty storage")
	flags.BoolVar(&v.EnableHTTPS, "s", false, "serve HTTPS")
	flags.StringVar(&v.TLSCertFile, "cert", "", "TLS certificate file")
	flags.StringVar(&v.TLSKeyFile, "key", "", "TLS key file")
	flags.StringVar(&v.ConfigFile, "c", "", "JSON configuration file")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/parseFlags(): error while `flags.Parse()` calling: %w", err)
	}
	flags.Visit(func(f *flag.Flag) {
		result.set[f.Name] = true
	})

	return result, nil
}

func (f *flagValues) apply(values *Config) {
	if f.set["a"] {
		values.RunAddr = f.values.RunAddr
	}
	if f.set["b"] {
		values.ShortURLBase = f.values.ShortURLBase
	}
	if f.set["l"] {
		values.LogLevel = f.values.LogLevel
	}
	if f.set["d"] {
		values.DatabaseDSN = f.values.DatabaseDSN
	}
	if f.set["db-timeout"] {
		values.DBConnectionTimeout = f.values.DBConnectionTimeout
	}
	if f.set["g"] {
		values.GRPCHealthAddr = f.values.GRPCHealthAddr
	}
	if f.set["t"] {
		values.TrustedSubnet = f.values.TrustedSubnet
	}
	if f.set["max-code-attempts"] {
		values.MaxCodeAttempts = f.values.MaxCodeAttempts
	}
	if f.set["seed"] {
		values.SeedSampleUsers = f.values.SeedSampleUsers
	}
	if f.set["s"] {
		values.EnableHTTPS = f.values.EnableHTTPS
	}
	if f.set["cert"] {
		values.TLSCertFile = f.values.TLSCertFile
	}
	if f.set["key"] {
		values.TLSKeyFile = f.values.TLSKeyFile
	}
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func validate(values *Config) error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	return validate.Struct(values)
}
