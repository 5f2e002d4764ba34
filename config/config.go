package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	HostSelectionRoundRobin = "round-robin"
	HostSelectionDCAware    = "dc-aware"
	HostSelectionTokenAware = "token-aware"
)

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Config holds the resolved monitor options. Interval fields are in seconds.
type Config struct {
	Hosts              []string      `mapstructure:"hosts"`
	Port               int           `mapstructure:"port"`
	QueryInterval      int           `mapstructure:"queryInterval"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	MaxConn            int           `mapstructure:"maxConn"`
	CoreConn           int           `mapstructure:"coreConn"`
	HeartbeatInterval  int           `mapstructure:"heartbeatInterval"`
	LocalDC            string        `mapstructure:"localDC"`
	HostSelection      string        `mapstructure:"hostSelection"`
	ConnectRetryDelay  int           `mapstructure:"connectRetryDelay"`
	ConnectMaxAttempts int           `mapstructure:"connectMaxAttempts"`
	DownThreshold      int           `mapstructure:"downThreshold"`
	StatusAddress      string        `mapstructure:"statusAddress"`
	Environment        string        `mapstructure:"environment"`
	Logging            LoggingConfig `mapstructure:"logging"`
}

type option struct {
	key   string
	env   string
	value any
	usage string
}

var options = []option{
	{"hosts", "MONITOR_HOSTS", "127.0.0.1", "comma-separated contact points"},
	{"port", "MONITOR_PORT", 9042, "native protocol port used for hosts without one"},
	{"queryInterval", "MONITOR_QUERY_INTERVAL", 60, "seconds between liveness queries"},
	{"username", "MONITOR_USERNAME", "", "username for password authentication"},
	{"password", "MONITOR_PASSWORD", "", "password for password authentication"},
	{"maxConn", "MONITOR_MAX_CONN", 1, "maximum pooled connections per host"},
	{"coreConn", "MONITOR_CORE_CONN", 1, "minimum pooled connections per host"},
	{"heartbeatInterval", "MONITOR_HEARTBEAT_INTERVAL", 30, "seconds between idle connection heartbeats"},
	{"localDC", "MONITOR_LOCAL_DC", "", "local datacenter name"},
	{"hostSelection", "MONITOR_HOST_SELECTION", HostSelectionTokenAware, "host selection policy"},
	{"connectRetryDelay", "MONITOR_CONNECT_RETRY_DELAY", 3, "seconds between startup connection attempts"},
	{"connectMaxAttempts", "MONITOR_CONNECT_MAX_ATTEMPTS", 0, "startup connection attempts, 0 retries forever"},
	{"downThreshold", "MONITOR_DOWN_THRESHOLD", 1, "consecutive query failures before the cluster is reported down"},
	{"statusAddress", "MONITOR_STATUS_ADDRESS", "", "host:port of the status server, empty disables it"},
	{"environment", "MONITOR_ENVIRONMENT", EnvDev, "dev, staging or prod"},
	{"logging.level", "MONITOR_LOGGING_LEVEL", LogLevelInfo, "debug, info, warn or error"},
}

// Load resolves the configuration from defaults, an optional config.yaml,
// environment variables and command line flags, in increasing precedence.
func Load(args []string) (*Config, error) {
	v := viper.New()

	flags := pflag.NewFlagSet("cluster-monitor", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to a yaml config file")

	for _, o := range options {
		v.SetDefault(o.key, o.value)
		if err := v.BindEnv(o.key, o.env); err != nil {
			return nil, err
		}

		switch def := o.value.(type) {
		case int:
			flags.Int(o.key, def, o.usage)
		case string:
			flags.String(o.key, def, o.usage)
		}
	}

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Debug("config file not found, using defaults, environment and flags")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	cfg.Hosts = splitHosts(cfg.Hosts)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// splitHosts accepts both yaml lists and comma-separated strings.
func splitHosts(raw []string) []string {
	var hosts []string
	for _, entry := range raw {
		for _, h := range strings.Split(entry, ",") {
			if h = strings.TrimSpace(h); h != "" {
				hosts = append(hosts, h)
			}
		}
	}
	return hosts
}

// HasCredentials reports whether both halves of the credential pair were supplied.
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

func (c *Config) QueryPeriod() time.Duration {
	return seconds(c.QueryInterval)
}

func (c *Config) HeartbeatPeriod() time.Duration {
	return seconds(c.HeartbeatInterval)
}

func (c *Config) ConnectRetryPeriod() time.Duration {
	return seconds(c.ConnectRetryDelay)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Banner summarizes the resolved options. Credentials appear only as a boolean.
func (c *Config) Banner() string {
	return fmt.Sprintf("hosts: [%s], queryInterval: %d, authCredentials: %t, coreConn: %d, maxConn: %d, heartbeatInterval: %d",
		strings.Join(c.Hosts, ", "), c.QueryInterval, c.HasCredentials(), c.CoreConn, c.MaxConn, c.HeartbeatInterval)
}

// LogValue keeps credentials out of structured logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("hosts", c.Hosts),
		slog.Int("query_interval", c.QueryInterval),
		slog.Bool("auth_credentials", c.HasCredentials()),
		slog.Int("core_conn", c.CoreConn),
		slog.Int("max_conn", c.MaxConn),
		slog.Int("heartbeat_interval", c.HeartbeatInterval),
		slog.String("host_selection", c.HostSelection),
		slog.String("local_dc", c.LocalDC),
	)
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Hosts,
			validation.Required,
			validation.Each(validation.Required, validation.By(validateContactPoint)),
		),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.QueryInterval, validation.Required, validation.Min(1)),
		validation.Field(&c.CoreConn, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxConn,
			validation.Required,
			validation.Min(c.CoreConn).Error("must be no less than coreConn"),
		),
		validation.Field(&c.HeartbeatInterval, validation.Required, validation.Min(1)),
		validation.Field(&c.HostSelection,
			validation.Required,
			validation.In(HostSelectionRoundRobin, HostSelectionDCAware, HostSelectionTokenAware),
		),
		validation.Field(&c.LocalDC,
			validation.When(c.HostSelection == HostSelectionDCAware, validation.Required.Error("is required by the dc-aware policy")),
		),
		validation.Field(&c.ConnectRetryDelay, validation.Required, validation.Min(1)),
		validation.Field(&c.ConnectMaxAttempts, validation.Min(0)),
		validation.Field(&c.DownThreshold, validation.Required, validation.Min(1)),
		validation.Field(&c.StatusAddress,
			validation.When(c.StatusAddress != "", validation.By(validateHostPort)),
		),
		validation.Field(&c.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
	)
}

// validateContactPoint accepts a host or IP, optionally followed by a port.
func validateContactPoint(value interface{}) error {
	host, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if h, port, err := net.SplitHostPort(host); err == nil {
		if port == "" {
			return validation.NewError("validation_invalid_port", "port cannot be empty")
		}
		host = h
	}

	if err := is.Host.Validate(host); err != nil {
		return validation.NewError("validation_invalid_host", "must be a valid host name or IP address")
	}

	return nil
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}
