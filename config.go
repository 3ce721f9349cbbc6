package todo

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/go-arrower/todo/secret"
)

// Config is a structure used for service configuration.
// It is intended to be mapped by viper.
type Config struct {
	OrganisationName string `mapstructure:"organisation_name"`
	ApplicationName  string `mapstructure:"application_name"`
	InstanceName     string `mapstructure:"instance_name"`

	Environment Environment `mapstructure:"environment"`
	Debug       bool        `mapstructure:"debug"`

	HTTP     HTTP     `mapstructure:"http"`
	Storage  Storage  `mapstructure:"storage"`
	Postgres Postgres `mapstructure:"postgres"`
	Redis    Redis    `mapstructure:"redis"`
	OTEL     OTEL     `mapstructure:"otel"`
	Log      Log      `mapstructure:"log"`
}

type Environment string

const (
	LocalEnv       Environment = "local"
	TestEnv        Environment = "test"
	DevelopmentEnv Environment = "dev"
	ProductionEnv  Environment = "prod"
)

// Environments is the list of all supported environments.
func Environments() []Environment {
	return []Environment{LocalEnv, TestEnv, DevelopmentEnv, ProductionEnv}
}

// StorageBackend selects the Repository the Todos are kept in.
type StorageBackend string

const (
	MemoryBackend   StorageBackend = "memory"
	JSONBackend     StorageBackend = "json"
	RedisBackend    StorageBackend = "redis"
	PostgresBackend StorageBackend = "postgres"
)

func StorageBackends() []StorageBackend {
	return []StorageBackend{MemoryBackend, JSONBackend, RedisBackend, PostgresBackend}
}

type (
	HTTP struct {
		Port                  int  `mapstructure:"port"                    json:"port"`
		StatusEndpointEnabled bool `mapstructure:"status_endpoint_enabled" json:"-"`
		StatusEndpointPort    int  `mapstructure:"status_endpoint_port"    json:"-"`
	}

	Storage struct {
		Backend StorageBackend `mapstructure:"backend"  json:"backend"`
		// JSONDir is the directory the json backend writes its file to.
		JSONDir string `mapstructure:"json_dir" json:"jsonDir"`
	}

	Postgres struct {
		User     string        `mapstructure:"user"      json:"user"`
		Password secret.Secret `mapstructure:"password"  json:"-"`
		Database string        `mapstructure:"database"  json:"database"`
		Host     string        `mapstructure:"host"      json:"host"`
		Port     int           `mapstructure:"port"      json:"port"`
		SSLMode  string        `mapstructure:"ssl_mode"  json:"sslMode"`
		MaxConns int           `mapstructure:"max_conns" json:"maxConns"`
	}

	Redis struct {
		Addr      string        `mapstructure:"addr"       json:"addr"`
		Password  secret.Secret `mapstructure:"password"   json:"-"`
		DB        int           `mapstructure:"db"         json:"db"`
		KeyPrefix string        `mapstructure:"key_prefix" json:"keyPrefix"`
	}

	OTEL struct {
		Enabled  bool   `mapstructure:"enabled"  json:"enabled"`
		Host     string `mapstructure:"host"     json:"host"`
		Port     int    `mapstructure:"port"     json:"port"`
		Hostname string `mapstructure:"hostname" json:"hostname"`
	}

	Log struct {
		// Level is one of debug, info, warn, error.
		Level   string `mapstructure:"level"    json:"level"`
		LokiURL string `mapstructure:"loki_url" json:"lokiURL"`
	}
)

// EnvPrefix is the prefix of environment variables overwriting the configuration,
// e.g. TODO_STORAGE_BACKEND=redis sets storage.backend.
const EnvPrefix = "TODO"

// DefaultViper returns a new viper instance with all default values
// from Config set.
func DefaultViper() *Viper {
	vip := viper.New()

	vip.SetEnvPrefix(EnvPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	vip.SetDefault("organisation_name", "go-arrower")
	vip.SetDefault("application_name", "todo")
	vip.SetDefault("instance_name", "")

	vip.SetDefault("environment", "local")
	vip.SetDefault("debug", false)

	vip.SetDefault("http.port", 8080)
	vip.SetDefault("http.status_endpoint_enabled", true)
	vip.SetDefault("http.status_endpoint_port", 2223)

	vip.SetDefault("storage.backend", "memory")
	vip.SetDefault("storage.json_dir", ".")

	vip.SetDefault("postgres.user", "todo")
	vip.SetDefault("postgres.password", "secret")
	vip.SetDefault("postgres.database", "todo")
	vip.SetDefault("postgres.host", "localhost")
	vip.SetDefault("postgres.port", 5432)
	vip.SetDefault("postgres.ssl_mode", "disable")
	vip.SetDefault("postgres.max_conns", 10)

	vip.SetDefault("redis.addr", "localhost:6379")
	vip.SetDefault("redis.password", "")
	vip.SetDefault("redis.db", 0)
	vip.SetDefault("redis.key_prefix", "todo")

	vip.SetDefault("otel.enabled", false)
	vip.SetDefault("otel.host", "localhost")
	vip.SetDefault("otel.port", 4317)
	vip.SetDefault("otel.hostname", "")

	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.loki_url", "")

	return &Viper{Viper: vip}
}

var errConfigLoadFailed = errors.New("loading configuration failed")

// Viper is a wrapper around viper.Viper for configuration loading.
// The only purpose is to overwrite the Unmarshal method,
// so that the enum types are validated and secret.Secret is decoded
// without the developer having to think about it.
type Viper struct {
	*viper.Viper
}

func (vip *Viper) Unmarshal(rawVal any, opts ...viper.DecoderConfigOption) error {
	opts = append(opts, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		allowedValuesHookFunc(Environments()),
		allowedValuesHookFunc(StorageBackends()),
		mapstructure.TextUnmarshallerHookFunc(),
	)))

	if err := vip.Viper.Unmarshal(rawVal, opts...); err != nil {
		return fmt.Errorf("%w: could not decode configuration into struct: %v", errConfigLoadFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	return nil
}

// allowedValuesHookFunc rejects all values of T that are not in allowed.
func allowedValuesHookFunc[T ~string](allowed []T) mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(*new(T)) {
			return data, nil
		}

		value, ok := data.(string)
		if ok && slices.Contains(allowed, T(value)) {
			return data, nil
		}

		values := make([]string, 0, len(allowed))
		for _, v := range allowed {
			values = append(values, string(v))
		}

		return data, fmt.Errorf("value %v is not allowed, use one of: %s", data, strings.Join(values, ", ")) //nolint:err113,lll // accept dynamic error
	}
}
