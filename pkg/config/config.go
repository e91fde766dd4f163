package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/darkclainer/wordmeaning/pkg/meaning"
	"github.com/darkclainer/wordmeaning/pkg/querier"
)

const (
	EnvPrefix = "WORDMEANING"

	SourceRemote = "remote"
	SourceLocal  = "local"

	defaultUserAgent = "wordmeaning/1.0 (https://github.com/darkclainer/wordmeaning)"
)

// Config is loaded once at start and must not be changed afterwards
type Config struct {
	ZapConfig string `mapstructure:"zap_config"`
	Host      string `mapstructure:"host" validate:"required"`
	APIPrefix string `mapstructure:"api_prefix" validate:"omitempty,startswith=/,endsnotwith=/"`
	Password  string `mapstructure:"password"`

	MaxWords      int           `mapstructure:"max_words" validate:"min=1"`
	LookupWorkers int           `mapstructure:"lookup_workers" validate:"min=1"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout" validate:"gt=0"`

	Source string              `mapstructure:"source" validate:"oneof=remote local"`
	Remote querier.Config      `mapstructure:"remote"`
	Local  querier.LocalConfig `mapstructure:"local"`
}

func (c *Config) ZapConf() (*zap.Config, error) {
	if c.ZapConfig == "" {
		defaultConf := zap.NewDevelopmentConfig()
		return &defaultConf, nil
	}
	var zapConf zap.Config
	if err := json.Unmarshal([]byte(c.ZapConfig), &zapConf); err != nil {
		return nil, fmt.Errorf("invalid zap config: %w", err)
	}
	return &zapConf, nil
}

// NewFlagSet returns flags understood by LoadServer and LoadTool
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.StringP("config", "c", "", "path to yaml config")
	flags.String("env-file", ".env", "path to dotenv file, ignored if it doesn't exist")
	flags.String("host", "", "address to listen on")
	flags.String("source", "", "dictionary source: remote or local")
	return flags
}

// LoadServer loads configuration for the server, password is required
func LoadServer(flags *pflag.FlagSet) (*Config, error) {
	return load(flags, true)
}

// LoadTool loads configuration for command line tools, that don't check passwords
func LoadTool(flags *pflag.FlagSet) (*Config, error) {
	return load(flags, false)
}

// load reads configuration from defaults, config file, dotenv file, environment and flags.
// Later sources override earlier ones. flags must be parsed already.
func load(flags *pflag.FlagSet, requirePassword bool) (*Config, error) {
	v := viper.New()

	envFile, _ := flags.GetString("env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("can not load env file %s: %w", envFile, err)
		}
	}

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}
	for _, name := range []string{"host", "source"} {
		if flag := flags.Lookup(name); flag != nil && flag.Changed {
			if err := v.BindPFlag(name, flag); err != nil {
				return nil, fmt.Errorf("can not bind flag %s: %w", name, err)
			}
		}
	}

	if configPath, _ := flags.GetString("config"); configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("can not read config file %s: %w", configPath, err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("error while unmarshaling config: %w", err)
	}
	if err := validate(&conf, requirePassword); err != nil {
		return nil, err
	}
	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("zap_config", "")
	v.SetDefault("host", "localhost:8008")
	v.SetDefault("api_prefix", "/api/v1")
	v.SetDefault("password", "")
	v.SetDefault("max_words", meaning.DefaultMaxWords)
	v.SetDefault("lookup_workers", 8)
	v.SetDefault("lookup_timeout", 30*time.Second)
	v.SetDefault("source", SourceRemote)
	v.SetDefault("remote.host", "")
	v.SetDefault("remote.protocol", "")
	v.SetDefault("remote.timeout", 20*time.Second)
	v.SetDefault("remote.max_workers", 0)
	v.SetDefault("remote.extra_header", map[string]string{"User-Agent": defaultUserAgent})
	v.SetDefault("local.path", "")
	v.SetDefault("local.in_memory", false)
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// PASSWORD and API_V1_STR are kept for existing deployments
	if err := v.BindEnv("password", EnvPrefix+"_PASSWORD", "PASSWORD"); err != nil {
		return fmt.Errorf("failed to bind password environment variable: %w", err)
	}
	if err := v.BindEnv("api_prefix", EnvPrefix+"_API_PREFIX", "API_V1_STR"); err != nil {
		return fmt.Errorf("failed to bind api prefix environment variable: %w", err)
	}
	return nil
}

func validate(conf *Config, requirePassword bool) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.Struct(conf); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if requirePassword && conf.Password == "" {
		return errors.New("invalid configuration: password is required")
	}
	if conf.Source == SourceLocal && conf.Local.Path == "" && !conf.Local.InMemory {
		return errors.New("invalid configuration: local source requires local.path or local.in_memory")
	}
	return nil
}
