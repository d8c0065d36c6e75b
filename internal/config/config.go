package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"codeberg.org/mutker/gpufanbridge/internal/accessory"
	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/homekit"
	"codeberg.org/mutker/gpufanbridge/internal/poller"
	"codeberg.org/mutker/gpufanbridge/internal/status"
	"codeberg.org/mutker/gpufanbridge/internal/telemetry"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix  = "GPUFANBRIDGE"
	DefaultConfigName = "gpufanbridge"
	DefaultLogLevel   = string(LogLevelInfo)
	DefaultPIDName    = "gpufanbridge.pid"

	// ConfigFlag names the flag that points at an explicit config file
	ConfigFlag = "config"
)

type Config struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Path           string        `mapstructure:"path"`
	Interval       time.Duration `mapstructure:"interval"`
	Timeout        time.Duration `mapstructure:"timeout"`
	FanKey         string        `mapstructure:"fan_key"`
	TemperatureKey string        `mapstructure:"temperature_key"`
	LogLevel       string        `mapstructure:"log_level"`
	PIDFile        string        `mapstructure:"pid_file"`

	Accessory AccessoryConfig `mapstructure:"accessory"`
	HomeKit   HomeKitConfig   `mapstructure:"homekit"`
	Status    StatusConfig    `mapstructure:"status"`

	// ConfigFile is the file the values were read from, empty if none
	ConfigFile string `mapstructure:"-"`
}

type AccessoryConfig struct {
	Name         string `mapstructure:"name"`
	Manufacturer string `mapstructure:"manufacturer"`
	Model        string `mapstructure:"model"`
	Serial       string `mapstructure:"serial"`
}

type HomeKitConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Pin         string `mapstructure:"pin"`
	StoragePath string `mapstructure:"storage_path"`
	Port        string `mapstructure:"port"`
}

type StatusConfig struct {
	Listen string `mapstructure:"listen"`
}

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string]string{
	"endpoint":        "endpoint",
	"path":            "path",
	"interval":        "interval",
	"timeout":         "timeout",
	"fan-key":         "fan_key",
	"temperature-key": "temperature_key",
	"log-level":       "log_level",
	"name":            "accessory.name",
	"pin":             "homekit.pin",
	"status-listen":   "status.listen",
	"pid-file":        "pid_file",
}

func defaultPIDFile() string {
	return filepath.Join(os.TempDir(), DefaultPIDName)
}

func setDefaults(v *viper.Viper) {
	info := accessory.DefaultInfo()
	hk := homekit.DefaultConfig()

	v.SetDefault("endpoint", telemetry.DefaultEndpoint)
	v.SetDefault("path", telemetry.DefaultPath)
	v.SetDefault("interval", poller.DefaultInterval)
	v.SetDefault("timeout", telemetry.DefaultTimeout)
	v.SetDefault("fan_key", telemetry.DefaultFanKey)
	v.SetDefault("temperature_key", telemetry.DefaultTemperatureKey)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("pid_file", defaultPIDFile())

	v.SetDefault("accessory.name", info.Name)
	v.SetDefault("accessory.manufacturer", info.Manufacturer)
	v.SetDefault("accessory.model", info.Model)
	v.SetDefault("accessory.serial", info.Serial)

	v.SetDefault("homekit.enabled", hk.Enabled)
	v.SetDefault("homekit.pin", hk.Pin)
	v.SetDefault("homekit.storage_path", hk.StoragePath)
	v.SetDefault("homekit.port", hk.Port)

	v.SetDefault("status.listen", "")
}

// RegisterFlags defines every configuration flag on fs
func RegisterFlags(fs *pflag.FlagSet) {
	info := accessory.DefaultInfo()

	fs.String(ConfigFlag, "", "Path to configuration file")
	fs.String("endpoint", telemetry.DefaultEndpoint, "Base URL of the telemetry endpoint")
	fs.String("path", telemetry.DefaultPath, "Path of the sensor document on the endpoint")
	fs.Duration("interval", poller.DefaultInterval, "Interval between polls")
	fs.Duration("timeout", telemetry.DefaultTimeout, "Timeout of a single fetch")
	fs.String("fan-key", telemetry.DefaultFanKey, "Sensor key holding the fan speed")
	fs.String("temperature-key", telemetry.DefaultTemperatureKey, "Sensor key holding the GPU temperature")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.String("name", info.Name, "Accessory name")
	fs.String("pin", homekit.DefaultPin, "HomeKit pairing PIN")
	fs.String("status-listen", "", "Listen address of the status server, disabled when empty")
	fs.String("pid-file", defaultPIDFile(), "Path of the PID file")
}

// Load reads defaults, the config file, environment and flags, in
// increasing order of precedence, and validates the result.
func Load(flags *pflag.FlagSet, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	configFile := resolveConfigFile(o, flags)
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	cfg := &Config{}
	hook := mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := v.Unmarshal(cfg, viper.DecodeHook(hook)); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}

	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.New().Wrap(errors.ErrBindFlags, err).WithData(name)
		}
	}

	return nil
}

func resolveConfigFile(o *options, flags *pflag.FlagSet) string {
	if o.configPath != "" {
		return o.configPath
	}
	if flags != nil {
		if f := flags.Lookup(ConfigFlag); f != nil && f.Value.String() != "" {
			return f.Value.String()
		}
	}
	return os.Getenv(o.envPrefix + "_CONFIG")
}

// secondsToDurationHook reads bare integers as whole seconds
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		durationType := reflect.TypeOf(time.Duration(0))
		if to != durationType || from == durationType {
			return data, nil
		}
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
		case reflect.Float32, reflect.Float64:
			return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(strings.ToLower(c.LogLevel)).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if err := c.Poller().Validate(); err != nil {
		return err
	}
	if err := c.Telemetry().Validate(); err != nil {
		return err
	}
	if err := c.HomeKit.config().Validate(); err != nil {
		return err
	}
	if err := c.StatusServer().Validate(); err != nil {
		return err
	}
	if c.PIDFile == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "PID file path must not be empty")
	}

	return nil
}

// TimeoutExceedsInterval reports whether a fetch may outlive its tick,
// in which case the following ticks are skipped.
func (c *Config) TimeoutExceedsInterval() bool {
	return c.Timeout > c.Interval
}

func (c *Config) Telemetry() telemetry.Config {
	return telemetry.Config{
		Endpoint:       c.Endpoint,
		Path:           c.Path,
		Timeout:        c.Timeout,
		FanKey:         c.FanKey,
		TemperatureKey: c.TemperatureKey,
	}
}

func (c *Config) Poller() poller.Config {
	return poller.Config{
		Interval: c.Interval,
		Endpoint: c.Endpoint,
	}
}

func (c *Config) AccessoryInfo() accessory.Info {
	return accessory.Info{
		Name:         c.Accessory.Name,
		Manufacturer: c.Accessory.Manufacturer,
		Model:        c.Accessory.Model,
		Serial:       c.Accessory.Serial,
	}
}

func (c *Config) HomeKitServer() homekit.Config {
	return c.HomeKit.config()
}

func (h HomeKitConfig) config() homekit.Config {
	return homekit.Config{
		Enabled:     h.Enabled,
		Pin:         h.Pin,
		StoragePath: h.StoragePath,
		Port:        h.Port,
	}
}

func (c *Config) StatusServer() status.Config {
	return status.Config{
		Listen: c.Status.Listen,
	}
}
