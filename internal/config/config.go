package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string          `mapstructure:"mode"`
	Port       int             `mapstructure:"port"`
	LogLevel   string          `mapstructure:"log_level"`
	ReadLimit  int64           `mapstructure:"read_limit"`
	PingPeriod time.Duration   `mapstructure:"ping_period"`
	Secret     string          `mapstructure:"secret"`
	Shutdown   time.Duration   `mapstructure:"shutdown_timeout"`
	Directory  DirectoryConfig `mapstructure:"directory"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Limits     LimitsConfig    `mapstructure:"limits"`
	ICEServers []ICEServer     `mapstructure:"ice_servers"`
}

type DirectoryConfig struct {
	// Driver is "postgres" or "memory".
	Driver      string            `mapstructure:"driver"`
	DatabaseURL string            `mapstructure:"database_url"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	Seed        []SeedAppointment `mapstructure:"seed"`
}

type SeedAppointment struct {
	RoomID      string    `mapstructure:"room_id"`
	Status      string    `mapstructure:"status"`
	StartsAt    time.Time `mapstructure:"starts_at"`
	PatientID   string    `mapstructure:"patient_id"`
	ClinicianID string    `mapstructure:"clinician_id"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PresenceTTL time.Duration `mapstructure:"presence_ttl"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LimitsConfig struct {
	MaxMessageLen int     `mapstructure:"max_message_len"`
	EventsPerSec  float64 `mapstructure:"events_per_sec"`
	EventBurst    int     `mapstructure:"event_burst"`
	SendQueue     int     `mapstructure:"send_queue"`
}

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("shutdown_timeout", "5s")
	v.SetDefault("directory.driver", "memory")
	v.SetDefault("directory.database_url", "")
	v.SetDefault("directory.timeout", "3s")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.presence_ttl", "2h")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("limits.max_message_len", 4096)
	v.SetDefault("limits.events_per_sec", 20)
	v.SetDefault("limits.event_burst", 40)
	v.SetDefault("limits.send_queue", 64)
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
}

func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// Load reads config/config.<CONFIG_ENV>.yaml, falling back to defaults.
// CONSULT_* environment variables override file values.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.SetEnvPrefix("CONSULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
		watchLogLevel(v)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("directory", cfg.Directory.Driver).Msg("config ready")
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// ApplyLogLevel sets the global zerolog level, keeping the current one on bad input.
func ApplyLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		log.Warn().Str("module", "config").Str("level", level).Msg("unknown log level")
		return
	}
	zerolog.SetGlobalLevel(lvl)
}

// watchLogLevel re-applies log_level whenever the config file changes.
func watchLogLevel(v *viper.Viper) {
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Str("module", "config").Str("file", e.Name).Str("op", e.Op.String()).Msg("config changed")
		ApplyLogLevel(v.GetString("log_level"))
	})
	v.WatchConfig()
}
