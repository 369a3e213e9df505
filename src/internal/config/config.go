package config

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const defaultConfigPath = "src/internal/config/cfg.yml"

type Configuration struct {
	Logs     LogsSettings     `mapstructure:"logs"`
	App      Application      `mapstructure:"app"`
	Database Database         `mapstructure:"database"`
	Queue    QueueConfig      `mapstructure:"queue"`
	Redis    Redis            `mapstructure:"redis"`
	Security SecuritySettings `mapstructure:"security"`
	Server   ServerSettings   `mapstructure:"server"`
	Cache    CacheConfig      `mapstructure:"cache"`
	Realtime RealtimeConfig   `mapstructure:"realtime"`
}

type LogsSettings struct {
	Level            string `mapstructure:"level"`
	Path             string `mapstructure:"log-path"`
	EnableJSONOutput bool   `mapstructure:"enable-json-output"`
}

type Application struct {
	Name    string `mapstructure:"name"`
	Timeout int    `mapstructure:"timeout"`
	Version string `mapstructure:"version"`
}

type Database struct {
	Url         string      `mapstructure:"url"`
	DbName      string      `mapstructure:"dbname"`
	Collections Collections `mapstructure:"collections"`
	Timeout     int         `mapstructure:"timeout"`
}

type Collections struct {
	Users string `mapstructure:"users"`
}

type QueueConfig struct {
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type RabbitMQConfig struct {
	Url        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	Durable    bool   `mapstructure:"durable"`
	AutoDelete bool   `mapstructure:"auto-delete"`
	Internal   bool   `mapstructure:"internal"`
	NoWait     bool   `mapstructure:"no-wait"`
	Consumer   string `mapstructure:"consumer"`
}

type Redis struct {
	Url      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

type SecuritySettings struct {
	JwtKey             string `mapstructure:"jwt-key"`
	TokenTTLMinutes    int    `mapstructure:"token-ttl-minutes"`
	LoginMaxAttempts   int    `mapstructure:"login-max-attempts"`
	LoginWindowMinutes int    `mapstructure:"login-window-minutes"`
}

type ServerSettings struct {
	Port         string `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`
	ReadTimeout  int    `mapstructure:"read-timeout"`
	WriteTimeout int    `mapstructure:"write-timeout"`
	IdleTimeout  int    `mapstructure:"idle-timeout"`
}

type CacheConfig struct {
	PresenceExpirationMinutes int    `mapstructure:"presence-expiration-minutes"`
	PresenceKeyPrefix         string `mapstructure:"presence-key-prefix"`
}

// RealtimeConfig controls the socket transport and the cross-process adapter.
type RealtimeConfig struct {
	// Adapter is one of "none", "redis" or "rabbitmq".
	Adapter          string `mapstructure:"adapter"`
	Channel          string `mapstructure:"channel"`
	SendBuffer       int    `mapstructure:"send-buffer"`
	WriteWaitSeconds int    `mapstructure:"write-wait-seconds"`
	PongWaitSeconds  int    `mapstructure:"pong-wait-seconds"`
	MaxMessageBytes  int64  `mapstructure:"max-message-bytes"`
	AllowedOrigin    string `mapstructure:"allowed-origin"`
}

const (
	AdapterNone     = "none"
	AdapterRedis    = "redis"
	AdapterRabbitMQ = "rabbitmq"
)

func Load() *Configuration {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg := read(path)
	logrus.WithField("path", path).Info("Configuration loaded")

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg
}

func applyEnvOverrides(cfg *Configuration) {
	mongoUri := os.Getenv("MONGODB_URL")
	if mongoUri != "" {
		cfg.Database.Url = mongoUri
	}

	dbName := os.Getenv("DB_NAME")
	if dbName != "" {
		cfg.Database.DbName = dbName
	}

	redisUrl := os.Getenv("REDIS_URL")
	if redisUrl != "" {
		cfg.Redis.Url = redisUrl
	}

	redisDB := os.Getenv("REDIS_DB")
	if redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			cfg.Redis.Db = db
		}
	}

	rabbitmqUrl := os.Getenv("RABBITMQ_URL")
	if rabbitmqUrl != "" {
		cfg.Queue.RabbitMQ.Url = rabbitmqUrl
	}

	jwtKey := os.Getenv("JWT_KEY")
	if jwtKey != "" {
		cfg.Security.JwtKey = jwtKey
	}

	adapter := os.Getenv("REALTIME_ADAPTER")
	if adapter != "" {
		cfg.Realtime.Adapter = adapter
	}

	port := os.Getenv("PORT")
	if port != "" {
		cfg.Server.Port = port
	}
}

func applyDefaults(cfg *Configuration) {
	if cfg.App.Timeout <= 0 {
		cfg.App.Timeout = 10
	}
	if cfg.Database.Timeout <= 0 {
		cfg.Database.Timeout = 5
	}
	if cfg.Database.Collections.Users == "" {
		cfg.Database.Collections.Users = "users"
	}
	if cfg.Security.TokenTTLMinutes <= 0 {
		cfg.Security.TokenTTLMinutes = 60
	}
	if cfg.Security.LoginMaxAttempts <= 0 {
		cfg.Security.LoginMaxAttempts = 5
	}
	if cfg.Security.LoginWindowMinutes <= 0 {
		cfg.Security.LoginWindowMinutes = 15
	}
	if cfg.Cache.PresenceKeyPrefix == "" {
		cfg.Cache.PresenceKeyPrefix = "presence"
	}
	if cfg.Realtime.Adapter == "" {
		cfg.Realtime.Adapter = AdapterNone
	}
	if cfg.Realtime.Channel == "" {
		cfg.Realtime.Channel = "whisp.realtime"
	}
	if cfg.Realtime.SendBuffer <= 0 {
		cfg.Realtime.SendBuffer = 64
	}
	if cfg.Realtime.WriteWaitSeconds <= 0 {
		cfg.Realtime.WriteWaitSeconds = 10
	}
	if cfg.Realtime.PongWaitSeconds <= 0 {
		cfg.Realtime.PongWaitSeconds = 60
	}
	if cfg.Realtime.MaxMessageBytes <= 0 {
		cfg.Realtime.MaxMessageBytes = 64 * 1024
	}
}

func read(path string) *Configuration {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetConfigType("yml")

	var config Configuration

	err := v.ReadInConfig()
	if err != nil {
		logrus.Panicf("Error reading config file, %s", err)
	}

	err = v.Unmarshal(&config)
	if err != nil {
		logrus.Panicf("Error unmarshalling config file, %s", err)
	}

	return &config
}
