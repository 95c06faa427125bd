package config

import (
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Identity
		Profiles
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Identity struct {
		CredentialsPath string
		// Endpoint overrides the endpoint from the credentials file when set.
		Endpoint string
	}
	Profiles struct {
		RedisAddr     string
		RedisPassword string
		KeyPrefix     string
	}
	Auth struct {
		BcryptCost int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8180)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("identity_credentials_path", DefaultCredentialsPath)
	v.SetDefault("identity_endpoint", "")
	v.SetDefault("profiles_redis_addr", "localhost:6379")
	v.SetDefault("profiles_redis_password", "")
	v.SetDefault("profiles_key_prefix", DefaultProfileKeyPrefix)
	v.SetDefault("auth_bcrypt_cost", DefaultBcryptCost)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("port"),
			Host: v.GetString("host"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("shutdown_timeout_in_seconds"),
		},
		Database: Database{
			Path: v.GetString("database_path"),
		},
		Identity: Identity{
			CredentialsPath: v.GetString("identity_credentials_path"),
			Endpoint:        v.GetString("identity_endpoint"),
		},
		Profiles: Profiles{
			RedisAddr:     v.GetString("profiles_redis_addr"),
			RedisPassword: v.GetString("profiles_redis_password"),
			KeyPrefix:     v.GetString("profiles_key_prefix"),
		},
		Auth: Auth{
			BcryptCost: v.GetInt("auth_bcrypt_cost"),
		},
	}
}
