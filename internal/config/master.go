package config

import "os"

type AppConfig struct {
	DebugMode      bool
	ExecutorCfg    *ExecutorConfig
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	JwtConfig      *JwtConfig
	SweeperCfg     *SweeperConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		ExecutorCfg:    NewExecutorConfig(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		JwtConfig:      NewJwtConfig(),
		SweeperCfg:     NewSweeperConfig(),
	}
}
