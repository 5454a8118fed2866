package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays environment variables onto config. Variables from a
// dotenv file (-env flag, default ".env") are loaded first without
// overriding variables already present in the process environment; a
// missing file is not an error.
//
// Recognised variables:
//
//	PORT                   HTTP port (":" is prepended)
//	HTTP_ADDR              full HTTP bind address, wins over PORT
//	GRPC_HEALTH_ADDR       gRPC health bind address
//	DATABASE_DSN           PostgreSQL DSN
//	JWT_SECRET             token signing secret
//	TOKEN_VALIDITY         token lifetime, Go duration syntax
//	CORS_ORIGIN            allowed browser origin
//	LOG_LEVEL              debug|info|warn|error
//	OPENAI_API_KEY         chat-completion API key
//	OPENAI_BASE_URL        chat-completion base URL
//	OPENAI_MODEL           chat-completion model
//	AI_TIMEOUT             provider timeout, Go duration syntax
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
//	TRACING_ENDPOINT       Jaeger collector endpoint
func parseEnv(config *Config, args []string) {
	_ = godotenv.Load(flagx.EnvFilePath(args))

	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		config.HTTPAddr = ":" + port
	}
	config.HTTPAddr = getEnv("HTTP_ADDR", config.HTTPAddr)
	config.GRPCHealthAddr = getEnv("GRPC_HEALTH_ADDR", config.GRPCHealthAddr)
	config.DatabaseDSN = getEnv("DATABASE_DSN", config.DatabaseDSN)
	config.SecretKey = getEnv("JWT_SECRET", config.SecretKey)
	config.TokenValidityDuration = getEnvDuration("TOKEN_VALIDITY", config.TokenValidityDuration)
	config.CORSOrigin = getEnv("CORS_ORIGIN", config.CORSOrigin)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)
	config.AIAPIKey = getEnv("OPENAI_API_KEY", config.AIAPIKey)
	config.AIBaseURL = getEnv("OPENAI_BASE_URL", config.AIBaseURL)
	config.AIModel = getEnv("OPENAI_MODEL", config.AIModel)
	config.AITimeout = getEnvDuration("AI_TIMEOUT", config.AITimeout)
	config.S3RootUser = getEnv("S3_ROOT_USER", config.S3RootUser)
	config.S3RootPassword = getEnv("S3_ROOT_PASSWORD", config.S3RootPassword)
	config.S3Bucket = getEnv("S3_BUCKET", config.S3Bucket)
	config.S3Region = getEnv("S3_REGION", config.S3Region)
	config.S3BaseEndpoint = getEnv("S3_BASE_ENDPOINT", config.S3BaseEndpoint)
	config.TracingEndpoint = getEnv("TRACING_ENDPOINT", config.TracingEndpoint)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvDuration keeps defaultValue when the variable is unset or unparsable.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
