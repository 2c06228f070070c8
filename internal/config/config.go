package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
)

// Config centraliza tudo que vem de variável de ambiente. Carregamos uma vez
// no main e injetamos nos componentes; ninguém mais lê os.Getenv direto.
type Config struct {
	HTTPPort string

	// Chave mestra da criptografia de envelope. Obrigatória, mínimo 32 bytes.
	EncryptionKey string

	// Quando true (default), operações em mainnet são recusadas.
	EnforceTestnet bool

	AlchemyAPIKey   string
	EtherscanAPIKey string

	DatabaseURL string
	RedisAddr   string
	RabbitURL   string
	MongoURI    string
	MongoDBName string
}

func Load() Config {
	// O erro é ignorado de propósito: em produção (Docker/K8s) não existe
	// arquivo .env, usamos variáveis reais do sistema.
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	cfg := Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		EncryptionKey:   os.Getenv("ENCRYPTION_KEY"),
		EnforceTestnet:  getEnv("ENFORCE_TESTNET", "true") != "false",
		AlchemyAPIKey:   os.Getenv("ALCHEMY_API_KEY"),
		EtherscanAPIKey: os.Getenv("ETHERSCAN_API_KEY"),
		RedisAddr:       getEnv("REDIS_HOST", "localhost") + ":6379",
		MongoDBName:     getEnv("MONGO_DB_NAME", "chainvault_audit"),
	}

	dbUser := getEnv("DB_USER", "custody")
	dbPass := getEnv("DB_PASSWORD", "secret123")
	dbHost := getEnv("DB_HOST", "localhost")
	dbName := getEnv("DB_NAME", "chainvault")
	cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:5432/%s?sslmode=disable", dbUser, dbPass, dbHost, dbName)

	rabbitUser := getEnv("RABBITMQ_USER", "guest")
	rabbitPass := getEnv("RABBITMQ_PASS", "guest")
	rabbitHost := getEnv("RABBITMQ_HOST", "localhost")
	cfg.RabbitURL = fmt.Sprintf("amqp://%s:%s@%s:5672/", rabbitUser, rabbitPass, rabbitHost)

	mongoUser := getEnv("MONGO_USER", "root")
	mongoPass := getEnv("MONGO_PASS", "secret123")
	mongoHost := getEnv("MONGO_HOST", "localhost")
	cfg.MongoURI = fmt.Sprintf("mongodb://%s:%s@%s:27017", mongoUser, mongoPass, mongoHost)

	return cfg
}

// RPCURL monta o endpoint Alchemy da rede.
func (c Config) RPCURL(network domain.Network) string {
	if network == domain.NetworkMainnet {
		return "https://eth-mainnet.g.alchemy.com/v2/" + c.AlchemyAPIKey
	}
	return "https://eth-sepolia.g.alchemy.com/v2/" + c.AlchemyAPIKey
}

// EtherscanURL monta o endpoint REST do Etherscan da rede.
func (c Config) EtherscanURL(network domain.Network) string {
	if network == domain.NetworkMainnet {
		return "https://api.etherscan.io/api"
	}
	return "https://api-sepolia.etherscan.io/api"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
