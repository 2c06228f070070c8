package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/config"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/encryption"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/infra/ethereum"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/infra/http/handler"
	internalMiddleware "github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/infra/http/middleware"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/infra/postgres"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/infra/rabbitmq"
	redisInfra "github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/infra/redis"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/usecase"
)

func main() {
	// Configuração de Logs (Zerolog - estruturado e rápido)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}) // Log bonito no terminal

	cfg := config.Load()
	ctx := context.Background()

	// A chave mestra é obrigatória: sem ela não existe custódia.
	keyCipher, err := encryption.New(cfg.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("ENCRYPTION_KEY inválida")
	}

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Não foi possível conectar ao banco de dados")
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Banco de dados não está respondendo")
	}
	log.Info().Msg("✅ Conectado ao PostgreSQL com sucesso!")

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Não foi possível conectar ao Redis (Idempotência desabilitada)")
	} else {
		log.Info().Msg("✅ Conectado ao Redis!")
	}

	rabbitConn, err := amqp.DialConfig(cfg.RabbitURL, amqp.Config{
		Properties: amqp.Table{
			"connection_name": "CustodyAPI_Publisher",
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("Falha ao conectar no RabbitMQ (Eventos de auditoria irão apenas para o log)")
	} else {
		defer rabbitConn.Close()
		log.Info().Msg("✅ Conectado ao RabbitMQ!")
	}

	var eventPublisher gateway.EventPublisher
	if rabbitConn != nil {
		ch, err := rabbitConn.Channel()
		if err != nil {
			log.Fatal().Err(err).Msg("Falha ao abrir canal RabbitMQ")
		}
		defer ch.Close()

		// Declarar Exchange (Tópico)
		err = ch.ExchangeDeclare(
			rabbitmq.EventsExchange, // name
			"topic",                 // type
			true,                    // durable
			false,                   // auto-deleted
			false,                   // internal
			false,                   // no-wait
			nil,                     // arguments
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Falha ao declarar Exchange")
		}

		eventPublisher = rabbitmq.NewPublisher(ch)
	}
	auditTrail := rabbitmq.NewAuditTrail(eventPublisher)

	// Gateways de rede: uma conexão por rede configurada. Falha de dial vira
	// warning, a rede simplesmente fica indisponível nas operações.
	ledgers := ethereum.NewRegistry()
	networks := []domain.Network{domain.NetworkTestnet}
	if !cfg.EnforceTestnet {
		networks = append(networks, domain.NetworkMainnet)
	}
	for _, network := range networks {
		gw, err := ethereum.NewGateway(ctx, cfg.RPCURL(network), network, cfg.EtherscanURL(network), cfg.EtherscanAPIKey)
		if err != nil {
			log.Warn().Err(err).Str("network", string(network)).Msg("Falha ao conectar na rede")
			continue
		}
		defer gw.Close()
		ledgers.Register(network, gw)
		log.Info().Str("network", string(network)).Msg("✅ Conectado à rede Ethereum!")
	}

	// Inicialização da Camada de Infraestrutura (Repositories)
	idempotencyRepo := redisInfra.NewIdempotencyRepository(redisClient)
	walletRepository := postgres.NewWalletRepository(dbPool)
	transactionRepository := postgres.NewTransactionRepository(dbPool)
	jobRepository := postgres.NewReconcileJobRepository(dbPool)
	// Unit of Work (Gerenciador de Transações)
	uow := postgres.NewUow(dbPool)

	keyGenerator := ethereum.NewKeyGenerator()
	signer := ethereum.NewSigner()

	// Inicialização da Camada de UseCase (Regras de Negócio)
	createWalletUseCase := usecase.NewCreateWallet(walletRepository, keyGenerator, keyCipher, auditTrail, cfg.EnforceTestnet)
	getWalletUseCase := usecase.NewGetWallet(walletRepository, ledgers)
	sendFundsUseCase := usecase.NewSendFunds(
		walletRepository,
		transactionRepository,
		jobRepository,
		uow,
		ledgers,
		signer,
		keyCipher,
		auditTrail,
		cfg.EnforceTestnet,
	)
	getTransactionUseCase := usecase.NewGetTransaction(transactionRepository)
	historyUseCase := usecase.NewTransactionHistory(walletRepository, transactionRepository, ledgers)

	// Handlers
	walletHandler := handler.NewWalletHandler(createWalletUseCase, getWalletUseCase)
	transactionHandler := handler.NewTransactionHandler(sendFundsUseCase, getTransactionUseCase, historyUseCase)

	// Configuração do Servidor HTTP (Router Chi)
	router := chi.NewRouter()

	// Middlewares básicos
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer) // Evita crash se der panic
	router.Use(middleware.Timeout(60 * time.Second))
	idempotencyMiddleware := internalMiddleware.Idempotency(idempotencyRepo)

	// Rota de Health Check (para o Docker saber se estamos vivos)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("Falha ao escrever resposta de health check")
		}
	})

	// Rotas
	router.Group(func(r chi.Router) {
		r.Use(idempotencyMiddleware)
		r.Post("/transactions", transactionHandler.Send)
	})
	router.Post("/wallets", walletHandler.Create)
	router.Get("/wallets/{address}", walletHandler.Get)
	router.Get("/wallets/{address}/balance", walletHandler.GetBalance)
	router.Get("/wallets/{address}/transactions", transactionHandler.History)
	router.Get("/transactions/{hash}", transactionHandler.GetByHash)

	// Subir o Servidor
	port := ":" + cfg.HTTPPort
	log.Info().Msgf("🚀 Servidor rodando na porta %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatal().Err(err).Msg("Falha ao iniciar servidor HTTP")
	}
}
