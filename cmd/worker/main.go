package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/config"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/infra/ethereum"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/infra/mongodb"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/infra/postgres"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/infra/rabbitmq"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/usecase"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/worker"
)

// O worker faz dois trabalhos independentes:
//  1. Consome eventos de auditoria do RabbitMQ e persiste no MongoDB.
//  2. Roda o pool de reconciliação que confirma transações pendentes.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB (destino dos logs de auditoria)
	clientOptions := options.Client().ApplyURI(cfg.MongoURI)
	mongoClient, err := mongo.Connect(clientOptions)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao criar client MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Erro ao desconectar Mongo")
		}
	}()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		pingCancel()
		log.Fatal().Err(err).Msg("MongoDB não está respondendo")
	}
	pingCancel()
	log.Info().Msg("✅ Conectado ao MongoDB!")
	auditRepo := mongodb.NewAuditRepository(mongoClient, cfg.MongoDBName)

	// PostgreSQL (fila durável de reconciliação + transações)
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Não foi possível conectar ao banco de dados")
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Banco de dados não está respondendo")
	}
	log.Info().Msg("✅ Conectado ao PostgreSQL!")

	// RabbitMQ (fonte dos eventos de auditoria)
	conn, err := amqp.DialConfig(cfg.RabbitURL, amqp.Config{
		Properties: amqp.Table{
			"connection_name": "CustodyWorker_Consumer",
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao conectar no RabbitMQ")
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao abrir canal")
	}
	defer ch.Close()

	// QoS (Prefetch Count = 1): o broker manda uma mensagem por vez e
	// espera o Ack antes da próxima.
	if err := ch.Qos(1, 0, false); err != nil {
		log.Fatal().Err(err).Msg("Erro ao configurar QoS")
	}

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
		log.Fatal().Err(err).Msg("Erro ao declarar exchange")
	}

	q, err := ch.QueueDeclare(
		"audit_queue", // name
		true,          // durable (sobrevive a restart do broker)
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao declarar fila")
	}

	// Tudo que começa com "audit." cai na audit_queue.
	err = ch.QueueBind(
		q.Name,
		"audit.#",
		rabbitmq.EventsExchange,
		false,
		nil,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao fazer bind da fila")
	}

	msgs, err := ch.Consume(
		q.Name,         // queue
		"audit_worker", // consumer tag
		false,          // auto-ack desligado: só confirmamos depois do Mongo
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao registrar consumidor")
	}

	notifyClose := make(chan *amqp.Error)
	ch.NotifyClose(notifyClose)

	log.Info().Str("queue", q.Name).Msg("Worker de auditoria aguardando mensagens")

	go func() {
		for {
			select {
			case err := <-notifyClose:
				if err != nil {
					log.Error().Err(err).Msg("🔴 Canal RabbitMQ fechado")
					os.Exit(1) // Deixa o orquestrador subir o worker de novo
				}
				return
			case d, ok := <-msgs:
				if !ok {
					log.Error().Msg("🔴 Canal de mensagens fechado")
					os.Exit(1)
				}

				var entry domain.AuditEntry
				if err := json.Unmarshal(d.Body, &entry); err != nil {
					log.Error().Err(err).Msg("Evento de auditoria com JSON inválido, descartando")
					if err := d.Nack(false, false); err != nil {
						log.Error().Err(err).Msg("Erro ao enviar Nack")
					}
					continue
				}

				saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := auditRepo.Save(saveCtx, entry); err != nil {
					log.Error().Err(err).Msg("Erro ao salvar auditoria no Mongo")
					// Requeue: o evento volta para a fila e tentamos de novo.
					if err := d.Nack(false, true); err != nil {
						log.Error().Err(err).Msg("Erro ao enviar Nack")
					}
					saveCancel()
					continue
				}
				saveCancel()

				if err := d.Ack(false); err != nil {
					log.Error().Err(err).Msg("Erro ao enviar Ack")
				}
			}
		}
	}()

	// Pool de reconciliação: consulta receipts das transações pendentes.
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
	}

	transactionRepository := postgres.NewTransactionRepository(dbPool)
	jobRepository := postgres.NewReconcileJobRepository(dbPool)
	auditTrail := rabbitmq.NewAuditTrail(rabbitmq.NewPublisher(ch))

	reconciler := usecase.NewReconcile(transactionRepository, jobRepository, ledgers, auditTrail)
	pool := worker.NewPool(reconciler)
	go pool.Run(ctx)

	// Graceful Shutdown (bloqueia a main até receber sinal)
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	<-stopChan

	log.Info().Msg("Shutting down worker...")
	cancel()
	time.Sleep(time.Second) // dá tempo do pool drenar a rodada atual
}
