package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/usecase"
)

const (
	defaultWorkers   = 4
	defaultBatchSize = 20
	defaultTick      = 5 * time.Second
)

// Pool supervisiona a reconciliação: um loop de ticker reivindica jobs
// vencidos no banco e distribui para N goroutines. Como o claim usa
// FOR UPDATE SKIP LOCKED, várias instâncias do worker podem rodar juntas
// sem processar o mesmo job duas vezes.
type Pool struct {
	reconciler *usecase.ReconcileUseCase
	workers    int
	batchSize  int
	tick       time.Duration
}

func NewPool(reconciler *usecase.ReconcileUseCase) *Pool {
	return &Pool{
		reconciler: reconciler,
		workers:    defaultWorkers,
		batchSize:  defaultBatchSize,
		tick:       defaultTick,
	}
}

// Run bloqueia até o contexto ser cancelado. Jobs em andamento terminam a
// rodada atual antes do retorno (o lease no banco cobre quem não terminou).
func (p *Pool) Run(ctx context.Context) {
	jobs := make(chan *domain.ReconcileJob)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for job := range jobs {
				p.reconciler.Process(ctx, job)
			}
		}(i)
	}

	log.Info().Int("workers", p.workers).Msg("Pool de reconciliação iniciado")

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			log.Info().Msg("Pool de reconciliação encerrado")
			return
		case <-ticker.C:
			claimed, err := p.reconciler.ClaimDue(ctx, p.batchSize)
			if err != nil {
				log.Error().Err(err).Msg("Falha ao reivindicar jobs de reconciliação")
				continue
			}
			for _, job := range claimed {
				select {
				case jobs <- job:
				case <-ctx.Done():
					// O lease expira sozinho, o job volta na próxima rodada.
					close(jobs)
					wg.Wait()
					return
				}
			}
		}
	}
}
