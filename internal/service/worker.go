package service

import (
	"context"
	"sync"
	"time"

	"github.com/cleberrangel/jusbr-consulta/internal/logger"
)

// DefaultDrainInterval é o intervalo entre verificações da fila pelo DrainWorker
const DefaultDrainInterval = 5 * time.Second

// DrainWorker drena a fila em segundo plano enquanto houver processos pendentes
type DrainWorker struct {
	svc      *ProcessoService
	interval time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	wake    chan struct{}
	started bool
	mu      sync.Mutex
}

// NewDrainWorker cria o worker; interval <= 0 usa DefaultDrainInterval
func NewDrainWorker(svc *ProcessoService, interval time.Duration) *DrainWorker {
	if interval <= 0 {
		interval = DefaultDrainInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DrainWorker{
		svc:      svc,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		wake:     make(chan struct{}, 1),
	}
}

// Start inicia o loop em segundo plano
func (w *DrainWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true

	logger.Global().Info().Dur("intervalo", w.interval).Msg("Iniciando drenagem automática da fila")
	w.wg.Add(1)
	go w.loop()
}

// Stop encerra o loop e espera o lote em andamento terminar
func (w *DrainWorker) Stop() {
	w.cancel()
	w.wg.Wait()
	logger.Global().Info().Msg("Drenagem automática parada")
}

// Wake antecipa a próxima verificação (ex: logo após enfileirar)
func (w *DrainWorker) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *DrainWorker) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
		case <-w.wake:
		}
		w.drainPending()
	}
}

// drainPending drena lotes até a fila esvaziar, parando entre lotes se o worker for encerrado
func (w *DrainWorker) drainPending() {
	if _, err := w.svc.DrainAll(w.ctx); err != nil && w.ctx.Err() == nil {
		logger.Global().Error().Err(err).Msg("Erro na drenagem automática")
	}
}
