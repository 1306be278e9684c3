package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cleberrangel/jusbr-consulta/internal/cnj"
	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/metrics"
	"github.com/cleberrangel/jusbr-consulta/internal/model"
	"github.com/cleberrangel/jusbr-consulta/internal/repository"
)

// Erros do coordenador
var (
	ErrInvalidNumber  = errors.New("número de processo inválido (mínimo 10 dígitos)")
	ErrQueueFull      = errors.New("fila de processos cheia")
	ErrResultNotFound = errors.New("resultado não encontrado")
	ErrPersist        = errors.New("erro ao persistir fila e resultados")
)

const (
	// DefaultBatchSize é a quantidade de processos consultados por lote
	DefaultBatchSize = 10

	// DefaultMaxQueue é o limite de processos aguardando na fila
	DefaultMaxQueue = 500
)

// Lookuper consulta um número nas APIs remotas
type Lookuper interface {
	Consultar(ctx context.Context, numero string) model.LookupResult
}

// Notifier recebe eventos de mudança de estado
type Notifier interface {
	Publish(evento model.Evento)
}

// Options configura o coordenador
type Options struct {
	BatchSize int
	MaxQueue  int
	Interval  time.Duration // pausa entre consultas de um lote
	Notifier  Notifier
}

// ProcessoService é o coordenador de fila e lotes. Existe uma instância por processo,
// criada na inicialização e injetada nos consumidores.
type ProcessoService struct {
	drainMu sync.Mutex // um lote por vez

	mu      sync.RWMutex // protege queue e results
	queue   []string
	results []model.ProcessRecord

	repo      repository.MirrorRepository
	lookup    Lookuper
	notifier  Notifier
	pacer     *rate.Limiter
	batchSize int
	maxQueue  int
	newID     func() string
}

// NewProcessoService cria o coordenador carregando o espelho uma única vez
func NewProcessoService(ctx context.Context, repo repository.MirrorRepository, lookup Lookuper, opts Options) (*ProcessoService, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxQueue <= 0 {
		opts.MaxQueue = DefaultMaxQueue
	}

	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("carregar espelho: %w", err)
	}

	s := &ProcessoService{
		queue:     snap.Queue,
		results:   snap.Results,
		repo:      repo,
		lookup:    lookup,
		notifier:  opts.Notifier,
		pacer:     rate.NewLimiter(limit, 1),
		batchSize: opts.BatchSize,
		maxQueue:  opts.MaxQueue,
		newID:     uuid.NewString,
	}

	metrics.Get().SetState(len(s.queue), len(s.results))
	logger.Get(ctx).Info().
		Int("fila", len(s.queue)).
		Int("resultados", len(s.results)).
		Int("batch_size", s.batchSize).
		Msg("Coordenador de processos iniciado")

	return s, nil
}

// BatchSize retorna o tamanho do lote configurado
func (s *ProcessoService) BatchSize() int {
	return s.batchSize
}

// MaxQueue retorna o limite da fila
func (s *ProcessoService) MaxQueue() int {
	return s.maxQueue
}

// Enqueue adiciona um número à fila se ainda não estiver nela
func (s *ProcessoService) Enqueue(ctx context.Context, numero string) error {
	return s.EnqueueMany(ctx, []string{numero})
}

// EnqueueMany adiciona vários números na ordem recebida. A entrada inteira é validada
// antes: uma chamada rejeitada não altera a fila.
func (s *ProcessoService) EnqueueMany(ctx context.Context, numeros []string) error {
	digits := make([]string, 0, len(numeros))
	for _, n := range numeros {
		d := cnj.Normalize(n)
		if len(d) < cnj.MinDigits {
			return fmt.Errorf("%w: %q", ErrInvalidNumber, n)
		}
		digits = append(digits, d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.queue)
	added := 0
	for _, d := range digits {
		if slices.Contains(next, d) {
			continue
		}
		next = append(next, d)
		added++
	}

	if added == 0 {
		return nil
	}
	if len(next) > s.maxQueue {
		return fmt.Errorf("%w: %d processos (máx. %d)", ErrQueueFull, len(next), s.maxQueue)
	}

	if err := s.commitLocked(ctx, next, s.results); err != nil {
		return err
	}

	logger.Audit(ctx, logger.AuditEvent{
		Action:   logger.AuditActionQueueAdd,
		Resource: "fila",
		Success:  true,
		Details:  map[string]interface{}{"adicionados": added, "total_na_fila": len(next)},
	})
	s.publishLocked(model.Evento{Tipo: model.EventoFila})
	return nil
}

// DrainBatch consulta até BatchSize números do início da fila, um de cada vez.
// Falhas individuais ficam registradas no resultado e não interrompem o lote.
// O lote não é interrompido pelo cancelamento do chamador.
func (s *ProcessoService) DrainBatch(ctx context.Context) (model.ConsultaResponse, error) {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	ctx = context.WithoutCancel(ctx)
	log := logger.Get(ctx)
	start := time.Now()
	processed, failed := 0, 0

	for processed < s.batchSize {
		numero, ok := s.front()
		if !ok {
			break
		}

		if err := s.pacer.Wait(ctx); err != nil {
			log.Warn().Err(err).Msg("Espera entre consultas interrompida")
		}

		res := s.lookup.Consultar(ctx, numero)
		record := Project(s.newID(), numero, res.Sistema, res.Respondido, res.Resposta)
		if record.Erro {
			failed++
		}

		s.mu.Lock()
		// a fila pode ter sido limpa durante a consulta
		if i := slices.Index(s.queue, numero); i >= 0 {
			s.queue = slices.Delete(slices.Clone(s.queue), i, i+1)
		}
		s.results = append(s.results, record)
		s.publishLocked(model.Evento{Tipo: model.EventoResultado, Numero: numero, Registro: &record})
		s.mu.Unlock()

		processed++
		log.Info().
			Str("numero", numero).
			Bool("erro", record.Erro).
			Bool("status", record.Status).
			Int("item", processed).
			Msg("Processo consultado")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp := s.statsLocked()
	metrics.Get().RecordBatch(processed)
	logger.AuditBatch(ctx, processed, failed, resp.TotalNaFila, time.Since(start))

	if processed == 0 {
		return resp, nil
	}

	err := s.persistLocked(ctx)
	s.publishLocked(model.Evento{Tipo: model.EventoLote})
	return resp, err
}

// ClearQueue esvazia a fila
func (s *ProcessoService) ClearQueue(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.queue)
	if err := s.commitLocked(ctx, []string{}, s.results); err != nil {
		return err
	}

	logger.Audit(ctx, logger.AuditEvent{
		Action:   logger.AuditActionQueueClear,
		Resource: "fila",
		Success:  true,
		Details:  map[string]interface{}{"removidos": removed},
	})
	s.publishLocked(model.Evento{Tipo: model.EventoFila})
	return nil
}

// ClearResults esvazia a lista de resultados
func (s *ProcessoService) ClearResults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.results)
	if err := s.commitLocked(ctx, s.queue, []model.ProcessRecord{}); err != nil {
		return err
	}

	logger.Audit(ctx, logger.AuditEvent{
		Action:   logger.AuditActionResultsClear,
		Resource: "resultados",
		Success:  true,
		Details:  map[string]interface{}{"removidos": removed},
	})
	s.publishLocked(model.Evento{Tipo: model.EventoResultados})
	return nil
}

// RunOne enfileira um número e drena um lote
func (s *ProcessoService) RunOne(ctx context.Context, numero string) (model.ConsultaResponse, error) {
	if err := s.Enqueue(ctx, numero); err != nil {
		return model.ConsultaResponse{}, err
	}
	return s.DrainBatch(ctx)
}

// RunMany enfileira vários números e drena um lote
func (s *ProcessoService) RunMany(ctx context.Context, numeros []string) (model.ConsultaResponse, error) {
	if err := s.EnqueueMany(ctx, numeros); err != nil {
		return model.ConsultaResponse{}, err
	}
	return s.DrainBatch(ctx)
}

// DrainAll drena lotes até a fila esvaziar ou ctx ser cancelado entre lotes
func (s *ProcessoService) DrainAll(ctx context.Context) (model.ConsultaResponse, error) {
	resp := s.Stats()
	for resp.TotalNaFila > 0 {
		if err := ctx.Err(); err != nil {
			return resp, err
		}
		var err error
		if resp, err = s.DrainBatch(ctx); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// Queue retorna uma cópia da fila
func (s *ProcessoService) Queue() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.queue)
}

// Results retorna uma cópia dos resultados na ordem de processamento
func (s *ProcessoService) Results() []model.ProcessRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.results)
}

// Result busca um resultado pelo id
func (s *ProcessoService) Result(id string) (model.ProcessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		if r.ID == id {
			return r, nil
		}
	}
	return model.ProcessRecord{}, ErrResultNotFound
}

// Stats retorna os totais atuais de fila e resultados
func (s *ProcessoService) Stats() model.ConsultaResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

func (s *ProcessoService) front() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.queue) == 0 {
		return "", false
	}
	return s.queue[0], true
}

func (s *ProcessoService) statsLocked() model.ConsultaResponse {
	return model.ConsultaResponse{
		TotalNaFila:     len(s.queue),
		TotalProcessado: len(s.results),
	}
}

// commitLocked grava o novo estado e só então o adota
func (s *ProcessoService) commitLocked(ctx context.Context, queue []string, results []model.ProcessRecord) error {
	snap := repository.Snapshot{Queue: queue, Results: results}
	if err := s.repo.Save(ctx, snap); err != nil {
		logger.Get(ctx).Error().Err(err).Msg("Erro ao gravar espelho")
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	s.queue = queue
	s.results = results
	metrics.Get().SetState(len(queue), len(results))
	return nil
}

func (s *ProcessoService) persistLocked(ctx context.Context) error {
	return s.commitLocked(ctx, s.queue, s.results)
}

func (s *ProcessoService) publishLocked(evento model.Evento) {
	if s.notifier == nil {
		return
	}
	evento.TotalNaFila = len(s.queue)
	evento.TotalProcessado = len(s.results)
	s.notifier.Publish(evento)
}
