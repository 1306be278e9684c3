package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleberrangel/jusbr-consulta/internal/model"
	"github.com/cleberrangel/jusbr-consulta/internal/repository"
)

// fakeLookup responde sem rede e registra a ordem das consultas
type fakeLookup struct {
	mu      sync.Mutex
	calls   []string
	respond func(numero string) model.LookupResult
}

func (f *fakeLookup) Consultar(ctx context.Context, numero string) model.LookupResult {
	f.mu.Lock()
	f.calls = append(f.calls, numero)
	f.mu.Unlock()

	if f.respond != nil {
		return f.respond(numero)
	}
	return model.LookupResult{
		Numero:     numero,
		Sistema:    "PJe",
		Respondido: true,
		Resposta: model.JusBRResponse{
			Status: "OK",
			Data:   model.JusBRData{NumeroProcesso: numero, SiglaTribunal: "TJGO"},
		},
	}
}

func (f *fakeLookup) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// recordingNotifier guarda os eventos publicados
type recordingNotifier struct {
	mu      sync.Mutex
	eventos []model.Evento
}

func (n *recordingNotifier) Publish(e model.Evento) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.eventos = append(n.eventos, e)
}

func (n *recordingNotifier) Tipos() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	tipos := make([]string, 0, len(n.eventos))
	for _, e := range n.eventos {
		tipos = append(tipos, e.Tipo)
	}
	return tipos
}

// failingMirror falha em toda gravação
type failingMirror struct {
	*repository.MemoryMirror
}

func (f failingMirror) Save(ctx context.Context, snap repository.Snapshot) error {
	return errors.New("disco cheio")
}

func numeroSintetico(i int) string {
	return fmt.Sprintf("%020d", 10000000000+i)
}

func newTestService(t *testing.T, repo repository.MirrorRepository, lookup Lookuper, opts Options) *ProcessoService {
	t.Helper()
	svc, err := NewProcessoService(context.Background(), repo, lookup, opts)
	require.NoError(t, err)
	return svc
}

func TestEnqueueDeduplicates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, repository.NewMemoryMirror(), &fakeLookup{}, Options{})

	require.NoError(t, svc.Enqueue(ctx, "5618437-39.2021.8.09.0083"))
	require.NoError(t, svc.Enqueue(ctx, "56184373920218090083"))
	require.NoError(t, svc.EnqueueMany(ctx, []string{"5618437-39.2021.8.09.0083", "0001234-12.2023.8.26.0100"}))

	assert.Equal(t, []string{"56184373920218090083", "00012341220238260100"}, svc.Queue())
}

func TestEnqueueRejectsInvalidWithoutMutation(t *testing.T) {
	ctx := context.Background()
	mirror := repository.NewMemoryMirror()
	svc := newTestService(t, mirror, &fakeLookup{}, Options{})

	err := svc.Enqueue(ctx, "123-4")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	err = svc.EnqueueMany(ctx, []string{"5618437-39.2021.8.09.0083", "abc"})
	assert.ErrorIs(t, err, ErrInvalidNumber)

	assert.Empty(t, svc.Queue())
	assert.Equal(t, 0, mirror.Saves())
}

func TestEnqueueRespectsQueueCap(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, repository.NewMemoryMirror(), &fakeLookup{}, Options{MaxQueue: 2})

	require.NoError(t, svc.EnqueueMany(ctx, []string{numeroSintetico(1), numeroSintetico(2)}))

	err := svc.Enqueue(ctx, numeroSintetico(3))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Len(t, svc.Queue(), 2)

	// duplicata não conta para o limite
	assert.NoError(t, svc.Enqueue(ctx, numeroSintetico(1)))
}

func TestEnqueueKeepsStateWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, failingMirror{repository.NewMemoryMirror()}, &fakeLookup{}, Options{})

	err := svc.Enqueue(ctx, numeroSintetico(1))
	assert.ErrorIs(t, err, ErrPersist)
	assert.Empty(t, svc.Queue())
}

func TestDrainBatchBoundedAndOrdered(t *testing.T) {
	ctx := context.Background()
	lookup := &fakeLookup{}
	svc := newTestService(t, repository.NewMemoryMirror(), lookup, Options{BatchSize: 3})

	var numeros []string
	for i := 0; i < 7; i++ {
		numeros = append(numeros, numeroSintetico(i))
	}
	require.NoError(t, svc.EnqueueMany(ctx, numeros))

	resp, err := svc.DrainBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ConsultaResponse{TotalNaFila: 4, TotalProcessado: 3}, resp)
	assert.Equal(t, numeros[:3], lookup.Calls())
	assert.Equal(t, numeros[3:], svc.Queue())

	results := svc.Results()
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, numeros[i], r.NumeroProcesso)
		assert.NotEmpty(t, r.ID)
	}
}

func TestDrainBatchEmptyQueue(t *testing.T) {
	mirror := repository.NewMemoryMirror()
	svc := newTestService(t, mirror, &fakeLookup{}, Options{})

	resp, err := svc.DrainBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ConsultaResponse{}, resp)
	assert.Equal(t, 0, mirror.Saves())
}

func TestDrainBatchRecordsFailures(t *testing.T) {
	ctx := context.Background()
	lookup := &fakeLookup{respond: func(numero string) model.LookupResult {
		return model.LookupResult{
			Numero:   numero,
			Sistema:  model.SistemaIndisponivel,
			Resposta: model.NewFailureResponse(numero, "Timeout", "Timeout na consulta da API"),
		}
	}}
	svc := newTestService(t, repository.NewMemoryMirror(), lookup, Options{})

	resp, err := svc.RunOne(ctx, "5618437-39.2021.8.09.0083")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalNaFila)
	assert.Equal(t, 1, resp.TotalProcessado)

	r := svc.Results()[0]
	assert.True(t, r.Erro)
	assert.False(t, r.Status)
	assert.Equal(t, model.SistemaIndisponivel, r.Sistema)
	require.NotNil(t, r.MensagemErro)
	assert.Equal(t, "Timeout na consulta da API", *r.MensagemErro)
}

func TestDrainBatchProjectsActiveProcess(t *testing.T) {
	ctx := context.Background()
	ativo := true
	valor := 14308.80
	lookup := &fakeLookup{respond: func(numero string) model.LookupResult {
		return model.LookupResult{
			Numero:     numero,
			Sistema:    "PJe",
			Respondido: true,
			Resposta: model.JusBRResponse{
				Status: "OK",
				Data: model.JusBRData{
					NumeroProcesso: "0001234-12.2023.8.26.0100",
					SiglaTribunal:  "TJSP",
					TramitacaoAtual: &model.Tramitacao{
						Instancia: "1",
						Ativo:     &ativo,
						ValorAcao: &valor,
						Classe:    []model.Descricao{{Descricao: "Procedimento Comum Cível"}},
						Partes: []model.Parte{
							{Polo: model.PoloAtivo, Nome: "Maria"},
							{Polo: model.PoloPassivo, Nome: "Banco X"},
						},
					},
				},
			},
		}
	}}
	svc := newTestService(t, repository.NewMemoryMirror(), lookup, Options{})

	_, err := svc.RunOne(ctx, "0001234-12.2023.8.26.0100")
	require.NoError(t, err)

	r := svc.Results()[0]
	assert.Equal(t, "Sim", r.Ativo)
	assert.Equal(t, "PJe", r.Sistema)
	assert.Equal(t, "TJSP", r.SiglaTribunal)
	assert.Equal(t, 14308.80, r.ValorAcao)
	assert.Equal(t, "Maria", r.PoloAtivo)
	assert.Equal(t, "Banco X", r.PoloPassivo)
	assert.True(t, r.Status)
	assert.False(t, r.Erro)
	assert.Nil(t, r.MensagemErro)
	assert.Equal(t, []string{"00012341220238260100"}, lookup.Calls())
}

func TestStateSurvivesReload(t *testing.T) {
	ctx := context.Background()
	mirror := repository.NewMemoryMirror()
	svc := newTestService(t, mirror, &fakeLookup{}, Options{BatchSize: 1})

	require.NoError(t, svc.EnqueueMany(ctx, []string{numeroSintetico(1), numeroSintetico(2)}))
	_, err := svc.DrainBatch(ctx)
	require.NoError(t, err)

	reloaded := newTestService(t, mirror, &fakeLookup{}, Options{BatchSize: 1})
	assert.Equal(t, svc.Queue(), reloaded.Queue())
	assert.Equal(t, svc.Results(), reloaded.Results())
	assert.Equal(t, model.ConsultaResponse{TotalNaFila: 1, TotalProcessado: 1}, reloaded.Stats())
}

func TestCorruptMirrorFailsStartup(t *testing.T) {
	mirror := repository.NewMemoryMirror()
	mirror.SetRaw(repository.SlotQueue, []byte("{não é json"))

	_, err := NewProcessoService(context.Background(), mirror, &fakeLookup{}, Options{})
	assert.ErrorIs(t, err, repository.ErrCorruptSnapshot)
}

func TestClearQueueAndResults(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := newTestService(t, repository.NewMemoryMirror(), &fakeLookup{}, Options{BatchSize: 1, Notifier: notifier})

	require.NoError(t, svc.EnqueueMany(ctx, []string{numeroSintetico(1), numeroSintetico(2)}))
	_, err := svc.DrainBatch(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.ClearQueue(ctx))
	assert.Empty(t, svc.Queue())
	assert.Len(t, svc.Results(), 1)

	require.NoError(t, svc.ClearResults(ctx))
	assert.Empty(t, svc.Results())

	assert.Equal(t, []string{
		model.EventoFila,
		model.EventoResultado,
		model.EventoLote,
		model.EventoFila,
		model.EventoResultados,
	}, notifier.Tipos())
}

func TestQueueClearedDuringBatch(t *testing.T) {
	ctx := context.Background()
	var svc *ProcessoService
	lookup := &fakeLookup{}
	lookup.respond = func(numero string) model.LookupResult {
		require.NoError(t, svc.ClearQueue(ctx))
		return model.LookupResult{Numero: numero, Sistema: "PJe", Respondido: true}
	}
	svc = newTestService(t, repository.NewMemoryMirror(), lookup, Options{BatchSize: 5})

	require.NoError(t, svc.EnqueueMany(ctx, []string{numeroSintetico(1), numeroSintetico(2), numeroSintetico(3)}))
	resp, err := svc.DrainBatch(ctx)
	require.NoError(t, err)

	// o item em andamento termina; os demais saíram da fila
	assert.Equal(t, model.ConsultaResponse{TotalNaFila: 0, TotalProcessado: 1}, resp)
	assert.Len(t, lookup.Calls(), 1)
}

func TestResultByID(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, repository.NewMemoryMirror(), &fakeLookup{}, Options{})

	_, err := svc.RunOne(ctx, numeroSintetico(1))
	require.NoError(t, err)

	r := svc.Results()[0]
	got, err := svc.Result(r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, got)

	_, err = svc.Result("inexistente")
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestDrainAllEmptiesQueue(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, repository.NewMemoryMirror(), &fakeLookup{}, Options{BatchSize: 2})

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Enqueue(ctx, numeroSintetico(i)))
	}

	resp, err := svc.DrainAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ConsultaResponse{TotalNaFila: 0, TotalProcessado: 5}, resp)
}

// TestDrainBatchProperties verifica limites do lote e conservação de itens
func TestDrainBatchProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("fila esvazia em ceil(n/b) lotes", prop.ForAll(
		func(n, b int) bool {
			ctx := context.Background()
			svc, err := NewProcessoService(ctx, repository.NewMemoryMirror(), &fakeLookup{}, Options{BatchSize: b, MaxQueue: 100})
			if err != nil {
				return false
			}
			for i := 0; i < n; i++ {
				if err := svc.Enqueue(ctx, numeroSintetico(i)); err != nil {
					return false
				}
			}

			drains := 0
			for svc.Stats().TotalNaFila > 0 {
				before := svc.Stats()
				resp, err := svc.DrainBatch(ctx)
				if err != nil {
					return false
				}
				drained := before.TotalNaFila - resp.TotalNaFila
				if drained < 1 || drained > b {
					return false
				}
				if resp.TotalProcessado-before.TotalProcessado != drained {
					return false
				}
				drains++
			}

			return drains == (n+b-1)/b && len(svc.Results()) == n
		},
		gen.IntRange(0, 30),
		gen.IntRange(1, 10),
	))

	properties.Property("fila + resultados conserva os itens enfileirados", prop.ForAll(
		func(n, b int) bool {
			ctx := context.Background()
			svc, err := NewProcessoService(ctx, repository.NewMemoryMirror(), &fakeLookup{}, Options{BatchSize: b, MaxQueue: 100})
			if err != nil {
				return false
			}
			for i := 0; i < n; i++ {
				if err := svc.Enqueue(ctx, numeroSintetico(i)); err != nil {
					return false
				}
			}
			if _, err := svc.DrainBatch(ctx); err != nil {
				return false
			}
			stats := svc.Stats()
			return stats.TotalNaFila+stats.TotalProcessado == n
		},
		gen.IntRange(0, 30),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
