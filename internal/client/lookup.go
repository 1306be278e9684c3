package client

import (
	"context"
	"errors"
	"time"

	"github.com/cleberrangel/jusbr-consulta/internal/cache"
	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/metrics"
	"github.com/cleberrangel/jusbr-consulta/internal/model"
)

// RegistryClient resolve o sistema de tramitação de um processo
type RegistryClient interface {
	Sistema(ctx context.Context, numero string) (string, error)
}

// DetailClient busca o detalhe de um processo
type DetailClient interface {
	Processo(ctx context.Context, numero string) (model.JusBRResponse, bool)
}

// Lookup compõe DataJud e JusBR numa única consulta por número
type Lookup struct {
	registry RegistryClient
	detail   DetailClient
	sistemas *cache.Cache[string]
}

// NewLookup cria o adaptador de consulta. registry pode ser nil (sistema fica "N/A").
func NewLookup(registry RegistryClient, detail DetailClient, cacheTTL time.Duration) *Lookup {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &Lookup{
		registry: registry,
		detail:   detail,
		sistemas: cache.NewCache[string](cacheTTL),
	}
}

// Consultar executa as duas chamadas em sequência para um número normalizado
func (l *Lookup) Consultar(ctx context.Context, numero string) model.LookupResult {
	sistema := l.sistema(ctx, numero)

	start := time.Now()
	resp, respondido := l.detail.Processo(ctx, numero)
	metrics.Get().RecordLookup(resp.Data.Erro, resp.Mensagem == MsgTimeout, time.Since(start))

	return model.LookupResult{
		Numero:     numero,
		Sistema:    sistema,
		Resposta:   resp,
		Respondido: respondido,
	}
}

func (l *Lookup) sistema(ctx context.Context, numero string) string {
	if l.registry == nil {
		return model.SistemaIndisponivel
	}

	if nome, ok := l.sistemas.Get(numero); ok {
		metrics.Get().RecordRegistry(true, false)
		return nome
	}

	nome, err := l.registry.Sistema(ctx, numero)
	switch {
	case err == nil:
		metrics.Get().RecordRegistry(false, false)
		l.sistemas.Set(numero, nome)
		return nome
	case errors.Is(err, model.ErrNoRoute), errors.Is(err, model.ErrMissingAPIKey):
		// nenhuma chamada foi feita
		return model.SistemaIndisponivel
	case errors.Is(err, model.ErrSistemaNotFound):
		metrics.Get().RecordRegistry(false, true)
		l.sistemas.Set(numero, model.SistemaIndisponivel)
		return model.SistemaIndisponivel
	default:
		metrics.Get().RecordRegistry(false, true)
		logger.Get(ctx).Warn().Err(err).Str("numero", numero).Msg("Falha no DataJud, sistema ficará N/A")
		return model.SistemaIndisponivel
	}
}

// Close libera o cache de sistemas
func (l *Lookup) Close() {
	l.sistemas.Stop()
}
