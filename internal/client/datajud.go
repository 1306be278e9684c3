package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cleberrangel/jusbr-consulta/internal/cnj"
	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/model"
)

const (
	// DefaultDataJudURL é a base da API pública do CNJ
	DefaultDataJudURL = "https://api-publica.datajud.cnj.jus.br"

	// DefaultDataJudTimeout timeout padrão para a busca no DataJud
	DefaultDataJudTimeout = 30 * time.Second
)

// DataJudClient consulta a API pública do DataJud para descobrir o sistema de tramitação
type DataJudClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewDataJudClient cria um novo cliente DataJud
func NewDataJudClient(baseURL, apiKey string, timeout time.Duration) *DataJudClient {
	if baseURL == "" {
		baseURL = DefaultDataJudURL
	}
	if timeout <= 0 {
		timeout = DefaultDataJudTimeout
	}
	return &DataJudClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

type searchRequest struct {
	Query struct {
		Match struct {
			NumeroProcesso string `json:"numeroProcesso"`
		} `json:"match"`
	} `json:"query"`
}

// Sistema retorna o nome do sistema de tramitação do processo (ex: "PJe", "SAJ")
func (c *DataJudClient) Sistema(ctx context.Context, numero string) (string, error) {
	if c.apiKey == "" {
		return "", model.ErrMissingAPIKey
	}

	alias, ok := cnj.Alias(numero)
	if !ok {
		return "", model.ErrNoRoute
	}

	var body searchRequest
	body.Query.Match.NumeroProcesso = cnj.Normalize(numero)

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("serializar busca: %w", err)
	}

	url := fmt.Sprintf("%s/%s/_search", c.baseURL, alias)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("criar request: %w", err)
	}

	req.Header.Set("Authorization", "APIKey "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", model.ErrTimeout
		}
		return "", fmt.Errorf("executar request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return "", model.ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", model.ErrUnauthorized
	case http.StatusNotFound:
		return "", model.ErrNotFound
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}

	var result model.DataJudResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrInvalidResponse, err)
	}

	for _, hit := range result.Hits.Hits {
		if hit.Source.Sistema == nil {
			continue
		}
		if nome := hit.Source.Sistema.Nome; nome != "" && nome != model.SistemaInvalido {
			logger.Get(ctx).Debug().
				Str("numero", numero).
				Str("alias", alias).
				Str("sistema", nome).
				Msg("Sistema identificado no DataJud")
			return nome, nil
		}
	}

	return "", model.ErrSistemaNotFound
}

// isTimeout identifica estouro de prazo do contexto ou do http.Client
func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
