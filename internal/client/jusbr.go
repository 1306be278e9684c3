package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/model"
)

const (
	// DefaultJusBRURL é a base da API de detalhe de processos
	DefaultJusBRURL = "https://rpa.juscash.com.br/jusbr/api/processo"

	// DefaultJusBRTimeout a API faz scraping e pode levar minutos
	DefaultJusBRTimeout = 10 * time.Minute

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Mensagens do envelope de falha
const (
	MsgTimeout      = "Timeout"
	MsgTimeoutErro  = "Timeout na consulta da API"
	MsgFalhaAPI     = "Falha na API"
	msgHTTPFormat   = "HTTP %d"
	msgHTTPErroForm = "Erro HTTP: %d"
)

// JusBRClient consulta a API de detalhe de processos
type JusBRClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewJusBRClient cria um novo cliente JusBR
func NewJusBRClient(baseURL string, timeout time.Duration) *JusBRClient {
	if baseURL == "" {
		baseURL = DefaultJusBRURL
	}
	if timeout <= 0 {
		timeout = DefaultJusBRTimeout
	}
	return &JusBRClient{
		baseURL: strings.TrimRight(baseURL, "/"),
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

// Processo busca o detalhe de um processo. Nunca retorna erro: falhas viram o
// envelope de falha com data.erro=true. O segundo retorno indica se a API
// chegou a devolver uma resposta HTTP.
func (c *JusBRClient) Processo(ctx context.Context, numero string) (model.JusBRResponse, bool) {
	log := logger.Get(ctx)
	endpoint := c.baseURL + "/" + url.PathEscape(numero)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Error().Err(err).Str("numero", numero).Msg("Erro ao criar request JusBR")
		return model.NewFailureResponse(numero, MsgFalhaAPI, MsgFalhaAPI), false
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			log.Warn().Str("numero", numero).Msg("Timeout na consulta JusBR")
			return model.NewFailureResponse(numero, MsgTimeout, MsgTimeoutErro), false
		}
		log.Warn().Err(err).Str("numero", numero).Msg("Falha de transporte na consulta JusBR")
		return model.NewFailureResponse(numero, MsgFalhaAPI, MsgFalhaAPI), false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("numero", numero).Msg("JusBR retornou status de erro")
		return model.NewFailureResponse(numero,
			fmt.Sprintf(msgHTTPFormat, resp.StatusCode),
			fmt.Sprintf(msgHTTPErroForm, resp.StatusCode)), true
	}

	var result model.JusBRResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if isTimeout(ctx, err) {
			log.Warn().Str("numero", numero).Msg("Timeout lendo resposta JusBR")
			return model.NewFailureResponse(numero, MsgTimeout, MsgTimeoutErro), false
		}
		log.Warn().Err(err).Str("numero", numero).Msg("Resposta JusBR inválida")
		return model.NewFailureResponse(numero, MsgFalhaAPI, MsgFalhaAPI), true
	}

	return result, true
}
