package model

import "errors"

var (
	// ErrRateLimited indica que a API remota retornou 429
	ErrRateLimited = errors.New("rate limit excedido na API remota")

	// ErrUnauthorized indica chave de API inválida
	ErrUnauthorized = errors.New("chave da API DataJud inválida ou expirada")

	// ErrNotFound indica processo não encontrado
	ErrNotFound = errors.New("processo não encontrado")

	// ErrTimeout indica timeout na requisição
	ErrTimeout = errors.New("timeout na consulta da API")

	// ErrInvalidResponse indica resposta inválida da API
	ErrInvalidResponse = errors.New("resposta inválida da API")

	// ErrNoRoute indica que o número não tem tribunal mapeado no DataJud
	ErrNoRoute = errors.New("número sem tribunal mapeado no DataJud")

	// ErrMissingAPIKey indica que DATAJUD_API_KEY não foi configurada
	ErrMissingAPIKey = errors.New("DATAJUD_API_KEY não configurada")

	// ErrSistemaNotFound indica que nenhum hit do DataJud trouxe um sistema válido
	ErrSistemaNotFound = errors.New("sistema não informado pelo DataJud")
)
