package model

// ConsultaRequest representa o payload para consultar um único processo
type ConsultaRequest struct {
	NumeroProcesso string `json:"numero_processo" binding:"required"`
}

// EnfileirarRequest representa o payload para enfileirar vários processos
type EnfileirarRequest struct {
	Numeros []string `json:"numeros" binding:"required,min=1"`
}

// Response representa a resposta padrão da API
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// Meta contém metadados da resposta
type Meta struct {
	TotalNaFila     int `json:"total_na_fila"`
	TotalProcessado int `json:"total_processado"`
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
