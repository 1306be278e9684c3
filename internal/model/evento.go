package model

// Tipos de evento publicados aos clientes conectados
const (
	EventoFila       = "fila"
	EventoResultado  = "resultado"
	EventoLote       = "lote"
	EventoResultados = "resultados"
)

// Evento notifica uma mudança de fila ou resultados
type Evento struct {
	Tipo            string         `json:"tipo"`
	TotalNaFila     int            `json:"total_na_fila"`
	TotalProcessado int            `json:"total_processado"`
	Numero          string         `json:"numero,omitempty"`
	Registro        *ProcessRecord `json:"registro,omitempty"`
}
