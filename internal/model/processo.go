package model

// SistemaIndisponivel é o sistema registrado quando o DataJud não responde ou não há rota
const SistemaIndisponivel = "N/A"

// Campos exibidos quando a API não informa o valor
const SemValor = "-"

// MaxItensHistorico limita documentos e movimentos guardados por processo
const MaxItensHistorico = 5

// Polos das partes retornadas pela API JusBR
const (
	PoloAtivo   = "ATIVO"
	PoloPassivo = "PASSIVO"
)

// ProcessRecord é o resultado normalizado de uma consulta
type ProcessRecord struct {
	ID               string          `json:"id"`
	NumeroProcesso   string          `json:"numeroProcesso"`
	SiglaTribunal    string          `json:"siglaTribunal"`
	Sistema          string          `json:"sistema"`
	OrgaoJulgador    string          `json:"orgaoJulgador"`
	DataDistribuicao *string         `json:"dataDistribuicao"`
	Instancia        string          `json:"instancia"`
	DataUltMov       *string         `json:"dataUltMov"`
	Ativo            string          `json:"ativo"`
	ValorAcao        float64         `json:"valorAcao"`
	Classe           string          `json:"classe"`
	Assunto          string          `json:"assunto"`
	PoloAtivo        string          `json:"poloAtivo"`
	PoloPassivo      string          `json:"poloPassivo"`
	Documentos       []DocumentoData `json:"documentos"`
	Movimentos       []MovimentoData `json:"movimentos"`
	Status           bool            `json:"status"`
	Erro             bool            `json:"erro"`
	MensagemErro     *string         `json:"mensagemErro"`
}

// DocumentoData é um documento juntado ao processo
type DocumentoData struct {
	Tipo            *TipoDocumento `json:"tipo,omitempty"`
	DataHoraJuntada string         `json:"dataHoraJuntada"`
}

// TipoDocumento descreve o tipo de um documento
type TipoDocumento struct {
	Nome string `json:"nome"`
}

// NomeTipo retorna o nome do tipo ou "-" quando ausente
func (d DocumentoData) NomeTipo() string {
	if d.Tipo == nil || d.Tipo.Nome == "" {
		return SemValor
	}
	return d.Tipo.Nome
}

// MovimentoData é uma movimentação processual
type MovimentoData struct {
	Descricao string `json:"descricao"`
	DataHora  string `json:"dataHora"`
}

// ConsultaResponse resume o estado após drenar um lote
type ConsultaResponse struct {
	TotalNaFila     int `json:"total_na_fila"`
	TotalProcessado int `json:"total_processado"`
}

// LookupResult é o que o adaptador remoto devolve para um número
type LookupResult struct {
	Numero     string
	Sistema    string
	Resposta   JusBRResponse
	Respondido bool // a API de detalhe devolveu uma resposta HTTP
}
