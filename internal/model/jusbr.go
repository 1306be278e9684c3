package model

// StatusErro marca o envelope de falha montado localmente
const StatusErro = "ERRO"

// JusBRResponse é o envelope retornado pela API de detalhe do processo
type JusBRResponse struct {
	Status   string    `json:"status"`
	Mensagem string    `json:"mensagem"`
	Data     JusBRData `json:"data"`
}

// JusBRData contém os dados do processo ou o erro de negócio
type JusBRData struct {
	NumeroProcesso  string      `json:"numeroProcesso,omitempty"`
	SiglaTribunal   string      `json:"siglaTribunal,omitempty"`
	TramitacaoAtual *Tramitacao `json:"tramitacaoAtual,omitempty"`
	Erro            bool        `json:"erro,omitempty"`
	MensagemErro    string      `json:"mensagemErro,omitempty"`
}

// Tramitacao é a tramitação atual do processo
type Tramitacao struct {
	Instancia    string          `json:"instancia,omitempty"`
	Ativo        *bool           `json:"ativo,omitempty"`
	ValorAcao    *float64        `json:"valorAcao,omitempty"`
	Classe       []Descricao     `json:"classe,omitempty"`
	Assunto      []Descricao     `json:"assunto,omitempty"`
	Partes       []Parte         `json:"partes,omitempty"`
	Documentos   []DocumentoData `json:"documentos,omitempty"`
	Movimentos   []MovimentoData `json:"movimentos,omitempty"`
	Distribuicao []Distribuicao  `json:"distribuicao,omitempty"`
}

// Descricao é um item de classe ou assunto
type Descricao struct {
	Descricao string `json:"descricao"`
}

// Parte é uma parte do processo com seu polo
type Parte struct {
	Polo string `json:"polo"`
	Nome string `json:"nome"`
}

// Distribuicao é um registro de distribuição do processo
type Distribuicao struct {
	DataHora      string `json:"dataHora,omitempty"`
	OrgaoJulgador []Nome `json:"orgaoJulgador,omitempty"`
}

// Nome é um objeto com apenas o campo nome
type Nome struct {
	Nome string `json:"nome"`
}

// NewFailureResponse monta o envelope de falha declarado para um número
func NewFailureResponse(numero, mensagem, mensagemErro string) JusBRResponse {
	return JusBRResponse{
		Status:   StatusErro,
		Mensagem: mensagem,
		Data: JusBRData{
			NumeroProcesso: numero,
			Erro:           true,
			MensagemErro:   mensagemErro,
		},
	}
}

// DataJudResponse é o subconjunto usado da resposta de busca do DataJud
type DataJudResponse struct {
	Hits struct {
		Hits []DataJudHit `json:"hits"`
	} `json:"hits"`
}

// DataJudHit é um documento retornado pela busca
type DataJudHit struct {
	Source struct {
		Sistema *struct {
			Nome string `json:"nome"`
		} `json:"sistema,omitempty"`
	} `json:"_source"`
}

// SistemaInvalido é o valor que o DataJud usa para sistemas não identificados
const SistemaInvalido = "Inválido"
