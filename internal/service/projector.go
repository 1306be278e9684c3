package service

import (
	"strings"

	"github.com/cleberrangel/jusbr-consulta/internal/model"
)

// Separadores usados no registro projetado
const (
	listSeparator  = ", "
	partySeparator = "<br>"
)

// MsgErroGenerico é usado quando a API sinaliza erro sem descrevê-lo
const MsgErroGenerico = "Erro não detalhado pela API"

// Project transforma a resposta da API de detalhe no registro plano exibido ao usuário.
// Não faz I/O; falhas já vêm capturadas no envelope.
func Project(id, numero, sistema string, respondido bool, resp model.JusBRResponse) model.ProcessRecord {
	data := resp.Data

	tram := model.Tramitacao{}
	if data.TramitacaoAtual != nil {
		tram = *data.TramitacaoAtual
	}

	record := model.ProcessRecord{
		ID:             id,
		NumeroProcesso: orDefault(data.NumeroProcesso, numero),
		SiglaTribunal:  orDefault(data.SiglaTribunal, model.SemValor),
		Sistema:        orDefault(sistema, model.SemValor),
		OrgaoJulgador:  model.SemValor,
		Instancia:      orDefault(tram.Instancia, model.SemValor),
		Ativo:          ativoLabel(tram.Ativo),
		Classe:         joinDescricoes(tram.Classe),
		Assunto:        joinDescricoes(tram.Assunto),
		PoloAtivo:      joinParties(tram.Partes, model.PoloAtivo),
		PoloPassivo:    joinParties(tram.Partes, model.PoloPassivo),
		Documentos:     firstDocumentos(tram.Documentos),
		Movimentos:     firstMovimentos(tram.Movimentos),
		Status:         respondido,
		Erro:           data.Erro,
	}

	if tram.ValorAcao != nil {
		record.ValorAcao = *tram.ValorAcao
	}

	if len(tram.Distribuicao) > 0 {
		dist := tram.Distribuicao[0]
		if len(dist.OrgaoJulgador) > 0 && dist.OrgaoJulgador[0].Nome != "" {
			record.OrgaoJulgador = dist.OrgaoJulgador[0].Nome
		}
		record.DataDistribuicao = optional(dist.DataHora)
	}

	if len(tram.Movimentos) > 0 {
		record.DataUltMov = optional(tram.Movimentos[0].DataHora)
	}

	if data.MensagemErro != "" {
		record.MensagemErro = optional(data.MensagemErro)
	} else if data.Erro {
		msg := orDefault(resp.Mensagem, MsgErroGenerico)
		record.MensagemErro = &msg
	}

	return record
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func ativoLabel(ativo *bool) string {
	switch {
	case ativo == nil:
		return model.SemValor
	case *ativo:
		return "Sim"
	default:
		return "Não"
	}
}

func joinDescricoes(items []model.Descricao) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Descricao)
	}
	return strings.Join(parts, listSeparator)
}

func joinParties(partes []model.Parte, polo string) string {
	var names []string
	for _, p := range partes {
		if p.Polo == polo {
			names = append(names, p.Nome)
		}
	}
	return strings.Join(names, partySeparator)
}

// firstDocumentos mantém a ordem recebida; a API entrega do mais recente para o mais antigo
func firstDocumentos(docs []model.DocumentoData) []model.DocumentoData {
	n := min(len(docs), model.MaxItensHistorico)
	out := make([]model.DocumentoData, n)
	copy(out, docs[:n])
	return out
}

func firstMovimentos(movs []model.MovimentoData) []model.MovimentoData {
	n := min(len(movs), model.MaxItensHistorico)
	out := make([]model.MovimentoData, n)
	copy(out, movs[:n])
	return out
}
