package service

import (
	"errors"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/cleberrangel/jusbr-consulta/internal/model"
)

// ErrInvalidSortField indica coluna de ordenação desconhecida
var ErrInvalidSortField = errors.New("campo de ordenação inválido")

type fieldKind int

const (
	kindText fieldKind = iota
	kindDate
	kindNumber
	kindBool
)

type sortField struct {
	kind fieldKind
	text func(r *model.ProcessRecord) string
	date func(r *model.ProcessRecord) *string
	num  func(r *model.ProcessRecord) float64
	flag func(r *model.ProcessRecord) bool
}

var sortFields = map[string]sortField{
	"numeroProcesso":   {kind: kindText, text: func(r *model.ProcessRecord) string { return r.NumeroProcesso }},
	"siglaTribunal":    {kind: kindText, text: func(r *model.ProcessRecord) string { return r.SiglaTribunal }},
	"orgaoJulgador":    {kind: kindText, text: func(r *model.ProcessRecord) string { return r.OrgaoJulgador }},
	"instancia":        {kind: kindText, text: func(r *model.ProcessRecord) string { return r.Instancia }},
	"classe":           {kind: kindText, text: func(r *model.ProcessRecord) string { return r.Classe }},
	"assunto":          {kind: kindText, text: func(r *model.ProcessRecord) string { return r.Assunto }},
	"sistema":          {kind: kindText, text: func(r *model.ProcessRecord) string { return r.Sistema }},
	"ativo":            {kind: kindText, text: func(r *model.ProcessRecord) string { return r.Ativo }},
	"dataUltMov":       {kind: kindDate, date: func(r *model.ProcessRecord) *string { return r.DataUltMov }},
	"dataDistribuicao": {kind: kindDate, date: func(r *model.ProcessRecord) *string { return r.DataDistribuicao }},
	"valorAcao":        {kind: kindNumber, num: func(r *model.ProcessRecord) float64 { return r.ValorAcao }},
	"status":           {kind: kindBool, flag: func(r *model.ProcessRecord) bool { return r.Status }},
}

// SortFields retorna as colunas aceitas por SortRecords
func SortFields() []string {
	keys := make([]string, 0, len(sortFields))
	for k := range sortFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortRecords ordena uma cópia dos registros pela coluna informada (ordenação estável).
// Campo vazio mantém a ordem de inserção.
func SortRecords(records []model.ProcessRecord, field string, desc bool) ([]model.ProcessRecord, error) {
	out := make([]model.ProcessRecord, len(records))
	copy(out, records)

	if field == "" {
		return out, nil
	}

	sf, ok := sortFields[field]
	if !ok {
		return nil, ErrInvalidSortField
	}

	cmp := comparator(sf)
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(&out[i], &out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

func comparator(sf sortField) func(a, b *model.ProcessRecord) int {
	switch sf.kind {
	case kindDate:
		return func(a, b *model.ProcessRecord) int {
			return compareDates(sf.date(a), sf.date(b))
		}
	case kindNumber:
		return func(a, b *model.ProcessRecord) int {
			return compareFloat(sf.num(a), sf.num(b))
		}
	case kindBool:
		return func(a, b *model.ProcessRecord) int {
			return compareBool(sf.flag(a), sf.flag(b))
		}
	default:
		// ordem alfabética em português, sem diferenciar maiúsculas e acentos
		col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase, collate.IgnoreDiacritics)
		return func(a, b *model.ProcessRecord) int {
			return col.CompareString(sf.text(a), sf.text(b))
		}
	}
}

// compareDates coloca datas ausentes ou inválidas antes das válidas
func compareDates(a, b *string) int {
	ta, okA := parseOptional(a)
	tb, okB := parseOptional(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	return ta.Compare(tb)
}

func parseOptional(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	return ParseDate(*s, time.UTC)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
