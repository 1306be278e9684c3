package service

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// layouts aceitos nas datas retornadas pelas APIs
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatCurrency formata um valor em reais (ex: "R$ 14.308,80")
func FormatCurrency(v float64) string {
	if v < 0 {
		return "-R$ " + brPrinter.Sprintf("%.2f", -v)
	}
	return "R$ " + brPrinter.Sprintf("%.2f", v)
}

// ParseDate interpreta uma data ISO; datas sem fuso são lidas em loc
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// FormatDate converte uma data ISO para dd/mm/aaaa no fuso informado.
// Vazio vira "-"; formatos desconhecidos são devolvidos como vieram.
func FormatDate(s string, loc *time.Location) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	t, ok := ParseDate(s, loc)
	if !ok {
		return s
	}
	return t.Format("02/01/2006")
}

// FormatOptionalDate formata um ponteiro de data, "-" quando nil
func FormatOptionalDate(s *string, loc *time.Location) string {
	if s == nil {
		return "-"
	}
	return FormatDate(*s, loc)
}
