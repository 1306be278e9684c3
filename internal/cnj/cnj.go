// Package cnj trata números de processo no padrão CNJ (Resolução 65/2008):
// NNNNNNN-DD.AAAA.J.TR.OOOO.
package cnj

import (
	"strings"
)

const (
	// MinDigits é o mínimo de dígitos para um número ser aceito na fila
	MinDigits = 10

	// CanonicalDigits é o tamanho do número unificado
	CanonicalDigits = 20
)

// Normalize remove todo caractere que não seja dígito
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValid retorna true se o número normalizado tem pelo menos MinDigits dígitos
func IsValid(raw string) bool {
	return len(Normalize(raw)) >= MinDigits
}

// RoutingCode retorna "{segmento}.{tribunal}" (ex: "8.26") para números com 20 dígitos.
// Para qualquer outro tamanho retorna ("", false).
func RoutingCode(raw string) (string, bool) {
	digits := Normalize(raw)
	if len(digits) != CanonicalDigits {
		return "", false
	}
	return digits[13:14] + "." + digits[14:16], true
}

// Format aplica a máscara CNJ quando o número tem 20 dígitos
func Format(raw string) string {
	digits := Normalize(raw)
	switch {
	case len(digits) == CanonicalDigits:
		return digits[0:7] + "-" + digits[7:9] + "." + digits[9:13] + "." +
			digits[13:14] + "." + digits[14:16] + "." + digits[16:20]
	case len(digits) >= MinDigits:
		return digits
	default:
		return raw
	}
}
