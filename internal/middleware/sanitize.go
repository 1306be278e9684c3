package middleware

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// SanitizeFilename limpa o nome de um arquivo enviado:
// remove diretórios, sequências de path traversal e caracteres de controle
func SanitizeFilename(filename string) string {
	// separadores do Windows também contam
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)

	filename = strings.ReplaceAll(filename, "\x00", "")
	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.ReplaceAll(filename, "/", "")

	filename = removeControlChars(filename)
	filename = strings.TrimSpace(filename)

	if filename == "" || filename == "." {
		return "unnamed_file"
	}

	return filename
}

// ValidateID valida o formato de um id de resultado (uuid)
func ValidateID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	return validID.MatchString(id)
}

// SanitizeQuery limpa um parâmetro de query curto (ex: coluna de ordenação)
func SanitizeQuery(value string, maxLen int) string {
	value = strings.ReplaceAll(value, "\x00", "")
	value = removeControlChars(strings.TrimSpace(value))
	if maxLen > 0 && len(value) > maxLen {
		value = value[:maxLen]
	}
	return value
}

func removeControlChars(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
