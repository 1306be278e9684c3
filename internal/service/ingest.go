package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cleberrangel/jusbr-consulta/internal/cnj"
)

// Erros de importação de planilha
var (
	ErrInvalidFile     = errors.New("arquivo inválido ou corrompido")
	ErrFileTooLarge    = errors.New("arquivo excede limite de 10MB")
	ErrUnsupportedType = errors.New("formato de arquivo não suportado (use XLSX ou CSV)")
	ErrEmptyFile       = errors.New("arquivo está vazio")
	ErrNoValidRows     = errors.New("nenhum número de processo válido na primeira coluna")
	ErrTooManyRows     = errors.New("planilha excede o limite de processos")
)

// MaxFileSize é o tamanho máximo aceito para upload (10MB)
const MaxFileSize = 10 * 1024 * 1024

// IngestResult resume a leitura de uma planilha
type IngestResult struct {
	Filename string   `json:"filename"`
	Numeros  []string `json:"numeros"`
	Lidas    int      `json:"linhas_lidas"`
	Ignorada int      `json:"linhas_ignoradas"`
}

// SupportedExtension informa se a extensão do arquivo é aceita
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

// Ingest lê a primeira coluna da planilha, de cima para baixo e sem cabeçalho, e
// devolve os números normalizados, válidos e sem duplicatas. maxRows <= 0 desliga o limite.
func Ingest(filename string, r io.Reader, size int64, maxRows int) (*IngestResult, error) {
	if size > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if size == 0 {
		return nil, ErrEmptyFile
	}
	if !SupportedExtension(filename) {
		return nil, ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	var column []string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		column, err = firstColumnCSV(data)
	default:
		column, err = firstColumnXLSX(data)
	}
	if err != nil {
		return nil, err
	}

	result := &IngestResult{Filename: filename, Lidas: len(column)}
	seen := make(map[string]struct{}, len(column))
	for _, cell := range column {
		digits := cnj.Normalize(cell)
		if len(digits) < cnj.MinDigits {
			result.Ignorada++
			continue
		}
		if _, dup := seen[digits]; dup {
			result.Ignorada++
			continue
		}
		seen[digits] = struct{}{}
		result.Numeros = append(result.Numeros, digits)
	}

	if len(result.Numeros) == 0 {
		return nil, ErrNoValidRows
	}
	if maxRows > 0 && len(result.Numeros) > maxRows {
		return nil, fmt.Errorf("%w: %d processos (máx. %d)", ErrTooManyRows, len(result.Numeros), maxRows)
	}

	return result, nil
}

func firstColumnXLSX(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("erro ao ler linhas: %w", err)
	}

	column := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			column = append(column, "")
			continue
		}
		column = append(column, row[0])
	}
	return column, nil
}

func firstColumnCSV(data []byte) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	// planilhas exportadas no Brasil costumam usar ';'
	if firstLine, _, _ := strings.Cut(string(data), "\n"); strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		reader.Comma = ';'
	}

	var column []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// linha malformada é ignorada
			continue
		}
		if len(row) == 0 {
			column = append(column, "")
			continue
		}
		column = append(column, row[0])
	}
	return column, nil
}
