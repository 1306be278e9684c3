package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"github.com/cleberrangel/jusbr-consulta/internal/cnj"
	"github.com/cleberrangel/jusbr-consulta/internal/model"
)

const (
	sheetName       = "Consulta"
	exportSeparator = "; "
	currencyFormat  = `"R$" #,##0.00`
)

// ExportHeaders são as colunas da planilha exportada, na ordem
var ExportHeaders = []string{
	"Número do Processo",
	"Tribunal",
	"Órgão Julgador",
	"Instância",
	"Data Última Movimentação",
	"Data Distribuição",
	"Ativo",
	"Valor da Ação",
	"Classe",
	"Assunto",
	"Sistema",
	"Polo Ativo",
	"Polo Passivo",
	"Movimentações",
	"Documentos",
	"Status",
}

const valorColumn = 8

// ExportFilename gera o nome do arquivo exportado (consulta_jusbr_AAAA-MM-DD.xlsx)
func ExportFilename(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return fmt.Sprintf("consulta_jusbr_%s.xlsx", now.In(loc).Format("2006-01-02"))
}

// ExcelExporter gera a planilha de resultados
type ExcelExporter struct {
	loc *time.Location
}

// NewExcelExporter cria um exportador que formata datas no fuso informado
func NewExcelExporter(loc *time.Location) *ExcelExporter {
	if loc == nil {
		loc = time.Local
	}
	return &ExcelExporter{loc: loc}
}

// Export gera o XLSX com um registro por linha
func (e *ExcelExporter) Export(records []model.ProcessRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("renomear sheet: %w", err)
	}

	if err := e.writeHeaders(f); err != nil {
		return nil, fmt.Errorf("escrever headers: %w", err)
	}

	if err := e.writeData(f, records); err != nil {
		return nil, fmt.Errorf("escrever dados: %w", err)
	}

	for col := 1; col <= len(ExportHeaders); col++ {
		colName, _ := excelize.ColumnNumberToName(col)
		if err := f.SetColWidth(sheetName, colName, colName, 20); err != nil {
			return nil, fmt.Errorf("ajustar colunas: %w", err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}
	return buf, nil
}

// Row monta os valores de uma linha da planilha
func (e *ExcelExporter) Row(r model.ProcessRecord) []interface{} {
	status := "Sucesso"
	if r.Erro {
		status = "Erro"
	}

	return []interface{}{
		cnj.Format(r.NumeroProcesso),
		r.SiglaTribunal,
		r.OrgaoJulgador,
		r.Instancia,
		FormatOptionalDate(r.DataUltMov, e.loc),
		FormatOptionalDate(r.DataDistribuicao, e.loc),
		r.Ativo,
		r.ValorAcao,
		r.Classe,
		r.Assunto,
		r.Sistema,
		PartyText(r.PoloAtivo),
		PartyText(r.PoloPassivo),
		e.movimentosText(r.Movimentos),
		e.documentosText(r.Documentos),
		status,
	}
}

func (e *ExcelExporter) writeHeaders(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: cellBorder("000000"),
	})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheetName, "A1", &ExportHeaders); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(ExportHeaders), 1)
	return f.SetCellStyle(sheetName, "A1", last, style)
}

func (e *ExcelExporter) writeData(f *excelize.File, records []model.ProcessRecord) error {
	styles := make([]int, 2)
	currencyStyles := make([]int, 2)
	for i, fill := range []string{"FFFFFF", "F2F2F2"} {
		base := excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
			Border:    cellBorder("D9D9D9"),
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		}
		var err error
		if styles[i], err = f.NewStyle(&base); err != nil {
			return err
		}
		numFmt := currencyFormat
		base.CustomNumFmt = &numFmt
		if currencyStyles[i], err = f.NewStyle(&base); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(ExportHeaders))
	valorCol, _ := excelize.ColumnNumberToName(valorColumn)

	for i, record := range records {
		excelRow := i + 2 // linha 1 é header
		start := fmt.Sprintf("A%d", excelRow)

		row := e.Row(record)
		if err := f.SetSheetRow(sheetName, start, &row); err != nil {
			return err
		}

		if err := f.SetCellStyle(sheetName, start, fmt.Sprintf("%s%d", lastCol, excelRow), styles[i%2]); err != nil {
			return err
		}
		valorCell := fmt.Sprintf("%s%d", valorCol, excelRow)
		if err := f.SetCellStyle(sheetName, valorCell, valorCell, currencyStyles[i%2]); err != nil {
			return err
		}
	}
	return nil
}

func cellBorder(color string) []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: color, Style: 1},
		{Type: "top", Color: color, Style: 1},
		{Type: "bottom", Color: color, Style: 1},
		{Type: "right", Color: color, Style: 1},
	}
}

func (e *ExcelExporter) movimentosText(movs []model.MovimentoData) string {
	parts := make([]string, 0, len(movs))
	for _, m := range movs {
		parts = append(parts, FormatDate(m.DataHora, e.loc)+": "+m.Descricao)
	}
	return strings.Join(parts, exportSeparator)
}

func (e *ExcelExporter) documentosText(docs []model.DocumentoData) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, FormatDate(d.DataHoraJuntada, e.loc)+": "+d.NomeTipo())
	}
	return strings.Join(parts, exportSeparator)
}

// PartyText converte o HTML das partes ("Fulano<br>Beltrano") em texto separado por "; "
func PartyText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.ReplaceAll(html, partySeparator, exportSeparator)
	}
	doc.Find("br").ReplaceWithHtml("\n")

	var names []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, exportSeparator)
}
