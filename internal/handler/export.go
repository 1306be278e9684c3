package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/metrics"
	"github.com/cleberrangel/jusbr-consulta/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler gera a planilha de resultados
type ExportHandler struct {
	svc      *service.ProcessoService
	exporter *service.ExcelExporter
	loc      *time.Location
	now      func() time.Time
}

// NewExportHandler cria o handler de exportação
func NewExportHandler(svc *service.ProcessoService, loc *time.Location) *ExportHandler {
	return &ExportHandler{
		svc:      svc,
		exporter: service.NewExcelExporter(loc),
		loc:      loc,
		now:      time.Now,
	}
}

// Exportar devolve todos os resultados em XLSX, na ordem pedida
// @Summary      Exportar resultados
// @Tags         processos
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        ordenar query string false "coluna de ordenação"
// @Param        direcao query string false "asc ou desc"
// @Success      200 {file} file
// @Router       /api/v1/processos/exportar [get]
func (h *ExportHandler) Exportar(c *gin.Context) {
	ctx := c.Request.Context()

	records, err := service.SortRecords(h.svc.Results(), c.Query("ordenar"), c.Query("direcao") == "desc")
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.exporter.Export(records)
	if err != nil {
		metrics.Get().IncrementExport(false)
		respondError(c, err)
		return
	}
	metrics.Get().IncrementExport(true)

	filename := service.ExportFilename(h.now(), h.loc)
	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionExport,
		Resource:   "resultados",
		ResourceID: filename,
		ClientIP:   c.ClientIP(),
		Success:    true,
		Details:    map[string]interface{}{"registros": len(records), "bytes": buf.Len()},
	})

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(200, xlsxContentType, buf.Bytes())
}
