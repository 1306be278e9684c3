package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/metrics"
	"github.com/cleberrangel/jusbr-consulta/internal/middleware"
	"github.com/cleberrangel/jusbr-consulta/internal/service"
)

// UploadHandler recebe planilhas de números de processo
type UploadHandler struct {
	svc *service.ProcessoService
}

// NewUploadHandler cria o handler de upload
func NewUploadHandler(svc *service.ProcessoService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// UploadResponse resume a importação e o lote disparado
type UploadResponse struct {
	Importacao *service.IngestResult `json:"importacao"`
	Lote       interface{}           `json:"lote"`
}

// UploadPlanilha lê a primeira coluna da planilha, enfileira os números e drena um lote
// @Summary      Importar planilha
// @Tags         processos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "XLSX ou CSV"
// @Success      200 {object} model.Response
// @Failure      400 {object} model.ErrorResponse
// @Failure      413 {object} model.ErrorResponse
// @Router       /api/v1/processos/planilha [post]
func (h *UploadHandler) UploadPlanilha(c *gin.Context) {
	log := logger.FromGin(c)
	ctx := c.Request.Context()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		log.Warn().Err(err).Msg("Erro ao obter arquivo do formulário")
		badRequest(c, "arquivo não encontrado no formulário", err)
		return
	}
	defer file.Close()

	filename := middleware.SanitizeFilename(header.Filename)

	log.Info().
		Str("filename", filename).
		Int64("size", header.Size).
		Msg("Processando upload de planilha")

	result, err := service.Ingest(filename, file, header.Size, h.svc.MaxQueue())
	if err != nil {
		logger.Audit(ctx, logger.AuditEvent{
			Action:     logger.AuditActionFileUpload,
			Resource:   "planilha",
			ResourceID: filename,
			ClientIP:   c.ClientIP(),
			Success:    false,
			Error:      err.Error(),
		})
		respondError(c, err)
		return
	}
	metrics.Get().IncrementFileUpload(header.Size)

	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionFileUpload,
		Resource:   "planilha",
		ResourceID: filename,
		ClientIP:   c.ClientIP(),
		Success:    true,
		Details: map[string]interface{}{
			"numeros":          len(result.Numeros),
			"linhas_ignoradas": result.Ignorada,
		},
	})

	resp, err := h.svc.RunMany(ctx, result.Numeros)
	if err != nil {
		respondError(c, err)
		return
	}

	ok(c, UploadResponse{Importacao: result, Lote: resp}, resp)
}
