package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/middleware"
	"github.com/cleberrangel/jusbr-consulta/internal/model"
	"github.com/cleberrangel/jusbr-consulta/internal/service"
)

// Waker antecipa a drenagem automática após novos itens na fila
type Waker interface {
	Wake()
}

// ProcessoHandler expõe o coordenador de fila e resultados
type ProcessoHandler struct {
	svc   *service.ProcessoService
	waker Waker
}

// NewProcessoHandler cria o handler; waker pode ser nil
func NewProcessoHandler(svc *service.ProcessoService, waker Waker) *ProcessoHandler {
	return &ProcessoHandler{svc: svc, waker: waker}
}

// Consultar enfileira um número e drena um lote
// @Summary      Consultar processo
// @Tags         processos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.ConsultaRequest true "Número do processo"
// @Success      200 {object} model.Response
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/v1/processos [post]
func (h *ProcessoHandler) Consultar(c *gin.Context) {
	var req model.ConsultaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return
	}

	logger.FromGin(c).Info().Str("numero", req.NumeroProcesso).Msg("Consulta de processo recebida")

	resp, err := h.svc.RunOne(c.Request.Context(), req.NumeroProcesso)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, resp, resp)
}

// Enfileirar adiciona vários números à fila sem consultar
// @Summary      Enfileirar processos
// @Tags         processos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.EnfileirarRequest true "Números"
// @Success      202 {object} model.Response
// @Router       /api/v1/processos/fila [post]
func (h *ProcessoHandler) Enfileirar(c *gin.Context) {
	var req model.EnfileirarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return
	}

	if err := h.svc.EnqueueMany(c.Request.Context(), req.Numeros); err != nil {
		respondError(c, err)
		return
	}
	h.wake()

	stats := h.svc.Stats()
	c.JSON(http.StatusAccepted, model.Response{
		Success: true,
		Data:    h.svc.Queue(),
		Meta:    &model.Meta{TotalNaFila: stats.TotalNaFila, TotalProcessado: stats.TotalProcessado},
	})
}

// ListarFila retorna os números aguardando consulta
// @Router /api/v1/processos/fila [get]
func (h *ProcessoHandler) ListarFila(c *gin.Context) {
	ok(c, h.svc.Queue(), h.svc.Stats())
}

// LimparFila esvazia a fila
// @Router /api/v1/processos/fila [delete]
func (h *ProcessoHandler) LimparFila(c *gin.Context) {
	if err := h.svc.ClearQueue(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	stats := h.svc.Stats()
	ok(c, stats, stats)
}

// ProcessarLote drena um lote da fila
// @Router /api/v1/processos/lote [post]
func (h *ProcessoHandler) ProcessarLote(c *gin.Context) {
	resp, err := h.svc.DrainBatch(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, resp, resp)
}

// ListarResultados retorna os resultados, opcionalmente ordenados
// @Param ordenar query string false "coluna de ordenação"
// @Param direcao query string false "asc ou desc"
// @Router /api/v1/processos/resultados [get]
func (h *ProcessoHandler) ListarResultados(c *gin.Context) {
	field := middleware.SanitizeQuery(c.Query("ordenar"), 32)
	desc := strings.EqualFold(middleware.SanitizeQuery(c.Query("direcao"), 4), "desc")

	records, err := service.SortRecords(h.svc.Results(), field, desc)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, records, h.svc.Stats())
}

// ObterResultado retorna um resultado pelo id
// @Router /api/v1/processos/resultados/{id} [get]
func (h *ProcessoHandler) ObterResultado(c *gin.Context) {
	id := c.Param("id")
	if !middleware.ValidateID(id) {
		badRequest(c, "id inválido", nil)
		return
	}

	record, err := h.svc.Result(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{Success: true, Data: record})
}

// LimparResultados esvazia a lista de resultados
// @Router /api/v1/processos/resultados [delete]
func (h *ProcessoHandler) LimparResultados(c *gin.Context) {
	if err := h.svc.ClearResults(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	stats := h.svc.Stats()
	ok(c, stats, stats)
}

func (h *ProcessoHandler) wake() {
	if h.waker != nil {
		h.waker.Wake()
	}
}
