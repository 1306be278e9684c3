package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleberrangel/jusbr-consulta/internal/logger"
	"github.com/cleberrangel/jusbr-consulta/internal/model"
	"github.com/cleberrangel/jusbr-consulta/internal/service"
)

// respondError mapeia os erros do serviço para status HTTP
func respondError(c *gin.Context, err error) {
	log := logger.FromGin(c)

	status := http.StatusInternalServerError
	msg := "erro interno"

	switch {
	case errors.Is(err, service.ErrInvalidNumber):
		status, msg = http.StatusBadRequest, "número de processo inválido"
	case errors.Is(err, service.ErrQueueFull), errors.Is(err, service.ErrTooManyRows):
		status, msg = http.StatusUnprocessableEntity, "limite de processos excedido"
	case errors.Is(err, service.ErrResultNotFound):
		status, msg = http.StatusNotFound, "resultado não encontrado"
	case errors.Is(err, service.ErrInvalidSortField):
		status, msg = http.StatusBadRequest, "campo de ordenação inválido"
	case errors.Is(err, service.ErrFileTooLarge):
		status, msg = http.StatusRequestEntityTooLarge, "arquivo muito grande"
	case errors.Is(err, service.ErrUnsupportedType):
		status, msg = http.StatusBadRequest, "formato não suportado"
	case errors.Is(err, service.ErrEmptyFile):
		status, msg = http.StatusBadRequest, "arquivo vazio"
	case errors.Is(err, service.ErrInvalidFile):
		status, msg = http.StatusBadRequest, "arquivo inválido"
	case errors.Is(err, service.ErrNoValidRows):
		status, msg = http.StatusBadRequest, "nenhum processo válido na planilha"
	case errors.Is(err, service.ErrPersist):
		msg = "erro ao salvar fila e resultados"
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Erro ao processar requisição")
	} else {
		log.Warn().Err(err).Int("status", status).Msg("Requisição rejeitada")
	}

	c.JSON(status, model.ErrorResponse{
		Success: false,
		Error:   msg,
		Details: err.Error(),
	})
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := model.ErrorResponse{Success: false, Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

func ok(c *gin.Context, data interface{}, stats model.ConsultaResponse) {
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    data,
		Meta: &model.Meta{
			TotalNaFila:     stats.TotalNaFila,
			TotalProcessado: stats.TotalProcessado,
		},
	})
}
