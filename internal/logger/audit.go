package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AuditAction representa o tipo de ação auditada
type AuditAction string

const (
	// Fila
	AuditActionQueueAdd   AuditAction = "QUEUE_ADD"
	AuditActionQueueClear AuditAction = "QUEUE_CLEAR"
	AuditActionBatchDrain AuditAction = "BATCH_DRAIN"

	// Resultados
	AuditActionResultsClear AuditAction = "RESULTS_CLEAR"
	AuditActionExport       AuditAction = "RESULTS_EXPORT"

	// Arquivos
	AuditActionFileUpload AuditAction = "FILE_UPLOAD"

	// API
	AuditActionAPIRequest AuditAction = "API_REQUEST"
	AuditActionAPIError   AuditAction = "API_ERROR"

	// WebSocket
	AuditActionWSConnect    AuditAction = "WS_CONNECT"
	AuditActionWSDisconnect AuditAction = "WS_DISCONNECT"
)

// AuditEvent representa uma entrada de auditoria
type AuditEvent struct {
	Action      AuditAction
	Resource    string
	ResourceID  string
	Details     map[string]interface{}
	ClientIP    string
	RequestID   string
	OperationID string
	Success     bool
	Error       string
	Duration    int64 // milissegundos
	Method      string
	Path        string
	StatusCode  int
}

var auditLogger zerolog.Logger

// InitAudit inicializa o logger de auditoria a partir do global
func InitAudit() {
	auditLogger = globalLogger.With().Str("log_type", "audit").Logger()
}

// Audit registra um evento de auditoria
func Audit(ctx context.Context, event AuditEvent) {
	if event.RequestID == "" {
		event.RequestID = GetRequestID(ctx)
	}
	if event.OperationID == "" {
		event.OperationID = GetOperationID(ctx)
	}

	logEvent := auditLogger.Info()
	if !event.Success {
		logEvent = auditLogger.Warn()
	}

	logEvent.
		Str("action", string(event.Action)).
		Str("resource", event.Resource).
		Str("resource_id", event.ResourceID).
		Str("client_ip", event.ClientIP).
		Str("request_id", event.RequestID).
		Bool("success", event.Success).
		Time("timestamp", time.Now().UTC())

	if event.OperationID != "" {
		logEvent.Str("operation_id", event.OperationID)
	}
	if event.Error != "" {
		logEvent.Str("error", event.Error)
	}
	if event.Duration > 0 {
		logEvent.Int64("duration_ms", event.Duration)
	}
	if event.Method != "" {
		logEvent.Str("method", event.Method)
	}
	if event.Path != "" {
		logEvent.Str("path", event.Path)
	}
	if event.StatusCode > 0 {
		logEvent.Int("status_code", event.StatusCode)
	}
	if len(event.Details) > 0 {
		logEvent.Interface("details", event.Details)
	}

	logEvent.Msg("Audit event")
}

// AuditRequest registra uma requisição da API
func AuditRequest(ctx context.Context, method, path string, statusCode int, duration int64, clientIP string) {
	success := statusCode < 400
	action := AuditActionAPIRequest
	if !success {
		action = AuditActionAPIError
	}

	Audit(ctx, AuditEvent{
		Action:     action,
		Resource:   "api",
		ResourceID: path,
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Duration:   duration,
		ClientIP:   clientIP,
		Success:    success,
	})
}

// AuditBatch registra o resultado de um lote drenado
func AuditBatch(ctx context.Context, processed, failed, remaining int, duration time.Duration) {
	Audit(ctx, AuditEvent{
		Action:   AuditActionBatchDrain,
		Resource: "fila",
		Success:  true,
		Duration: duration.Milliseconds(),
		Details: map[string]interface{}{
			"processados":    processed,
			"com_erro":       failed,
			"restantes_fila": remaining,
		},
	})
}
