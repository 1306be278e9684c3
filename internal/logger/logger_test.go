package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestContextLoggerCarriesIDs(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("debug", true, &buf)

	ctx := WithRequestID(context.Background(), "abc12345")
	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithOperationID(ctx, "op-9")

	Get(ctx).Info().Msg("teste")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("saída não é JSON: %v (%s)", err, buf.String())
	}

	for key, want := range map[string]string{
		"request_id":   "abc12345",
		"trace_id":     "trace-1",
		"operation_id": "op-9",
		"service":      "jusbr-consulta",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, esperado %q", key, entry[key], want)
		}
	}

	if GetRequestID(ctx) != "abc12345" || GetTraceID(ctx) != "trace-1" || GetOperationID(ctx) != "op-9" {
		t.Error("IDs não recuperados do contexto")
	}
}

func TestGetWithoutContextReturnsGlobal(t *testing.T) {
	//nolint:staticcheck
	if Get(nil) != Global() {
		t.Error("Get(nil) deveria retornar o logger global")
	}
	if Get(context.Background()) != Global() {
		t.Error("contexto sem logger deveria retornar o global")
	}
}

func TestAuditWarnsOnFailure(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("info", true, &buf)

	Audit(WithRequestID(context.Background(), "req-1"), AuditEvent{
		Action:   AuditActionFileUpload,
		Resource: "planilha",
		Success:  false,
		Error:    "arquivo vazio",
	})

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("auditoria com falha deveria ser warn: %s", out)
	}
	if !strings.Contains(out, `"request_id":"req-1"`) {
		t.Errorf("request_id do contexto ausente: %s", out)
	}
	if !strings.Contains(out, `"log_type":"audit"`) {
		t.Errorf("log_type ausente: %s", out)
	}
}
