// Package integration contém testes ponta a ponta: servidor HTTP real, espelho
// sqlite em disco, hub WebSocket e um servidor fake no lugar da API JusBR.
package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleberrangel/jusbr-consulta/internal/app"
	"github.com/cleberrangel/jusbr-consulta/internal/config"
	"github.com/cleberrangel/jusbr-consulta/internal/handler"
	"github.com/cleberrangel/jusbr-consulta/internal/middleware"
	"github.com/cleberrangel/jusbr-consulta/internal/model"
	"github.com/cleberrangel/jusbr-consulta/internal/service"
	"github.com/cleberrangel/jusbr-consulta/internal/websocket"
)

const (
	testToken  = "token-integracao"
	numeroTJGO = "5618437-39.2021.8.09.0083"
	numeroTJSP = "0001234-12.2023.8.26.0100"
)

// TestContext guarda as dependências de um ambiente completo
type TestContext struct {
	Config   *config.Config
	App      *app.App
	Hub      *websocket.Hub
	Worker   *service.DrainWorker
	Server   *httptest.Server
	Upstream *fakeJusBR

	closeOnce sync.Once
}

// fakeJusBR responde como a API de detalhe; números em falhar recebem HTTP 500
type fakeJusBR struct {
	srv    *httptest.Server
	calls  atomic.Int64
	mu     sync.Mutex
	falhar map[string]bool
}

func newFakeJusBR(t *testing.T) *fakeJusBR {
	t.Helper()
	f := &fakeJusBR{falhar: make(map[string]bool)}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		numero := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

		f.mu.Lock()
		falhar := f.falhar[numero]
		f.mu.Unlock()
		if falhar {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"OK","mensagem":"","data":{"numeroProcesso":%q,"siglaTribunal":"TJGO",
			"tramitacaoAtual":{"instancia":"1","ativo":true,"valorAcao":14308.8,
			"partes":[{"polo":"ATIVO","nome":"<b>Maria</b> da Silva"}]}}}`, numero)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeJusBR) failFor(numero string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.falhar[numero] = true
}

type setupOptions struct {
	dbPath    string
	autoDrain bool
	upstream  *fakeJusBR
}

// setupTestContext sobe um ambiente completo; dbPath permite simular reinícios
func setupTestContext(t *testing.T, opts setupOptions) *TestContext {
	t.Helper()

	if opts.dbPath == "" {
		opts.dbPath = filepath.Join(t.TempDir(), "jusbr.db")
	}
	if opts.upstream == nil {
		opts.upstream = newFakeJusBR(t)
	}

	cfg := &config.Config{
		TokenAPI:       testToken,
		StorageDriver:  config.StorageSQLite,
		SQLitePath:     opts.dbPath,
		JusBRURL:       opts.upstream.srv.URL + "/processo",
		JusBRTimeout:   5 * time.Second,
		BatchSize:      2,
		MaxQueue:       20,
		AutoDrain:      opts.autoDrain,
		AutoDrainEvery: 50 * time.Millisecond,
		Timezone:       "UTC",
	}

	hub := websocket.NewHub()
	go hub.Run()

	a, err := app.New(context.Background(), cfg, hub)
	require.NoError(t, err)

	var waker handler.Waker
	var worker *service.DrainWorker
	if cfg.AutoDrain {
		worker = service.NewDrainWorker(a.Service, cfg.AutoDrainEvery)
		worker.Start()
		waker = worker
	}

	gin.SetMode(gin.TestMode)
	router := handler.NewRouter(handler.RouterConfig{
		Service:  a.Service,
		Storage:  a.Mirror,
		Hub:      hub,
		Waker:    waker,
		Auth:     middleware.AuthConfig{TokenAPI: testToken},
		Location: cfg.Location(),
		Version:  "test",
		Registry: prometheus.NewRegistry(),
	})
	srv := httptest.NewServer(router)

	tc := &TestContext{Config: cfg, App: a, Hub: hub, Worker: worker, Server: srv, Upstream: opts.upstream}
	t.Cleanup(tc.Close)
	return tc
}

// Close encerra na mesma ordem do servidor de produção
func (tc *TestContext) Close() {
	tc.closeOnce.Do(func() {
		tc.Server.Close()
		if tc.Worker != nil {
			tc.Worker.Stop()
		}
		tc.Hub.Stop()
		tc.App.Close()
	})
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (tc *TestContext) do(t *testing.T, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, tc.Server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (tc *TestContext) doJSON(t *testing.T, method, path string, body interface{}) (*http.Response, model.Response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	resp := tc.do(t, method, path, reader, "application/json")

	var out model.Response
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func (tc *TestContext) dialWS(t *testing.T) *gws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(tc.Server.URL, "http") + "/ws?token=" + testToken
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// mensagem de boas-vindas
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)
	return conn
}

func createTestCSVFile(rows []string) *bytes.Buffer {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	for _, row := range rows {
		w.Write([]string{row})
	}
	w.Flush()
	return buf
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestCompleteUserWorkflow(t *testing.T) {
	tc := setupTestContext(t, setupOptions{})

	// 1. importa uma planilha CSV: cabeçalho e duplicado são ignorados
	csvFile := createTestCSVFile([]string{"processo", numeroTJGO, numeroTJSP, numeroTJGO, "1234567890"})
	body, ct := multipartBody(t, "processos.csv", csvFile.Bytes())
	resp := tc.do(t, http.MethodPost, "/api/v1/processos/planilha", body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var upload struct {
		Data handler.UploadResponse `json:"data"`
		Meta *model.Meta            `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&upload))
	require.NotNil(t, upload.Data.Importacao)
	assert.Len(t, upload.Data.Importacao.Numeros, 3)
	assert.Equal(t, 2, upload.Data.Importacao.Ignorada)

	// 2. o upload processa um lote de 2
	assert.Equal(t, 1, upload.Meta.TotalNaFila)
	assert.Equal(t, 2, upload.Meta.TotalProcessado)

	// 3. segundo lote esvazia a fila
	resp, out := tc.doJSON(t, http.MethodPost, "/api/v1/processos/lote", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, out.Meta.TotalNaFila)
	assert.Equal(t, 3, out.Meta.TotalProcessado)

	// 4. resultados ordenados; o HTML das partes só é removido na exportação
	resp = tc.do(t, http.MethodGet, "/api/v1/processos/resultados?ordenar=numeroProcesso", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Data []model.ProcessRecord `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Data, 3)
	assert.Equal(t, "00012341220238260100", list.Data[0].NumeroProcesso)
	for _, r := range list.Data {
		assert.True(t, r.Status)
		assert.False(t, r.Erro)
		assert.Equal(t, "Sim", r.Ativo)
		assert.Equal(t, model.SistemaIndisponivel, r.Sistema)
		assert.Equal(t, "<b>Maria</b> da Silva", r.PoloAtivo)
	}

	// 5. exportação gera um XLSX que pode ser reimportado
	resp = tc.do(t, http.MethodGet, "/api/v1/processos/exportar", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	xlsx, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	res, err := service.Ingest("export.xlsx", bytes.NewReader(xlsx), int64(len(xlsx)), 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"00012341220238260100", "1234567890", "56184373920218090083"}, res.Numeros)

	// 6. limpeza
	resp, _ = tc.doJSON(t, http.MethodDelete, "/api/v1/processos/resultados", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, tc.App.Service.Results())
	assert.EqualValues(t, 3, tc.Upstream.calls.Load())
}

func TestWebSocketFunctionality(t *testing.T) {
	tc := setupTestContext(t, setupOptions{})
	conn := tc.dialWS(t)
	require.Eventually(t, func() bool { return tc.Hub.GetConnectionCount() == 1 }, time.Second, 10*time.Millisecond)

	resp, _ := tc.doJSON(t, http.MethodPost, "/api/v1/processos", model.ConsultaRequest{NumeroProcesso: numeroTJGO})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tipos []string
	for len(tipos) < 3 {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg websocket.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		tipos = append(tipos, msg.Type)
	}
	assert.Equal(t, []string{model.EventoFila, model.EventoResultado, model.EventoLote}, tipos)
}

func TestWebSocketRequiresToken(t *testing.T) {
	tc := setupTestContext(t, setupOptions{})

	url := "ws" + strings.TrimPrefix(tc.Server.URL, "http") + "/ws"
	_, resp, err := gws.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestConcurrentOperations(t *testing.T) {
	tc := setupTestContext(t, setupOptions{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			numero := fmt.Sprintf("%020d", 10000000000+i)
			body, _ := json.Marshal(model.EnfileirarRequest{Numeros: []string{numero}})
			req, _ := http.NewRequest(http.MethodPost, tc.Server.URL+"/api/v1/processos/fila", bytes.NewReader(body))
			req.Header.Set("Authorization", "Bearer "+testToken)
			req.Header.Set("Content-Type", "application/json")
			if resp, err := http.DefaultClient.Do(req); err == nil {
				resp.Body.Close()
			}
		}(i)
	}
	wg.Wait()
	require.Len(t, tc.App.Service.Queue(), 10)

	// lotes concorrentes nunca processam o mesmo número duas vezes
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tc.App.Service.DrainBatch(context.Background())
		}()
	}
	wg.Wait()

	assert.Empty(t, tc.App.Service.Queue())
	assert.Len(t, tc.App.Service.Results(), 10)
	assert.EqualValues(t, 10, tc.Upstream.calls.Load())
}

func TestDataConsistencyAcrossRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "jusbr.db")
	upstream := newFakeJusBR(t)

	first := setupTestContext(t, setupOptions{dbPath: dbPath, upstream: upstream})
	resp, _ := first.doJSON(t, http.MethodPost, "/api/v1/processos/fila", model.EnfileirarRequest{
		Numeros: []string{numeroTJGO, numeroTJSP, "1234567890"},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp, _ = first.doJSON(t, http.MethodPost, "/api/v1/processos/lote", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ids []string
	for _, r := range first.App.Service.Results() {
		ids = append(ids, r.ID)
	}
	first.Close()

	second := setupTestContext(t, setupOptions{dbPath: dbPath, upstream: upstream})
	assert.Equal(t, []string{"1234567890"}, second.App.Service.Queue())
	var reloaded []string
	for _, r := range second.App.Service.Results() {
		reloaded = append(reloaded, r.ID)
	}
	assert.Equal(t, ids, reloaded)

	resp, out := second.doJSON(t, http.MethodGet, "/api/v1/processos/fila", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, out.Meta.TotalNaFila)
	assert.Equal(t, 2, out.Meta.TotalProcessado)
}

func TestErrorScenariosAndRecovery(t *testing.T) {
	tc := setupTestContext(t, setupOptions{})
	tc.Upstream.failFor("00012341220238260100")

	// upstream com erro vira resultado com erro, sem abortar o lote
	resp, _ := tc.doJSON(t, http.MethodPost, "/api/v1/processos/fila", model.EnfileirarRequest{
		Numeros: []string{numeroTJSP, numeroTJGO},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp, out := tc.doJSON(t, http.MethodPost, "/api/v1/processos/lote", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, out.Meta.TotalProcessado)

	results := tc.App.Service.Results()
	require.Len(t, results, 2)
	assert.True(t, results[0].Erro)
	assert.True(t, results[0].Status)
	require.NotNil(t, results[0].MensagemErro)
	assert.Equal(t, "Erro HTTP: 500", *results[0].MensagemErro)
	assert.False(t, results[1].Erro)

	// entradas inválidas
	resp, _ = tc.doJSON(t, http.MethodPost, "/api/v1/processos", model.ConsultaRequest{NumeroProcesso: "abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, ct := multipartBody(t, "processos.txt", []byte(numeroTJGO))
	resp = tc.do(t, http.MethodPost, "/api/v1/processos/planilha", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, ct = multipartBody(t, "vazia.csv", createTestCSVFile([]string{"cabeçalho", "123"}).Bytes())
	resp = tc.do(t, http.MethodPost, "/api/v1/processos/planilha", body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = tc.do(t, http.MethodGet, "/api/v1/processos/resultados/nao-existe", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// o estado continua íntegro após os erros
	assert.Empty(t, tc.App.Service.Queue())
	assert.Len(t, tc.App.Service.Results(), 2)
}

func TestAutoDrainIntegration(t *testing.T) {
	tc := setupTestContext(t, setupOptions{autoDrain: true})

	numeros := make([]string, 5)
	for i := range numeros {
		numeros[i] = fmt.Sprintf("%020d", 20000000000+i)
	}
	resp, _ := tc.doJSON(t, http.MethodPost, "/api/v1/processos/fila", model.EnfileirarRequest{Numeros: numeros})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		return len(tc.App.Service.Queue()) == 0 && len(tc.App.Service.Results()) == 5
	}, 5*time.Second, 20*time.Millisecond)
}

func TestPostgresMirror(t *testing.T) {
	cfg := &config.Config{
		StorageDriver: config.StoragePostgres,
		JusBRURL:      newFakeJusBR(t).srv.URL + "/processo",
		BatchSize:     2,
		MaxQueue:      20,
		Database: config.DatabaseConfig{
			Host:     getEnvOrDefault("TEST_DB_HOST", "127.0.0.1"),
			Port:     getEnvOrDefault("TEST_DB_PORT", "5432"),
			User:     getEnvOrDefault("TEST_DB_USER", "postgres"),
			Password: getEnvOrDefault("TEST_DB_PASSWORD", "postgres"),
			Name:     getEnvOrDefault("TEST_DB_NAME", "postgres"),
			SSLMode:  "disable",
		},
	}

	a, err := app.New(context.Background(), cfg, nil)
	if err != nil {
		t.Skipf("Skipping test: could not connect to PostgreSQL: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	require.NoError(t, a.Service.ClearQueue(ctx))
	require.NoError(t, a.Service.ClearResults(ctx))
	_, err = a.Service.RunOne(ctx, numeroTJGO)
	require.NoError(t, err)

	b, err := app.New(ctx, cfg, nil)
	require.NoError(t, err)
	defer b.Close()
	assert.Len(t, b.Service.Results(), 1)
}
