package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trialdash/internal"
	"trialdash/internal/config"
	"trialdash/internal/container"
	"trialdash/internal/testkit"
	"trialdash/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioCSV = `patient_id,treatment_group,outcome,score
1,A,Yes,10
2,A,No,12
3,B,Yes,20
4,B,No,22
`

func testServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: "0", GinMode: gin.TestMode},
		Session: config.SessionConfig{TTL: time.Hour, SweepInterval: time.Minute},
		Upload:  config.UploadConfig{MaxBytes: 1 << 20, PreviewRows: 3},
		Log:     config.LogConfig{Level: internal.LogLevelError},
	}
	c, err := container.New(cfg)
	require.NoError(t, err)
	return NewServer(c)
}

// client replays the session cookie across requests
type client struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	w := httptest.NewRecorder()
	cl.srv.Handler().ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cl.cookie = c
		}
	}
	return w
}

func (cl *client) upload(path, filename string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(cl.t, err)
	_, err = part.Write(content)
	require.NoError(cl.t, err)
	require.NoError(cl.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return cl.do(req)
}

func (cl *client) postJSON(path string, payload interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(payload)
	require.NoError(cl.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return cl.do(req)
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	e, ok := body["error"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return e["code"].(string)
}

func TestUploadAnalysisRoundTrip(t *testing.T) {
	cl := &client{t: t, srv: testServer(t)}

	w := cl.upload("/api/dataset", "trial.csv", []byte(scenarioCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, cl.cookie, "the first load opens a session")
	body := decode(t, w)
	assert.Equal(t, "Data validation successful", body["message"])

	w = cl.postJSON("/api/analysis", map[string]interface{}{
		"kind":         "t_test",
		"group_column": "treatment_group",
		"value_column": "score",
		"group_a":      "A",
		"group_b":      "B",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	metrics := decode(t, w)["metrics"].(map[string]interface{})
	assert.InDelta(t, -7.0711, metrics["t_statistic"].(float64), 1e-3)
	assert.Less(t, metrics["p_value"].(float64), 0.05)

	w = cl.get("/api/dataset/summary")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, decode(t, w)["total_patients"])

	w = cl.get("/api/report?format=md")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Total patients: 4")
}

func TestValidateEndpoint(t *testing.T) {
	cl := &client{t: t, srv: testServer(t)}

	w := cl.upload("/api/dataset/validate", "bad.csv", []byte("patient_id,score\n1,3\n"))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "Missing required columns: treatment_group, outcome", body["message"])

	w = cl.get("/api/dataset")
	assert.Equal(t, http.StatusNotFound, w.Code, "validation alone must not admit a dataset")
}

func TestUploadRejected(t *testing.T) {
	cl := &client{t: t, srv: testServer(t)}

	w := cl.upload("/api/dataset", "dup.csv", []byte("patient_id,treatment_group,outcome\n1,A,Yes\n1,B,No\n"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "DUPLICATE_KEY", errorCode(t, w))

	w = cl.upload("/api/dataset", "ragged.csv", []byte("patient_id,treatment_group,outcome\n1,A,Yes,extra\n"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "PARSE_ERROR", errorCode(t, w))
}

func TestAnalysisErrors(t *testing.T) {
	cl := &client{t: t, srv: testServer(t)}

	w := cl.postJSON("/api/analysis", map[string]interface{}{"kind": "anova"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NO_DATASET", errorCode(t, w))

	require.Equal(t, http.StatusOK, cl.upload("/api/dataset", "trial.csv", []byte(scenarioCSV)).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/analysis", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w = cl.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = cl.postJSON("/api/analysis", map[string]interface{}{"kind": "chi_square", "column_a": "treatment_group", "column_b": "score"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_COLUMN_SELECTION", errorCode(t, w))
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := testServer(t)
	alice := &client{t: t, srv: srv}
	bob := &client{t: t, srv: srv}

	require.Equal(t, http.StatusOK, alice.upload("/api/dataset", "trial.csv", []byte(scenarioCSV)).Code)
	assert.Equal(t, http.StatusNotFound, bob.get("/api/dataset").Code)

	generated := testkit.TrialCSV(testkit.DefaultTrialConfig())
	require.Equal(t, http.StatusOK, bob.upload("/api/dataset", "generated.csv", generated).Code)

	assert.EqualValues(t, 4, decode(t, alice.get("/api/dataset/summary"))["total_patients"])
	assert.EqualValues(t, 120, decode(t, bob.get("/api/dataset/summary"))["total_patients"])

	req := httptest.NewRequest(http.MethodDelete, "/api/dataset", nil)
	require.Equal(t, http.StatusOK, alice.do(req).Code)
	assert.Equal(t, http.StatusNotFound, alice.get("/api/dataset").Code)
	assert.Equal(t, http.StatusOK, bob.get("/api/dataset").Code)
}

func TestSessionsOpenOnFirstLoad(t *testing.T) {
	srv := testServer(t)
	cl := &client{t: t, srv: srv}

	for _, path := range []string{"/api/analysis/kinds", "/api/charts/kinds", "/api/dataset"} {
		cl.get(path)
	}
	cl.upload("/api/dataset/validate", "trial.csv", []byte(scenarioCSV))
	cl.upload("/api/dataset", "dup.csv", []byte("patient_id,treatment_group,outcome\n1,A,Yes\n1,B,No\n"))
	assert.Nil(t, cl.cookie)
	assert.Equal(t, 0, srv.store.Len())

	require.Equal(t, http.StatusOK, cl.upload("/api/dataset", "trial.csv", []byte(scenarioCSV)).Code)
	require.NotNil(t, cl.cookie)
	assert.Equal(t, 1, srv.store.Len())

	cl.upload("/api/dataset", "trial.csv", []byte(scenarioCSV))
	assert.Equal(t, 1, srv.store.Len(), "reloading reuses the session")

	stale := &client{t: t, srv: srv, cookie: &http.Cookie{Name: middleware.SessionCookie, Value: "not-a-uuid"}}
	assert.Equal(t, http.StatusNotFound, stale.get("/api/dataset").Code)
}

func TestChartEndpoints(t *testing.T) {
	cl := &client{t: t, srv: testServer(t)}
	require.Equal(t, http.StatusOK, cl.upload("/api/dataset", "generated.csv", testkit.TrialCSV(testkit.DefaultTrialConfig())).Code)

	w := cl.postJSON("/api/charts", map[string]interface{}{"kind": "box", "value_field": "followup_score", "group_field": "treatment_group"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Distribution of followup_score by treatment_group", decode(t, w)["title"])

	w = cl.postJSON("/api/charts/png?width=480&height=320", map[string]interface{}{"kind": "treatment_outcome"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = cl.postJSON("/api/charts/png", map[string]interface{}{"kind": "heatmap"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "UNSUPPORTED_EXPORT", errorCode(t, w))
}

func TestOpsRouter(t *testing.T) {
	srv := testServer(t)
	ops := OpsRouter(srv.store)

	w := httptest.NewRecorder()
	ops.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = httptest.NewRecorder()
	ops.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "trialdash_active_sessions")
}
