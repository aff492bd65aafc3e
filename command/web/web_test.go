package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labor-stats/connectors/config"
	"labor-stats/connectors/erp"
	"labor-stats/domain/quote"
)

const fixture = `{"result": [
	{"iss": "ISS-1", "subject_ticket": "Falla bomba", "sector": "Mecánica", "fecha_ejecucion": "2025-02-01", "ot": "OT-1", "duracion": "2:00", "costo_mo_total": 100, "nro_tec": 2},
	{"iss": "ISS-1", "subject_ot": "Revisión", "sector": "Mecánica", "fecha_ejecucion": "2025-02-10", "ot": "OT-2", "duracion": "3:00", "costo_mo_total": 200, "nro_tec": 1},
	{"iss": "ISS-2", "subject_ticket": "Tablero", "sector": "Eléctrica", "fecha_ejecucion": "2025-03-01", "ot": "OT-3", "duracion": "1:30", "costo_mo_total": 500, "nro_tec": 3}
]}`

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	cfg := &config.Config{}
	cfg.Data.LocalFile = path
	cfg.Dashboard.TopNCost = 10
	cfg.Dashboard.TopNHours = 10

	s := &state{cfg: cfg, client: erp.New(cfg), draft: quote.NewDraft(nil)}
	s.loadLocal()

	e := echo.New()
	s.routes(e)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCatalogEndpoint(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodGet, "/api/catalog", "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Len(t, out["tickets"], 2)
	assert.Len(t, out["ots"], 3)
	assert.Contains(t, out["status"], "2 tickets cargados")
}

func TestDashboardFilters(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/api/dashboard/kpis?sector=Mec%C3%A1nica", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.EqualValues(t, 2, out["total_ots"])
	assert.EqualValues(t, 300, out["total_cost"])

	rec = do(e, http.MethodGet, "/api/dashboard/sector_cost", "")
	var points []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 2)
	assert.Equal(t, "Eléctrica", points[0]["label"])

	rec = do(e, http.MethodGet, "/api/dashboard/top_ots_cost?n=1", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 1)
	assert.Equal(t, "OT-3", points[0]["label"])
}

func TestQuoteFlow(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/api/quote/search?q=bomba", "")
	var tickets []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tickets))
	require.Len(t, tickets, 1)

	rec = do(e, http.MethodPost, "/api/quote/ticket", `{"id": "ISS-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["available"], 2)

	rec = do(e, http.MethodPost, "/api/quote/items", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode(t, rec)
	itemID := int64(item["id"].(float64))

	rec = do(e, http.MethodPost, "/api/quote/assign", fmt.Sprintf(`{"ot_id": "OT-1", "item_id": %d}`, itemID))
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Len(t, out["available"], 1)
	assert.InDelta(t, 150, out["grand_total"].(float64), 1e-9)

	rec = do(e, http.MethodGet, "/api/quote/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\uFEFF"))
	assert.Contains(t, rec.Body.String(), "150,00")

	rec = do(e, http.MethodGet, "/api/quote/summary.txt", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "COTIZACION DE MANO DE OBRA - ISS-1")
}

func TestQuoteUnknownTicket(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodPost, "/api/quote/ticket", `{"id": "ISS-404"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSummaryWithoutTicket(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodGet, "/api/quote/summary.txt", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}
