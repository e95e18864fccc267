package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ubicaciones-api/internal/application/allocation"
	"github.com/jhoicas/Ubicaciones-api/internal/application/ledger"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/jhoicas/Ubicaciones-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Ubicaciones-api/internal/interfaces/http"
)

// buildAPI construye la API completa sobre el store en memoria con la ubicación B1
// (max_quantity=100, max_volume=50, coordenadas (1,2,3)).
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	bins := memory.NewBinRepository(store)
	require.NoError(t, bins.Upsert(context.Background(), &entity.Bin{
		ID:          "B1",
		Label:       "Pasillo 1",
		Coordinates: entity.Coordinates{X: 1, Y: 2, Z: 3},
		MaxQuantity: 100,
		MaxVolume:   decimal.NewFromInt(50),
	}))
	l := ledger.New(memory.NewTxRunner(store), bins, memory.NewAllocationRepository(store))
	svc := allocation.NewService(l, nil, allocation.DefaultRetryPolicy(), zerolog.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{AllocationService: svc, JWTSecret: testJWTSecret})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role, body string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestAllocate_CreaYLuegoAcumula(t *testing.T) {
	app := buildAPI(t)

	status, body := call(t, app, http.MethodPost, "/api/allocations", "bodeguero",
		`{"bin_id":"B1","product_id":"P1","quantity":40,"volume_used":"10"}`)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "created", body["action"])
	assert.Equal(t, map[string]any{"x": float64(1), "y": float64(2), "z": float64(3)}, body["coordinates"])
	alloc := body["allocation"].(map[string]any)
	assert.Equal(t, float64(40), alloc["quantity"])
	assert.Equal(t, testCompanyID, alloc["client_id"], "sin client_id se usa la empresa del token")

	status, body = call(t, app, http.MethodPost, "/api/allocations", "bodeguero",
		`{"bin_id":"B1","product_id":"P1","quantity":"20","volume_used":5}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "updated", body["action"])
	alloc = body["allocation"].(map[string]any)
	assert.Equal(t, float64(60), alloc["quantity"])
	assert.Equal(t, "15", alloc["volume_used"])
}

func TestAllocate_CapacidadExcedida409(t *testing.T) {
	app := buildAPI(t)
	status, _ := call(t, app, http.MethodPost, "/api/allocations", "admin",
		`{"bin_id":"B1","product_id":"P1","quantity":40,"volume_used":10}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := call(t, app, http.MethodPost, "/api/allocations", "admin",
		`{"bin_id":"B1","product_id":"P1","quantity":70,"volume_used":5}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apphttp.KindOverQuantity, body["error_kind"])
	assert.Contains(t, body["message"], "(1,2,3)")

	details := body["details"].(map[string]any)
	violations := details["violations"].([]any)
	require.Len(t, violations, 1)
	assert.Equal(t, "quantity", violations[0].(map[string]any)["dimension"])
}

func TestAllocate_ErroresDeEntrada(t *testing.T) {
	app := buildAPI(t)
	cases := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"cantidad cero", `{"bin_id":"B1","product_id":"P2","quantity":0}`, http.StatusBadRequest, apphttp.KindInvalidInput},
		{"cantidad no numérica", `{"bin_id":"B1","product_id":"P2","quantity":"diez"}`, http.StatusBadRequest, apphttp.KindInvalidInput},
		{"volumen booleano", `{"bin_id":"B1","product_id":"P2","quantity":1,"volume_used":true}`, http.StatusBadRequest, apphttp.KindInvalidInput},
		{"sin producto", `{"bin_id":"B1","quantity":1}`, http.StatusBadRequest, apphttp.KindInvalidInput},
		{"ubicación desconocida", `{"bin_id":"ZZ","product_id":"P1","quantity":1}`, http.StatusNotFound, apphttp.KindBinNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := call(t, app, http.MethodPost, "/api/allocations", "admin", tc.body)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.kind, body["error_kind"])
		})
	}

	status, body := call(t, app, http.MethodGet, "/api/bins/B1/allocations", "admin", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["items"], "ninguna entrada inválida escribe en el ledger")
}

func TestAllocate_AmbosLimitesExcedidos(t *testing.T) {
	app := buildAPI(t)
	status, body := call(t, app, http.MethodPost, "/api/allocations", "admin",
		`{"bin_id":"B1","product_id":"P1","quantity":101,"volume_used":60}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apphttp.KindOverQuantity, body["error_kind"], "con ambos límites excedidos prevalece la cantidad")

	details := body["details"].(map[string]any)
	violations := details["violations"].([]any)
	require.Len(t, violations, 2)
	assert.Equal(t, "quantity", violations[0].(map[string]any)["dimension"])
	assert.Equal(t, "volume", violations[1].(map[string]any)["dimension"])
}

func TestBins_ConsultasYOcupacion(t *testing.T) {
	app := buildAPI(t)
	status, _ := call(t, app, http.MethodPost, "/api/allocations", "admin",
		`{"bin_id":"B1","product_id":"P1","quantity":25,"volume_used":"12.5"}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := call(t, app, http.MethodGet, "/api/bins", "consulta", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)

	status, body = call(t, app, http.MethodGet, "/api/bins/B1", "consulta", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Pasillo 1", body["label"])

	status, body = call(t, app, http.MethodGet, "/api/bins/B1/occupancy", "consulta", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(25), body["current_quantity"])
	assert.Equal(t, float64(75), body["remaining_quantity"])
	assert.Equal(t, "37.5", body["remaining_volume"])

	status, body = call(t, app, http.MethodGet, "/api/bins/NOPE/occupancy", "consulta", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apphttp.KindBinNotFound, body["error_kind"])
}
