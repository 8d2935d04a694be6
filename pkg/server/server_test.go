package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nergy-se/wemportal/pkg/model"
	"github.com/nergy-se/wemportal/pkg/portal"
	"github.com/nergy-se/wemportal/pkg/state"
	"github.com/nergy-se/wemportal/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return rec.Code, string(b)
}

func testSnapshot() *portal.Snapshot {
	temp := 21.5
	return &portal.Snapshot{
		FetchedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Devices: []*model.Device{{
			ID:   1,
			Name: "WWP",
			Modules: []*model.Module{{
				Index: 2,
				Type:  model.ModuleTypeHotWaterCircuit,
				Parameters: []*model.Parameter{
					{ParameterID: "P1", Name: "Temperature", Value: &model.Value{ParameterID: "P1", NumericValue: &temp, Unit: "°C"}},
					{ParameterID: "P2", Name: "No value"},
				},
			}},
		}},
	}
}

func TestHealthCheck(t *testing.T) {
	store := &state.Store{}
	h := New(store, nil, false).RegisterRoutes()

	code, body := get(t, h, "/healthcheck")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "health_check: FAIL", body)

	store.Set(testSnapshot())
	code, body = get(t, h, "/healthcheck")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "health_check: OK", body)

	store.SetError(errors.New("login failed"), time.Now())
	code, _ = get(t, h, "/healthcheck")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestDevices(t *testing.T) {
	store := &state.Store{}
	h := New(store, nil, false).RegisterRoutes()

	code, _ := get(t, h, "/devices")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	store.Set(testSnapshot())
	code, body := get(t, h, "/devices")
	assert.Equal(t, http.StatusOK, code)

	resp := struct {
		FetchedAt time.Time       `json:"fetchedAt"`
		Devices   []*model.Device `json:"devices"`
	}{}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Devices, 1)
	assert.Equal(t, "WWP", resp.Devices[0].Name)
	require.NotNil(t, resp.Devices[0].Modules[0].Parameters[0].Value.NumericValue)
	assert.Equal(t, 21.5, *resp.Devices[0].Modules[0].Parameters[0].Value.NumericValue)
}

func TestValues(t *testing.T) {
	store := &state.Store{}
	store.Set(testSnapshot())
	h := New(store, nil, false).RegisterRoutes()

	var tests = []struct {
		path string
		code int
	}{
		{path: "/devices/1/values", code: http.StatusOK},
		{path: "/devices/2/values", code: http.StatusNotFound},
		{path: "/devices/abc/values", code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			code, body := get(t, h, tt.path)
			assert.Equal(t, tt.code, code)
			if tt.code != http.StatusOK {
				return
			}
			rows := []model.ParameterValueRow{}
			require.NoError(t, json.Unmarshal([]byte(body), &rows))
			require.Len(t, rows, 1)
			assert.Equal(t, "P1", rows[0].ParameterID)
			assert.Equal(t, "°C", rows[0].ValueUnit)
		})
	}
}

func TestVersionAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "wemportal_devices 1\n")
	})
	h := New(&state.Store{}, metrics, true).RegisterRoutes()

	code, body := get(t, h, "/version")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"commit"`)
	assert.JSONEq(t, version.Version, body)

	code, body = get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "wemportal_devices 1\n", body)
}
