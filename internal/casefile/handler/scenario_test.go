package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"sahaya/internal/assignment"
	"sahaya/internal/casefile/service"
	"sahaya/internal/casefile/store"
	"sahaya/pkg/domain"
	"sahaya/pkg/testutil"
)

func newLifecycleServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewInMemory(),
		assignment.New(assignment.WithLogger(logger)),
		service.WithLogger(logger))
	validator := staticValidator{
		officerToken: {ID: "off-1", Role: domain.RoleOfficer},
	}
	router := chi.NewRouter()
	New(svc, logger, validator).Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+officerToken)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	decoded := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func TestGrievanceLifecycleOverHTTP(t *testing.T) {
	srv := newLifecycleServer(t)

	testutil.Given(t, "a freshly registered grievance", func(t *testing.T) {
		status, created := call(t, srv, http.MethodPost, "/cases", map[string]any{
			"category":  "grievance",
			"title":     "Blocked storm drain near the market",
			"applicant": "N. Reddy",
			"priority":  "P2",
		})
		require.Equal(t, http.StatusCreated, status)
		id := created["id"].(string)

		testutil.When(t, "the officer triages, assigns, and routes it", func(t *testing.T) {
			status, body := call(t, srv, http.MethodPost, "/cases/"+id+"/transition",
				map[string]any{"to": "TRIAGED"})
			require.Equal(t, http.StatusOK, status)
			require.Equal(t, "TRIAGED", body["status"])

			status, _ = call(t, srv, http.MethodPost, "/cases/"+id+"/assign",
				map[string]any{"assignee": "off-1"})
			require.Equal(t, http.StatusOK, status)

			status, _ = call(t, srv, http.MethodPost, "/cases/"+id+"/route",
				map[string]any{"department": "PWD", "memo": "drain desilting"})
			require.Equal(t, http.StatusOK, status)

			testutil.Then(t, "the queue and workload reflect the open case", func(t *testing.T) {
				status, queue := call(t, srv, http.MethodGet, "/queue?assignee=off-1", nil)
				require.Equal(t, http.StatusOK, status)
				require.Equal(t, float64(1), queue["total_items"])

				status, workload := call(t, srv, http.MethodGet, "/officers/off-1/workload", nil)
				require.Equal(t, http.StatusOK, status)
				require.Equal(t, float64(1), workload["open_cases"])

				status, fetched := call(t, srv, http.MethodGet, "/cases/"+id, nil)
				require.Equal(t, http.StatusOK, status)
				require.Equal(t, "P2", fetched["priority"])
				require.Len(t, fetched["timeline"], 4)
			})
		})
	})
}
