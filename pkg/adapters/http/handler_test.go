package http_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/txscope"
	httpadapter "github.com/aretw0/txscope/pkg/adapters/http"
	"github.com/aretw0/txscope/pkg/adapters/memory"
	"github.com/aretw0/txscope/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, client *memory.Client, opts ...txscope.Option) chi.Router {
	t.Helper()

	coord, err := txscope.New(client, opts...)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Put("/kv/{key}", httpadapter.Handler(coord, func(w http.ResponseWriter, r *http.Request) error {
		sess, err := txscope.Default(r.Context())
		if err != nil {
			return err
		}
		if sess == nil {
			w.WriteHeader(http.StatusAccepted)
			return nil
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return err
		}
		if len(body) == 0 {
			return &domain.ValidationError{Field: "body", Reason: "must not be empty"}
		}
		if err := sess.Set(r.Context(), chi.URLParam(r, "key"), string(body)); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)
		return nil
	}))
	r.Get("/kv/{key}", httpadapter.Handler(coord, func(w http.ResponseWriter, r *http.Request) error {
		sess, err := txscope.Default(r.Context())
		if err != nil {
			return err
		}
		if sess == nil {
			w.WriteHeader(http.StatusAccepted)
			return nil
		}
		val, err := sess.Get(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			if errors.Is(err, domain.ErrKeyNotFound) {
				http.NotFound(w, r)
				return nil
			}
			return err
		}
		_, err = w.Write([]byte(val))
		return err
	}))
	return r
}

func TestHandler_SuccessCommits(t *testing.T) {
	client := memory.NewClient()
	router := newRouter(t, client)

	req := httptest.NewRequest(http.MethodPut, "/kv/greeting", strings.NewReader("hello"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, map[string]string{"greeting": "hello"}, client.Snapshot())
}

func TestHandler_ValidationErrorMapsToBadRequest(t *testing.T) {
	client := memory.NewClient()
	router := newRouter(t, client)

	req := httptest.NewRequest(http.MethodPut, "/kv/greeting", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "must not be empty")

	// The failed request's write was rolled back.
	assert.Empty(t, client.Snapshot())
}

func TestHandler_GetReadsCommittedValue(t *testing.T) {
	client := memory.NewClient()
	router := newRouter(t, client)

	put := httptest.NewRequest(http.MethodPut, "/kv/k", strings.NewReader("v"))
	router.ServeHTTP(httptest.NewRecorder(), put)

	get := httptest.NewRequest(http.MethodGet, "/kv/k", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, get)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v", rec.Body.String())
}

func TestHandler_BypassModeSkipsSessions(t *testing.T) {
	client := memory.NewClient()
	router := newRouter(t, client, txscope.WithBypass(true))

	req := httptest.NewRequest(http.MethodPut, "/kv/k", strings.NewReader("v"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, client.Snapshot())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, httpadapter.StatusFor(domain.BadRequest("nope", nil)))
	assert.Equal(t, http.StatusInternalServerError, httpadapter.StatusFor(domain.Internal("boom", nil)))
	assert.Equal(t, http.StatusInternalServerError, httpadapter.StatusFor(domain.Misuse("wiring", nil)))
	assert.Equal(t, http.StatusServiceUnavailable, httpadapter.StatusFor(domain.ErrTxAcquire))
	assert.Equal(t, http.StatusInternalServerError, httpadapter.StatusFor(errors.New("other")))
}
