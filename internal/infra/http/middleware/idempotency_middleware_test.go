package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/gateway"
)

type fakeStore struct {
	data map[string]gateway.CachedResponse
	err  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]gateway.CachedResponse{}}
}

func (s *fakeStore) Get(ctx context.Context, key string) (*gateway.CachedResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	resp, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (s *fakeStore) Save(ctx context.Context, key string, response gateway.CachedResponse, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.data[key] = response
	return nil
}

func countingHandler(calls *int, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store)(countingHandler(&calls, http.StatusCreated, `{"hash":"0xabc"}`))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, 1, calls)

	second := send()
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	// O handler NÃO rodou de novo: nenhuma segunda transmissão.
	assert.Equal(t, 1, calls)
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store)(countingHandler(&calls, http.StatusOK, "ok"))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/transactions", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}
	assert.Equal(t, 2, calls)
	assert.Empty(t, store.data)
}

func TestIdempotency_ServerErrorsAreNotCached(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store)(countingHandler(&calls, http.StatusInternalServerError, "boom"))

	req := httptest.NewRequest(http.MethodPost, "/transactions", nil)
	req.Header.Set("Idempotency-Key", "key-err")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// 5xx fica de fora do cache para permitir retry de verdade.
	assert.Empty(t, store.data)
}

func TestIdempotency_FailsOpenOnStoreError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("redis down")
	calls := 0
	handler := Idempotency(store)(countingHandler(&calls, http.StatusCreated, "ok"))

	req := httptest.NewRequest(http.MethodPost, "/transactions", nil)
	req.Header.Set("Idempotency-Key", "key-2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, calls)
}
