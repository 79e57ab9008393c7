package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"workforce/internal/domain/auth"
)

func TestRequestHashDeterministic(t *testing.T) {
	hash1 := RequestHash([]byte("payload"))
	hash2 := RequestHash([]byte("payload"))
	hash3 := RequestHash([]byte("other"))

	if hash1 != hash2 {
		t.Fatal("expected deterministic hash")
	}
	if hash1 == hash3 {
		t.Fatal("expected different hash for different payload")
	}
}

type memoryKeys struct {
	hashes    map[string]string
	responses map[string]json.RawMessage
}

func newMemoryKeys() *memoryKeys {
	return &memoryKeys{hashes: map[string]string{}, responses: map[string]json.RawMessage{}}
}

func (m *memoryKeys) Check(_ context.Context, tenantID, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	id := tenantID + userID + endpoint + key
	hash, ok := m.hashes[id]
	if !ok {
		return nil, false, nil
	}
	if hash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return m.responses[id], true, nil
}

func (m *memoryKeys) Save(_ context.Context, tenantID, userID, endpoint, key, requestHash string, response json.RawMessage) error {
	id := tenantID + userID + endpoint + key
	m.hashes[id] = requestHash
	m.responses[id] = response
	return nil
}

func TestIdempotentReplaysFirstResponse(t *testing.T) {
	calls := 0
	handler := Idempotent(newMemoryKeys())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"r1"}}`))
	}))
	ctx := WithUser(context.Background(), auth.UserContext{TenantID: "t1", UserID: "u1"})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/employees/e1/compliance", bytes.NewBufferString(body)).WithContext(ctx)
		req.Header.Set("Idempotency-Key", "k1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send(`{"name":"SEP E1"}`)
	second := send(`{"name":"SEP E1"}`)
	if calls != 1 {
		t.Fatalf("expected one handler call, got %d", calls)
	}
	if second.Code != http.StatusCreated || second.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected identical body, got %q and %q", first.Body.String(), second.Body.String())
	}

	conflict := send(`{"name":"UDT"}`)
	if conflict.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key, got %d", conflict.Code)
	}
}

func TestIdempotentWithoutKeyPassesThrough(t *testing.T) {
	calls := 0
	handler := Idempotent(newMemoryKeys())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))
	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	}
	if calls != 2 {
		t.Fatalf("expected two calls, got %d", calls)
	}
}
