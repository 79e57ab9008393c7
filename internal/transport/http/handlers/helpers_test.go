package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"workforce/internal/app/server"
	"workforce/internal/domain/auth"
	"workforce/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

type response struct {
	Status int
	Header http.Header
	Body   []byte
	Env    envelope
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		DataEncryptionKey:  "0123456789abcdef0123456789abcdef",
		FrontendDir:        "frontend/dist",
		Environment:        "test",
		MigrationsDir:      "../../../../migrations",
		SeedTenantName:     "Test Tenant",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		ReportsDir:         os.TempDir(),
	}
}

// startApp boots the full server against TEST_DATABASE_URL or skips the test.
func startApp(t *testing.T) (*server.App, *httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	cfg.ReportsDir = t.TempDir()
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts, cfg
}

func do(t *testing.T, client *http.Client, method, url, token string, payload any, headers map[string]string) response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	out := response{Status: resp.StatusCode, Header: resp.Header, Body: raw}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out.Env); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return out
}

func expectStatus(t *testing.T, client *http.Client, method, url, token string, payload any, want int) envelope {
	t.Helper()
	resp := do(t, client, method, url, token, payload, nil)
	if resp.Status != want {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, url, want, resp.Status, string(resp.Body))
	}
	return resp.Env
}

func postJSON(t *testing.T, client *http.Client, url, token string, payload any) envelope {
	t.Helper()
	resp := do(t, client, http.MethodPost, url, token, payload, nil)
	if resp.Status != http.StatusOK && resp.Status != http.StatusCreated {
		t.Fatalf("POST %s: unexpected status %d: %s", url, resp.Status, string(resp.Body))
	}
	return resp.Env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return expectStatus(t, client, http.MethodGet, url, token, nil, http.StatusOK)
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string, want int) envelope {
	t.Helper()
	return expectStatus(t, client, http.MethodGet, url, token, nil, want)
}

func getJSONWithMetaStatus(t *testing.T, client *http.Client, url, token string, want int) (envelope, int) {
	t.Helper()
	resp := do(t, client, http.MethodGet, url, token, nil, nil)
	if resp.Status != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.Status, string(resp.Body))
	}
	totalHeader := resp.Header.Get("X-Total-Count")
	total, err := strconv.Atoi(totalHeader)
	if err != nil {
		t.Fatalf("expected X-Total-Count header, got %q", totalHeader)
	}
	return resp.Env, total
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	env := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if payload.Token == "" {
		t.Fatal("expected login token")
	}
	return payload.Token
}

func getTenantID(t *testing.T, app *server.App, tenantName string) string {
	t.Helper()
	var tenantID string
	if err := app.DB.QueryRow(context.Background(), "SELECT id FROM tenants WHERE name = $1", tenantName).Scan(&tenantID); err != nil {
		t.Fatalf("failed to load tenant: %v", err)
	}
	return tenantID
}

func createUserWithRole(t *testing.T, app *server.App, tenantID, roleName, email, password string) string {
	t.Helper()
	ctx := context.Background()
	var roleID string
	if err := app.DB.QueryRow(ctx, "SELECT id FROM roles WHERE tenant_id = $1 AND name = $2", tenantID, roleName).Scan(&roleID); err != nil {
		t.Fatalf("failed to load role %s: %v", roleName, err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	var userID string
	if err := app.DB.QueryRow(ctx, `
    INSERT INTO users (tenant_id, email, password_hash, role_id)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, tenantID, email, hash, roleID).Scan(&userID); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return userID
}

func linkEmployeeUser(t *testing.T, app *server.App, employeeID, userID string) {
	t.Helper()
	if _, err := app.DB.Exec(context.Background(), "UPDATE employees SET user_id = $1 WHERE id = $2", userID, employeeID); err != nil {
		t.Fatalf("failed to link employee user: %v", err)
	}
}

func envelopeErrorCode(t *testing.T, env envelope) string {
	t.Helper()
	errMap, ok := env.Error.(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %#v", env.Error)
	}
	code, _ := errMap["code"].(string)
	return code
}

func assertValidationErrorField(t *testing.T, env envelope, field string) {
	t.Helper()
	if code := envelopeErrorCode(t, env); code != "validation_error" {
		t.Fatalf("expected validation_error, got %q", code)
	}
	errMap := env.Error.(map[string]any)
	details, _ := errMap["details"].(map[string]any)
	fields, _ := details["fields"].([]any)
	for _, item := range fields {
		entry, _ := item.(map[string]any)
		if entry["field"] == field {
			return
		}
	}
	t.Fatalf("expected validation issue for %q, got %#v", field, fields)
}

func envelopeDataSlice(t *testing.T, env envelope) []map[string]any {
	t.Helper()
	var payload []map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode array payload: %v", err)
	}
	return payload
}

func envelopeDataMap(t *testing.T, env envelope) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode object payload: %v", err)
	}
	return payload
}
