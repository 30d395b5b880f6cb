package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/personal-library/internal/models"
	"github.com/ayush/personal-library/internal/requestctx"
)

func newTestHandler(t *testing.T) (*Handler, serviceFixture) {
	t.Helper()
	f := newServiceFixture(t)
	return NewHandler(f.svc, slog.New(slog.NewTextHandler(io.Discard, nil))), f
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestHandlerRegister(t *testing.T) {
	h, _ := newTestHandler(t)

	w := postJSON(t, h.Register, models.RegisterRequest{Username: "testuser", Email: "test@example.com", Password: "password123"})
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "testuser", user["username"])
	assert.Equal(t, "test@example.com", user["email"])
	assert.NotContains(t, user, "password")

	w = postJSON(t, h.Register, models.RegisterRequest{Username: "testuser", Email: "test@example.com", Password: "password123"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"User already exists"}`, w.Body.String())
}

func TestHandlerRegisterValidation(t *testing.T) {
	h, _ := newTestHandler(t)

	w := postJSON(t, h.Register, models.RegisterRequest{Username: "testuser", Email: "test@example.com", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Password must be at least 6 characters")
	assert.Contains(t, w.Body.String(), `"field":"password"`)
}

func TestHandlerRegisterBadBody(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	h.Register(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerLogin(t *testing.T) {
	h, _ := newTestHandler(t)
	postJSON(t, h.Register, models.RegisterRequest{Username: "testuser", Email: "test@example.com", Password: "password123"})

	w := postJSON(t, h.Login, models.LoginRequest{Email: "test@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "test@example.com", resp.User.Email)

	w = postJSON(t, h.Login, models.LoginRequest{Email: "test@example.com", Password: "wrongpassword"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Invalid login credentials"}`, w.Body.String())

	w = postJSON(t, h.Login, models.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Invalid login credentials"}`, w.Body.String())
}

func TestHandlerProfile(t *testing.T) {
	h, _ := newTestHandler(t)
	w := postJSON(t, h.Register, models.RegisterRequest{Username: "testuser", Email: "test@example.com", Password: "password123"})
	var reg models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(requestctx.WithUserID(req.Context(), reg.User.ID))
	w = httptest.NewRecorder()
	h.Profile(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, reg.User.ID, body["_id"])
	assert.Equal(t, "testuser", body["username"])
	assert.NotContains(t, body, "password")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(requestctx.WithUserID(req.Context(), "deleted-user"))
	w = httptest.NewRecorder()
	h.Profile(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"User not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Profile(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
