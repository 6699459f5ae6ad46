package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func TestHandler_LoginWrongPassword(t *testing.T) {
	env := newTestEnv(t, "")
	h := NewHandler(env.svc, true)

	rec := doJSON(h.Login, http.MethodPost, `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decodeBody(t, rec)["error"])
	assert.Equal(t, 0, env.otps.Len())
}

func TestHandler_LoginMissingFields(t *testing.T) {
	env := newTestEnv(t, "")
	h := NewHandler(env.svc, true)

	rec := doJSON(h.Login, http.MethodPost, `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password is required", decodeBody(t, rec)["error"])
}

func TestHandler_LoginSendsOTP(t *testing.T) {
	env := newTestEnv(t, "")
	h := NewHandler(env.svc, true)

	rec := doJSON(h.Login, http.MethodPost, `{"username":"admin","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["otp_sent"])
	assert.Equal(t, 1, env.mailer.count())
	assert.Nil(t, sessionCookie(rec), "no session before the second factor")
}

func TestHandler_VerifyOTPSetsCookie(t *testing.T) {
	env := newTestEnv(t, "")
	h := NewHandler(env.svc, true)

	require.Equal(t, http.StatusOK, doJSON(h.Login, http.MethodPost, `{"username":"admin","password":"`+testPassword+`"}`).Code)

	rec := doJSON(h.VerifyOTP, http.MethodPost, `{"username":"admin","otp":"`+testCode+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user, _ := body["user"].(map[string]any)
	assert.Equal(t, "admin", user["username"])
	assert.NotContains(t, user, "password")

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Equal(t, token, c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int((24 * time.Hour).Seconds()), c.MaxAge)
}

func TestHandler_VerifyOTPExpired(t *testing.T) {
	env := newTestEnv(t, "")
	h := NewHandler(env.svc, false)

	require.Equal(t, http.StatusOK, doJSON(h.Login, http.MethodPost, `{"username":"admin","password":"`+testPassword+`"}`).Code)
	*env.now = env.now.Add(6 * time.Minute)

	rec := doJSON(h.VerifyOTP, http.MethodPost, `{"username":"admin","otp":"`+testCode+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(rec))
}

func TestHandler_VerifyOTPMalformedCode(t *testing.T) {
	env := newTestEnv(t, "")
	h := NewHandler(env.svc, false)

	rec := doJSON(h.VerifyOTP, http.MethodPost, `{"username":"admin","otp":"12ab56"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_LogoutExpiresCookie(t *testing.T) {
	env := newTestEnv(t, "")
	h := NewHandler(env.svc, true)

	rec := doJSON(h.Logout, http.MethodPost, ``)
	require.Equal(t, http.StatusOK, rec.Code)
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestHandler_ProfileRequiresClaims(t *testing.T) {
	env := newTestEnv(t, "")
	h := NewHandler(env.svc, true)

	rec := doJSON(h.Profile, http.MethodGet, ``)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_ProfileAndUpdate(t *testing.T) {
	env := newTestEnv(t, "")
	h := NewHandler(env.svc, true)
	claims := &Claims{UserID: env.admin.ID, Username: env.admin.Username}

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req = req.WithContext(WithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()
	h.Profile(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "admin@example.com", user["email"])

	req = httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(`{"email":"not-an-email"}`))
	req = req.WithContext(WithClaims(req.Context(), claims))
	rec = httptest.NewRecorder()
	h.UpdateProfile(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid email format", decodeBody(t, rec)["error"])

	req = httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(`{"email":"ops@example.com"}`))
	req = req.WithContext(WithClaims(req.Context(), claims))
	rec = httptest.NewRecorder()
	h.UpdateProfile(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	user = decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "ops@example.com", user["email"])
}

func TestHandler_SignupConflict(t *testing.T) {
	env := newTestEnv(t, "")
	h := NewHandler(env.svc, true)

	rec := doJSON(h.Signup, http.MethodPost, `{"username":"admin","email":"a@example.com","password":"long-enough"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(h.Signup, http.MethodPost, `{"username":"editor","email":"e@example.com","password":"long-enough"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
