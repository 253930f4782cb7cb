package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"stroke-warning-system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginForm(username, password string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	return nil
}

func TestLogin_RedirectsByRole(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		username, password, home string
	}{
		{"doctor1", "doctor123", "/doctor/dashboard"},
		{"datascientist1", "ds123", "/data_scientist/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			rec := app.do(loginForm(tt.username, tt.password), nil)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.home, rec.Header().Get("Location"))

			c := sessionCookie(rec)
			require.NotNil(t, c)
			assert.True(t, c.HttpOnly)
			assert.NotEmpty(t, c.Value)

			page := app.do(httptest.NewRequest(http.MethodGet, tt.home, nil), c)
			assert.Equal(t, http.StatusOK, page.Code)
			assert.Contains(t, page.Body.String(), tt.username)
		})
	}
}

func TestLogin_InvalidCredentialsRerendersForm(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(loginForm("doctor1", "nope"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
	assert.Contains(t, rec.Body.String(), `value="doctor1"`)
	assert.Nil(t, sessionCookie(rec))
}

func TestLoginPage(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/login"`)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/", nil), app.cookieFor(t, "doctor1", domain.RoleDoctor))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/doctor/dashboard", rec.Header().Get("Location"))
}

func TestLogout_RevokesSession(t *testing.T) {
	app := newTestApp(t)
	cookie := app.cookieFor(t, "doctor1", domain.RoleDoctor)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/doctor/patients", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/logout", nil), cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.True(t, cleared.MaxAge < 0)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/doctor/patients", nil), cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGuards(t *testing.T) {
	app := newTestApp(t)
	doctor := app.cookieFor(t, "doctor1", domain.RoleDoctor)
	scientist := app.cookieFor(t, "datascientist1", domain.RoleDataScientist)

	tests := []struct {
		name     string
		method   string
		path     string
		cookie   *http.Cookie
		status   int
		location string
	}{
		{"anonymous doctor page", http.MethodGet, "/doctor/dashboard", nil, http.StatusSeeOther, "/"},
		{"anonymous doctor api", http.MethodPost, "/doctor/add_patient", nil, http.StatusUnauthorized, ""},
		{"scientist on doctor page", http.MethodGet, "/doctor/dashboard", scientist, http.StatusSeeOther, "/"},
		{"scientist on doctor api", http.MethodGet, "/doctor/patients", scientist, http.StatusUnauthorized, ""},
		{"doctor on scientist page", http.MethodGet, "/data_scientist/dashboard", doctor, http.StatusSeeOther, "/"},
		{"doctor on analytics api", http.MethodGet, "/api/analytics/dashboard-data", doctor, http.StatusUnauthorized, ""},
		{"doctor on export", http.MethodPost, "/api/export-data", doctor, http.StatusUnauthorized, ""},
		{"forged cookie", http.MethodGet, "/doctor/patients", &http.Cookie{Name: testCookie, Value: "forged"}, http.StatusUnauthorized, ""},
		{"doctor allowed", http.MethodGet, "/doctor/patients", doctor, http.StatusOK, ""},
		{"scientist allowed", http.MethodGet, "/api/analytics/dashboard-data", scientist, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(httptest.NewRequest(tt.method, tt.path, nil), tt.cookie)
			assert.Equal(t, tt.status, rec.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
			if tt.status == http.StatusUnauthorized {
				var body Result[any]
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, ResultUnauthorized, body.Code)
			}
		})
	}
}
