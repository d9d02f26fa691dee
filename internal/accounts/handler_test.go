package accounts_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatekeep-io/gatekeep/internal/accounts"
)

const testFrontendURL = "https://app.test.local"

func newTestServer(t *testing.T) (http.Handler, *mockRepository, *mockEnqueuer) {
	t.Helper()
	repo := newMockRepository()
	mail := &mockEnqueuer{}
	service := accounts.NewService(repo, mail, nil)
	handler := accounts.NewHandler(nil, service, testFrontendURL)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, repo, mail
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestRegisterEndpointCreatesAccount(t *testing.T) {
	h, repo, mail := newTestServer(t)

	res := doJSON(t, h, http.MethodPost, "/register",
		`{"name":"Ana","email":"ana@x.com","password":"longpass1"}`)

	require.Equal(t, http.StatusCreated, res.Code)
	assert.Contains(t, res.Body.String(), `"userId"`)
	assert.Contains(t, res.Body.String(), "verify")
	assert.NotNil(t, repo.users["ana@x.com"])
	assert.Len(t, mail.sent, 1)
}

func TestRegisterEndpointResendsForUnverifiedDuplicate(t *testing.T) {
	h, _, mail := newTestServer(t)

	res := doJSON(t, h, http.MethodPost, "/register",
		`{"name":"Ana","email":"ana@x.com","password":"longpass1"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = doJSON(t, h, http.MethodPost, "/register",
		`{"name":"Ana","email":"ana@x.com","password":"longpass1"}`)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "resent")
	assert.Len(t, mail.sent, 2)
}

func TestRegisterEndpointValidation(t *testing.T) {
	h, repo, _ := newTestServer(t)

	cases := map[string]string{
		"missing fields": `{"email":"bo@x.com"}`,
		"short password": `{"name":"Bo","email":"bo@x.com","password":"short"}`,
		"blank name":     `{"name":"   ","email":"bo@x.com","password":"longpass1"}`,
		"invalid json":   `{"name":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			res := doJSON(t, h, http.MethodPost, "/register", body)
			assert.Equal(t, http.StatusBadRequest, res.Code)
		})
	}
	assert.Empty(t, repo.users)
}

func TestRegisterEndpointConflict(t *testing.T) {
	h, repo, _ := newTestServer(t)
	seedUser(t, repo, "ana@x.com", "longpass1", true)

	res := doJSON(t, h, http.MethodPost, "/register",
		`{"name":"Ana","email":"ana@x.com","password":"longpass1"}`)

	require.Equal(t, http.StatusConflict, res.Code)
	assert.Contains(t, res.Body.String(), "User Already Exists")
}

func TestVerifyEmailEndpointRedirects(t *testing.T) {
	h, _, mail := newTestServer(t)

	res := doJSON(t, h, http.MethodPost, "/register",
		`{"name":"Ana","email":"ana@x.com","password":"longpass1"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	token := mail.sent[0].token

	res = doJSON(t, h, http.MethodGet, "/verify-email/"+token, "")
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, testFrontendURL+"/login?verified=1", res.Header().Get("Location"))

	// token is consumed, second attempt fails
	res = doJSON(t, h, http.MethodGet, "/verify-email/"+token, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestVerifyEmailEndpointRejectsUnknownToken(t *testing.T) {
	h, _, _ := newTestServer(t)

	res := doJSON(t, h, http.MethodGet, "/verify-email/deadbeef", "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLoginEndpoint(t *testing.T) {
	h, repo, _ := newTestServer(t)
	seedUser(t, repo, "ana@x.com", "longpass1", true)
	seedUser(t, repo, "pending@x.com", "longpass1", false)

	t.Run("missing fields", func(t *testing.T) {
		res := doJSON(t, h, http.MethodPost, "/login", `{"email":"ana@x.com"}`)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		res := doJSON(t, h, http.MethodPost, "/login", `{"email":"ghost@x.com","password":"longpass1"}`)
		require.Equal(t, http.StatusNotFound, res.Code)
		assert.Contains(t, res.Body.String(), "User Does Not Exist")
	})

	t.Run("unverified", func(t *testing.T) {
		res := doJSON(t, h, http.MethodPost, "/login", `{"email":"pending@x.com","password":"longpass1"}`)
		require.Equal(t, http.StatusUnauthorized, res.Code)
		assert.Contains(t, res.Body.String(), "verify your email")
	})

	t.Run("wrong password", func(t *testing.T) {
		res := doJSON(t, h, http.MethodPost, "/login", `{"email":"ana@x.com","password":"wrongpass1"}`)
		require.Equal(t, http.StatusUnauthorized, res.Code)
		assert.Contains(t, res.Body.String(), "The Password Was Incorrect")
	})

	t.Run("success", func(t *testing.T) {
		res := doJSON(t, h, http.MethodPost, "/login", `{"email":"ana@x.com","password":"longpass1"}`)
		require.Equal(t, http.StatusOK, res.Code)
		body := res.Body.String()
		assert.Contains(t, body, `"message":"Success"`)
		assert.Contains(t, body, `"email":"ana@x.com"`)
		assert.NotContains(t, strings.ToLower(body), "password")
	})
}

func TestResendVerificationEndpoint(t *testing.T) {
	h, repo, mail := newTestServer(t)
	seedUser(t, repo, "pending@x.com", "longpass1", false)
	seedUser(t, repo, "done@x.com", "longpass1", true)

	t.Run("missing email", func(t *testing.T) {
		res := doJSON(t, h, http.MethodPost, "/resend-verification", `{}`)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		res := doJSON(t, h, http.MethodPost, "/resend-verification", `{"email":"ghost@x.com"}`)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("already verified", func(t *testing.T) {
		res := doJSON(t, h, http.MethodPost, "/resend-verification", `{"email":"done@x.com"}`)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("sent", func(t *testing.T) {
		res := doJSON(t, h, http.MethodPost, "/resend-verification", `{"email":"pending@x.com"}`)
		require.Equal(t, http.StatusOK, res.Code)
		require.Len(t, mail.sent, 1)
		assert.Equal(t, "pending@x.com", mail.sent[0].to)
	})
}

func TestGetUserEndpoint(t *testing.T) {
	h, repo, _ := newTestServer(t)
	seedUser(t, repo, "ana@x.com", "longpass1", true)

	res := doJSON(t, h, http.MethodGet, "/user/ana@x.com", "")
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, `"user"`)
	assert.Contains(t, body, `"email":"ana@x.com"`)
	assert.NotContains(t, strings.ToLower(body), "password")

	res = doJSON(t, h, http.MethodGet, "/user/ghost@x.com", "")
	require.Equal(t, http.StatusNotFound, res.Code)
	assert.Contains(t, res.Body.String(), "User not found")
}
