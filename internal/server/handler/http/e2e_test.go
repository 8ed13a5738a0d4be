package http_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/todokeeper/internal/db"
	"github.com/atinyakov/todokeeper/internal/models"
	"github.com/atinyakov/todokeeper/internal/password"
	"github.com/atinyakov/todokeeper/internal/repository"
	handler "github.com/atinyakov/todokeeper/internal/server/handler/http"
	"github.com/atinyakov/todokeeper/internal/service"
	"github.com/atinyakov/todokeeper/internal/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

type apiServer struct {
	*httptest.Server
	db *sql.DB
}

// newAPIServer wires the real stack on top of an in-memory SQLite database.
func newAPIServer(t *testing.T) *apiServer {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn, "sqlite3"))

	tokens, err := token.NewService([]byte("e2e-signing-key"))
	require.NoError(t, err)

	logger := zap.NewNop()
	authSvc := service.NewAuthService(
		repository.NewPostgresAuthRepository(conn),
		&password.BcryptHasher{Cost: bcrypt.MinCost},
		tokens,
	)
	todoSvc := service.NewTodoService(repository.NewPostgresTodoRepository(conn))

	router := handler.NewRouter(
		&handler.AuthHandler{AuthService: authSvc, Logger: logger},
		&handler.TodoHandler{TodoService: todoSvc, Logger: logger},
		tokens,
		prometheus.NewRegistry(),
		logger,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &apiServer{Server: srv, db: conn}
}

func (s *apiServer) call(t *testing.T, method, path, bearer string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (s *apiServer) signup(t *testing.T, username, pw string) models.UserDTO {
	t.Helper()
	code, body := s.call(t, http.MethodPost, "/auth/signup", "", models.UserDTO{Username: username, Password: pw})
	require.Equal(t, http.StatusOK, code, string(body))
	var out models.UserDTO
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func (s *apiServer) signin(t *testing.T, username, pw string) models.UserDTO {
	t.Helper()
	code, body := s.call(t, http.MethodPost, "/auth/signin", "", models.UserDTO{Username: username, Password: pw})
	require.Equal(t, http.StatusOK, code, string(body))
	var out models.UserDTO
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Token)
	return out
}

func (s *apiServer) todos(t *testing.T, method, bearer string, body any) []models.Todo {
	t.Helper()
	code, raw := s.call(t, method, "/todo", bearer, body)
	require.Equal(t, http.StatusOK, code, string(raw))
	var out models.ResponseDTO[models.Todo]
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.Data
}

func TestE2E_SignupSigninCreateList(t *testing.T) {
	s := newAPIServer(t)

	alice := s.signup(t, "alice", "pw1")
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, "alice", alice.Username)
	assert.Empty(t, alice.Token)

	session := s.signin(t, "alice", "pw1")
	assert.Equal(t, alice.ID, session.ID)

	s.todos(t, http.MethodPost, session.Token, models.TodoDTO{Title: "buy milk"})
	list := s.todos(t, http.MethodGet, session.Token, nil)

	require.Len(t, list, 1)
	assert.Equal(t, "buy milk", list[0].Title)
	assert.False(t, list[0].Done)
	assert.Equal(t, alice.ID, list[0].UserID)
	assert.NotEmpty(t, list[0].ID)
}

func TestE2E_SignupResponseHasNoSecrets(t *testing.T) {
	s := newAPIServer(t)

	code, body := s.call(t, http.MethodPost, "/auth/signup", "", models.UserDTO{Username: "alice", Password: "pw1"})
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(body), "pw1")
	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), "$2a$")
}

func TestE2E_DuplicateSignupKeepsOriginal(t *testing.T) {
	s := newAPIServer(t)
	s.signup(t, "alice", "pw1")

	code, body := s.call(t, http.MethodPost, "/auth/signup", "", models.UserDTO{Username: "alice", Password: "other"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"error":"Username already exists"}`, string(body))

	// The original password still works, the new one does not.
	s.signin(t, "alice", "pw1")
	code, _ = s.call(t, http.MethodPost, "/auth/signin", "", models.UserDTO{Username: "alice", Password: "other"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestE2E_SigninFailuresAreIndistinguishable(t *testing.T) {
	s := newAPIServer(t)
	s.signup(t, "alice", "pw1")

	wrongCode, wrongBody := s.call(t, http.MethodPost, "/auth/signin", "", models.UserDTO{Username: "alice", Password: "nope"})
	unknownCode, unknownBody := s.call(t, http.MethodPost, "/auth/signin", "", models.UserDTO{Username: "mallory", Password: "nope"})

	assert.Equal(t, http.StatusBadRequest, wrongCode)
	assert.Equal(t, wrongCode, unknownCode)
	assert.Equal(t, wrongBody, unknownBody)
	assert.JSONEq(t, `{"error":"Login failed"}`, string(wrongBody))
}

func TestE2E_UsersAreIsolated(t *testing.T) {
	s := newAPIServer(t)
	s.signup(t, "alice", "pw1")
	s.signup(t, "bob", "pw2")
	alice := s.signin(t, "alice", "pw1")
	bob := s.signin(t, "bob", "pw2")

	s.todos(t, http.MethodPost, alice.Token, models.TodoDTO{Title: "alice 1"})
	s.todos(t, http.MethodPost, alice.Token, models.TodoDTO{Title: "alice 2"})
	bobList := s.todos(t, http.MethodPost, bob.Token, models.TodoDTO{Title: "bob 1"})
	require.Len(t, bobList, 1)

	aliceList := s.todos(t, http.MethodGet, alice.Token, nil)
	require.Len(t, aliceList, 2)
	for _, it := range aliceList {
		assert.Equal(t, alice.ID, it.UserID)
		assert.True(t, strings.HasPrefix(it.Title, "alice"))
	}

	// Bob cannot touch alice's items: both calls are silent no-ops.
	target := aliceList[0]
	bobList = s.todos(t, http.MethodPut, bob.Token, models.TodoDTO{ID: target.ID, Title: "pwned", Done: true})
	require.Len(t, bobList, 1)
	bobList = s.todos(t, http.MethodDelete, bob.Token, models.TodoDTO{ID: target.ID})
	require.Len(t, bobList, 1)
	assert.Equal(t, "bob 1", bobList[0].Title)

	aliceList = s.todos(t, http.MethodGet, alice.Token, nil)
	require.Len(t, aliceList, 2)
	assert.ElementsMatch(t, []string{"alice 1", "alice 2"}, []string{aliceList[0].Title, aliceList[1].Title})
}

func TestE2E_UpdateAndDelete(t *testing.T) {
	s := newAPIServer(t)
	s.signup(t, "alice", "pw1")
	alice := s.signin(t, "alice", "pw1")

	list := s.todos(t, http.MethodPost, alice.Token, models.TodoDTO{Title: "buy milk"})
	require.Len(t, list, 1)
	id := list[0].ID

	list = s.todos(t, http.MethodPut, alice.Token, models.TodoDTO{ID: id, Title: "buy oat milk", Done: true})
	require.Len(t, list, 1)
	assert.Equal(t, models.Todo{ID: id, Title: "buy oat milk", Done: true, UserID: alice.ID}, list[0])

	// Unknown ids are ignored.
	list = s.todos(t, http.MethodDelete, alice.Token, models.TodoDTO{ID: "does-not-exist"})
	require.Len(t, list, 1)

	list = s.todos(t, http.MethodDelete, alice.Token, models.TodoDTO{ID: id})
	assert.Empty(t, list)
}

func TestE2E_Unauthenticated(t *testing.T) {
	s := newAPIServer(t)

	tests := []struct {
		name   string
		bearer string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := s.call(t, http.MethodGet, "/todo", tt.bearer, nil)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.JSONEq(t, `{"error":"unauthorized"}`, string(body))
		})
	}

	// A token signed with another key is rejected too.
	other, err := token.NewService([]byte("someone-elses-key"))
	require.NoError(t, err)
	forged, err := other.Issue("alice")
	require.NoError(t, err)
	code, _ := s.call(t, http.MethodGet, "/todo", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestE2E_RejectsNonJSONBody(t *testing.T) {
	s := newAPIServer(t)

	req, err := http.NewRequest(http.MethodPost, s.URL+"/auth/signup", strings.NewReader("username=alice"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestE2E_AuthCheckedBeforeContentType(t *testing.T) {
	s := newAPIServer(t)
	s.signup(t, "alice", "pw1")
	alice := s.signin(t, "alice", "pw1")

	send := func(method, bearer string) int {
		req, err := http.NewRequest(method, s.URL+"/todo", strings.NewReader("id=1"))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "text/plain")
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		resp, err := s.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		assert.Equal(t, http.StatusUnauthorized, send(method, ""), method)
		assert.Equal(t, http.StatusUnsupportedMediaType, send(method, alice.Token), method)
	}
}

func TestE2E_Metrics(t *testing.T) {
	s := newAPIServer(t)
	s.signup(t, "alice", "pw1")

	code, body := s.call(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `todo_http_requests_total{method="POST",path="/auth/signup",status="200"} 1`)
}
