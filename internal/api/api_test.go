// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/watchlist"
)

type testEnv struct {
	handler http.Handler
	store   *store.MemoryStore
	state   *store.State
	tokens  *auth.TokenManager
}

type envOptions struct {
	catalog    CatalogProvider
	lockout    *auth.Lockout
	revocation auth.RevocationList
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	tokens, err := auth.NewTokenManager(&config.SecurityConfig{
		JWTSecret: "api-test-secret-0123456789abcdef",
		TokenTTL:  time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}

	st := store.NewMemoryStore()
	state := store.NewState(true)

	var accountOpts []account.Option
	if opts.lockout != nil {
		accountOpts = append(accountOpts, account.WithLockout(opts.lockout))
	}
	if opts.revocation != nil {
		accountOpts = append(accountOpts, account.WithRevocation(opts.revocation))
	}

	handler := NewHandler(Dependencies{
		Accounts:  account.NewService(st, tokens, accountOpts...),
		Watchlist: watchlist.NewService(st, nil),
		Catalog:   opts.catalog,
		State:     state,
	})

	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitDisabled = true
	router := NewRouter(handler, NewGateway(tokens, opts.revocation), mw)

	return &testEnv{handler: router.SetupChi(), store: st, state: state, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectMessage(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if got := decode[ErrorResponse](t, rec).Message; got != message {
		t.Errorf("message = %q, want %q", got, message)
	}
}

func (e *testEnv) register(t *testing.T, username, email, password string) account.Session {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{Username: username, Email: email, Password: password})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decode[account.Session](t, rec)
}

func TestEndToEndWatchlistFlow(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	session := env.register(t, "alice", "a@x.com", "secret1")
	if session.Token == "" || session.User.Username != "alice" || session.User.Email != "a@x.com" {
		t.Fatalf("session = %+v", session)
	}

	rec := env.do(t, http.MethodGet, "/auth/user", session.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("user status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"watchlist":[]`) {
		t.Errorf("user body = %s, want empty watchlist array", rec.Body.String())
	}

	entry := AddEntryRequest{TitleID: "tt001", Title: "Film", Year: "1999", Kind: "movie", PosterURL: "p"}
	rec = env.do(t, http.MethodPost, "/auth/myList/add", session.Token, entry)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}
	added := decode[WatchlistResponse](t, rec)
	if added.Message != MsgMovieAdded || len(added.MyList) != 1 {
		t.Fatalf("add response = %+v", added)
	}
	want := models.WatchlistEntry{TitleID: "tt001", Title: "Film", Year: "1999", Kind: "movie", PosterURL: "p"}
	if added.MyList[0] != want {
		t.Errorf("entry = %+v, want %+v", added.MyList[0], want)
	}

	rec = env.do(t, http.MethodPost, "/auth/myList/add", session.Token, entry)
	expectMessage(t, rec, http.StatusBadRequest, MsgAlreadyInList)

	rec = env.do(t, http.MethodGet, "/auth/myList", session.Token, nil)
	if got := decode[ListResponse](t, rec); len(got.MyList) != 1 {
		t.Errorf("myList length = %d, want 1", len(got.MyList))
	}

	rec = env.do(t, http.MethodPost, "/auth/myList/remove", session.Token, RemoveEntryRequest{TitleID: "tt001"})
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rec.Code)
	}
	removed := decode[WatchlistResponse](t, rec)
	if removed.Message != MsgMovieRemoved || len(removed.MyList) != 0 {
		t.Errorf("remove response = %+v", removed)
	}
	if !strings.Contains(rec.Body.String(), `"myList":[]`) {
		t.Errorf("remove body = %s, want empty array", rec.Body.String())
	}

	// Removing an absent title is not an error.
	rec = env.do(t, http.MethodPost, "/auth/myList/remove", session.Token, RemoveEntryRequest{TitleID: "tt404"})
	if rec.Code != http.StatusOK {
		t.Errorf("remove absent status = %d, want 200", rec.Code)
	}
}

func TestCompatibilityPrefix(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Username: "bob", Email: "b@x.com", Password: "secret1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	session := decode[account.Session](t, rec)

	rec = env.do(t, http.MethodPost, "/api/auth/myList/add", session.Token, map[string]string{"imdbID": "tt0133093", "Type": "movie", "Poster": "x.jpg"})
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}
	list := decode[WatchlistResponse](t, rec).MyList
	if len(list) != 1 || list[0].TitleID != "tt0133093" || list[0].Kind != "movie" || list[0].PosterURL != "x.jpg" {
		t.Errorf("list = %+v", list)
	}
}

func TestRegisterErrors(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.register(t, "alice", "a@x.com", "secret1")

	tests := []struct {
		name    string
		body    RegisterRequest
		message string
	}{
		{"duplicate email", RegisterRequest{Username: "other", Email: "a@x.com", Password: "secret1"}, MsgDuplicateEmail},
		{"duplicate username", RegisterRequest{Username: "alice", Email: "new@x.com", Password: "secret1"}, MsgDuplicateUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/auth/register", "", tt.body)
			expectMessage(t, rec, http.StatusBadRequest, tt.message)
		})
	}

	t.Run("validation detail", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/register", "", RegisterRequest{Username: "carol", Email: "not-an-email", Password: "123"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		resp := decode[ErrorResponse](t, rec)
		fields := map[string]bool{}
		for _, f := range resp.Errors {
			fields[f.Field] = true
		}
		if !fields["email"] || !fields["password"] {
			t.Errorf("errors = %+v, want email and password", resp.Errors)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		expectMessage(t, rec, http.StatusBadRequest, MsgInvalidBody)
	})
}

func TestLoginErrors(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.register(t, "alice", "a@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "a@x.com", Password: "secret1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}

	wrongPassword := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "a@x.com", Password: "nope"})
	unknownEmail := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "z@x.com", Password: "secret1"})
	expectMessage(t, wrongPassword, http.StatusBadRequest, MsgInvalidCredentials)
	expectMessage(t, unknownEmail, http.StatusBadRequest, MsgInvalidCredentials)
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Errorf("bodies differ: %s vs %s", wrongPassword.Body.String(), unknownEmail.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "a@x.com"})
	expectMessage(t, rec, http.StatusBadRequest, account.MsgMissingFields)
}

func TestLoginLockout(t *testing.T) {
	env := newTestEnv(t, envOptions{lockout: auth.NewLockout(2, time.Minute, time.Minute)})
	env.register(t, "alice", "a@x.com", "secret1")

	bad := LoginRequest{Email: "a@x.com", Password: "wrong"}
	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/auth/login", "", bad)
		expectMessage(t, rec, http.StatusBadRequest, MsgInvalidCredentials)
	}

	rec := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "a@x.com", Password: "secret1"})
	expectMessage(t, rec, http.StatusTooManyRequests, MsgLockedOut)
}

func TestTokenRejections(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodGet, "/auth/user", "", nil)
	expectMessage(t, rec, http.StatusUnauthorized, MsgNoToken)

	rec = env.do(t, http.MethodGet, "/auth/myList", "garbage", nil)
	expectMessage(t, rec, http.StatusUnauthorized, MsgInvalidToken)

	// A valid token for an account that no longer exists.
	token, err := env.tokens.Issue("64b7f0c2a1b2c3d4e5f60718", "ghost", "g@x.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	rec = env.do(t, http.MethodGet, "/auth/user", token, nil)
	expectMessage(t, rec, http.StatusNotFound, MsgUserNotFound)

	rec = env.do(t, http.MethodPost, "/auth/myList/add", token, AddEntryRequest{TitleID: "tt1"})
	expectMessage(t, rec, http.StatusNotFound, MsgUserNotFound)
}

func TestBearerHeaderAccepted(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	session := env.register(t, "alice", "a@x.com", "secret1")

	req := httptest.NewRequest(http.MethodGet, "/auth/myList", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAddValidation(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	session := env.register(t, "alice", "a@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/auth/myList/add", session.Token, AddEntryRequest{TitleID: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decode[ErrorResponse](t, rec); len(resp.Errors) == 0 || resp.Errors[0].Field != "titleId" {
		t.Errorf("errors = %+v, want titleId", resp.Errors)
	}
}

func TestLogout(t *testing.T) {
	t.Run("stateless", func(t *testing.T) {
		env := newTestEnv(t, envOptions{})
		session := env.register(t, "alice", "a@x.com", "secret1")

		rec := env.do(t, http.MethodPost, "/auth/logout", session.Token, nil)
		expectMessage(t, rec, http.StatusOK, MsgLoggedOut)

		if rec := env.do(t, http.MethodGet, "/auth/user", session.Token, nil); rec.Code != http.StatusOK {
			t.Errorf("token rejected after stateless logout: %d", rec.Code)
		}
	})

	t.Run("revocation", func(t *testing.T) {
		env := newTestEnv(t, envOptions{revocation: auth.NewMemoryRevocationList()})
		session := env.register(t, "alice", "a@x.com", "secret1")

		rec := env.do(t, http.MethodPost, "/auth/logout", session.Token, nil)
		expectMessage(t, rec, http.StatusOK, MsgLoggedOut)

		rec = env.do(t, http.MethodGet, "/auth/user", session.Token, nil)
		expectMessage(t, rec, http.StatusUnauthorized, MsgTokenRevoked)

		login := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "a@x.com", Password: "secret1"})
		fresh := decode[account.Session](t, login)
		if rec := env.do(t, http.MethodGet, "/auth/user", fresh.Token, nil); rec.Code != http.StatusOK {
			t.Errorf("fresh token status = %d, want 200", rec.Code)
		}
	})
}

func TestStoreUnavailable(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	session := env.register(t, "alice", "a@x.com", "secret1")

	env.state.MarkUnavailable(errors.New("connection refused"))

	rec := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "a@x.com", Password: "secret1"})
	expectMessage(t, rec, http.StatusServiceUnavailable, MsgServiceUnavailable)

	rec = env.do(t, http.MethodGet, "/auth/myList", session.Token, nil)
	expectMessage(t, rec, http.StatusServiceUnavailable, MsgServiceUnavailable)

	rec = env.do(t, http.MethodGet, "/health/ready", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", rec.Code)
	}
	if got := decode[HealthResponse](t, rec); got.Store != "down" {
		t.Errorf("ready store = %q, want down", got.Store)
	}

	if rec := env.do(t, http.MethodGet, "/health/live", "", nil); rec.Code != http.StatusOK {
		t.Errorf("live status = %d, want 200", rec.Code)
	}

	env.state.MarkAvailable()
	env.store.SetUnavailable(true)

	// State says up but the store fails mid-request.
	rec = env.do(t, http.MethodGet, "/auth/myList", session.Token, nil)
	expectMessage(t, rec, http.StatusServiceUnavailable, MsgServiceUnavailable)
}

func TestRoutingFallbacks(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		method  string
		path    string
		status  int
		message string
	}{
		{http.MethodGet, "/", http.StatusOK, MsgRunning},
		{http.MethodGet, "/api", http.StatusOK, MsgRunning},
		{http.MethodGet, "/nope", http.StatusNotFound, MsgRouteNotFound},
		{http.MethodGet, "/auth/nope", http.StatusNotFound, MsgRouteNotFound},
		{http.MethodGet, "/auth/login", http.StatusMethodNotAllowed, MsgMethodNotAllowed},
		{http.MethodDelete, "/auth/myList", http.StatusMethodNotAllowed, MsgMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, "", nil)
			expectMessage(t, rec, tt.status, tt.message)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodGet, "/health/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status = %d", rec.Code)
	}
	if got := decode[HealthResponse](t, rec); got.Status != "ready" || got.Store != "up" {
		t.Errorf("ready = %+v", got)
	}

	rec = env.do(t, http.MethodGet, "/health/live", "", nil)
	if got := decode[HealthResponse](t, rec); got.Status != "alive" {
		t.Errorf("live = %+v", got)
	}

	rec = env.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "marquee_") {
		t.Errorf("metrics status = %d, exposition missing marquee_ series", rec.Code)
	}
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodGet, "/", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", rec.Header().Get("X-Content-Type-Options"))
	}
}

type fakeCatalog struct {
	lastQuery string
	lastPage  int
	err       error
}

func (f *fakeCatalog) Search(_ context.Context, query string, page int) (*catalog.SearchResult, error) {
	f.lastQuery, f.lastPage = query, page
	if f.err != nil {
		return nil, f.err
	}
	return &catalog.SearchResult{
		Titles:       []catalog.Title{{TitleID: "tt0133093", Title: "The Matrix", Year: "1999", Kind: "movie"}},
		TotalResults: 1,
		TotalPages:   1,
		Page:         page,
	}, nil
}

func (f *fakeCatalog) Detail(_ context.Context, titleID string) (*catalog.TitleDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &catalog.TitleDetail{Title: catalog.Title{TitleID: titleID, Title: "The Matrix"}, Plot: "A hacker learns the truth."}, nil
}

func TestCatalogRoutes(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		env := newTestEnv(t, envOptions{})
		rec := env.do(t, http.MethodGet, "/catalog/search?q=matrix", "", nil)
		expectMessage(t, rec, http.StatusServiceUnavailable, MsgCatalogDisabled)
	})

	t.Run("search", func(t *testing.T) {
		fake := &fakeCatalog{}
		env := newTestEnv(t, envOptions{catalog: fake})

		rec := env.do(t, http.MethodGet, "/catalog/search?q=matrix&page=2", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if fake.lastQuery != "matrix" || fake.lastPage != 2 {
			t.Errorf("provider called with %q page %d", fake.lastQuery, fake.lastPage)
		}
		if got := decode[catalog.SearchResult](t, rec); len(got.Titles) != 1 || got.Titles[0].TitleID != "tt0133093" {
			t.Errorf("result = %+v", got)
		}

		rec = env.do(t, http.MethodGet, "/catalog/search?q=matrix&page=x", "", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("bad page status = %d, want 400", rec.Code)
		}
	})

	t.Run("detail", func(t *testing.T) {
		env := newTestEnv(t, envOptions{catalog: &fakeCatalog{}})
		rec := env.do(t, http.MethodGet, "/api/catalog/title/tt0133093", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := decode[catalog.TitleDetail](t, rec); got.TitleID != "tt0133093" || got.Plot == "" {
			t.Errorf("detail = %+v", got)
		}
	})

	t.Run("upstream error", func(t *testing.T) {
		env := newTestEnv(t, envOptions{catalog: &fakeCatalog{err: &apperr.UpstreamError{Message: "Movie not found!"}}})
		rec := env.do(t, http.MethodGet, "/catalog/title/tt0", "", nil)
		expectMessage(t, rec, http.StatusBadGateway, "Movie not found!")
	})

	t.Run("no store dependency", func(t *testing.T) {
		env := newTestEnv(t, envOptions{catalog: &fakeCatalog{}})
		env.state.MarkUnavailable(errors.New("down"))
		if rec := env.do(t, http.MethodGet, "/catalog/search?q=matrix", "", nil); rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200 while store is down", rec.Code)
		}
	})
}

func TestRecovererReturnsEnvelope(t *testing.T) {
	h := recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	expectMessage(t, rec, http.StatusInternalServerError, MsgServerError)
}
