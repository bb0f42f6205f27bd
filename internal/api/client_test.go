package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"postprep-cli/internal/app"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionCookie = "POSTPREP_SESSION"

type fakeBackend struct {
	mux *http.ServeMux

	loginCalls    int32
	refreshCalls  int32
	articlesCalls int32

	// refreshOK controls whether /auth/refresh renews the cookie.
	refreshOK atomic.Bool
	// articlesAfterRefresh makes /article/myArticles succeed only once a
	// refreshed cookie arrives.
	articlesAfterRefresh atomic.Bool
	// articlesAlways401 simulates a backend that rejects even refreshed
	// sessions.
	articlesAlways401 atomic.Bool
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{mux: http.NewServeMux()}
	b.refreshOK.Store(true)

	b.mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.loginCalls, 1)
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "fresh", Path: "/", HttpOnly: true})
		_ = json.NewEncoder(w).Encode(app.User{ID: "u-1", Username: "alice", Email: creds.Email, Role: app.RoleAdmin})
	})

	b.mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.refreshCalls, 1)
		if !b.refreshOK.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "refreshed", Path: "/", HttpOnly: true})
		w.WriteHeader(http.StatusOK)
	})

	b.mux.HandleFunc("GET /api/v1/article/myArticles", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.articlesCalls, 1)
		if b.articlesAlways401.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		c, err := r.Cookie(sessionCookie)
		authorized := err == nil && (c.Value == "fresh" || c.Value == "refreshed")
		if b.articlesAfterRefresh.Load() {
			authorized = err == nil && c.Value == "refreshed"
		}
		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode([]app.LiteArticle{{ID: "a-1", Title: "Doc", Owner: "alice", Status: app.StatusCompleted}})
	})

	srv := httptest.NewServer(b.mux)
	t.Cleanup(srv.Close)
	return b, srv
}

func newTestClient(t *testing.T, baseURL, storageDir string, refresh bool) *Client {
	t.Helper()
	if storageDir == "" {
		storageDir = t.TempDir()
	}
	cfg := app.Config{
		BaseURL:               baseURL,
		TimeoutSeconds:        5,
		StorageDir:            storageDir,
		RefreshOnUnauthorized: refresh,
	}
	c, err := New(cfg, app.NewLogger(io.Discard))
	require.NoError(t, err)
	return c
}

func TestLoginReturnsProfileAndCarriesCookie(t *testing.T) {
	b, srv := newFakeBackend(t)
	c := newTestClient(t, srv.URL, "", true)

	user, err := c.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, app.RoleAdmin, user.Role)

	// The session cookie from login authenticates follow-up requests.
	list, err := c.MyArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a-1", list[0].ID)
	assert.EqualValues(t, 0, atomic.LoadInt32(&b.refreshCalls))
}

func TestLoginBadCredentialsSurfacesMessage(t *testing.T) {
	_, srv := newFakeBackend(t)
	c := newTestClient(t, srv.URL, "", true)

	expired := false
	c.SetSessionExpiredHandler(func() { expired = true })

	_, err := c.Login(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Invalid credentials", se.Message)
	assert.False(t, expired, "a login failure is not an expired session")
}

func TestLoginRejectsResponseWithoutProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, "", true)
	_, err := c.Login(context.Background(), "a@b.c", "secret")
	assert.ErrorIs(t, err, ErrBadProfile)
}

func TestInterceptorRefreshesAndRetriesOnce(t *testing.T) {
	b, srv := newFakeBackend(t)
	c := newTestClient(t, srv.URL, "", true)

	expired := false
	c.SetSessionExpiredHandler(func() { expired = true })

	// No cookie yet: first call 401s, refresh renews, retry succeeds.
	b.articlesAfterRefresh.Store(true)
	list, err := c.MyArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.EqualValues(t, 1, atomic.LoadInt32(&b.refreshCalls))
	assert.EqualValues(t, 2, atomic.LoadInt32(&b.articlesCalls))
	assert.False(t, expired)
}

func TestInterceptorFailedRefreshClearsSession(t *testing.T) {
	b, srv := newFakeBackend(t)
	c := newTestClient(t, srv.URL, "", true)
	b.refreshOK.Store(false)

	expired := false
	c.SetSessionExpiredHandler(func() { expired = true })

	_, err := c.MyArticles(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, expired)
	assert.EqualValues(t, 1, atomic.LoadInt32(&b.refreshCalls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&b.articlesCalls), "no retry after a failed refresh")
}

func TestInterceptorRetriesAtMostOncePerRequest(t *testing.T) {
	b, srv := newFakeBackend(t)
	c := newTestClient(t, srv.URL, "", true)
	b.articlesAlways401.Store(true)

	expired := false
	c.SetSessionExpiredHandler(func() { expired = true })

	_, err := c.MyArticles(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, expired)
	assert.EqualValues(t, 1, atomic.LoadInt32(&b.refreshCalls), "exactly one refresh per original request")
	assert.EqualValues(t, 2, atomic.LoadInt32(&b.articlesCalls), "exactly one retry per original request")
}

func TestInterceptorSuppressedOnLoginView(t *testing.T) {
	b, srv := newFakeBackend(t)
	c := newTestClient(t, srv.URL, "", true)
	c.SetLoginActive(func() bool { return true })

	expired := false
	c.SetSessionExpiredHandler(func() { expired = true })

	_, err := c.MyArticles(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, expired, "no redirect loop from the login view")
	assert.EqualValues(t, 0, atomic.LoadInt32(&b.refreshCalls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&b.articlesCalls))
}

func TestInterceptorWithoutRefreshProfile(t *testing.T) {
	b, srv := newFakeBackend(t)
	c := newTestClient(t, srv.URL, "", false)

	expired := false
	c.SetSessionExpiredHandler(func() { expired = true })

	_, err := c.MyArticles(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, expired)
	assert.EqualValues(t, 0, atomic.LoadInt32(&b.refreshCalls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&b.articlesCalls))
}

func TestCookieSurvivesClientRebuild(t *testing.T) {
	_, srv := newFakeBackend(t)
	storage := t.TempDir()

	c1 := newTestClient(t, srv.URL, storage, true)
	_, err := c1.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)

	// A fresh client over the same storage dir rides the stored cookie.
	c2 := newTestClient(t, srv.URL, storage, false)
	list, err := c2.MyArticles(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestClearCredentialsDropsCookie(t *testing.T) {
	_, srv := newFakeBackend(t)
	storage := t.TempDir()

	c := newTestClient(t, srv.URL, storage, false)
	_, err := c.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)

	c.ClearCredentials()

	_, err = c.MyArticles(context.Background())
	assert.Error(t, err)

	c2 := newTestClient(t, srv.URL, storage, false)
	_, err = c2.MyArticles(context.Background())
	assert.Error(t, err, "cookie file is gone after ClearCredentials")
}

func TestClearCredentialsDuringInflightRequests(t *testing.T) {
	_, srv := newFakeBackend(t)
	c := newTestClient(t, srv.URL, "", false)

	_, err := c.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)

	// Logout clears the jar from its own goroutine while list fetches are
	// still in flight; the jar must tolerate the overlap.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 20; k++ {
				_, err := c.MyArticles(context.Background())
				if err == nil || errors.Is(err, ErrSessionExpired) {
					continue
				}
				var se *StatusError
				if !errors.As(err, &se) {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
	}
	for i := 0; i < 20; i++ {
		c.ClearCredentials()
	}
	wg.Wait()
}

func TestUploadPDFDataSendsMultipart(t *testing.T) {
	var gotFilename string
	var gotContent []byte

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/article/upload/pdf", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("pdfFile")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotContent, err = io.ReadAll(file)
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(app.Article{ID: "a-9", Status: app.StatusProcessing})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, "", true)
	article, err := c.UploadPDFData(context.Background(), "paper.pdf", []byte("%PDF-1.7 fake"))
	require.NoError(t, err)
	assert.Equal(t, "a-9", article.ID)
	assert.Equal(t, app.StatusProcessing, article.Status)
	assert.Equal(t, "paper.pdf", gotFilename)
	assert.Equal(t, []byte("%PDF-1.7 fake"), gotContent)
}

func TestUploadTextSendsJSON(t *testing.T) {
	var gotBody map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/article/upload/text", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(app.Article{ID: "a-2", Status: app.StatusProcessing})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, "", true)
	_, err := c.UploadText(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"text": "hello world"}, gotBody)
}

func TestServerErrorPropagatesMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/article/myArticles", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "database down"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, "", true)
	_, err := c.MyArticles(context.Background())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "database down", se.Message)
}

func TestRequestIDHeaderAttached(t *testing.T) {
	var gotID string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/article/myArticles", func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode([]app.LiteArticle{})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, "", true)
	_, err := c.MyArticles(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, gotID)
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	cfg := app.Config{BaseURL: "not a url", TimeoutSeconds: 5, StorageDir: t.TempDir()}
	_, err := New(cfg, app.NewLogger(io.Discard))
	assert.Error(t, err)
}
