package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/himanshub16/vibezone/client"
)

// serveSession runs req through the session middleware and reports the
// status and the user id the handler saw.
func serveSession(s *Sessions, req *http.Request) (int, int64) {
	e := echo.New()
	e.HTTPErrorHandler = newHTTPErrorHandler(zerolog.Nop())
	var userID int64
	e.GET("/me", func(c echo.Context) error {
		userID = getUserIDFromContext(c)
		return c.NoContent(http.StatusOK)
	}, s.Middleware()...)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code, userID
}

func withCookie(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	return req
}

func withBearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewSessions([]byte("secret"), time.Hour)
	token, err := s.Issue(42)
	require.NoError(t, err)

	code, id := serveSession(s, withCookie(token))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(42), id)

	code, id = serveSession(s, withBearer(token))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(42), id)

	other, _ := s.Issue(42)
	assert.NotEqual(t, token, other, "every session has its own id")
}

func TestSessionRejected(t *testing.T) {
	s := NewSessions([]byte("secret"), time.Hour)
	expired, _ := NewSessions([]byte("secret"), -time.Minute).Issue(1)
	forged, _ := NewSessions([]byte("other"), time.Hour).Issue(1)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}).SignedString([]byte("secret"))
	valid, _ := s.Issue(1)

	badBearer := withBearer("not-a-token")
	badBearer.AddCookie(&http.Cookie{Name: sessionCookie, Value: valid})

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"no token", httptest.NewRequest(http.MethodGet, "/me", nil)},
		{"expired", withCookie(expired)},
		{"forged", withCookie(forged)},
		{"unsigned", withCookie(none)},
		{"no user", withCookie(noUser)},
		{"expired bearer", withBearer(expired)},
		{"bad bearer beside a good cookie", badBearer},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, id := serveSession(s, test.req)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Zero(t, id)
		})
	}
}

// newFakeSpotify serves the token exchange and the profile of one account.
func newFakeSpotify(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "spotify-token", "token_type": "Bearer", "expires_in": 3600}`))
	})
	mux.HandleFunc("/v1/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer spotify-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":           "ana.spotify",
			"display_name": "Ana",
			"email":        "ana@example.com",
			"images":       []map[string]string{{"url": "https://img.example.com/ana.jpg"}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newLoginServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	spotify := newFakeSpotify(t)

	repo := newTestRepo(t)
	metrics := NewMetrics()
	service := NewService(repo, repo, repo, NewDeezerClient(""), metrics, zerolog.Nop())
	sessions := NewSessions([]byte("test-secret"), time.Hour)
	login := NewSpotifyLogin(SpotifyConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
	}, service, sessions, zerolog.Nop())
	login.conf.Endpoint = oauth2.Endpoint{
		AuthURL:   spotify.URL + "/authorize",
		TokenURL:  spotify.URL + "/api/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	login.apiURL = spotify.URL

	r := NewHTTPRouter(service, RouterOptions{
		Stations: NewStationCatalogue("", zerolog.Nop()),
		Sessions: sessions,
		Login:    login,
		Metrics:  metrics,
		Log:      zerolog.Nop(),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	hc := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, hc
}

func startLogin(t *testing.T, srv *httptest.Server, hc *http.Client) string {
	t.Helper()
	resp, err := hc.Get(srv.URL + "/login")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/authorize", loc.Path)
	assert.Equal(t, "client", loc.Query().Get("client_id"))
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestSpotifyLogin(t *testing.T) {
	srv, hc := newLoginServer(t)
	state := startLogin(t, srv, hc)

	resp, err := hc.Get(srv.URL + "/callback?code=good-code&state=" + state)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile", resp.Header.Get("Location"))

	c, err := client.NewWithHTTPClient(srv.URL, hc, zerolog.Nop())
	require.NoError(t, err)
	p, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ana.spotify", p.User.SpotifyID)
	assert.Equal(t, "Ana", p.User.DisplayName)
	assert.Equal(t, "https://img.example.com/ana.jpg", p.User.ProfileImageURL)

	resp, err = hc.Get(srv.URL + "/logout")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/", resp.Header.Get("Location"))
	_, err = c.Profile(context.Background())
	assert.ErrorIs(t, err, client.ErrLoginRequired)
}

func TestSpotifyCallbackRejected(t *testing.T) {
	tests := []struct {
		name  string
		query func(state string) string
		code  int
	}{
		{"state mismatch", func(string) string { return "?code=good-code&state=forged" }, http.StatusBadRequest},
		{"cancelled", func(state string) string { return "?error=access_denied&state=" + state }, http.StatusBadRequest},
		{"bad code", func(state string) string { return "?code=bad-code&state=" + state }, http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv, hc := newLoginServer(t)
			state := startLogin(t, srv, hc)

			resp, err := hc.Get(srv.URL + "/callback" + test.query(state))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, test.code, resp.StatusCode)
		})
	}
}
