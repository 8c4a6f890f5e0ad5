package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/spotify"

	"github.com/himanshub16/vibezone/models"
)

const (
	sessionCookie  = "session"
	stateCookie    = "oauth_state"
	userKey        = "user"
	stateCookieTTL = 10 * time.Minute

	spotifyAPIURL = "https://api.spotify.com"
)

// Sessions issues and checks the signed session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret []byte, ttl time.Duration) *Sessions {
	return &Sessions{secret: secret, ttl: ttl}
}

func (s *Sessions) Issue(userID int64) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = userID
	claims["jti"] = uuid.New().String()
	claims["exp"] = time.Now().Add(s.ttl).Unix()
	return token.SignedString(s.secret)
}

// Middleware requires a session. The token is read from a Bearer
// Authorization header when one is sent and from the session cookie
// otherwise.
func (s *Sessions) Middleware() []echo.MiddlewareFunc {
	bearer := s.jwtConfig("header:"+echo.HeaderAuthorization, func(c echo.Context) bool {
		return c.Request().Header.Get(echo.HeaderAuthorization) == ""
	})
	cookie := s.jwtConfig("cookie:"+sessionCookie, func(c echo.Context) bool {
		return c.Get(userKey) != nil
	})
	return []echo.MiddlewareFunc{
		middleware.JWTWithConfig(bearer),
		middleware.JWTWithConfig(cookie),
		requireUser,
	}
}

func (s *Sessions) jwtConfig(lookup string, skipper middleware.Skipper) middleware.JWTConfig {
	return middleware.JWTConfig{
		Skipper:       skipper,
		SigningKey:    s.secret,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    userKey,
		TokenLookup:   lookup,
		ErrorHandler: func(error) error {
			return errLoginRequired
		},
	}
}

// requireUser rejects tokens that carry no user.
func requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if getUserIDFromContext(c) <= 0 {
			return errLoginRequired
		}
		return next(c)
	}
}

func (s *Sessions) setCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.ttl),
	})
}

func clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func getUserIDFromContext(c echo.Context) int64 {
	user, ok := c.Get(userKey).(*jwt.Token)
	if !ok {
		return 0
	}
	claims, ok := user.Claims.(jwt.MapClaims)
	if !ok {
		return 0
	}
	id, _ := claims["user_id"].(float64)
	return int64(id)
}

// SpotifyLogin runs the authorization code flow against Spotify and turns
// the Spotify account into a local user with a session.
type SpotifyLogin struct {
	conf     *oauth2.Config
	apiURL   string
	service  Service
	sessions *Sessions
	log      zerolog.Logger
}

func NewSpotifyLogin(cfg SpotifyConfig, service Service, sessions *Sessions, log zerolog.Logger) *SpotifyLogin {
	return &SpotifyLogin{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"user-read-private", "user-read-email"},
			Endpoint:     spotify.Endpoint,
		},
		apiURL:   spotifyAPIURL,
		service:  service,
		sessions: sessions,
		log:      log,
	}
}

func (l *SpotifyLogin) loginHandler(c echo.Context) error {
	state := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(stateCookieTTL.Seconds()),
	})
	return c.Redirect(http.StatusFound, l.conf.AuthCodeURL(state))
}

func (l *SpotifyLogin) callbackHandler(c echo.Context) error {
	ck, err := c.Cookie(stateCookie)
	if err != nil || ck.Value == "" || ck.Value != c.QueryParam("state") {
		return newAPIError(http.StatusBadRequest, "Invalid login state")
	}
	clearCookie(c, stateCookie)

	code := c.QueryParam("code")
	if code == "" {
		return newAPIError(http.StatusBadRequest, "Login was cancelled")
	}

	ctx := c.Request().Context()
	tok, err := l.conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	profile, err := l.currentUser(ctx, tok)
	if err != nil {
		return err
	}

	user := models.User{
		SpotifyID:   profile.ID,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
	}
	if len(profile.Images) > 0 {
		user.ProfileImageURL = profile.Images[0].URL
	}
	u, err := l.service.LoginUser(ctx, user)
	if err != nil {
		return err
	}
	if err = startSession(c, l.sessions, u.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/profile")
}

func (l *SpotifyLogin) currentUser(ctx context.Context, tok *oauth2.Token) (*spotifyProfile, error) {
	req, err := http.NewRequest(http.MethodGet, l.apiURL+"/v1/me", nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.conf.Client(ctx, tok).Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("spotify profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify profile: unexpected status %s", resp.Status)
	}

	profile := &spotifyProfile{}
	if err = json.NewDecoder(resp.Body).Decode(profile); err != nil {
		return nil, fmt.Errorf("spotify profile: %w", err)
	}
	if profile.ID == "" {
		return nil, errors.New("spotify profile without id")
	}
	return profile, nil
}

func logoutHandler(c echo.Context) error {
	clearCookie(c, sessionCookie)
	return c.Redirect(http.StatusFound, "/")
}

func startSession(c echo.Context, sessions *Sessions, userID int64) error {
	token, err := sessions.Issue(userID)
	if err != nil {
		return err
	}
	sessions.setCookie(c, token)
	return nil
}
