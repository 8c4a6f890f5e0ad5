// Package client talks to the vibezone HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/himanshub16/vibezone/models"
)

// MinRecommendations is the number of tracks a usable recommendation has.
const MinRecommendations = 5

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     zerolog.Logger
}

// New returns a client with its own cookie jar, so a session set by the
// server is sent on later requests.
func New(baseURL string, log zerolog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return NewWithHTTPClient(baseURL, &http.Client{Jar: jar, Timeout: defaultTimeout}, log)
}

func NewWithHTTPClient(baseURL string, hc *http.Client, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Client{baseURL: u, http: hc, log: log}, nil
}

// HTTPClient returns the underlying client, which also suits fetching media.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Resolve turns a server-relative path into an absolute URL.
func (c *Client) Resolve(ref string) string {
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return c.baseURL.ResolveReference(r).String()
}

func (c *Client) Catalogue(ctx context.Context) (*models.Catalogue, error) {
	cat := &models.Catalogue{}
	if err := c.do(ctx, http.MethodGet, "/static/data/stations.json", nil, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// Recommend asks for tracks matching mood. A reply with fewer than
// MinRecommendations tracks is an error.
func (c *Client) Recommend(ctx context.Context, mood string) ([]models.Recommendation, error) {
	var recs []models.Recommendation
	if err := c.do(ctx, http.MethodPost, "/api/recommend", map[string]string{"mood": mood}, &recs); err != nil {
		return nil, err
	}
	if len(recs) < MinRecommendations {
		return nil, ErrTooFewTracks
	}
	return recs, nil
}

func (c *Client) Favorite(ctx context.Context, req models.FavoriteRequest) (*models.ActionReply, error) {
	return c.action(ctx, "/api/favorite", req)
}

func (c *Client) DeleteFavorite(ctx context.Context, favoriteID int64) (*models.ActionReply, error) {
	return c.action(ctx, "/api/favorite/delete/"+strconv.FormatInt(favoriteID, 10), nil)
}

func (c *Client) DeleteProfile(ctx context.Context) (*models.ActionReply, error) {
	return c.action(ctx, "/api/delete_profile", nil)
}

func (c *Client) CreateCollection(ctx context.Context, name string) (*models.ActionReply, error) {
	return c.action(ctx, "/api/create_collection", map[string]string{"name": name})
}

func (c *Client) DeleteCollection(ctx context.Context, collectionID int64) (*models.ActionReply, error) {
	return c.action(ctx, "/api/delete_collection/"+strconv.FormatInt(collectionID, 10), nil)
}

func (c *Client) AddToCollection(ctx context.Context, collectionID, favoriteID int64) (*models.ActionReply, error) {
	return c.action(ctx, "/api/add_to_collection", itemRequest(collectionID, favoriteID))
}

func (c *Client) RemoveFromCollection(ctx context.Context, collectionID, favoriteID int64) (*models.ActionReply, error) {
	return c.action(ctx, "/api/remove_from_collection", itemRequest(collectionID, favoriteID))
}

func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	p := &models.Profile{}
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Login starts a session for user on servers that allow direct login.
func (c *Client) Login(ctx context.Context, user models.User) (*models.ActionReply, error) {
	return c.action(ctx, "/api/login", user)
}

func itemRequest(collectionID, favoriteID int64) models.CollectionItemRequest {
	return models.CollectionItemRequest{
		CollectionID: models.FlexID(collectionID),
		FavoriteID:   models.FlexID(favoriteID),
	}
}

func (c *Client) action(ctx context.Context, path string, body interface{}) (*models.ActionReply, error) {
	reply := &models.ActionReply{}
	if err := c.do(ctx, http.MethodPost, path, body, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// envelope holds the fields any reply may use to signal failure.
type envelope struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Resolve(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read reply: %w", method, path, err)
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("api call")

	var env envelope
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		_ = json.Unmarshal(trimmed, &env)
	}

	if env.Status == models.StatusLoginRequired {
		return ErrLoginRequired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && env.Error == "" {
			return ErrLoginRequired
		}
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if env.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode reply: %w", method, path, err)
	}
	return nil
}
