package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/himanshub16/vibezone/models"
)

const (
	defaultDeezerAPIURL = "https://api.deezer.com"
	deezerTimeout       = 5 * time.Second

	playlistSearchLimit = 75
	tracklistLimit      = 100
)

// DeezerClient reads public playlist data. It needs no credentials.
type DeezerClient struct {
	baseURL string
	client  *http.Client
}

func NewDeezerClient(baseURL string) *DeezerClient {
	if baseURL == "" {
		baseURL = defaultDeezerAPIURL
	}
	return &DeezerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: deezerTimeout},
	}
}

// SearchPlaylists returns up to limit playlists matching query.
func (d *DeezerClient) SearchPlaylists(ctx context.Context, query string, limit int) ([]deezerPlaylist, error) {
	response := struct {
		Data  []deezerPlaylist `json:"data"`
		Error *deezerError     `json:"error"`
	}{}

	q := url.Values{}
	q.Add("q", query)
	q.Add("limit", strconv.Itoa(limit))
	if err := d.getJSON(ctx, d.baseURL+"/search/playlist?"+q.Encode(), &response); err != nil {
		return nil, fmt.Errorf("search playlists %q: %w", query, err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("search playlists %q: %s", query, response.Error.Message)
	}
	return response.Data, nil
}

// Tracklist loads up to limit tracks from a playlist's tracklist URL.
func (d *DeezerClient) Tracklist(ctx context.Context, tracklistURL string, limit int) ([]deezerTrack, error) {
	response := struct {
		Data  []deezerTrack `json:"data"`
		Error *deezerError  `json:"error"`
	}{}

	u, err := url.Parse(tracklistURL)
	if err != nil {
		return nil, fmt.Errorf("tracklist url: %w", err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	if err := d.getJSON(ctx, u.String(), &response); err != nil {
		return nil, fmt.Errorf("tracklist: %w", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("tracklist: %s", response.Error.Message)
	}
	return response.Data, nil
}

func (d *DeezerClient) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respText, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.Unmarshal(respText, out)
}

// toRecommendation fills the fields Deezer may leave out with the defaults
// the clients expect.
func toRecommendation(t deezerTrack) models.Recommendation {
	title := t.TitleShort
	if title == "" {
		title = t.Title
	}
	if title == "" {
		title = "Unknown title"
	}
	artist := t.Artist.Name
	if artist == "" {
		artist = "Unknown artist"
	}
	link := t.Link
	if link == "" {
		link = "#"
	}
	return models.Recommendation{
		ID:         t.ID,
		Title:      title,
		Artist:     artist,
		CoverURL:   t.Album.CoverXL,
		PreviewURL: t.Preview,
		Link:       link,
		Duration:   t.Duration,
	}
}
