package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDeezer serves playlist search and tracklists. Every playlist has
// trackCount tracks unless noTracklist is set.
type fakeDeezer struct {
	*httptest.Server

	mu          sync.Mutex
	queries     []string
	limits      []string
	playlists   int
	trackCount  int
	noTracklist bool
	fail        bool
}

func newFakeDeezer(t *testing.T, playlists, trackCount int) *fakeDeezer {
	t.Helper()
	f := &fakeDeezer{playlists: playlists, trackCount: trackCount}
	mux := http.NewServeMux()
	mux.HandleFunc("/search/playlist", f.search)
	mux.HandleFunc("/playlist/", f.tracks)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeDeezer) set(change func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	change()
}

func (f *fakeDeezer) search(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, r.URL.Query().Get("q"))
	f.limits = append(f.limits, r.URL.Query().Get("limit"))
	if f.fail {
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	data := make([]map[string]interface{}, 0, f.playlists)
	for i := 0; i < f.playlists; i++ {
		p := map[string]interface{}{"id": i + 1, "title": fmt.Sprintf("List %d", i+1)}
		if !f.noTracklist {
			p["tracklist"] = fmt.Sprintf("%s/playlist/%d/tracks", f.URL, i+1)
		}
		data = append(data, p)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func (f *fakeDeezer) tracks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, r.URL.Query().Get("limit"))

	data := make([]map[string]interface{}, 0, f.trackCount)
	for i := 0; i < f.trackCount; i++ {
		data = append(data, map[string]interface{}{
			"id":          i + 1,
			"title":       fmt.Sprintf("Song %d (Remastered)", i+1),
			"title_short": fmt.Sprintf("Song %d", i+1),
			"link":        fmt.Sprintf("https://www.deezer.com/track/%d", i+1),
			"duration":    200,
			"preview":     fmt.Sprintf("https://cdn.example.com/%d.mp3", i+1),
			"artist":      map[string]string{"name": "Band"},
			"album":       map[string]string{"cover_xl": fmt.Sprintf("https://img.example.com/%d.jpg", i+1)},
		})
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func TestSearchPlaylists(t *testing.T) {
	f := newFakeDeezer(t, 3, 0)
	d := NewDeezerClient(f.URL)

	lists, err := d.SearchPlaylists(context.Background(), "good vibes", playlistSearchLimit)
	require.NoError(t, err)
	assert.Len(t, lists, 3)
	assert.Equal(t, f.URL+"/playlist/1/tracks", lists[0].Tracklist)
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []string{"good vibes"}, f.queries)
	assert.Equal(t, []string{"75"}, f.limits)
}

func TestTracklistKeepsQuery(t *testing.T) {
	f := newFakeDeezer(t, 1, 7)
	d := NewDeezerClient(f.URL)

	tracks, err := d.Tracklist(context.Background(), f.URL+"/playlist/1/tracks?index=0", tracklistLimit)
	require.NoError(t, err)
	assert.Len(t, tracks, 7)
	assert.Equal(t, "Song 1", tracks[0].TitleShort)
	assert.Equal(t, "Band", tracks[0].Artist.Name)
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []string{"100"}, f.limits)
}

func TestDeezerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/playlist" {
			w.Write([]byte(`{"error": {"type": "DataException", "message": "no data", "code": 800}}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	d := NewDeezerClient(srv.URL)

	_, err := d.SearchPlaylists(context.Background(), "x", 1)
	assert.ErrorContains(t, err, "no data")
	_, err = d.Tracklist(context.Background(), srv.URL+"/playlist/1/tracks", 1)
	assert.ErrorContains(t, err, "unexpected status")
}

func TestToRecommendationDefaults(t *testing.T) {
	rec := toRecommendation(deezerTrack{ID: 4, Title: "Full title"})
	assert.Equal(t, "Full title", rec.Title)
	assert.Equal(t, "Unknown artist", rec.Artist)
	assert.Equal(t, "#", rec.Link)

	rec = toRecommendation(deezerTrack{})
	assert.Equal(t, "Unknown title", rec.Title)
}
