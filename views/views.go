// Package views holds the page logic of the vibezone client: what each user
// action fetches, what it plays, and what the user sees afterwards. Drawing is
// left to a Presenter supplied by the front end.
package views

import (
	"context"
	"errors"
	"sync"

	"github.com/himanshub16/vibezone/client"
	"github.com/himanshub16/vibezone/models"
	"github.com/himanshub16/vibezone/playback"
)

// Paths the views navigate to.
const (
	HomePath    = "/"
	LoginPath   = "/login"
	ProfilePath = "/profile"
)

// Presenter is the front end the views draw through.
type Presenter interface {
	// ShowMessage replaces the content area with an inline message.
	ShowMessage(msg string)
	Alert(msg string)
	Confirm(question string) bool
	Prompt(question string) (string, bool)
	Navigate(path string)
	Reload()
	// Render redraws the current view after its items changed.
	Render()
	SetBackground(coverURL string)
	ClearBackground()
}

// API is the part of the HTTP client the views use.
type API interface {
	Catalogue(ctx context.Context) (*models.Catalogue, error)
	Recommend(ctx context.Context, mood string) ([]models.Recommendation, error)
	Favorite(ctx context.Context, req models.FavoriteRequest) (*models.ActionReply, error)
	DeleteFavorite(ctx context.Context, favoriteID int64) (*models.ActionReply, error)
	DeleteProfile(ctx context.Context) (*models.ActionReply, error)
	CreateCollection(ctx context.Context, name string) (*models.ActionReply, error)
	DeleteCollection(ctx context.Context, collectionID int64) (*models.ActionReply, error)
	AddToCollection(ctx context.Context, collectionID, favoriteID int64) (*models.ActionReply, error)
	RemoveFromCollection(ctx context.Context, collectionID, favoriteID int64) (*models.ActionReply, error)
	Profile(ctx context.Context) (*models.Profile, error)
}

var _ API = (*client.Client)(nil)

// HandleFactory opens a playable handle for a media URL.
type HandleFactory func(url string) playback.Handle

// Button is a control with a playing and a favorited state.
type Button struct {
	mu        sync.Mutex
	playing   bool
	favorited bool
}

func (b *Button) SetPlaying(playing bool) {
	b.mu.Lock()
	b.playing = playing
	b.mu.Unlock()
}

func (b *Button) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

func (b *Button) SetFavorited() {
	b.mu.Lock()
	b.favorited = true
	b.mu.Unlock()
}

func (b *Button) Favorited() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.favorited
}

// PlayableItem is a rendered track with its play control.
type PlayableItem struct {
	Handle   playback.Handle
	Control  *Button
	CoverArt string
}

func newItem(newHandle HandleFactory, url, cover string) *PlayableItem {
	return &PlayableItem{
		Handle:   newHandle(url),
		Control:  &Button{},
		CoverArt: cover,
	}
}

// stopIfActive stops playback when one of items is the active one.
func stopIfActive(player *playback.Controller, items []*PlayableItem) {
	for _, it := range items {
		if player.IsActive(it.Handle) {
			player.Stop()
			return
		}
	}
}

// closer is implemented by handles that hold downloaded audio.
type closer interface {
	Close()
}

// release stops items the view no longer shows and frees their handles.
func release(player *playback.Controller, items []*PlayableItem) {
	stopIfActive(player, items)
	for _, it := range items {
		if c, ok := it.Handle.(closer); ok {
			c.Close()
		}
	}
}

// alertOrLogin sends the user to log in when err asks for it and alerts
// fallback otherwise.
func alertOrLogin(ui Presenter, err error, fallback string) {
	if errors.Is(err, client.ErrLoginRequired) {
		ui.Navigate(LoginPath)
		return
	}
	ui.Alert(fallback)
}
