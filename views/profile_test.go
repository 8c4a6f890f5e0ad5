package views

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileBody = `{"user": {"id": 1, "display_name": "Ana"},
	"favorites": [
		{"id": 9, "title": "Nine", "artist": "X", "cover_url": "9.jpg", "mood": "sad"},
		{"id": 4, "title": "Four", "artist": "Y", "cover_url": "4.jpg", "mood": "happy"}],
	"collections": [{"id": 2, "name": "Mix", "items": [{"id": 4, "title": "Four"}]}]}`

func loadedProfile(t *testing.T, ui *fakePresenter, h http.HandlerFunc) *ProfileView {
	t.Helper()
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/profile" {
			w.Write([]byte(profileBody))
			return
		}
		h(w, r)
	})
	v := NewProfileView(api, ui, zerolog.Nop())
	require.NoError(t, v.Load(context.Background()))
	return v
}

func TestProfileLoad(t *testing.T) {
	ui := &fakePresenter{}
	v := loadedProfile(t, ui, nil)

	assert.Equal(t, "Ana", v.User().DisplayName)
	require.Len(t, v.Favorites(), 2)
	assert.Equal(t, int64(9), v.Favorites()[0].Favorite.ID)
	require.Len(t, v.Collections(), 1)
	assert.Equal(t, "Four", v.Collections()[0].Items[0].Title)
}

func TestProfileLoadWithoutSession(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status": "login_required"}`))
	})
	ui := &fakePresenter{}
	v := NewProfileView(api, ui, zerolog.Nop())

	assert.Error(t, v.Load(context.Background()))
	assert.Equal(t, []string{LoginPath}, ui.navigated)
}

func TestDeleteFavoriteRemovesCardAfterExit(t *testing.T) {
	var (
		mu   sync.Mutex
		path string
	)
	ui := &fakePresenter{confirm: true}
	v := loadedProfile(t, ui, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		path = r.URL.Path
		mu.Unlock()
		w.Write([]byte(`{"status": "success", "message": "Removed from favorites."}`))
	})
	v.ExitDelay = 20 * time.Millisecond

	v.DeleteFavorite(context.Background(), 9)

	cards := v.Favorites()
	require.Len(t, cards, 2)
	assert.True(t, cards[0].Leaving)
	assert.False(t, cards[1].Leaving)

	assert.Eventually(t, func() bool {
		return len(v.Favorites()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(4), v.Favorites()[0].Favorite.ID)
	assert.Empty(t, ui.alerts)
	mu.Lock()
	assert.Equal(t, "/api/favorite/delete/9", path)
	mu.Unlock()
}

func TestDeleteFavoriteNotConfirmed(t *testing.T) {
	ui := &fakePresenter{confirm: false}
	v := loadedProfile(t, ui, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	v.DeleteFavorite(context.Background(), 9)
	assert.Len(t, v.Favorites(), 2)
}

func TestDeleteFavoriteFailureAlerts(t *testing.T) {
	ui := &fakePresenter{confirm: true}
	v := loadedProfile(t, ui, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "Not authorized"}`))
	})

	v.DeleteFavorite(context.Background(), 9)

	assert.Equal(t, []string{"Could not remove the favorite."}, ui.alerts)
	assert.False(t, v.Favorites()[0].Leaving)
}

func TestDeleteProfileGoesHome(t *testing.T) {
	ui := &fakePresenter{confirm: true}
	v := loadedProfile(t, ui, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "message": "Profile deleted."}`))
	})

	v.DeleteProfile(context.Background())

	assert.Equal(t, []string{"Profile deleted."}, ui.alerts)
	assert.Equal(t, []string{HomePath}, ui.navigated)
}

func TestCreateCollection(t *testing.T) {
	ui := &fakePresenter{prompt: "Road trip"}
	v := loadedProfile(t, ui, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "collection_id": 3, "name": "Road trip"}`))
	})

	v.CreateCollection(context.Background())

	assert.Equal(t, []string{`Collection "Road trip" created!`}, ui.alerts)
	assert.Equal(t, 1, ui.reloads)
}

func TestCreateCollectionCancelled(t *testing.T) {
	ui := &fakePresenter{}
	v := loadedProfile(t, ui, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	v.CreateCollection(context.Background())
	assert.Empty(t, ui.alerts)
	assert.Zero(t, ui.reloads)
}

func TestAddToCollectionNeedsSelection(t *testing.T) {
	ui := &fakePresenter{}
	v := loadedProfile(t, ui, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	v.AddToCollection(context.Background(), 2, 0)
	assert.Equal(t, []string{selectTrackMessage}, ui.alerts)
}

func TestCollectionActions(t *testing.T) {
	ui := &fakePresenter{confirm: true}
	v := loadedProfile(t, ui, func(w http.ResponseWriter, r *http.Request) {
		msg := strings.TrimPrefix(r.URL.Path, "/api/")
		w.Write([]byte(`{"status": "success", "message": "` + msg + `"}`))
	})
	ctx := context.Background()

	v.AddToCollection(ctx, 2, 9)
	v.RemoveFromCollection(ctx, 2, 4)
	v.DeleteCollection(ctx, 2)

	assert.Equal(t, []string{"add_to_collection", "remove_from_collection", "delete_collection/2"}, ui.alerts)
	assert.Equal(t, 3, ui.reloads)
}

func TestCollectionActionLoginRequired(t *testing.T) {
	ui := &fakePresenter{}
	v := loadedProfile(t, ui, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status": "login_required"}`))
	})

	v.RemoveFromCollection(context.Background(), 2, 4)

	assert.Empty(t, ui.alerts)
	assert.Equal(t, []string{LoginPath}, ui.navigated)
}

func TestCollectionActionFailure(t *testing.T) {
	ui := &fakePresenter{}
	v := loadedProfile(t, ui, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Track already in collection"}`))
	})

	v.AddToCollection(context.Background(), 2, 4)

	assert.Equal(t, []string{"Could not add to the collection."}, ui.alerts)
	assert.Zero(t, ui.reloads)
}
