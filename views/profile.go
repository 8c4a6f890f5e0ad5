package views

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/himanshub16/vibezone/client"
	"github.com/himanshub16/vibezone/models"
)

// DefaultExitDelay matches the fade-out of a removed favorite card.
const DefaultExitDelay = 500 * time.Millisecond

const (
	confirmDeleteFavorite   = "Remove this track from your favorites?"
	confirmDeleteProfile    = "Delete your profile? All favorites and collections will be lost."
	confirmDeleteCollection = "Delete this collection?"
	promptCollectionName    = "Name of the new collection:"
	selectTrackMessage      = "Select a track to add."
)

// FavoriteCard is a favorite on the profile page. Leaving is set while its
// exit animation runs.
type FavoriteCard struct {
	Favorite models.Favorite
	Leaving  bool
}

// ProfileView shows the user's favorites and collections and carries the
// actions that change them.
type ProfileView struct {
	api API
	ui  Presenter
	log zerolog.Logger

	// ExitDelay is how long a removed card stays visible.
	ExitDelay time.Duration

	mu          sync.Mutex
	user        models.User
	cards       []*FavoriteCard
	collections []models.Collection
}

func NewProfileView(api API, ui Presenter, log zerolog.Logger) *ProfileView {
	return &ProfileView{
		api:       api,
		ui:        ui,
		log:       log,
		ExitDelay: DefaultExitDelay,
	}
}

// Load fetches the profile. Without a session the user is sent to log in.
func (v *ProfileView) Load(ctx context.Context) error {
	p, err := v.api.Profile(ctx)
	if err != nil {
		if errors.Is(err, client.ErrLoginRequired) {
			v.ui.Navigate(LoginPath)
			return err
		}
		v.log.Error().Err(err).Msg("failed to load profile")
		v.ui.ShowMessage("Could not load your profile.")
		return err
	}

	cards := make([]*FavoriteCard, 0, len(p.Favorites))
	for _, f := range p.Favorites {
		cards = append(cards, &FavoriteCard{Favorite: f})
	}

	v.mu.Lock()
	v.user = p.User
	v.cards = cards
	v.collections = p.Collections
	v.mu.Unlock()

	v.ui.Render()
	return nil
}

func (v *ProfileView) User() models.User {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.user
}

func (v *ProfileView) Favorites() []*FavoriteCard {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cards
}

func (v *ProfileView) Collections() []models.Collection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.collections
}

// DeleteFavorite removes a favorite after the user confirms. Its card fades
// out for ExitDelay and is then dropped.
func (v *ProfileView) DeleteFavorite(ctx context.Context, favoriteID int64) {
	if !v.ui.Confirm(confirmDeleteFavorite) {
		return
	}
	if _, err := v.api.DeleteFavorite(ctx, favoriteID); err != nil {
		v.log.Error().Err(err).Int64("favorite_id", favoriteID).Msg("failed to delete favorite")
		alertOrLogin(v.ui, err, "Could not remove the favorite.")
		return
	}

	v.mu.Lock()
	for _, c := range v.cards {
		if c.Favorite.ID == favoriteID {
			c.Leaving = true
		}
	}
	v.mu.Unlock()
	v.ui.Render()

	time.AfterFunc(v.ExitDelay, func() {
		v.mu.Lock()
		kept := make([]*FavoriteCard, 0, len(v.cards))
		for _, c := range v.cards {
			if c.Favorite.ID != favoriteID {
				kept = append(kept, c)
			}
		}
		v.cards = kept
		v.mu.Unlock()
		v.ui.Render()
	})
}

// DeleteProfile deletes the account after the user confirms and goes home.
func (v *ProfileView) DeleteProfile(ctx context.Context) {
	if !v.ui.Confirm(confirmDeleteProfile) {
		return
	}
	reply, err := v.api.DeleteProfile(ctx)
	if err != nil {
		v.log.Error().Err(err).Msg("failed to delete profile")
		alertOrLogin(v.ui, err, "Could not delete the profile.")
		return
	}
	v.ui.Alert(reply.Message)
	v.ui.Navigate(HomePath)
}

// CreateCollection asks for a name and creates an empty collection.
func (v *ProfileView) CreateCollection(ctx context.Context) {
	name, ok := v.ui.Prompt(promptCollectionName)
	if !ok || name == "" {
		return
	}
	reply, err := v.api.CreateCollection(ctx, name)
	if err != nil {
		v.log.Error().Err(err).Str("name", name).Msg("failed to create collection")
		alertOrLogin(v.ui, err, "Could not create the collection.")
		return
	}
	v.ui.Alert(fmt.Sprintf("Collection %q created!", reply.Name))
	v.ui.Reload()
}

// AddToCollection adds the selected favorite to a collection. A zero
// favoriteID means nothing is selected.
func (v *ProfileView) AddToCollection(ctx context.Context, collectionID, favoriteID int64) {
	if favoriteID == 0 {
		v.ui.Alert(selectTrackMessage)
		return
	}
	reply, err := v.api.AddToCollection(ctx, collectionID, favoriteID)
	v.finishCollectionAction(reply, err, "Could not add to the collection.")
}

func (v *ProfileView) RemoveFromCollection(ctx context.Context, collectionID, favoriteID int64) {
	reply, err := v.api.RemoveFromCollection(ctx, collectionID, favoriteID)
	v.finishCollectionAction(reply, err, "Could not remove from the collection.")
}

func (v *ProfileView) DeleteCollection(ctx context.Context, collectionID int64) {
	if !v.ui.Confirm(confirmDeleteCollection) {
		return
	}
	reply, err := v.api.DeleteCollection(ctx, collectionID)
	v.finishCollectionAction(reply, err, "Could not delete the collection.")
}

func (v *ProfileView) finishCollectionAction(reply *models.ActionReply, err error, fallback string) {
	if err != nil {
		v.log.Error().Err(err).Msg(fallback)
		alertOrLogin(v.ui, err, fallback)
		return
	}
	v.ui.Alert(reply.Message)
	v.ui.Reload()
}
