package views

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/himanshub16/vibezone/client"
	"github.com/himanshub16/vibezone/models"
	"github.com/himanshub16/vibezone/playback"
)

const (
	loadingMessage    = "Building your visual playlist..."
	noTracksMessage   = "We couldn't find any tracks."
	fetchErrorMessage = "Error fetching tracks."
	favoriteFailed    = "Could not favorite the track. Try again."
)

// Card is one mood recommendation with its play and favorite controls.
type Card struct {
	*PlayableItem
	Recommendation models.Recommendation
	Mood           string
	FavoriteButton *Button
}

// MoodView shows recommendations for the mood the user picked last.
type MoodView struct {
	api       API
	ui        Presenter
	player    *playback.Controller
	newHandle HandleFactory
	log       zerolog.Logger

	mu    sync.Mutex
	seq   uint64
	mood  string
	cards []*Card
}

func NewMoodView(api API, ui Presenter, player *playback.Controller, newHandle HandleFactory, log zerolog.Logger) *MoodView {
	return &MoodView{
		api:       api,
		ui:        ui,
		player:    player,
		newHandle: newHandle,
		log:       log,
	}
}

// Recommend fetches tracks for mood and replaces the cards. When a newer
// request was made before this one returned, the reply is dropped.
func (v *MoodView) Recommend(ctx context.Context, mood string) {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	v.ui.ShowMessage(loadingMessage)
	recs, err := v.api.Recommend(ctx, mood)

	v.mu.Lock()
	if seq != v.seq {
		v.mu.Unlock()
		v.log.Debug().Str("mood", mood).Msg("dropping superseded recommendation")
		return
	}
	old := v.cards
	if err != nil {
		v.cards = nil
	} else {
		v.cards = v.buildCards(mood, recs)
		v.mood = mood
	}
	v.mu.Unlock()

	release(v.player, items(old))

	if err != nil {
		v.log.Error().Err(err).Str("mood", mood).Msg("failed to get recommendations")
		v.ui.ShowMessage(recommendErrorMessage(err))
		return
	}
	v.ui.Render()
}

func recommendErrorMessage(err error) string {
	if msg, ok := client.Message(err); ok {
		return msg
	}
	if errors.Is(err, client.ErrTooFewTracks) {
		return noTracksMessage
	}
	return fetchErrorMessage
}

func (v *MoodView) buildCards(mood string, recs []models.Recommendation) []*Card {
	cards := make([]*Card, 0, len(recs))
	for _, rec := range recs {
		cards = append(cards, &Card{
			PlayableItem:   newItem(v.newHandle, rec.PreviewURL, rec.CoverURL),
			Recommendation: rec,
			Mood:           mood,
			FavoriteButton: &Button{},
		})
	}
	return cards
}

func (v *MoodView) Cards() []*Card {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cards
}

func (v *MoodView) Mood() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mood
}

// TogglePlay plays or pauses card i. While it plays the card's cover is the
// page background.
func (v *MoodView) TogglePlay(i int) {
	card := v.card(i)
	if card == nil {
		return
	}

	var onActivate playback.Hook
	if card.CoverArt != "" {
		cover := card.CoverArt
		onActivate = func() { v.ui.SetBackground(cover) }
	}
	v.player.Toggle(card.Handle, card.Control, onActivate, v.ui.ClearBackground)
}

// Favorite saves card i to the user's favorites.
func (v *MoodView) Favorite(ctx context.Context, i int) {
	card := v.card(i)
	if card == nil {
		return
	}

	_, err := v.api.Favorite(ctx, models.FavoriteRequest{
		Title:    card.Recommendation.Title,
		Artist:   card.Recommendation.Artist,
		CoverURL: card.Recommendation.CoverURL,
		Mood:     card.Mood,
	})
	if err != nil {
		if !errors.Is(err, client.ErrLoginRequired) {
			v.log.Error().Err(err).Str("title", card.Recommendation.Title).Msg("failed to favorite")
		}
		alertOrLogin(v.ui, err, favoriteFailed)
		return
	}

	card.FavoriteButton.SetFavorited()
	v.log.Info().Str("title", card.Recommendation.Title).Msg("track favorited")
	v.ui.Render()
}

func (v *MoodView) card(i int) *Card {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i < 0 || i >= len(v.cards) {
		return nil
	}
	return v.cards[i]
}

// Close stops playback of any card and frees the cards' handles.
func (v *MoodView) Close() {
	v.mu.Lock()
	cards := v.cards
	v.cards = nil
	v.seq++
	v.mu.Unlock()
	release(v.player, items(cards))
}

func items(cards []*Card) []*PlayableItem {
	out := make([]*PlayableItem, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.PlayableItem)
	}
	return out
}
