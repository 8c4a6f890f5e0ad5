package views

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/himanshub16/vibezone/models"
	"github.com/himanshub16/vibezone/playback"
)

const catalogueErrorMessage = "Could not load the station data. Check stations.json."

// StationSection is one station with its playable track list.
type StationSection struct {
	Station models.Station
	Tracks  []*PlayableItem
}

// StationView lists every station of the catalogue. The catalogue is loaded
// once and read-only afterwards.
type StationView struct {
	api       API
	ui        Presenter
	player    *playback.Controller
	newHandle HandleFactory
	log       zerolog.Logger

	mu       sync.Mutex
	sections []*StationSection
	loaded   bool
}

func NewStationView(api API, ui Presenter, player *playback.Controller, newHandle HandleFactory, log zerolog.Logger) *StationView {
	return &StationView{
		api:       api,
		ui:        ui,
		player:    player,
		newHandle: newHandle,
		log:       log,
	}
}

// Load fetches the catalogue on first call and builds the track lists.
func (v *StationView) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.loaded {
		v.mu.Unlock()
		return nil
	}
	v.mu.Unlock()

	cat, err := v.api.Catalogue(ctx)
	if err != nil {
		v.log.Error().Err(err).Msg("failed to load station catalogue")
		v.ui.ShowMessage(catalogueErrorMessage)
		return err
	}

	sections := make([]*StationSection, 0, len(cat.Stations))
	for _, st := range cat.Stations {
		sec := &StationSection{Station: st, Tracks: make([]*PlayableItem, 0, len(st.Tracks))}
		for _, tr := range st.Tracks {
			sec.Tracks = append(sec.Tracks, newItem(v.newHandle, tr.URL, ""))
		}
		sections = append(sections, sec)
	}

	v.mu.Lock()
	v.sections = sections
	v.loaded = true
	v.mu.Unlock()

	v.ui.Render()
	return nil
}

func (v *StationView) Sections() []*StationSection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sections
}

// Toggle plays or pauses a track of a station. Out of range positions are
// ignored.
func (v *StationView) Toggle(station, track int) {
	it := v.item(station, track)
	if it == nil {
		return
	}
	v.player.Toggle(it.Handle, it.Control, nil, nil)
}

func (v *StationView) item(station, track int) *PlayableItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	if station < 0 || station >= len(v.sections) {
		return nil
	}
	tracks := v.sections[station].Tracks
	if track < 0 || track >= len(tracks) {
		return nil
	}
	return tracks[track]
}

// Close stops playback of any station track and frees the track handles.
// A later Load fetches the catalogue again.
func (v *StationView) Close() {
	v.mu.Lock()
	var items []*PlayableItem
	for _, sec := range v.sections {
		items = append(items, sec.Tracks...)
	}
	v.sections = nil
	v.loaded = false
	v.mu.Unlock()
	release(v.player, items)
}
