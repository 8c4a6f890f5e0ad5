// Command listener is a terminal front end for a vibezone server. It plays
// station tracks and mood recommendations through the local sound device,
// one at a time.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/himanshub16/vibezone/audio"
	"github.com/himanshub16/vibezone/client"
	"github.com/himanshub16/vibezone/models"
	"github.com/himanshub16/vibezone/playback"
	"github.com/himanshub16/vibezone/views"
)

const (
	modeStations = "stations"
	modeMoods    = "moods"
	modeProfile  = "profile"
)

const usage = "j/k=move  space=play/pause  f=favorite  m=mood  d=delete  c=collection  a=add  r=remove  1-3=page  q=quit"

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:3000", "vibezone server URL")
		mode      = flag.String("mode", modeStations, "start page: stations, moods or profile")
		mood      = flag.String("mood", "", "mood to load on the moods page")
		user      = flag.String("user", "", "log in as this spotify id (server needs DEV_LOGIN=true)")
		logLevel  = flag.String("log-level", "warn", "log level")
		logFile   = flag.String("log-file", "", "write logs to this file instead of stderr")
	)
	flag.Parse()

	log, closeLog, err := newLogger(*logLevel, *logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(*serverURL, *mode, *mood, *user, log); err != nil {
		log.Error().Err(err).Msg("listener stopped")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(level, path string) (zerolog.Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	var (
		w       io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		closeFn           = func() {}
	)
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		w, closeFn = f, func() { f.Close() }
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), closeFn, nil
}

func run(serverURL, mode, mood, user string, log zerolog.Logger) error {
	api, err := client.New(serverURL, log.With().Str("component", "client").Logger())
	if err != nil {
		return err
	}
	ctx := context.Background()
	if user != "" {
		if _, err := api.Login(ctx, models.User{SpotifyID: user}); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	playback.SetLogger(log.With().Str("component", "playback").Logger())
	spk := audio.NewSpeaker(audio.DefaultSampleRate)
	defer spk.Close()

	a := newApp(api, spk, newTerminal(), log)
	return a.run(ctx, mode, mood)
}

// app switches between the pages and maps keys to view actions.
type app struct {
	api *client.Client
	ui  *terminal
	log zerolog.Logger

	stations *views.StationView
	moods    *views.MoodView
	profile  *views.ProfileView

	mu       sync.Mutex
	mode     string
	selected int
	tracks   map[*ownedTrack]struct{}

	drawMu sync.Mutex
}

// ownedTrack is a track the app keeps until a view releases it. A natural
// end redraws the screen so the row stops showing as playing.
type ownedTrack struct {
	*audio.Track
	app *app
}

func (t *ownedTrack) OnFinished(cb func()) {
	t.Track.OnFinished(func() {
		cb()
		t.app.render()
	})
}

func (t *ownedTrack) Close() {
	t.app.mu.Lock()
	delete(t.app.tracks, t)
	t.app.mu.Unlock()
	t.Track.Close()
}

func newApp(api *client.Client, spk audio.Output, ui *terminal, log zerolog.Logger) *app {
	a := &app{api: api, ui: ui, log: log, tracks: make(map[*ownedTrack]struct{})}
	player := playback.Default()
	a.stations = views.NewStationView(api, ui, player, a.newHandle(spk), log)
	a.moods = views.NewMoodView(api, ui, player, a.newHandle(spk), log)
	a.profile = views.NewProfileView(api, ui, log)

	ui.render = a.render
	ui.reload = func() { a.profile.Load(context.Background()) }
	ui.navigate = a.navigate
	return a
}

// newHandle opens tracks lazily; nothing is downloaded before the first play.
func (a *app) newHandle(spk audio.Output) views.HandleFactory {
	return func(url string) playback.Handle {
		return a.own(audio.NewTrack(spk, a.api.HTTPClient(), a.api.Resolve(url), a.log))
	}
}

func (a *app) own(tr *audio.Track) *ownedTrack {
	t := &ownedTrack{Track: tr, app: a}
	a.mu.Lock()
	a.tracks[t] = struct{}{}
	a.mu.Unlock()
	return t
}

func (a *app) run(ctx context.Context, mode, mood string) error {
	if err := a.ui.makeRaw(); err != nil {
		return err
	}
	defer a.ui.restore()
	defer a.close()

	a.open(ctx, mode)
	if mode == modeMoods && mood != "" {
		a.moods.Recommend(ctx, mood)
	}

	for {
		key, err := a.ui.readKey()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if key == 'q' || key == 3 {
			return nil
		}
		a.handleKey(ctx, key)
	}
}

func (a *app) close() {
	a.moods.Close()
	a.stations.Close()
	playback.Default().Stop()

	a.mu.Lock()
	left := make([]*ownedTrack, 0, len(a.tracks))
	for t := range a.tracks {
		left = append(left, t)
	}
	a.mu.Unlock()
	for _, t := range left {
		t.Close()
	}
}

func (a *app) open(ctx context.Context, mode string) {
	a.mu.Lock()
	a.mode = mode
	a.selected = 0
	a.mu.Unlock()

	switch mode {
	case modeMoods:
		a.render()
	case modeProfile:
		a.profile.Load(ctx)
	default:
		if a.stations.Load(ctx) == nil {
			a.render()
		}
	}
}

func (a *app) navigate(path string) {
	switch path {
	case views.LoginPath:
		a.ui.Alert(fmt.Sprintf("Log in at %s, or restart with -user.", a.api.Resolve(views.LoginPath)))
	case views.ProfilePath:
		a.open(context.Background(), modeProfile)
	default:
		a.open(context.Background(), modeStations)
	}
}

func (a *app) handleKey(ctx context.Context, key byte) {
	a.mu.Lock()
	mode, sel := a.mode, a.selected
	a.mu.Unlock()
	a.ui.clearNotice()

	switch key {
	case '1':
		a.open(ctx, modeStations)
	case '2':
		a.open(ctx, modeMoods)
	case '3':
		a.open(ctx, modeProfile)
	case 'j':
		a.move(1)
		a.render()
	case 'k':
		a.move(-1)
		a.render()
	case ' ':
		a.toggle(mode, sel)
		a.render()
	case 'm':
		if mood, ok := a.ui.Prompt("Mood:"); ok {
			a.open(ctx, modeMoods)
			a.moods.Recommend(ctx, mood)
		}
	case 'f':
		if mode == modeMoods {
			a.moods.Favorite(ctx, sel)
		}
	case 'd':
		if fav := a.selectedFavorite(mode, sel); fav != nil {
			a.profile.DeleteFavorite(ctx, fav.ID)
		}
	case 'D':
		if mode == modeProfile {
			a.profile.DeleteProfile(ctx)
		}
	case 'c':
		if mode == modeProfile {
			a.profile.CreateCollection(ctx)
		}
	case 'a', 'r':
		a.collectionAction(ctx, key, mode, sel)
	case 'x':
		if id, ok := a.promptID("Collection to delete:"); ok && mode == modeProfile {
			a.profile.DeleteCollection(ctx, id)
		}
	}
}

func (a *app) collectionAction(ctx context.Context, key byte, mode string, sel int) {
	if mode != modeProfile {
		return
	}
	var favoriteID int64
	if fav := a.selectedFavorite(mode, sel); fav != nil {
		favoriteID = fav.ID
	}
	id, ok := a.promptID("Collection id:")
	if !ok {
		return
	}
	if key == 'a' {
		a.profile.AddToCollection(ctx, id, favoriteID)
		return
	}
	a.profile.RemoveFromCollection(ctx, id, favoriteID)
}

func (a *app) promptID(question string) (int64, bool) {
	answer, ok := a.ui.Prompt(question)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(answer, 10, 64)
	if err != nil {
		a.ui.Alert("Not a number: " + answer)
		return 0, false
	}
	return id, true
}

func (a *app) selectedFavorite(mode string, sel int) *models.Favorite {
	if mode != modeProfile {
		return nil
	}
	cards := a.profile.Favorites()
	if sel < 0 || sel >= len(cards) {
		return nil
	}
	return &cards[sel].Favorite
}

func (a *app) toggle(mode string, sel int) {
	switch mode {
	case modeStations:
		i := 0
		for s, sec := range a.stations.Sections() {
			for tr := range sec.Tracks {
				if i == sel {
					a.stations.Toggle(s, tr)
					return
				}
				i++
			}
		}
	case modeMoods:
		a.moods.TogglePlay(sel)
	}
}

func (a *app) rows() int {
	a.mu.Lock()
	mode := a.mode
	a.mu.Unlock()

	switch mode {
	case modeStations:
		n := 0
		for _, sec := range a.stations.Sections() {
			n += len(sec.Tracks)
		}
		return n
	case modeMoods:
		return len(a.moods.Cards())
	default:
		return len(a.profile.Favorites())
	}
}

func (a *app) move(delta int) {
	n := a.rows()
	a.mu.Lock()
	defer a.mu.Unlock()
	if n == 0 {
		a.selected = 0
		return
	}
	a.selected = (a.selected + delta + n) % n
}

// render may run on the audio goroutine when a track ends.
func (a *app) render() {
	a.drawMu.Lock()
	defer a.drawMu.Unlock()

	a.mu.Lock()
	mode, sel := a.mode, a.selected
	a.mu.Unlock()

	a.ui.clear()
	a.ui.println("vibezone - %s", mode)
	a.ui.println(usage)
	if bg := a.ui.Background(); bg != "" {
		a.ui.println("now showing %s", bg)
	}
	if msg := a.ui.Notice(); msg != "" {
		a.ui.println("! %s", msg)
	}
	a.ui.println("")

	marker := func(i int) string {
		if i == sel {
			return ">"
		}
		return " "
	}
	playing := func(b *views.Button) string {
		if b.Playing() {
			return "||"
		}
		return "> "
	}

	switch mode {
	case modeStations:
		i := 0
		for _, sec := range a.stations.Sections() {
			a.ui.println("%s with %s", sec.Station.Name, sec.Station.DJ)
			for n, it := range sec.Tracks {
				tr := sec.Station.Tracks[n]
				a.ui.println("%s %s %s - %s", marker(i), playing(it.Control), tr.Title, tr.Artist)
				i++
			}
		}
	case modeMoods:
		if m := a.moods.Mood(); m != "" {
			a.ui.println("mood: %s", m)
		}
		for i, c := range a.moods.Cards() {
			fav := " "
			if c.FavoriteButton.Favorited() {
				fav = "*"
			}
			a.ui.println("%s %s %s %s - %s", marker(i), playing(c.Control), fav, c.Recommendation.Title, c.Recommendation.Artist)
		}
	case modeProfile:
		a.ui.println("%s", a.profile.User().DisplayName)
		for i, c := range a.profile.Favorites() {
			leaving := ""
			if c.Leaving {
				leaving = " (removing)"
			}
			a.ui.println("%s #%d %s - %s [%s]%s", marker(i), c.Favorite.ID, c.Favorite.Title, c.Favorite.Artist, c.Favorite.Mood, leaving)
		}
		for _, col := range a.profile.Collections() {
			a.ui.println("collection #%d %s: %d tracks", col.ID, col.Name, len(col.Items))
		}
	}
}
