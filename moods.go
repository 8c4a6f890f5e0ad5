package main

import "sort"

// moodKeywords maps each mood to the playlist searches it picks from.
var moodKeywords = map[string][]string{
	"happy":   {"happy hits", "feel good", "happy pop", "good vibes"},
	"sad":     {"sad songs", "heartbreak", "piano sad", "acoustic sad", "melancholia"},
	"party":   {"party hits", "dance floor", "club hits", "house music"},
	"focus":   {"lo-fi beats", "study music", "classical focus", "ambient"},
	"chill":   {"chill hits", "relax", "acoustic chill", "sunday morning"},
	"workout": {"workout hits", "gym motivation", "cardio", "power workout"},
	"romance": {"romantic songs", "love hits", "date night", "r&b love"},
	"sleep":   {"sleep music", "deep sleep", "calm piano", "delta waves"},
	"gaming":  {"gaming music", "epic soundtrack", "synthwave", "cyberpunk music"},
	"travel":  {"road trip", "driving hits", "car songs", "travel vibes"},
	"retro":   {"80s hits", "90s hits", "oldies but goldies", "flashback"},
	"summer":  {"summer hits", "beach vibes", "tropical house", "sunny songs"},
	"rock":    {"rock classics", "hard rock", "alternative rock", "indie rock", "rock anthems"},
}

// Moods returns the known moods in alphabetical order.
func Moods() []string {
	moods := make([]string, 0, len(moodKeywords))
	for m := range moodKeywords {
		moods = append(moods, m)
	}
	sort.Strings(moods)
	return moods
}
