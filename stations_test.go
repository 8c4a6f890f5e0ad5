package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogueLoadedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, os.WriteFile(path, []byte(testStations), 0644))
	s := NewStationCatalogue(path, zerolog.Nop())

	cat, err := s.Get()
	require.NoError(t, err)
	require.Len(t, cat.Stations, 1)

	require.NoError(t, os.WriteFile(path, []byte(`{"stations": []}`), 0644))
	again, err := s.Get()
	require.NoError(t, err)
	assert.Same(t, cat, again)
}

func TestCatalogueErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"stations": [`), 0644))
	noID := filepath.Join(dir, "noid.json")
	require.NoError(t, os.WriteFile(noID, []byte(`{"stations": [{"name": "x"}]}`), 0644))

	for _, path := range []string{filepath.Join(dir, "missing.json"), bad, noID} {
		_, err := NewStationCatalogue(path, zerolog.Nop()).Get()
		assert.Error(t, err, path)
	}
}

func TestShippedCatalogue(t *testing.T) {
	cat, err := loadCatalogue(filepath.Join("static", "data", "stations.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Stations)
	for _, st := range cat.Stations {
		assert.NotEmpty(t, st.Tracks, st.ID)
	}
}

func TestMoodsSorted(t *testing.T) {
	moods := Moods()
	assert.Len(t, moods, 13)
	assert.Equal(t, "chill", moods[0])
	assert.IsIncreasing(t, moods)
}
