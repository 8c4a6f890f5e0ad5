package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/himanshub16/vibezone/models"
)

// StationCatalogue is the station listing, read from disk on first use and
// shared read-only afterwards.
type StationCatalogue struct {
	path string
	log  zerolog.Logger

	once sync.Once
	cat  *models.Catalogue
	err  error
}

func NewStationCatalogue(path string, log zerolog.Logger) *StationCatalogue {
	return &StationCatalogue{path: path, log: log}
}

func (s *StationCatalogue) Get() (*models.Catalogue, error) {
	s.once.Do(func() {
		s.cat, s.err = loadCatalogue(s.path)
		if s.err != nil {
			s.log.Error().Err(s.err).Str("path", s.path).Msg("failed to load stations")
			return
		}
		s.log.Info().Int("stations", len(s.cat.Stations)).Msg("stations loaded")
	})
	return s.cat, s.err
}

func loadCatalogue(path string) (*models.Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cat := &models.Catalogue{}
	if err := json.Unmarshal(data, cat); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, st := range cat.Stations {
		if st.ID == "" {
			return nil, fmt.Errorf("parse %s: station %d has no id", path, i)
		}
	}
	return cat, nil
}
