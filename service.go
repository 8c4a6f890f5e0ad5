package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/himanshub16/vibezone/models"
)

const recommendationCount = 5

// errAlreadyInCollection and alreadyFavorited also answer an insert that
// lost a race with an identical one.
var errAlreadyInCollection = newAPIError(http.StatusBadRequest, "Track is already in the collection")

func alreadyFavorited() *models.ActionReply {
	return &models.ActionReply{
		Status:  models.StatusAlreadyFavorited,
		Message: "Track is already in your favorites.",
	}
}

type Service interface {
	Recommend(ctx context.Context, mood string) ([]models.Recommendation, error)
	LoginUser(ctx context.Context, user models.User) (*models.User, error)
	Profile(ctx context.Context, userID int64) (*models.Profile, error)
	AddFavorite(ctx context.Context, userID int64, req models.FavoriteRequest) (*models.ActionReply, error)
	DeleteFavorite(ctx context.Context, userID, favoriteID int64) (*models.ActionReply, error)
	DeleteProfile(ctx context.Context, userID int64) (*models.ActionReply, error)
	CreateCollection(ctx context.Context, userID int64, name string) (*models.ActionReply, error)
	AddToCollection(ctx context.Context, userID, collectionID, favoriteID int64) (*models.ActionReply, error)
	RemoveFromCollection(ctx context.Context, userID, collectionID, favoriteID int64) (*models.ActionReply, error)
	DeleteCollection(ctx context.Context, userID, collectionID int64) (*models.ActionReply, error)
	close()
}

// PlaylistSource finds playlists and their tracks.
type PlaylistSource interface {
	SearchPlaylists(ctx context.Context, query string, limit int) ([]deezerPlaylist, error)
	Tracklist(ctx context.Context, tracklistURL string, limit int) ([]deezerTrack, error)
}

type ServiceImpl struct {
	userRepo       UserRepository
	favoriteRepo   FavoriteRepository
	collectionRepo CollectionRepository
	playlists      PlaylistSource
	metrics        *Metrics
	log            zerolog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewService(users UserRepository, favorites FavoriteRepository, collections CollectionRepository,
	playlists PlaylistSource, metrics *Metrics, log zerolog.Logger) *ServiceImpl {
	return &ServiceImpl{
		userRepo:       users,
		favoriteRepo:   favorites,
		collectionRepo: collections,
		playlists:      playlists,
		metrics:        metrics,
		log:            log,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *ServiceImpl) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

func (s *ServiceImpl) shuffle(tracks []deezerTrack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(tracks), func(i, j int) { tracks[i], tracks[j] = tracks[j], tracks[i] })
}

// Recommend picks a random playlist for one of the mood's keywords and
// returns five random tracks of it.
func (s *ServiceImpl) Recommend(ctx context.Context, mood string) ([]models.Recommendation, error) {
	mood = strings.TrimSpace(mood)
	keywords, ok := moodKeywords[mood]
	if !ok {
		return nil, newAPIError(http.StatusBadRequest, "Please select a valid mood")
	}

	recs, err := s.recommend(ctx, mood, keywords)
	s.metrics.recommendation(mood, err)
	return recs, err
}

func (s *ServiceImpl) recommend(ctx context.Context, mood string, keywords []string) ([]models.Recommendation, error) {
	keyword := keywords[s.intn(len(keywords))]
	playlists, err := s.playlists.SearchPlaylists(ctx, keyword, playlistSearchLimit)
	if err != nil {
		s.log.Error().Err(err).Str("mood", mood).Msg("playlist search failed")
		return nil, newAPIError(http.StatusInternalServerError, unexpectedErrorMessage)
	}
	if len(playlists) == 0 {
		return nil, newAPIError(http.StatusNotFound, "We couldn't find playlists for '%s'. Try again!", mood)
	}

	chosen := playlists[s.intn(len(playlists))]
	if chosen.Tracklist == "" {
		s.log.Warn().Int64("playlist_id", chosen.ID).Msg("playlist has no tracklist")
		return nil, newAPIError(http.StatusInternalServerError, "The playlist found was invalid.")
	}

	tracks, err := s.playlists.Tracklist(ctx, chosen.Tracklist, tracklistLimit)
	if err != nil {
		s.log.Error().Err(err).Int64("playlist_id", chosen.ID).Msg("tracklist failed")
		return nil, newAPIError(http.StatusInternalServerError, unexpectedErrorMessage)
	}
	if len(tracks) == 0 {
		return nil, newAPIError(http.StatusNotFound, "The chosen playlist is empty.")
	}

	s.shuffle(tracks)
	if len(tracks) > recommendationCount {
		tracks = tracks[:recommendationCount]
	}
	recs := make([]models.Recommendation, 0, len(tracks))
	for _, t := range tracks {
		recs = append(recs, toRecommendation(t))
	}
	s.log.Debug().Str("mood", mood).Str("keyword", keyword).Int64("playlist_id", chosen.ID).Msg("recommended")
	return recs, nil
}

// LoginUser creates the user on first login and refreshes its profile
// afterwards.
func (s *ServiceImpl) LoginUser(ctx context.Context, user models.User) (*models.User, error) {
	if strings.TrimSpace(user.SpotifyID) == "" {
		return nil, newAPIError(http.StatusBadRequest, "A spotify id is required")
	}
	if user.DisplayName == "" {
		user.DisplayName = user.SpotifyID
	}
	id, err := s.userRepo.UpsertUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	s.log.Info().Int64("user_id", id).Str("spotify_id", user.SpotifyID).Msg("user logged in")
	return &user, nil
}

// Profile returns the user with favorites newest first. A session whose
// user is gone needs a new login.
func (s *ServiceImpl) Profile(ctx context.Context, userID int64) (*models.Profile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, errLoginRequired
	}
	if err != nil {
		return nil, err
	}
	favorites, err := s.favoriteRepo.GetFavoritesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	collections, err := s.collectionRepo.GetCollectionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.Profile{User: *user, Favorites: favorites, Collections: collections}, nil
}

func (s *ServiceImpl) AddFavorite(ctx context.Context, userID int64, req models.FavoriteRequest) (*models.ActionReply, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Artist) == "" {
		return nil, newAPIError(http.StatusBadRequest, "Title and artist are required")
	}

	_, err := s.favoriteRepo.FindFavorite(ctx, userID, req.Title, req.Artist)
	if err == nil {
		return alreadyFavorited(), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	id, err := s.favoriteRepo.InsertFavorite(ctx, models.Favorite{
		UserID:   userID,
		Title:    req.Title,
		Artist:   req.Artist,
		CoverURL: req.CoverURL,
		Mood:     req.Mood,
	})
	if errors.Is(err, ErrDuplicate) {
		return alreadyFavorited(), nil
	}
	if err != nil {
		return nil, err
	}
	s.metrics.favorites.Inc()
	return &models.ActionReply{
		Status:     models.StatusSuccess,
		Message:    "Track added to favorites!",
		FavoriteID: id,
	}, nil
}

func (s *ServiceImpl) DeleteFavorite(ctx context.Context, userID, favoriteID int64) (*models.ActionReply, error) {
	fav, err := s.favoriteRepo.GetFavoriteByID(ctx, favoriteID)
	if errors.Is(err, ErrNotFound) {
		return nil, newAPIError(http.StatusNotFound, "Favorite not found")
	}
	if err != nil {
		return nil, err
	}
	if fav.UserID != userID {
		return nil, newAPIError(http.StatusForbidden, "Not authorized")
	}
	if err = s.favoriteRepo.DeleteFavorite(ctx, favoriteID); err != nil {
		return nil, err
	}
	return &models.ActionReply{Status: models.StatusSuccess, Message: "Track removed from favorites."}, nil
}

func (s *ServiceImpl) DeleteProfile(ctx context.Context, userID int64) (*models.ActionReply, error) {
	err := s.userRepo.DeleteUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, newAPIError(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", userID).Msg("profile deleted")
	return &models.ActionReply{
		Status:  models.StatusSuccess,
		Message: "Profile and all associated data were deleted.",
	}, nil
}

func (s *ServiceImpl) CreateCollection(ctx context.Context, userID int64, name string) (*models.ActionReply, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newAPIError(http.StatusBadRequest, "The collection name is required")
	}
	id, err := s.collectionRepo.InsertCollection(ctx, models.Collection{UserID: userID, Name: name})
	if err != nil {
		return nil, err
	}
	return &models.ActionReply{Status: models.StatusSuccess, CollectionID: id, Name: name}, nil
}

// ownedCollection loads a collection, answering 404 when it does not exist
// and 403 when another user owns it.
func (s *ServiceImpl) ownedCollection(ctx context.Context, userID, collectionID int64) (*models.Collection, error) {
	c, err := s.collectionRepo.GetCollectionByID(ctx, collectionID)
	if errors.Is(err, ErrNotFound) {
		return nil, newAPIError(http.StatusNotFound, "Collection with ID %d not found", collectionID)
	}
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, newAPIError(http.StatusForbidden, "Not authorized")
	}
	return c, nil
}

func (s *ServiceImpl) AddToCollection(ctx context.Context, userID, collectionID, favoriteID int64) (*models.ActionReply, error) {
	if collectionID == 0 || favoriteID == 0 {
		return nil, newAPIError(http.StatusBadRequest, "Collection ID and track ID are required")
	}
	if _, err := s.ownedCollection(ctx, userID, collectionID); err != nil {
		return nil, err
	}

	fav, err := s.favoriteRepo.GetFavoriteByID(ctx, favoriteID)
	if errors.Is(err, ErrNotFound) {
		return nil, newAPIError(http.StatusNotFound, "Track with ID %d not found", favoriteID)
	}
	if err != nil {
		return nil, err
	}
	if fav.UserID != userID {
		return nil, newAPIError(http.StatusForbidden, "Not authorized")
	}

	_, err = s.collectionRepo.FindCollectionItem(ctx, collectionID, favoriteID)
	if err == nil {
		return nil, errAlreadyInCollection
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	_, err = s.collectionRepo.InsertCollectionItem(ctx, collectionID, favoriteID)
	if errors.Is(err, ErrDuplicate) {
		return nil, errAlreadyInCollection
	}
	if err != nil {
		return nil, err
	}
	return &models.ActionReply{Status: models.StatusSuccess, Message: "Track added to the collection"}, nil
}

func (s *ServiceImpl) RemoveFromCollection(ctx context.Context, userID, collectionID, favoriteID int64) (*models.ActionReply, error) {
	if collectionID == 0 || favoriteID == 0 {
		return nil, newAPIError(http.StatusBadRequest, "Collection ID and track ID are required")
	}
	item, err := s.collectionRepo.FindCollectionItem(ctx, collectionID, favoriteID)
	if errors.Is(err, ErrNotFound) {
		return nil, newAPIError(http.StatusNotFound, "Item not found")
	}
	if err != nil {
		return nil, err
	}
	if _, err = s.ownedCollection(ctx, userID, collectionID); err != nil {
		return nil, err
	}
	if err = s.collectionRepo.DeleteCollectionItem(ctx, item.ID); err != nil {
		return nil, err
	}
	return &models.ActionReply{Status: models.StatusSuccess, Message: "Track removed from the collection"}, nil
}

func (s *ServiceImpl) DeleteCollection(ctx context.Context, userID, collectionID int64) (*models.ActionReply, error) {
	c, err := s.collectionRepo.GetCollectionByID(ctx, collectionID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil || c.UserID != userID {
		return nil, newAPIError(http.StatusForbidden, "Collection not found or not authorized")
	}
	if err = s.collectionRepo.DeleteCollection(ctx, collectionID); err != nil {
		return nil, err
	}
	return &models.ActionReply{Status: models.StatusSuccess, Message: "Collection deleted"}, nil
}

func (s *ServiceImpl) close() {
	s.collectionRepo.close()
	s.favoriteRepo.close()
	s.userRepo.close()
}
