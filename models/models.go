// Package models defines the data structures shared by the server and its
// clients. JSON field names are the wire contract.
package models

// Track is one entry of a station's track list.
type Track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	URL    string `json:"url"`
}

type Station struct {
	ID            string   `json:"id"`
	DJ            string   `json:"dj"`
	Name          string   `json:"name"`
	Image         string   `json:"image"`
	GalleryImages []string `json:"gallery_images"`
	Quote         string   `json:"quote"`
	Description   string   `json:"description"`
	Tracks        []Track  `json:"tracks"`
}

// Catalogue is the static station listing.
type Catalogue struct {
	Stations []Station `json:"stations"`
}

// Recommendation is a track suggested for a mood.
type Recommendation struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	CoverURL   string `json:"cover_url"`
	PreviewURL string `json:"preview_url"`
	Link       string `json:"link"`
	Duration   int64  `json:"duration"`
}

type User struct {
	ID              int64  `json:"id" db:"id"`
	SpotifyID       string `json:"spotify_id" db:"spotify_id"`
	DisplayName     string `json:"display_name" db:"display_name"`
	Email           string `json:"email,omitempty" db:"email"`
	ProfileImageURL string `json:"profile_image_url,omitempty" db:"profile_image_url"`
}

type Favorite struct {
	ID       int64  `json:"id" db:"id"`
	UserID   int64  `json:"user_id" db:"user_id"`
	Title    string `json:"title" db:"song_title"`
	Artist   string `json:"artist" db:"artist_name"`
	CoverURL string `json:"cover_url" db:"cover_url"`
	Mood     string `json:"mood" db:"mood"`
}

type Collection struct {
	ID     int64      `json:"id" db:"id"`
	UserID int64      `json:"user_id" db:"user_id"`
	Name   string     `json:"name" db:"name"`
	Items  []Favorite `json:"items" db:"-"`
}

type CollectionItem struct {
	ID           int64 `json:"id" db:"id"`
	CollectionID int64 `json:"collection_id" db:"collection_id"`
	FavoriteID   int64 `json:"favorite_id" db:"favorite_id"`
}

// Profile is everything the profile page shows for a user.
type Profile struct {
	User        User         `json:"user"`
	Favorites   []Favorite   `json:"favorites"`
	Collections []Collection `json:"collections"`
}

// Status values of action replies.
const (
	StatusSuccess          = "success"
	StatusLoginRequired    = "login_required"
	StatusAlreadyFavorited = "already_favorited"
)

// FavoriteRequest is the body of a favorite action.
type FavoriteRequest struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	CoverURL string `json:"cover_url"`
	Mood     string `json:"mood"`
}

// CollectionItemRequest is the body of add/remove collection item actions.
type CollectionItemRequest struct {
	CollectionID FlexID `json:"collection_id"`
	FavoriteID   FlexID `json:"favorite_id"`
}

// ActionReply is the union of the replies action endpoints send.
type ActionReply struct {
	Status       string `json:"status,omitempty"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	FavoriteID   int64  `json:"favorite_id,omitempty"`
	CollectionID int64  `json:"collection_id,omitempty"`
	Name         string `json:"name,omitempty"`
}
