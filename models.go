// this file defines the upstream payloads the server reads
package main

type deezerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type deezerPlaylist struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Tracklist string `json:"tracklist"`
}

type deezerTrack struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	TitleShort string `json:"title_short"`
	Link       string `json:"link"`
	Duration   int64  `json:"duration"`
	Preview    string `json:"preview"`
	Artist     struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		CoverXL string `json:"cover_xl"`
	} `json:"album"`
}

type spotifyProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Images      []struct {
		URL string `json:"url"`
	} `json:"images"`
}
