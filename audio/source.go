package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// Source opens a decoded stream for a track.
type Source func(ctx context.Context) (beep.StreamSeekCloser, beep.Format, error)

type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

// HTTPSource downloads the whole resource and decodes it by its extension,
// MP3 when the URL carries none.
func HTTPSource(client *http.Client, rawURL string) Source {
	return func(ctx context.Context) (beep.StreamSeekCloser, beep.Format, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, beep.Format{}, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("fetch %s: %w", rawURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, beep.Format{}, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("read %s: %w", rawURL, err)
		}
		return Decode(extension(rawURL), memoryFile{bytes.NewReader(data)})
	}
}

// Decode picks a decoder for the extension.
func Decode(ext string, rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case ".mp3", "":
		return mp3.Decode(rc)
	case ".wav":
		return wav.Decode(rc)
	case ".flac":
		return flac.Decode(rc)
	default:
		rc.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", ext)
	}
}

func extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".mp3", ".wav", ".flac":
		return ext
	}
	return ""
}
