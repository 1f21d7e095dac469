package fragments

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"

	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/logfields"
	"git.home.luguber.info/inful/newsletter/internal/providers"
)

// DefaultTrackSuffixes are the annotations removed from track names.
var DefaultTrackSuffixes = []string{" - Live", " (Live)", " - Acoustic", " (Acoustic)"}

// CleanTrackName strips any of suffixes from the end of name, repeatedly, so
// stacked annotations ("Song (Acoustic) - Live") all go.
func CleanTrackName(name string, suffixes []string) string {
	name = strings.TrimSpace(name)
	for {
		trimmed := name
		for _, s := range suffixes {
			trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, s))
		}
		if trimmed == name {
			return name
		}
		name = trimmed
	}
}

// SpotifyPlaylistBase prefixes a playlist id to form its public link.
const SpotifyPlaylistBase = "https://open.spotify.com/playlist/"

// PlaylistID extracts the playlist id (last path segment) from a playlist URL.
func PlaylistID(playlistURL string) (string, error) {
	u, err := url.Parse(playlistURL)
	if err != nil {
		return "", fmt.Errorf("parse playlist URL: %w", err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	id := segments[len(segments)-1]
	if id == "" {
		return "", errors.New("playlist URL has no id segment")
	}
	return id, nil
}

// PlaylistLinks renders the fixed links block shown above the track list.
func PlaylistLinks(spotifyURL, youtubeURL string) string {
	return `<b>This week's playlist, on <a href="` + html.EscapeString(spotifyURL) + `">Spotify</a>` +
		` and <a href="` + html.EscapeString(youtubeURL) + `">YouTube</a></b><br />`
}

// MusicHTML joins the links block and the ordered track names.
func MusicHTML(links string, tracks []string) string {
	escaped := make([]string, len(tracks))
	for i, t := range tracks {
		escaped[i] = html.EscapeString(t)
	}
	return links + "<br />" + strings.Join(escaped, "<br />")
}

// MusicBuilder renders the service music slot from a playlist.
type MusicBuilder struct {
	Playlists   providers.PlaylistProvider
	PlaylistURL string
	YouTubeURL  string
	Suffixes    []string
	Logger      *slog.Logger
}

// Build fetches the playlist and renders the fragment.
func (b *MusicBuilder) Build(ctx context.Context) (string, error) {
	id, err := PlaylistID(b.PlaylistURL)
	if err != nil {
		return "", nerrors.ConfigInvalid("music.playlist_url", err.Error())
	}

	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Getting playlist tracks", logfields.Playlist(id))

	names, err := b.Playlists.GetTrackNames(ctx, id)
	if err != nil {
		return "", nerrors.ProviderFailed("playlist", "getTrackNames", err).
			WithContext("playlist", id)
	}

	suffixes := b.Suffixes
	if suffixes == nil {
		suffixes = DefaultTrackSuffixes
	}
	tracks := make([]string, len(names))
	for i, n := range names {
		tracks[i] = CleanTrackName(n, suffixes)
	}

	return MusicHTML(PlaylistLinks(SpotifyPlaylistBase+id, b.YouTubeURL), tracks), nil
}
