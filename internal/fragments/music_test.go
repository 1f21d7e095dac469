package fragments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
)

func TestCleanTrackName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Great Are You Lord - Live", "Great Are You Lord"},
		{"Oceans (Acoustic)", "Oceans"},
		{"Oceans (Acoustic) - Live", "Oceans"},
		{"Living Hope", "Living Hope"},
		{"Live - Live", "Live"},
		{" Build My Life (Live) ", "Build My Life"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTrackName(tt.in, DefaultTrackSuffixes))
		})
	}
}

func TestPlaylistID(t *testing.T) {
	id, err := PlaylistID("https://open.spotify.com/playlist/2HoaFy0dLN5hs0EbMcUdJU")
	require.NoError(t, err)
	assert.Equal(t, "2HoaFy0dLN5hs0EbMcUdJU", id)

	id, err = PlaylistID("https://open.spotify.com/playlist/abc/?si=123")
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = PlaylistID("https://open.spotify.com/")
	require.Error(t, err)
}

func TestMusicBuilder_Build(t *testing.T) {
	b := &MusicBuilder{
		Playlists: &fakePlaylists{tracks: map[string][]string{
			"abc": {"Great Are You Lord - Live", "Oceans (Acoustic)", "It Is Well"},
		}},
		PlaylistURL: "https://open.spotify.com/playlist/abc",
		YouTubeURL:  "https://music.youtube.com/playlist?list=xyz",
	}

	got, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t,
		`<b>This week's playlist, on <a href="https://open.spotify.com/playlist/abc">Spotify</a>`+
			` and <a href="https://music.youtube.com/playlist?list=xyz">YouTube</a></b><br />`+
			`<br />Great Are You Lord<br />Oceans<br />It Is Well`,
		got)
}

func TestMusicBuilder_LinksCanonicalPlaylist(t *testing.T) {
	b := &MusicBuilder{
		Playlists: &fakePlaylists{tracks: map[string][]string{
			"abc": {"It Is Well"},
		}},
		PlaylistURL: "https://open.spotify.com/playlist/abc/?si=share123",
		YouTubeURL:  "https://music.youtube.com/playlist?list=xyz",
	}

	got, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Contains(t, got, `<a href="https://open.spotify.com/playlist/abc">Spotify</a>`)
	assert.NotContains(t, got, "si=share123")
}

func TestMusicBuilder_Errors(t *testing.T) {
	b := &MusicBuilder{Playlists: &fakePlaylists{}, PlaylistURL: "https://open.spotify.com/playlist/missing"}
	_, err := b.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, nerrors.CategoryProvider, nerrors.GetCategory(err))

	b.PlaylistURL = "https://open.spotify.com/"
	_, err = b.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, nerrors.CategoryConfig, nerrors.GetCategory(err))
}

func TestServiceDateText(t *testing.T) {
	assert.Equal(t, "Sunday, October 18, 2026", ServiceDateText(testWindow().ServiceDate))
}
