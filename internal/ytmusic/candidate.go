package ytmusic

import "strings"

// Candidate is one search result for a track query, converted from the remote
// service's loose response shape at ingress.
type Candidate struct {
	TrackID         string   `json:"trackId"`
	Title           string   `json:"title"`
	ArtistNames     []string `json:"artistNames"`
	AlbumName       string   `json:"albumName,omitempty"`
	DurationSeconds int      `json:"durationSeconds,omitempty"`
	IsExplicit      bool     `json:"isExplicit"`
	IsLive          bool     `json:"isLive"`
	IsRemix         bool     `json:"isRemix"`
	IsRemaster      bool     `json:"isRemaster"`
	SourceRank      int      `json:"sourceRank"` // position in the remote relevance ordering, 0 = most relevant
}

var (
	remixWords    = []string{"remix", "rmx", "rework", "edit", "bootleg"}
	remasterWords = []string{"remaster", "remastered"}
)

// wireTrack mirrors the track object returned by the search endpoint.
type wireTrack struct {
	VideoID     string       `json:"videoId"`
	Title       string       `json:"title"`
	Artists     []wireArtist `json:"artists"`
	Album       *wireAlbum   `json:"album"`
	DurationSec int          `json:"duration_seconds"`
	IsExplicit  bool         `json:"isExplicit"`
	IsLive      bool         `json:"isLive"`
}

type wireArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type wireAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// toCandidate converts a wire track at position rank into the boundary schema.
// Remix and remaster flags are derived from title keywords when the remote
// omits them.
func (t wireTrack) toCandidate(rank int) Candidate {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name != "" {
			artists = append(artists, a.Name)
		}
	}

	c := Candidate{
		TrackID:         t.VideoID,
		Title:           t.Title,
		ArtistNames:     artists,
		DurationSeconds: t.DurationSec,
		IsExplicit:      t.IsExplicit,
		IsLive:          t.IsLive,
		SourceRank:      rank,
	}
	if t.Album != nil {
		c.AlbumName = t.Album.Name
	}

	title := strings.ToLower(t.Title)
	for _, word := range remixWords {
		if strings.Contains(title, word) {
			c.IsRemix = true
			break
		}
	}
	for _, word := range remasterWords {
		if strings.Contains(title, word) {
			c.IsRemaster = true
			break
		}
	}
	if strings.Contains(title, "live") {
		c.IsLive = true
	}

	return c
}
