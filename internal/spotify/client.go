// Package spotify is a thin search client for the Spotify Web API using the
// client-credentials flow.
package spotify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenURL  = "https://accounts.spotify.com/api/token"
	searchURL = "https://api.spotify.com/v1/search"

	searchLimit  = 10
	searchMarket = "US"

	// Show/episode descriptions can run to several KB; keep tool output small.
	maxDescriptionLen = 1000
)

// SearchType is the Spotify catalog section a query runs against.
type SearchType string

const (
	SearchTrack    SearchType = "track"
	SearchAlbum    SearchType = "album"
	SearchArtist   SearchType = "artist"
	SearchGenre    SearchType = "genre"
	SearchPlaylist SearchType = "playlist"
	SearchEpisode  SearchType = "episode"
	SearchShow     SearchType = "show"
)

// ParseSearchType normalizes free-form input from the model. Unknown values
// fall back to SearchTrack; that fallback is part of the type's contract, not
// an error.
func ParseSearchType(s string) SearchType {
	switch SearchType(strings.ToLower(strings.TrimSpace(s))) {
	case SearchAlbum:
		return SearchAlbum
	case SearchArtist:
		return SearchArtist
	case SearchGenre:
		return SearchGenre
	case SearchPlaylist:
		return SearchPlaylist
	case SearchEpisode:
		return SearchEpisode
	case SearchShow:
		return SearchShow
	default:
		return SearchTrack
	}
}

// rootKey maps a search type to the key Spotify nests results under.
func (t SearchType) rootKey() string {
	return string(t) + "s"
}

type Client struct {
	httpClient *http.Client
}

// NewClient builds a search client. The underlying oauth2 transport acquires
// and refreshes the client-credentials token on demand; a token acquisition
// failure surfaces as an error on the request that needed it.
func NewClient(ctx context.Context, clientID, clientSecret string) *Client {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return &Client{httpClient: conf.Client(ctx)}
}

// Search queries the Spotify catalog and renders the matching items as a
// compact text block for model consumption.
func (c *Client) Search(ctx context.Context, query string, searchType SearchType) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", string(searchType))
	params.Set("limit", fmt.Sprintf("%d", searchLimit))
	params.Set("market", searchMarket)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build spotify request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("spotify search failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read spotify response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify API error: status %d: %s", resp.StatusCode, string(body))
	}

	return renderItems(body, searchType), nil
}

// renderItems extracts the fields useful to the playlist agent: name,
// artists, the open.spotify.com link and a truncated description. Explicit
// tracks are dropped from track results.
func renderItems(body []byte, searchType SearchType) string {
	items := gjson.GetBytes(body, searchType.rootKey()+".items")
	if !items.Exists() || len(items.Array()) == 0 {
		return "No results found."
	}

	var b strings.Builder
	n := 0
	for _, item := range items.Array() {
		if searchType == SearchTrack && item.Get("explicit").Bool() {
			continue
		}
		n++
		name := item.Get("name").String()
		link := item.Get("external_urls.spotify").String()

		var artists []string
		item.Get("artists.#.name").ForEach(func(_, v gjson.Result) bool {
			artists = append(artists, v.String())
			return true
		})

		fmt.Fprintf(&b, "%d. %s", n, name)
		if len(artists) > 0 {
			fmt.Fprintf(&b, " by %s", strings.Join(artists, ", "))
		}
		if publisher := item.Get("publisher").String(); publisher != "" {
			fmt.Fprintf(&b, " by %s", publisher)
		}
		if link != "" {
			fmt.Fprintf(&b, " (%s)", link)
		}
		if desc := item.Get("description").String(); desc != "" {
			if len(desc) > maxDescriptionLen {
				desc = desc[:maxDescriptionLen]
			}
			fmt.Fprintf(&b, "\n   %s", desc)
		}
		b.WriteString("\n")
	}
	if n == 0 {
		return "No results found."
	}
	return b.String()
}
