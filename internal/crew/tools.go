package crew

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/sorennelson/the-preview-crew/internal/llm"
	"github.com/sorennelson/the-preview-crew/internal/spotify"
)

const (
	serperURL = "https://google.serper.dev/search"

	// Scraped pages are truncated before they reach the model.
	maxScrapeLen = 8000
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

type SerperTool struct {
	apiKey string
}

func NewSerperTool(apiKey string) *SerperTool {
	return &SerperTool{apiKey: apiKey}
}

func (t *SerperTool) Definition() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.Function{
			Name:        "web_search",
			Description: "Searches the web and returns titles, links and snippets of the top results.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Search query",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

func (t *SerperTool) Run(ctx context.Context, args string) (string, error) {
	query := gjson.Get(args, "query").String()
	if query == "" {
		return "", fmt.Errorf("web_search requires a query")
	}

	payload, _ := json.Marshal(map[string]string{"q": query})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build serper request: %w", err)
	}
	req.Header.Set("X-API-KEY", t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("serper search failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read serper response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("serper API error: status %d: %s", resp.StatusCode, string(body))
	}

	results := gjson.GetBytes(body, "organic")
	if !results.Exists() || len(results.Array()) == 0 {
		return "No results found.", nil
	}

	var b strings.Builder
	for i, r := range results.Array() {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n",
			i+1, r.Get("title").String(), r.Get("link").String(), r.Get("snippet").String())
	}
	return b.String(), nil
}

type ScrapeTool struct{}

func NewScrapeTool() *ScrapeTool { return &ScrapeTool{} }

func (t *ScrapeTool) Definition() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.Function{
			Name:        "scrape_website",
			Description: "Fetches a web page and returns its visible text content.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"url": map[string]interface{}{
						"type":        "string",
						"description": "URL of the page to fetch",
					},
				},
				"required": []string{"url"},
			},
		},
	}
}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

func (t *ScrapeTool) Run(ctx context.Context, args string) (string, error) {
	pageURL := gjson.Get(args, "url").String()
	if pageURL == "" {
		return "", fmt.Errorf("scrape_website requires a url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build scrape request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", pageURL, err)
	}

	text := stripHTML(string(body))
	if len(text) > maxScrapeLen {
		text = text[:maxScrapeLen]
	}
	return text, nil
}

func stripHTML(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

type SpotifyTool struct {
	client *spotify.Client
}

func NewSpotifyTool(client *spotify.Client) *SpotifyTool {
	return &SpotifyTool{client: client}
}

func (t *SpotifyTool) Definition() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.Function{
			Name:        "spotify_search",
			Description: "Returns a list of music or podcasts (based on the given query type) by searching Spotify for the given search term.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Spotify search query.",
					},
					"search_type": map[string]interface{}{
						"type":        "string",
						"description": "One of ['track', 'album', 'artist', 'genre', 'playlist', 'episode', 'show']. Type of Spotify search query.",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

func (t *SpotifyTool) Run(ctx context.Context, args string) (string, error) {
	query := gjson.Get(args, "query").String()
	if query == "" {
		return "", fmt.Errorf("spotify_search requires a query")
	}
	searchType := spotify.ParseSearchType(gjson.Get(args, "search_type").String())
	return t.client.Search(ctx, query, searchType)
}
