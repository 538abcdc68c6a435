package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
)

// DefaultNewsEndpoint is the Hacker News Firebase API root.
const DefaultNewsEndpoint = "https://hacker-news.firebaseio.com/v0"

// HeadlineSource fetches up to n headlines.
type HeadlineSource interface {
	Headlines(ctx context.Context, n int) ([]string, error)
}

// HackerNews picks random top stories from the Hacker News API.
type HackerNews struct {
	Endpoint string
	Client   *http.Client
}

// NewHackerNews returns a source against DefaultNewsEndpoint.
func NewHackerNews() *HackerNews {
	return &HackerNews{Endpoint: DefaultNewsEndpoint, Client: http.DefaultClient}
}

type story struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Headlines returns n titles from distinct random top stories. Stories
// that fail to load are skipped, so fewer than n may come back.
func (h *HackerNews) Headlines(ctx context.Context, n int) ([]string, error) {
	var ids []int
	if err := h.get(ctx, "/topstories.json", &ids); err != nil {
		return nil, err
	}

	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	headlines := make([]string, 0, n)
	for _, id := range ids {
		if len(headlines) >= n {
			break
		}
		var s story
		if err := h.get(ctx, fmt.Sprintf("/item/%d.json", id), &s); err != nil {
			if ctx.Err() != nil {
				return headlines, ctx.Err()
			}
			continue
		}
		if title := strings.TrimSpace(s.Title); title != "" {
			headlines = append(headlines, title)
		}
	}
	return headlines, nil
}

func (h *HackerNews) get(ctx context.Context, path string, v any) error {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(h.Endpoint, "/")+path, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
