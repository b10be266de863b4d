package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const volumesEndpoint = "https://www.googleapis.com/books/v1/volumes"

// 外部検索プロバイダ（Google Books）の薄いラッパー。
// 結果はRedisにキャッシュして同じクエリの連打を外へ出さない。
type Client struct {
	httpClient *http.Client
	apiKey     string
	cache      *Cache
	logger     *zap.Logger
}

type BookResult struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	PublishedDate string   `json:"published_date"`
	ISBN          string   `json:"isbn"`
}

func NewClient(apiKey string, cache *Cache, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		cache:      cache,
		logger:     logger,
	}
}

// volumesレスポンスのうち使う部分だけ
type volumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			Title               string   `json:"title"`
			Authors             []string `json:"authors"`
			Description         string   `json:"description"`
			PublishedDate       string   `json:"publishedDate"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (c *Client) Search(ctx context.Context, query string) ([]BookResult, error) {
	//まずキャッシュ
	if c.cache != nil {
		var cached []BookResult
		if ok := c.cache.Get(ctx, query, &cached); ok {
			return cached, nil
		}
	}

	q := url.Values{}
	q.Set("q", query)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, volumesEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search provider returned status %d", resp.StatusCode)
	}

	var vr volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, err
	}

	results := make([]BookResult, 0, len(vr.Items))
	for _, item := range vr.Items {
		r := BookResult{
			Title:         item.VolumeInfo.Title,
			Authors:       item.VolumeInfo.Authors,
			Description:   item.VolumeInfo.Description,
			PublishedDate: item.VolumeInfo.PublishedDate,
		}
		for _, id := range item.VolumeInfo.IndustryIdentifiers {
			if id.Type == "ISBN_13" {
				r.ISBN = id.Identifier
				break
			}
		}
		results = append(results, r)
	}

	if c.cache != nil {
		c.cache.Set(ctx, query, results)
	}

	return results, nil
}
