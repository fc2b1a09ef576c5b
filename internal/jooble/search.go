package jooble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/mveldman/jobmatch/internal/posting"
)

const contentType = "application/json"

// SearchParams is the request body for one provider query.
type SearchParams struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
	Page     int    `json:"page"`
}

// searchResponse mirrors the loose provider payload. Jobs are decoded as
// free-form maps first; mapstructure picks the fields we care about.
type searchResponse struct {
	TotalCount int              `json:"totalCount"`
	Jobs       []map[string]any `json:"jobs"`
}

// Search issues a single query against the provider and returns the raw
// postings. The caller owns dedup and filtering.
func (c *Client) Search(ctx context.Context, params *SearchParams) (*posting.Postings, error) {
	if params.Page == 0 {
		params.Page = 1
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal search params: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.APIURL, c.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.UserAgent)

	c.logger.Debug("provider request",
		zap.String("keywords", params.Keywords),
		zap.String("location", params.Location),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var response searchResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	items, err := decodePostings(response.Jobs)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("provider response",
		zap.String("keywords", params.Keywords),
		zap.Int("jobs", len(items)),
	)

	return &posting.Postings{Items: items}, nil
}

func decodePostings(jobs []map[string]any) ([]*posting.Posting, error) {
	var items []*posting.Posting

	cfg := &mapstructure.DecoderConfig{
		Result:           &items,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(jobs); err != nil {
		return nil, fmt.Errorf("decode postings: %w", err)
	}

	return items, nil
}
