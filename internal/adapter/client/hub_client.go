package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
)

// MaxPageLength is the largest page the hub serves per request
const MaxPageLength = 100

type hubSplit struct {
	Dataset string `json:"dataset"`
	Config  string `json:"config"`
	Split   string `json:"split"`
}

type splitsResponse struct {
	Splits []hubSplit `json:"splits"`
}

type featureType struct {
	Kind  string   `json:"_type"`
	Names []string `json:"names"`
}

type hubFeature struct {
	Index int         `json:"feature_idx"`
	Name  string      `json:"name"`
	Type  featureType `json:"type"`
}

type hubRow struct {
	Index int            `json:"row_idx"`
	Row   map[string]any `json:"row"`
}

type rowsResponse struct {
	Features     []hubFeature `json:"features"`
	Rows         []hubRow     `json:"rows"`
	NumRowsTotal int          `json:"num_rows_total"`
}

type hubError struct {
	Error string `json:"error"`
}

// HubClient is an HTTP client for the Hugging Face datasets-server API
type HubClient struct {
	http *resty.Client
}

// NewHubClient creates a new dataset hub client. token may be empty for public datasets.
func NewHubClient(baseURL string, timeout time.Duration, token string) *HubClient {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetJSONUnmarshaler(decodeNumbers)
	if token != "" {
		rc.SetAuthToken(token)
	}
	return &HubClient{http: rc}
}

// ListSplits returns every config/split pair of dataset
func (c *HubClient) ListSplits(ctx context.Context, dataset string) ([]entity.DatasetSplit, error) {
	var result splitsResponse
	var apiErr hubError

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("dataset", dataset).
		SetResult(&result).
		SetError(&apiErr).
		Get("/splits")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.IsError() {
		return nil, hubStatusError(resp.StatusCode(), apiErr, resp.String())
	}

	splits := make([]entity.DatasetSplit, 0, len(result.Splits))
	for _, s := range result.Splits {
		splits = append(splits, entity.DatasetSplit{Dataset: s.Dataset, Config: s.Config, Split: s.Split})
	}
	return splits, nil
}

// FetchRows returns one page of rows. length is capped at MaxPageLength.
func (c *HubClient) FetchRows(ctx context.Context, split entity.DatasetSplit, offset, length int) (*entity.DatasetPage, error) {
	if length <= 0 || length > MaxPageLength {
		length = MaxPageLength
	}

	var result rowsResponse
	var apiErr hubError

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"dataset": split.Dataset,
			"config":  split.Config,
			"split":   split.Split,
			"offset":  fmt.Sprint(offset),
			"length":  fmt.Sprint(length),
		}).
		SetResult(&result).
		SetError(&apiErr).
		Get("/rows")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.IsError() {
		return nil, hubStatusError(resp.StatusCode(), apiErr, resp.String())
	}

	page := &entity.DatasetPage{
		Features: make([]entity.DatasetFeature, 0, len(result.Features)),
		Rows:     make([]map[string]any, 0, len(result.Rows)),
		Total:    result.NumRowsTotal,
	}
	for _, f := range result.Features {
		feature := entity.DatasetFeature{Name: f.Name}
		if f.Type.Kind == "ClassLabel" {
			feature.ClassNames = f.Type.Names
		}
		page.Features = append(page.Features, feature)
	}
	for _, r := range result.Rows {
		page.Rows = append(page.Rows, r.Row)
	}
	return page, nil
}

func hubStatusError(status int, apiErr hubError, body string) error {
	if apiErr.Error != "" {
		return fmt.Errorf("%w: status %d: %s", ErrHubRequest, status, apiErr.Error)
	}
	return fmt.Errorf("%w: status %d: %s", ErrHubRequest, status, body)
}

// decodeNumbers keeps cell values as json.Number so they round-trip unchanged
func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
