// Package geocode resolves address strings through an external
// geocoding provider and reshapes the response into the same
// five-field record the normalization pipeline produces. It performs
// no cleaning of its own; retry and backoff policy belongs to the
// caller's HTTP client, not here.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/address-normalizer/internal/normalize"
)

// Environment variables consumed by NewFromEnv.
const (
	EnvAPIKey  = "GEOCODER_API_KEY"
	EnvBaseURL = "GEOCODER_BASE_URL"
)

const defaultBaseURL = "https://maps.googleapis.com"

// UnavailableError indicates the geocoder path cannot be used:
// missing credential, unreachable provider, or a response the
// provider itself was not confident about.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("geocoder unavailable: %s", e.Reason)
}

// Config carries the provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client is a thin provider adapter.
type Client struct {
	cfg    Config
	httpc  *http.Client
	logger *zap.Logger
}

// New builds a client. A missing API key fails here, before any call
// is attempted.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &UnavailableError{Reason: "no API key configured (set " + EnvAPIKey + ")"}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// NewFromEnv builds a client from GEOCODER_API_KEY / GEOCODER_BASE_URL.
func NewFromEnv(logger *zap.Logger) (*Client, error) {
	return New(Config{
		APIKey:  os.Getenv(EnvAPIKey),
		BaseURL: os.Getenv(EnvBaseURL),
	}, logger)
}

// provider response, trimmed to what the adapter reads
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// Resolve sends the composed address string to the provider and
// reshapes the best result. Record input is flattened per fieldOrder
// (canonical order when nil). A response without a street number is
// treated as non-confident and rejected.
func (c *Client) Resolve(ctx context.Context, input any, fieldOrder []string) (normalize.AddressRecord, error) {
	query, err := composeQuery(input, fieldOrder)
	if err != nil {
		return normalize.AddressRecord{}, err
	}

	u := fmt.Sprintf("%s/maps/api/geocode/json?address=%s&key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(query), url.QueryEscape(c.cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return normalize.AddressRecord{}, fmt.Errorf("building geocode request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return normalize.AddressRecord{}, &UnavailableError{Reason: fmt.Sprintf("provider unreachable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return normalize.AddressRecord{}, &UnavailableError{Reason: fmt.Sprintf("provider returned HTTP %d", resp.StatusCode)}
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return normalize.AddressRecord{}, &UnavailableError{Reason: fmt.Sprintf("decoding provider response: %v", err)}
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return normalize.AddressRecord{}, &UnavailableError{Reason: fmt.Sprintf("provider could not resolve the address (status %s)", body.Status)}
	}

	rec, ok := reshape(body)
	if !ok {
		c.logger.Debug("geocoder response lacked a street number", zap.String("query", query))
		return normalize.AddressRecord{}, &UnavailableError{Reason: "provider response lacked a street number"}
	}
	return rec, nil
}

func composeQuery(input any, fieldOrder []string) (string, error) {
	switch in := input.(type) {
	case string:
		return in, nil
	case map[string]string:
		rec := make(map[string]any, len(in))
		for k, v := range in {
			rec[k] = v
		}
		return composeRecordQuery(rec, fieldOrder), nil
	case map[string]any:
		return composeRecordQuery(in, fieldOrder), nil
	default:
		return "", &normalize.InputError{Reason: fmt.Sprintf("unsupported input type %T", input)}
	}
}

func composeRecordQuery(rec map[string]any, fieldOrder []string) string {
	if len(fieldOrder) == 0 {
		fieldOrder = []string{
			normalize.FieldAddressLine1,
			normalize.FieldAddressLine2,
			normalize.FieldCity,
			normalize.FieldState,
			normalize.FieldPostalCode,
		}
	}
	parts := make([]string, 0, len(fieldOrder))
	for _, field := range fieldOrder {
		if v, ok := rec[field]; ok && v != nil {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, ", ")
}

func reshape(body geocodeResponse) (normalize.AddressRecord, bool) {
	var number, route, subpremise, city, state, postal string
	for _, comp := range body.Results[0].AddressComponents {
		for _, typ := range comp.Types {
			switch typ {
			case "street_number":
				number = comp.LongName
			case "route":
				route = comp.LongName
			case "subpremise":
				subpremise = comp.LongName
			case "locality":
				city = comp.LongName
			case "administrative_area_level_1":
				state = comp.ShortName
			case "postal_code":
				postal = comp.LongName
			}
		}
	}
	if number == "" {
		return normalize.AddressRecord{}, false
	}
	return normalize.AddressRecord{
		AddressLine1: strings.ToUpper(strings.TrimSpace(number + " " + route)),
		AddressLine2: strings.ToUpper(subpremise),
		City:         strings.ToUpper(city),
		State:        strings.ToUpper(state),
		PostalCode:   strings.ToUpper(postal),
	}, true
}
