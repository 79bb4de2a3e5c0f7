package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/address-normalizer/internal/normalize"
)

const okBody = `{
  "status": "OK",
  "results": [{
    "address_components": [
      {"long_name": "123", "short_name": "123", "types": ["street_number"]},
      {"long_name": "North Main Street", "short_name": "N Main St", "types": ["route"]},
      {"long_name": "Apt 4B", "short_name": "Apt 4B", "types": ["subpremise"]},
      {"long_name": "Portland", "short_name": "Portland", "types": ["locality", "political"]},
      {"long_name": "Oregon", "short_name": "OR", "types": ["administrative_area_level_1", "political"]},
      {"long_name": "97212", "short_name": "97212", "types": ["postal_code"]}
    ]
  }]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{APIKey: "test-key", BaseURL: srv.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return c, srv
}

func TestNew_MissingKey(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	var unavail *UnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
}

func TestResolve_ReshapesComponents(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("address")
		if r.URL.Query().Get("key") != "test-key" {
			http.Error(w, "missing key", http.StatusForbidden)
			return
		}
		w.Write([]byte(okBody))
	})

	rec, err := c.Resolve(context.Background(), "123 N Main St Apt 4B Portland OR", nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := normalize.AddressRecord{
		AddressLine1: "123 NORTH MAIN STREET",
		AddressLine2: "APT 4B",
		City:         "PORTLAND",
		State:        "OR",
		PostalCode:   "97212",
	}
	if rec != want {
		t.Errorf("Resolve = %+v, want %+v", rec, want)
	}
	if gotQuery != "123 N Main St Apt 4B Portland OR" {
		t.Errorf("query sent verbatim expected, got %q", gotQuery)
	}
}

func TestResolve_RecordInputComposesQuery(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("address")
		w.Write([]byte(okBody))
	})

	in := map[string]string{
		normalize.FieldAddressLine1: "123 N Main St",
		normalize.FieldCity:         "Portland",
		normalize.FieldState:        "OR",
	}
	if _, err := c.Resolve(context.Background(), in, nil); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if gotQuery != "123 N Main St, Portland, OR" {
		t.Errorf("composed query = %q", gotQuery)
	}
}

func TestResolve_FieldOrderRespected(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("address")
		w.Write([]byte(okBody))
	})

	in := map[string]any{"street": "500 Elm Dr", "town": "Troy"}
	if _, err := c.Resolve(context.Background(), in, []string{"town", "street"}); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if gotQuery != "Troy, 500 Elm Dr" {
		t.Errorf("composed query = %q", gotQuery)
	}
}

func TestResolve_NonConfidentResponses(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"zero results", `{"status": "ZERO_RESULTS", "results": []}`},
		{"no street number", `{"status": "OK", "results": [{"address_components": [
			{"long_name": "Portland", "short_name": "Portland", "types": ["locality"]}]}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})
			_, err := c.Resolve(context.Background(), "nowhere", nil)
			var unavail *UnavailableError
			if !errors.As(err, &unavail) {
				t.Errorf("expected UnavailableError, got %v", err)
			}
		})
	}
}

func TestResolve_ProviderError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.Resolve(context.Background(), "123 Main St", nil)
	var unavail *UnavailableError
	if !errors.As(err, &unavail) {
		t.Errorf("expected UnavailableError, got %v", err)
	}
}

func TestResolve_UnsupportedInput(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(okBody))
	})
	_, err := c.Resolve(context.Background(), 42, nil)
	var inErr *normalize.InputError
	if !errors.As(err, &inErr) {
		t.Errorf("expected InputError, got %v", err)
	}
}
