package requests

import (
	"testing"

	"github.com/address-normalizer/internal/normalize"
)

func TestNormalizeOptions_Resolution(t *testing.T) {
	ptr := func(v bool) *bool { return &v }
	cases := []struct {
		name string
		flag *bool
		def  bool
		want bool
	}{
		{"unset inherits default true", nil, true, true},
		{"unset inherits default false", nil, false, false},
		{"explicit true over default false", ptr(true), false, true},
		{"explicit false over default true", ptr(false), true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := NormalizeOptions{GeocoderFallback: tc.flag, Index: tc.flag}
			if got := opts.GeocoderFallbackOr(tc.def); got != tc.want {
				t.Errorf("GeocoderFallbackOr(%v) = %v, want %v", tc.def, got, tc.want)
			}
			if got := opts.IndexOr(tc.def); got != tc.want {
				t.Errorf("IndexOr(%v) = %v, want %v", tc.def, got, tc.want)
			}
		})
	}
}

func TestBuildKeyMap(t *testing.T) {
	if BuildKeyMap(nil) != nil {
		t.Error("empty wire map must yield a nil key map")
	}
	km := BuildKeyMap(map[string]string{
		normalize.FieldAddressLine1: "Line1",
		normalize.FieldState:        "St",
	})
	if km == nil || km.AddressLine1 != "Line1" || km.State != "St" {
		t.Errorf("unexpected key map: %+v", km)
	}
}
