package httpapi

import (
	"reflect"
	"testing"
)

func TestConfigValidateAppliesDefaults(t *testing.T) {
	t.Parallel()
	cfg := Config{DatabaseURL: "sqlite://parking.db"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.ListenAddr != ":3000" {
		t.Fatalf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Fatalf("expected wildcard origins, got %v", cfg.AllowedOrigins)
	}
}

func TestConfigValidateRequiresDatabaseURL(t *testing.T) {
	t.Parallel()
	cfg := Config{ListenAddr: ":3000"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing database url to fail validation")
	}
}

func TestParseAllowedOrigins(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: []string{}},
		{name: "single", raw: "http://localhost:8000", want: []string{"http://localhost:8000"}},
		{name: "spaced list", raw: " http://a.example , http://b.example ", want: []string{"http://a.example", "http://b.example"}},
		{name: "trailing comma", raw: "http://a.example,", want: []string{"http://a.example"}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			got := ParseAllowedOrigins(testCase.raw)
			if !reflect.DeepEqual(got, testCase.want) {
				t.Fatalf("expected %v, got %v", testCase.want, got)
			}
		})
	}
}
