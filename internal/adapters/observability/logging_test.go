package observability_test

import (
	"testing"

	"github.com/rs/zerolog"

	"hotel_rates/internal/adapters/observability"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := observability.SetLevel(in); got != want || zerolog.GlobalLevel() != want {
			t.Fatalf("SetLevel(%q) = %v, global %v, want %v", in, got, zerolog.GlobalLevel(), want)
		}
	}
}
