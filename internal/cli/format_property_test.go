package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"chartline-trader/internal/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{2*time.Minute + 5*time.Second, "2m 5s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %s, want %s", tt.d, got, tt.want)
		}
	}
}

func TestFormatBoxAndTrendline(t *testing.T) {
	if FormatBox(nil) != "-" {
		t.Error("nil box should render as a dash")
	}
	if got := FormatBox(&models.Box{Left: 40, Top: 160, Right: 80, Bottom: 190}); got != "40,160 -> 80,190" {
		t.Errorf("FormatBox = %s", got)
	}

	v := models.ContractView{
		Type:     models.PlToPl,
		Sender:   models.SenderView{ArrowNumber: 12},
		Receiver: models.ReceiverView{ArrowNumber: 8},
	}
	if got := FormatTrendline(v); got != "PL12->PL8" {
		t.Errorf("FormatTrendline = %s", got)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"abcdef", 0, ""},
		{"abcdef", 2, "ab"},
		{"abcdef", 6, "abcdef"},
		{"abcdefgh", 6, "abc..."},
	}
	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

// Property: truncation never exceeds the limit and keeps short strings intact.
func TestProperty_TruncateString(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	properties := gopter.NewProperties(parameters)

	properties.Property("length is bounded", prop.ForAll(
		func(s string, maxLen int) bool {
			got := TruncateString(s, maxLen)
			if len(got) > maxLen {
				return false
			}
			if len(s) <= maxLen {
				return got == s
			}
			if maxLen > 3 {
				return strings.HasSuffix(got, "...") && strings.HasPrefix(s, got[:maxLen-3])
			}
			return strings.HasPrefix(s, got)
		},
		gen.AlphaString(),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}
