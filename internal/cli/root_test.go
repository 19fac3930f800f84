package cli

import (
	"reflect"
	"testing"

	"github.com/julianstephens/routinely/internal/models"
)

func TestParseRepeatDays(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{"short names", "mon,wed,fri", []int{1, 3, 5}, false},
		{"full names", "monday,sunday", []int{1, 7}, false},
		{"numbers", "1,6,7", []int{1, 6, 7}, false},
		{"mixed names and numbers", "tue,4", []int{2, 4}, false},
		{"whitespace and case", " Mon , SAT ", []int{1, 6}, false},
		{"empty", "", nil, true},
		{"only commas", ",,", nil, true},
		{"unknown name", "funday", nil, true},
		{"number out of range", "8", nil, true},
		{"zero", "0", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRepeatDays(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepeatDays(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRepeatDays(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatRepeatDays(t *testing.T) {
	if got := FormatRepeatDays([]int{1, 3, 7}); got != "Mon,Wed,Sun" {
		t.Errorf("FormatRepeatDays([1 3 7]) = %q, want %q", got, "Mon,Wed,Sun")
	}
	if got := FormatRepeatDays(nil); got != "" {
		t.Errorf("FormatRepeatDays(nil) = %q, want empty", got)
	}
	// Out-of-range values are dropped rather than rendered.
	if got := FormatRepeatDays([]int{0, 2, 9}); got != "Tue" {
		t.Errorf("FormatRepeatDays([0 2 9]) = %q, want %q", got, "Tue")
	}
}

func TestStatusGlyph(t *testing.T) {
	tests := []struct {
		status models.Status
		want   string
	}{
		{models.StatusCompleted, "✓"},
		{models.StatusInProgress, "▶"},
		{models.StatusSkipped, "~"},
		{models.StatusMissed, "✗"},
		{models.StatusPending, "·"},
	}

	for _, tt := range tests {
		if got := StatusGlyph(tt.status); got != tt.want {
			t.Errorf("StatusGlyph(%s) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
