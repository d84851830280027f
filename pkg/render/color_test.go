package render

import "testing"

func TestIntensity(t *testing.T) {
	tests := []struct {
		weight int
		want   int
	}{
		{-3, 0},
		{0, 0},
		{1, 1},
		{2, 2},
		{16, 2},
		{17, 3},
		{81, 3},
		{625, 5},
		{626, 6},
	}
	for _, tt := range tests {
		if got := Intensity(tt.weight); got != tt.want {
			t.Errorf("Intensity(%d) = %d, want %d", tt.weight, got, tt.want)
		}
	}
}

func TestPalette(t *testing.T) {
	tests := []struct {
		name           string
		intensity, max int
		want           string
	}{
		{"zero", 0, 5, "#ffffd9"},
		{"no scale", 3, 0, "#ffffd9"},
		{"top", 5, 5, "#081d58"},
		{"above top", 9, 5, "#081d58"},
		{"exact stop", 1, 8, "#edf8b1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Palette(tt.intensity, tt.max); got != tt.want {
				t.Errorf("Palette(%d, %d) = %s, want %s", tt.intensity, tt.max, got, tt.want)
			}
		})
	}

	// Between stops the result is a valid hex colour distinct from both ends.
	mid := Palette(1, 3)
	if len(mid) != 7 || mid[0] != '#' || mid == ramp[0] || mid == ramp[len(ramp)-1] {
		t.Errorf("Palette(1, 3) = %q", mid)
	}
}

func TestTextColor(t *testing.T) {
	if got := TextColor("#081d58"); got != "#ffffff" {
		t.Errorf("TextColor(dark) = %s, want white", got)
	}
	if got := TextColor("#ffffd9"); got != "#000000" {
		t.Errorf("TextColor(light) = %s, want black", got)
	}
	if got := TextColor("bogus"); got != "#000000" {
		t.Errorf("TextColor(bogus) = %s, want black", got)
	}
}

func TestMaxIntensity(t *testing.T) {
	if got := MaxIntensity(); got != 0 {
		t.Errorf("MaxIntensity() = %d, want 0", got)
	}
	if got := MaxIntensity(0, 16, 626, 3); got != 6 {
		t.Errorf("MaxIntensity = %d, want 6", got)
	}
}
