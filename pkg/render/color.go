package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ramp runs from light yellow through green to dark blue.
var ramp = []string{
	"#ffffd9", "#edf8b1", "#c7e9b4", "#7fcdbb", "#41b6c4",
	"#1d91c0", "#225ea8", "#253494", "#081d58",
}

// Intensity compresses a weight with a fourth root and rounds up.
// Non-positive weights map to 0.
func Intensity(weight int) int {
	if weight <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(math.Sqrt(float64(weight)))))
}

// Palette returns the fill colour for an intensity on a scale whose top is
// maxIntensity. Low values are pale yellow, the top is dark blue.
func Palette(intensity, maxIntensity int) string {
	if maxIntensity <= 0 || intensity <= 0 {
		return ramp[0]
	}
	t := math.Min(float64(intensity)/float64(maxIntensity), 1)

	pos := t * float64(len(ramp)-1)
	i := int(math.Floor(pos))
	if i >= len(ramp)-1 {
		return ramp[len(ramp)-1]
	}
	frac := pos - float64(i)
	if frac == 0 {
		return ramp[i]
	}
	a, _ := colorful.Hex(ramp[i])
	b, _ := colorful.Hex(ramp[i+1])
	return a.BlendLab(b, frac).Clamped().Hex()
}

// TextColor returns black or white, whichever reads better on fill.
func TextColor(fill string) string {
	c, err := colorful.Hex(fill)
	if err != nil {
		return "#000000"
	}
	l, _, _ := c.Lab()
	if l < 0.55 {
		return "#ffffff"
	}
	return "#000000"
}

// MaxIntensity returns the intensity of the largest weight.
func MaxIntensity(weights ...int) int {
	m := 0
	for _, w := range weights {
		m = max(m, Intensity(w))
	}
	return m
}
