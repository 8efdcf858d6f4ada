package viz

import (
	"strings"
	"testing"
)

func TestCanvasSVG(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	svg := CanvasSVG(c, 10, "#00ff00")

	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	if !strings.Contains(svg, `cx="5.0" cy="5.0"`) || !strings.Contains(svg, `cx="35.0" cy="35.0"`) {
		t.Errorf("dots at wrong positions:\n%s", svg)
	}
	if !strings.Contains(svg, `width="40" height="40"`) {
		t.Errorf("unexpected size:\n%s", svg)
	}
	if CanvasSVG(nil, 1, "#fff") != "" {
		t.Error("nil canvas should give empty output")
	}
}

func TestSeriesSVG(t *testing.T) {
	tests := []struct {
		name   string
		xs, ys []float64
		points int
	}{
		{"falling", []float64{0, 1, 2}, []float64{2, 1.5, 0.5}, 3},
		{"flat", []float64{0, 1}, []float64{1, 1}, 2},
		{"single", []float64{0}, []float64{1}, 0},
		{"mismatched", []float64{0, 1, 2}, []float64{1, 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := SeriesSVG(tt.xs, tt.ys, 100, 50, "#ff0000")
			if tt.points == 0 {
				if svg != "" {
					t.Error("expected empty output")
				}
				return
			}
			if got := strings.Count(svg, "M") + strings.Count(svg, " L"); got != tt.points {
				t.Errorf("expected %d path points, got %d", tt.points, got)
			}
		})
	}
}
