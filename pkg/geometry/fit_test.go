package geometry

import (
	"math"
	"testing"
)

func TestAspectFitExactMatch(t *testing.T) {
	// 4:3 image into a 4:3 container fills it exactly, no letterboxing.
	fit := AspectFit(NewSize(4000, 3000), NewSize(800, 600))

	if fit.Rect.X != 0 || fit.Rect.Y != 0 {
		t.Errorf("expected origin (0,0), got (%v,%v)", fit.Rect.X, fit.Rect.Y)
	}
	if fit.Rect.Width != 800 || fit.Rect.Height != 600 {
		t.Errorf("expected size (800,600), got (%v,%v)", fit.Rect.Width, fit.Rect.Height)
	}
	if got := fit.Scale(); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("expected scale 0.2, got %v", got)
	}
}

func TestAspectFitLetterbox(t *testing.T) {
	tests := []struct {
		name      string
		image     Size
		container Size
		want      Rect
	}{
		{
			name:      "wide image in square container",
			image:     NewSize(4000, 3000),
			container: NewSize(600, 600),
			want:      Rect{X: 0, Y: 75, Width: 600, Height: 450},
		},
		{
			name:      "tall image in wide container",
			image:     NewSize(1000, 2000),
			container: NewSize(800, 400),
			want:      Rect{X: 300, Y: 0, Width: 200, Height: 400},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit := AspectFit(tt.image, tt.container)
			if math.Abs(fit.Rect.X-tt.want.X) > 1e-9 ||
				math.Abs(fit.Rect.Y-tt.want.Y) > 1e-9 ||
				math.Abs(fit.Rect.Width-tt.want.Width) > 1e-9 ||
				math.Abs(fit.Rect.Height-tt.want.Height) > 1e-9 {
				t.Errorf("got %+v, want %+v", fit.Rect, tt.want)
			}
		})
	}
}

func TestViewImageRoundTrip(t *testing.T) {
	fit := AspectFit(NewSize(4032, 3024), NewSize(390, 700))

	for _, p := range []Point2D{
		{X: 0, Y: 0},
		{X: 100, Y: 100},
		{X: 4031, Y: 3023},
		{X: 2016.5, Y: 1511.75},
		{X: 7.25, Y: 2999.9},
	} {
		view := fit.ImageToView(p)
		back := fit.ViewToImage(view)
		if math.Abs(back.X-p.X) > 1e-6 || math.Abs(back.Y-p.Y) > 1e-6 {
			t.Errorf("round trip of %+v gave %+v", p, back)
		}
	}
}

func TestRadiusRoundTrip(t *testing.T) {
	fit := AspectFit(NewSize(4032, 3024), NewSize(390, 700))

	for _, r := range []float64{0, 1, 50, 123.456} {
		got := fit.RadiusToView(fit.RadiusToImage(r))
		if math.Abs(got-r) > 1e-9 {
			t.Errorf("radius round trip of %v gave %v", r, got)
		}
	}
}

func TestAspectFitDegenerate(t *testing.T) {
	fit := AspectFit(NewSize(0, 0), NewSize(800, 600))
	if fit.Scale() != 0 {
		t.Errorf("degenerate image should have zero scale, got %v", fit.Scale())
	}
	if got := fit.ViewToImage(Point2D{X: 10, Y: 10}); got != (Point2D{}) {
		t.Errorf("degenerate mapping should return origin, got %+v", got)
	}
}
