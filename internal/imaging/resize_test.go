package imaging

import (
	"testing"
)

func TestAspectLock(t *testing.T) {
	lock := NewAspectLock(400, 300)

	if got := lock.FromWidth(200); got != (ResizeTarget{200, 150}) {
		t.Errorf("FromWidth(200): got %+v, want 200x150", got)
	}
	if got := lock.FromHeight(150); got != (ResizeTarget{200, 150}) {
		t.Errorf("FromHeight(150): got %+v, want 200x150", got)
	}
	if lock.Ratio() != 400.0/300.0 {
		t.Errorf("Ratio: got %v", lock.Ratio())
	}
	if (AspectLock{}).Ratio() != 1 {
		t.Error("zero lock should report ratio 1")
	}

	start := ResizeTarget{400, 300}
	tests := []struct {
		name    string
		in      ResizeTarget
		current ResizeTarget
		want    ResizeTarget
	}{
		{"width only", ResizeTarget{Width: 200}, start, ResizeTarget{200, 150}},
		{"height only", ResizeTarget{Height: 60}, start, ResizeTarget{80, 60}},
		{"width changed", ResizeTarget{100, 300}, start, ResizeTarget{100, 75}},
		{"height changed", ResizeTarget{400, 30}, start, ResizeTarget{40, 30}},
		{"unchanged", ResizeTarget{400, 300}, start, ResizeTarget{400, 300}},
		// Mid-interaction: the surface is already 200x150 and only the height
		// moved, so it drives even though the width differs from lock time.
		{"height changed after width", ResizeTarget{200, 100}, ResizeTarget{200, 150}, ResizeTarget{133, 100}},
		{"width changed after width", ResizeTarget{100, 150}, ResizeTarget{200, 150}, ResizeTarget{100, 75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lock.Apply(tt.in, tt.current); got != tt.want {
				t.Errorf("Apply(%+v): got %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAspectLock_NoDrift(t *testing.T) {
	// Each event derives from the size at lock time, so a sequence of slider
	// moves lands exactly where a single move would.
	lock := NewAspectLock(1000, 800)
	for _, w := range []int{333, 517, 250, 999, 333} {
		got := lock.FromWidth(w)
		want := roundInt(float64(w) * 0.8)
		if got.Height != want {
			t.Errorf("FromWidth(%d): height %d, want %d", w, got.Height, want)
		}
	}
}

func TestResize(t *testing.T) {
	s := SurfaceFromImage(createPatternImage(1000, 800))
	lock := LockAspect(s)

	out := Resize(s, ResizeTarget{Width: 200}, ResizeOptions{Lock: &lock})
	if out.Width() != 200 || out.Height() != 160 {
		t.Errorf("size: got %dx%d, want 200x160", out.Width(), out.Height())
	}
	if len(out.Pix()) != 200*160*4 {
		t.Errorf("len(Pix): got %d", len(out.Pix()))
	}
	if s.Width() != 1000 {
		t.Error("resize changed the input surface")
	}
}

func TestResize_Floor(t *testing.T) {
	s := SurfaceFromImage(createPatternImage(400, 300))
	lock := LockAspect(s)

	out := Resize(s, ResizeTarget{Width: 5}, ResizeOptions{Lock: &lock})
	if out.Width() < MinDimension || out.Height() < MinDimension {
		t.Errorf("size: got %dx%d, want both >= %d", out.Width(), out.Height(), MinDimension)
	}

	out = Resize(s, ResizeTarget{Width: 1, Height: 1}, ResizeOptions{})
	if out.Width() != MinDimension || out.Height() != MinDimension {
		t.Errorf("unlocked: got %dx%d, want 10x10", out.Width(), out.Height())
	}
}

func TestResize_CeilingKeepsRatio(t *testing.T) {
	s := SurfaceFromImage(createPatternImage(400, 300))
	lock := LockAspect(s)

	out := Resize(s, ResizeTarget{Width: 2000}, ResizeOptions{Lock: &lock, MaxWidth: 1000, MaxHeight: 800})
	if out.Width() != 1000 || out.Height() != 750 {
		t.Errorf("size: got %dx%d, want 1000x750", out.Width(), out.Height())
	}

	out = Resize(s, ResizeTarget{Width: 800, Height: 600}, ResizeOptions{})
	if out.Width() != 800 || out.Height() != 600 {
		t.Errorf("uncapped upscale: got %dx%d, want 800x600", out.Width(), out.Height())
	}
}

func TestResize_SameSizeCopies(t *testing.T) {
	s := SurfaceFromImage(createPatternImage(50, 40))
	out := Resize(s, ResizeTarget{50, 40}, ResizeOptions{})
	if out == s {
		t.Fatal("same-size resize should return a copy, not the input")
	}
	if !out.Equal(s) {
		t.Error("same-size resize changed pixels")
	}
}

func TestScaleDimensions(t *testing.T) {
	tests := []struct {
		w, h         int
		factor       float64
		wantW, wantH int
	}{
		{400, 300, 0.8, 320, 240},
		{12, 100, 0.5, 10, 50},
		{6, 6, 0.5, 6, 6},
	}
	for _, tt := range tests {
		w, h := scaleDimensions(tt.w, tt.h, tt.factor)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("scaleDimensions(%d,%d,%v): got %dx%d, want %dx%d", tt.w, tt.h, tt.factor, w, h, tt.wantW, tt.wantH)
		}
	}
}
