package strategy

import (
	"math"
	"testing"
)

func ratioSlide() *DynamicSlide {
	return &DynamicSlide{
		Mode:       SlideModeRatio,
		Zero:       0.5,
		Positive:   0.1,
		Negative:   0.2,
		ZoneIgnore: 0.05,
		ZoneMax:    0.9,
	}
}

func TestIntensityBalanced(t *testing.T) {
	d := ratioSlide()
	if got := d.Intensity(100, 100, 1, 1); got != 0 {
		t.Fatalf("balanced intensity = %v, want 0", got)
	}
}

func TestIntensityClampedAtExtremes(t *testing.T) {
	d := ratioSlide()
	// maker 全部卖光，强度应钳到 +1
	if got := d.Intensity(0, 200, 1, 1); got != 1 {
		t.Fatalf("empty maker intensity = %v, want 1", got)
	}
	// maker 囤满，钳到 -1
	if got := d.Intensity(200, 0, 1, 1); got != -1 {
		t.Fatalf("full maker intensity = %v, want -1", got)
	}
}

func TestIntensityZeroBalances(t *testing.T) {
	d := ratioSlide()
	if got := d.Intensity(0, 0, 1, 1); got != 0 {
		t.Fatalf("zero balances intensity = %v, want 0", got)
	}
}

func TestSlideIgnoreZone(t *testing.T) {
	d := ratioSlide()
	// makerTotal 104, takerTotal 96: intensity = (100-104)/90 ≈ -0.044，落在忽略区
	slide, intensity := d.Slide(104, 96, 1, 1)
	if math.Abs(intensity) >= d.ZoneIgnore {
		t.Fatalf("intensity %v not inside ignore zone", intensity)
	}
	if slide != 0 {
		t.Fatalf("slide = %v, want 0 inside ignore zone", slide)
	}
}

func TestSlideScalesWithLimits(t *testing.T) {
	d := ratioSlide()

	slide, intensity := d.Slide(0, 200, 1, 1)
	approx(t, intensity, 1, 1e-9)
	approx(t, slide, 0.1, 1e-9)

	slide, intensity = d.Slide(200, 0, 1, 1)
	approx(t, intensity, -1, 1e-9)
	approx(t, slide, 0.2, 1e-9)
}

func TestSlideStaticMode(t *testing.T) {
	d := &DynamicSlide{
		Mode:       SlideModeStatic,
		Zero:       100,
		Positive:   0.1,
		Negative:   0.2,
		ZoneIgnore: 0.05,
		ZoneMax:    1,
	}
	// 零点资产价 2 → 零点 200 maker；余额 100 → intensity 0.5
	slide, intensity := d.Slide(100, 0, 1, 2)
	approx(t, intensity, 0.5, 1e-9)
	approx(t, slide, 0.05, 1e-9)
}

func TestAutoDeriveRatio(t *testing.T) {
	d := ratioSlide()
	d.Zero = AutoZero
	if err := d.AutoDerive(100, 300, 1); err != nil {
		t.Fatalf("AutoDerive: %v", err)
	}
	approx(t, d.Zero, 0.25, 1e-9)
}

func TestAutoDeriveRatioEmpty(t *testing.T) {
	d := ratioSlide()
	d.Zero = AutoZero
	if err := d.AutoDerive(0, 0, 1); err != nil {
		t.Fatalf("AutoDerive: %v", err)
	}
	approx(t, d.Zero, 0.5, 1e-9)
}

func TestAutoDeriveStatic(t *testing.T) {
	d := &DynamicSlide{Mode: SlideModeStatic, Zero: AutoZero, ZoneMax: 1}
	if err := d.AutoDerive(150, 0, 1); err != nil {
		t.Fatalf("AutoDerive: %v", err)
	}
	approx(t, d.Zero, 150, 1e-9)

	d = &DynamicSlide{Mode: SlideModeStatic, Zero: AutoZero, ZoneMax: 1}
	if err := d.AutoDerive(0, 0, 1); err == nil {
		t.Fatal("expected error for zero maker balance")
	}
}

func TestAutoDeriveNoop(t *testing.T) {
	d := ratioSlide()
	if err := d.AutoDerive(100, 300, 1); err != nil {
		t.Fatalf("AutoDerive: %v", err)
	}
	approx(t, d.Zero, 0.5, 1e-9)
}
