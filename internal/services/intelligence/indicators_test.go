package intelligence

import (
	"testing"
	"time"

	"MarketMind/internal/domain/models"
)

func snap(last, open, high, low, prevClose, changePct float64) *models.MarketSnapshot {
	return &models.MarketSnapshot{
		Symbol:        "NIFTY 50",
		LastPrice:     last,
		Open:          open,
		High:          high,
		Low:           low,
		PrevClose:     prevClose,
		Change:        last - prevClose,
		ChangePercent: changePct,
		FetchedAt:     time.Now(),
	}
}

func TestComputeIndicatorsBasics(t *testing.T) {
	s := snap(24150, 24000, 24200, 24000, 24000, 0.625)
	ind := ComputeIndicators(s)

	if ind.Momentum != 0.63 {
		t.Fatalf("momentum %v want 0.63", ind.Momentum)
	}
	if ind.MomentumStrength != 0.63 {
		t.Fatalf("momentum strength %v want 0.63", ind.MomentumStrength)
	}
	// (24150-24000)/200 * 100 = 75
	if ind.PricePosition != 75 {
		t.Fatalf("price position %v want 75", ind.PricePosition)
	}
	// (24200-24000)/24000 * 100 = 0.83
	if ind.Volatility != 0.83 {
		t.Fatalf("volatility %v want 0.83", ind.Volatility)
	}
	// 50 + 2*0.625 = 51.25
	if ind.Oscillator != 51.25 {
		t.Fatalf("oscillator %v want 51.25", ind.Oscillator)
	}
	if ind.TrendStrength != "strong" {
		t.Fatalf("trend strength %q want strong", ind.TrendStrength)
	}
}

func TestComputeIndicatorsFlatRange(t *testing.T) {
	s := snap(24000, 24000, 24000, 24000, 24000, 0)
	ind := ComputeIndicators(s)
	if ind.PricePosition != 50 {
		t.Fatalf("zero range should default price position to 50, got %v", ind.PricePosition)
	}
	if ind.Oscillator != 50 {
		t.Fatalf("flat day oscillator %v want 50", ind.Oscillator)
	}
	if ind.TrendStrength != "weak" {
		t.Fatalf("trend strength %q want weak", ind.TrendStrength)
	}
}

func TestComputeIndicatorsOscillatorClamp(t *testing.T) {
	up := snap(25000, 24000, 25100, 24000, 24000, 15)
	if ind := ComputeIndicators(up); ind.Oscillator != 70 {
		t.Fatalf("oscillator %v want clamped 70", ind.Oscillator)
	}
	down := snap(23000, 24000, 24000, 22900, 24000, -15)
	if ind := ComputeIndicators(down); ind.Oscillator != 30 {
		t.Fatalf("oscillator %v want clamped 30", ind.Oscillator)
	}
}

func TestComputeIndicatorsZeroPrevClose(t *testing.T) {
	s := snap(100, 100, 110, 90, 0, 0)
	ind := ComputeIndicators(s)
	if ind.Volatility != 0 {
		t.Fatalf("volatility %v want 0 when prev close missing", ind.Volatility)
	}
}

func TestComputeIndicatorsTrendStrengthBands(t *testing.T) {
	// Position 25, momentum -0.8: strong bearish structure.
	s := snap(24050, 24200, 24250, 24000, 24250, -0.8)
	if ind := ComputeIndicators(s); ind.TrendStrength != "strong" {
		t.Fatalf("want strong, got %q", ind.TrendStrength)
	}
	// Position 65 with small momentum: moderate.
	s = snap(24130, 24100, 24200, 24000, 24100, 0.1)
	if ind := ComputeIndicators(s); ind.TrendStrength != "moderate" {
		t.Fatalf("want moderate, got %q", ind.TrendStrength)
	}
	// Mid-range position: weak.
	s = snap(24100, 24100, 24200, 24000, 24100, 0.1)
	if ind := ComputeIndicators(s); ind.TrendStrength != "weak" {
		t.Fatalf("want weak, got %q", ind.TrendStrength)
	}
}

func TestComputeIndicatorsSupportResistance(t *testing.T) {
	s := snap(24005, 24100, 24300, 24000, 24200, -0.8)
	ind := ComputeIndicators(s)
	if !ind.NearSupport {
		t.Fatalf("price within 1%% of low should flag support")
	}
	if ind.NearResistance {
		t.Fatalf("price far from high should not flag resistance")
	}

	s = snap(24295, 24100, 24300, 24000, 24200, 0.4)
	ind = ComputeIndicators(s)
	if !ind.NearResistance {
		t.Fatalf("price within 1%% of high should flag resistance")
	}
}
