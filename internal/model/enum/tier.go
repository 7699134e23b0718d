package enum

import "strings"

// VolatilityTier low, medium, high
type VolatilityTier uint8

const (
	_tier_beg VolatilityTier = iota
	TierLow
	TierMedium
	TierHigh
	_tier_end
)

func (v VolatilityTier) IsAvailable() bool {
	return v > _tier_beg && v < _tier_end
}

func (v VolatilityTier) String() string {
	switch v {
	case TierLow:
		return "LOW"
	case TierMedium:
		return "MEDIUM"
	case TierHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// SpreadFactor widens quoted spreads for choppier instruments.
func (v VolatilityTier) SpreadFactor() float64 {
	switch v {
	case TierLow:
		return 0.8
	case TierMedium:
		return 1.0
	case TierHigh:
		return 1.3
	default:
		return 1.0
	}
}

// SizeFactor shrinks quoted sizes for choppier instruments.
func (v VolatilityTier) SizeFactor() float64 {
	switch v {
	case TierLow:
		return 1.2
	case TierMedium:
		return 1.0
	case TierHigh:
		return 0.8
	default:
		return 1.0
	}
}

// ParseVolatilityTier accepts config strings ("LOW"/"MEDIUM"/"HIGH", any case).
func ParseVolatilityTier(raw string) (VolatilityTier, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "LOW":
		return TierLow, true
	case "MEDIUM":
		return TierMedium, true
	case "HIGH":
		return TierHigh, true
	default:
		return _tier_beg, false
	}
}
