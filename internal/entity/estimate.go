package entity

import "errors"

var (
	ErrQualityNotFound = errors.New("unknown construction quality")
	ErrFloorsNotFound  = errors.New("unknown floor configuration")
)

// QualityTier is a per-square-foot construction rate band.
type QualityTier struct {
	Key     string
	Label   string
	MinRate int
	MaxRate int
}

var QualityTiers = map[string]QualityTier{
	"standard": {Key: "standard", Label: "Standard", MinRate: 1400, MaxRate: 1800},
	"premium":  {Key: "premium", Label: "Premium", MinRate: 1800, MaxRate: 2500},
	"luxury":   {Key: "luxury", Label: "Luxury", MinRate: 2500, MaxRate: 3500},
}

// FloorMultipliers scale the plot area by the number of storeys above ground.
var FloorMultipliers = map[string]float64{
	"G":   1,
	"G+1": 1.85,
	"G+2": 2.7,
	"G+3": 3.5,
}

// BuiltUpRatio is the share of the plot that ends up as built-up area per floor.
const BuiltUpRatio = 0.7

func FindQualityTier(key string) (QualityTier, error) {
	tier, ok := QualityTiers[key]
	if !ok {
		return QualityTier{}, ErrQualityNotFound
	}
	return tier, nil
}

func FindFloorMultiplier(floors string) (float64, error) {
	m, ok := FloorMultipliers[floors]
	if !ok {
		return 0, ErrFloorsNotFound
	}
	return m, nil
}
