package usecase

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/xavierca1/nesthome-leads/internal/entity"
)

const maxPlotSize = 1_000_000

// EstimateCost prices a build from plot size, floor configuration and quality tier.
func EstimateCost(input EstimateInput) (*EstimateOutput, error) {
	var errs ValidationErrors

	if input.PlotSize <= 0 || input.PlotSize > maxPlotSize {
		errs = append(errs, ValidationError{"plotSize", "must be a positive number of square feet"})
	}

	multiplier, err := entity.FindFloorMultiplier(input.Floors)
	if errors.Is(err, entity.ErrFloorsNotFound) {
		errs = append(errs, ValidationError{"floors", "is not a valid option"})
	}

	tier, err := entity.FindQualityTier(input.Quality)
	if errors.Is(err, entity.ErrQualityNotFound) {
		errs = append(errs, ValidationError{"quality", "is not a valid option"})
	}

	if len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	builtUp := int(math.Round(float64(input.PlotSize) * multiplier * entity.BuiltUpRatio))
	minCost := builtUp * tier.MinRate
	maxCost := builtUp * tier.MaxRate

	return &EstimateOutput{
		BuiltUpArea:  builtUp,
		MinCost:      minCost,
		MaxCost:      maxCost,
		TotalCost:    float64(minCost+maxCost) / 2,
		CostPerSqft:  float64(tier.MinRate+tier.MaxRate) / 2,
		MinFormatted: FormatINR(float64(minCost)),
		MaxFormatted: FormatINR(float64(maxCost)),
	}, nil
}

// FormatINR renders an amount in rupees using crore and lakh units above one lakh.
func FormatINR(amount float64) string {
	switch {
	case amount >= 1e7:
		return fmt.Sprintf("₹%.2f Cr", amount/1e7)
	case amount >= 1e5:
		return fmt.Sprintf("₹%.2f Lakhs", amount/1e5)
	}
	return "₹" + groupThousands(int64(math.Round(amount)))
}

// Below one lakh Indian and western digit grouping coincide.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
