package workout

import (
	"fmt"
	"strconv"
	"strings"
)

// lbPerKg is the conversion factor between pounds and kilograms.
const lbPerKg = 2.2046226218

// Convert converts a weight value between units. Conversion is simple linear
// scaling; equal units are an identity.
func Convert(value float64, from, to WeightUnit) float64 {
	if from == to {
		return value
	}
	if from == UnitLb && to == UnitKg {
		return value / lbPerKg
	}
	return value * lbPerKg
}

// PlateTotal computes the total weight of a plate-loaded bar:
// base + 2 * Σ(plate value × per-side count). The factor of two accounts for
// both sides of the bar. base is zero for plate-loaded machines without a
// bar. Counts referencing unknown option ids contribute nothing, which keeps
// historical totals stable after catalog edits.
func PlateTotal(base float64, options []PlateOption, counts []PlateCount) float64 {
	total := clampNonNegative(base)
	for _, count := range counts {
		if count.CountPerSide <= 0 {
			continue
		}
		for _, option := range options {
			if option.ID == count.PlateOptionID {
				total += 2 * option.Value * float64(count.CountPerSide)
				break
			}
		}
	}
	return total
}

// FormatWeight renders a weight value without decimals when whole, otherwise
// with up to two decimals and trailing zeros stripped.
func FormatWeight(value float64) string {
	s := strconv.FormatFloat(value, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// ParseWeight parses a user-entered weight. Negative values are rejected so
// callers can surface a validation message before any mutation.
func ParseWeight(input string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: not a number: %q", ErrValidation, input)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: negative weight: %q", ErrValidation, input)
	}
	return value, nil
}

// defaultPlateValues are the per-unit plate presets installed by setup.
//
//nolint:gochecknoglobals // static presets.
var defaultPlateValues = map[WeightUnit][]float64{
	UnitLb: {45, 35, 25, 10, 5, 2.5},
	UnitKg: {25, 20, 15, 10, 5, 2.5, 1.25},
}

// DefaultPlateCatalog builds the preset plate catalog for a unit.
func DefaultPlateCatalog(unit WeightUnit) []PlateOption {
	values := defaultPlateValues[unit]
	options := make([]PlateOption, 0, len(values))
	for _, value := range values {
		options = append(options, PlateOption{
			ID:    newID(),
			Value: value,
			Unit:  unit,
			Label: FormatWeight(value) + " " + string(unit),
		})
	}
	return options
}
