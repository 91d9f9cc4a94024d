package utils

import (
	"math"
	"strconv"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// ToMinorUnits converts a rupee amount to paise so amounts compare exactly
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// HasPaisePrecision reports whether amount has no more than two decimal places
func HasPaisePrecision(amount float64) bool {
	scaled := amount * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}
