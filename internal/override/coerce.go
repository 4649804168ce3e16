package override

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Contract length bounds in months.
const (
	MinContractMonths     = 2
	MaxContractMonths     = 36
	DefaultContractMonths = 12
)

// Number coerces a form value to a non-negative number. Non-numeric, empty and negative
// inputs become 0. Text may carry a leading "$" and thousands separators.
func Number(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		f = ParseNumber(x)
	case bool:
		if x {
			f = 1
		}
	default:
		return 0
	}
	return nonNegative(f)
}

// ParseNumber parses text the way the agreement forms accept it.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return nonNegative(f)
}

// ClampMonths bounds a contract length to [MinContractMonths, MaxContractMonths].
func ClampMonths(m int) int {
	if m < MinContractMonths {
		return MinContractMonths
	}
	if m > MaxContractMonths {
		return MaxContractMonths
	}
	return m
}

// ContractMonths coerces a form value to a clamped contract length. Values that cannot be
// read as a number at all fall back to DefaultContractMonths.
func ContractMonths(v any) int {
	switch x := v.(type) {
	case nil:
		return DefaultContractMonths
	case string:
		s := strings.TrimSpace(x)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return DefaultContractMonths
		}
		return ClampMonths(int(math.Round(f)))
	case int:
		return ClampMonths(x)
	default:
		return ClampMonths(int(math.Round(Number(v))))
	}
}

func nonNegative(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
