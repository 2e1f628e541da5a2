package market

import (
	"fmt"
	"strconv"
	"strings"
)

// TenorYears converts tenor strings like "1W", "3M", "10Y" to year fractions.
// Bare numbers are read as years.
func TenorYears(tenor string) (float64, error) {
	t := strings.TrimSpace(strings.ToUpper(tenor))
	if t == "" {
		return 0, fmt.Errorf("TenorYears: empty tenor")
	}
	if strings.HasSuffix(t, "D") {
		v, err := strconv.Atoi(strings.TrimSuffix(t, "D"))
		if err != nil {
			return 0, fmt.Errorf("TenorYears: %q: %w", tenor, err)
		}
		return float64(v) / 365.0, nil
	}
	if strings.HasSuffix(t, "W") {
		v, err := strconv.Atoi(strings.TrimSuffix(t, "W"))
		if err != nil {
			return 0, fmt.Errorf("TenorYears: %q: %w", tenor, err)
		}
		return float64(v) * 7.0 / 365.0, nil
	}
	if strings.HasSuffix(t, "M") {
		v, err := strconv.Atoi(strings.TrimSuffix(t, "M"))
		if err != nil {
			return 0, fmt.Errorf("TenorYears: %q: %w", tenor, err)
		}
		return float64(v) / 12.0, nil
	}
	if strings.HasSuffix(t, "Y") {
		v, err := strconv.Atoi(strings.TrimSuffix(t, "Y"))
		if err != nil {
			return 0, fmt.Errorf("TenorYears: %q: %w", tenor, err)
		}
		return float64(v), nil
	}
	if v, err := strconv.ParseFloat(t, 64); err == nil {
		return v, nil
	}
	return 0, fmt.Errorf("TenorYears: unsupported tenor %q", tenor)
}

// TenorMonths converts month/year tenors ("3M", "2Y") to a month count.
func TenorMonths(tenor string) (int, error) {
	t := strings.TrimSpace(strings.ToUpper(tenor))
	if strings.HasSuffix(t, "M") {
		v, err := strconv.Atoi(strings.TrimSuffix(t, "M"))
		if err != nil {
			return 0, fmt.Errorf("TenorMonths: %q: %w", tenor, err)
		}
		return v, nil
	}
	if strings.HasSuffix(t, "Y") {
		v, err := strconv.Atoi(strings.TrimSuffix(t, "Y"))
		if err != nil {
			return 0, fmt.Errorf("TenorMonths: %q: %w", tenor, err)
		}
		return v * 12, nil
	}
	return 0, fmt.Errorf("TenorMonths: unsupported tenor %q", tenor)
}

// TenorDays converts day/week tenors ("3D", "2W") to a calendar day count.
func TenorDays(tenor string) (int, error) {
	t := strings.TrimSpace(strings.ToUpper(tenor))
	if strings.HasSuffix(t, "D") {
		v, err := strconv.Atoi(strings.TrimSuffix(t, "D"))
		if err != nil {
			return 0, fmt.Errorf("TenorDays: %q: %w", tenor, err)
		}
		return v, nil
	}
	if strings.HasSuffix(t, "W") {
		v, err := strconv.Atoi(strings.TrimSuffix(t, "W"))
		if err != nil {
			return 0, fmt.Errorf("TenorDays: %q: %w", tenor, err)
		}
		return v * 7, nil
	}
	return 0, fmt.Errorf("TenorDays: unsupported short tenor %q", tenor)
}

// IsShortTenor reports whether the tenor is expressed in days or weeks.
func IsShortTenor(tenor string) bool {
	t := strings.TrimSpace(strings.ToUpper(tenor))
	return strings.HasSuffix(t, "D") || strings.HasSuffix(t, "W")
}
