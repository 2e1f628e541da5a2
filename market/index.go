package market

// ReferenceIndex enumerates supported floating benchmarks.
type ReferenceIndex string

const (
	ESTR      ReferenceIndex = "ESTR"
	EURIBOR3M ReferenceIndex = "EURIBOR3M"
	EURIBOR6M ReferenceIndex = "EURIBOR6M"
	SOFR      ReferenceIndex = "SOFR"
	TONAR     ReferenceIndex = "TONAR"
)

// IsOvernight reports whether the reference rate is an overnight index used in OIS discounting/projection.
func IsOvernight(r ReferenceIndex) bool {
	switch r {
	case ESTR, TONAR, SOFR:
		return true
	default:
		return false
	}
}

// IndexTenor returns the natural fixing tenor of an IBOR-style index ("3M" for
// EURIBOR3M). Overnight indices have no term tenor and return "".
func IndexTenor(r ReferenceIndex) string {
	switch r {
	case EURIBOR3M:
		return "3M"
	case EURIBOR6M:
		return "6M"
	default:
		return ""
	}
}
