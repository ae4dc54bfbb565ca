package models

import "strings"

// Quarter is the canonical quarter label used across assignments, plans
// and performance records.
type Quarter string

const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
	Q4 Quarter = "Q4"
)

var Quarters = [4]Quarter{Q1, Q2, Q3, Q4}

// ParseQuarter normalizes a quarter label case-insensitively. Unknown
// labels return ok=false; callers decide whether that is an error or
// data to skip.
func ParseQuarter(s string) (Quarter, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Q1":
		return Q1, true
	case "Q2":
		return Q2, true
	case "Q3":
		return Q3, true
	case "Q4":
		return Q4, true
	default:
		return "", false
	}
}

func (q Quarter) String() string {
	return string(q)
}
