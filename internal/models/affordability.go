package models

import "encoding/json"

// Tristate is an affordability verdict that may be unknown.
type Tristate int

const (
	Unknown Tristate = iota
	Yes
	No
)

// TristateOf converts a boolean verdict.
func TristateOf(b bool) Tristate {
	if b {
		return Yes
	}
	return No
}

// IsTrue reports a definite yes.
func (t Tristate) IsTrue() bool { return t == Yes }

func (t Tristate) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes Unknown as null.
func (t Tristate) MarshalJSON() ([]byte, error) {
	switch t {
	case Yes:
		return []byte("true"), nil
	case No:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false or null.
func (t *Tristate) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	if b == nil {
		*t = Unknown
	} else {
		*t = TristateOf(*b)
	}
	return nil
}

// AffordabilityResult is the pass/fail verdict for one property against the profile.
type AffordabilityResult struct {
	Affordable          Tristate `json:"affordable"`
	CanAffordCash       bool     `json:"can_afford_cash"`
	CanAffordDTI        bool     `json:"can_afford_dti"`
	TotalCashNeeded     float64  `json:"total_cash_needed"`
	CashShortfall       float64  `json:"cash_shortfall"`
	BackEndDTI          float64  `json:"back_end_dti"`
	TotalMonthlyHousing float64  `json:"total_monthly_housing"`
	IsJumbo             bool     `json:"is_jumbo"`
	Reasons             []string `json:"reasons"`
}
