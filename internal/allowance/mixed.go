package allowance

// Mixed is the mixed-agency allowance (spec.md §4.4.6): a Standard triple
// valid only for continuations within the same issuing agency.
type Mixed struct {
	Standard
	AgencyID string
}

func NewMixed(value int64, count int, expirationTime int64, agencyID string) Mixed {
	return Mixed{
		Standard: NewStandard(value, count, expirationTime),
		AgencyID: agencyID,
	}
}

func (m Mixed) TightenExpiration(maxClockTime int64) Allowance {
	m.Standard = m.Standard.TightenExpiration(maxClockTime).(Standard)
	return m
}

func (m Mixed) AtLeastAsGoodAsFor(other Allowance) bool {
	o, ok := other.(Mixed)
	if !ok {
		return false
	}
	if m.AgencyID != o.AgencyID {
		return false
	}
	return m.Standard.AtLeastAsGoodAsFor(o.Standard)
}

func (Mixed) SystemTag() string { return "mixed" }
