package allowance

// ChicagoRTA is the Pace/CTA pay-the-difference transfer allowance, plus
// the day-pass sentinel (spec.md §4.4.4).
type ChicagoRTA struct {
	Standard
	Unlimited bool
}

func NewChicagoRTA(value int64, count int, expirationTime int64, unlimited bool) ChicagoRTA {
	return ChicagoRTA{
		Standard:  NewStandard(value, count, expirationTime),
		Unlimited: unlimited,
	}
}

func (c ChicagoRTA) TightenExpiration(maxClockTime int64) Allowance {
	c.Standard = c.Standard.TightenExpiration(maxClockTime).(Standard)
	return c
}

func (c ChicagoRTA) AtLeastAsGoodAsFor(other Allowance) bool {
	o, ok := other.(ChicagoRTA)
	if !ok {
		return false
	}
	// An unlimited (day-pass) allowance dominates any non-unlimited one
	// unconditionally: nothing costs more once the day pass has kicked
	// in, regardless of value/count bookkeeping.
	if c.Unlimited && !o.Unlimited {
		return true
	}
	if c.Unlimited != o.Unlimited {
		return false
	}
	return c.Standard.AtLeastAsGoodAsFor(o.Standard)
}

func (ChicagoRTA) SystemTag() string { return "chicago_rta" }
