package allowance

// Standard is the base (value, count, expiration) triple with no
// system-specific structure, used by the route-based fare calculator
// (spec.md §4.4.1) and as the building block several other systems embed.
type Standard struct {
	value          int64
	count          int
	expirationTime int64
}

func NewStandard(value int64, count int, expirationTime int64) Standard {
	return Standard{value: value, count: count, expirationTime: expirationTime}
}

func (s Standard) Value() int64          { return s.value }
func (s Standard) Count() int            { return s.count }
func (s Standard) ExpirationTime() int64 { return s.expirationTime }

func (s Standard) TightenExpiration(maxClockTime int64) Allowance {
	s.expirationTime = minInt64(s.expirationTime, maxClockTime)
	return s
}

func (s Standard) AtLeastAsGoodAsFor(other Allowance) bool {
	o, ok := other.(Standard)
	if !ok {
		return false
	}
	return s.value >= o.value && s.count >= o.count && s.expirationTime >= o.expirationTime
}

func (Standard) SystemTag() string { return "standard" }
