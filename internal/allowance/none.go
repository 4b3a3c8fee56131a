package allowance

// None is the allowance of a fresh journey with no ride history: no value,
// no count, expires immediately. It is the starting allowance for every
// McLabel seeded at round 0.
type None struct{}

func (None) Value() int64          { return 0 }
func (None) Count() int            { return 0 }
func (None) ExpirationTime() int64 { return 0 }

func (n None) TightenExpiration(maxClockTime int64) Allowance {
	return n
}

func (n None) AtLeastAsGoodAsFor(other Allowance) bool {
	o, ok := other.(None)
	if !ok {
		return false
	}
	_ = o
	return true
}

func (None) SystemTag() string { return "none" }
