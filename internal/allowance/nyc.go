package allowance

// MetroCardTransferSource enumerates the post-ride MetroCard states the NYC
// calculator's state machine can land in (spec.md §4.4.5). Each accepts a
// different set of next rides for a free or discounted transfer.
type MetroCardTransferSource int

const (
	MetroCardNone MetroCardTransferSource = iota
	MetroCardLocalBus
	MetroCardSubway
	MetroCardExpressBus
	MetroCardNice
	MetroCardNiceOneTransfer
	MetroCardSuffolk
	MetroCardSuffolkOneTransfer
	MetroCardStatenIslandRwy
	MetroCardLocalBusToSIFerry
	MetroCardSubwayToSIFerry
	MetroCardLocalBusToSIR
	MetroCardLocalBusToSIRToSIFerry
	MetroCardLocalBusOrSubwayToSIFerryToSIR
)

// LIRRState is the Long Island Rail Road sub-allowance: the accumulated
// state of the current LIRR ticket, carried across rides on the same
// ticket (spec.md §4.4.5).
type LIRRState struct {
	BoardStop        string
	ViaStop          string
	AlightStop       string
	InitialDirection string
	PeakBefore       bool
	PeakAfter        bool
	CumulativeFare   int64
	LastTicketTime   int64
}

func (l *LIRRState) comparable(o *LIRRState) bool {
	if l == nil || o == nil {
		return l == o
	}
	return l.BoardStop == o.BoardStop &&
		l.ViaStop == o.ViaStop &&
		l.AlightStop == o.AlightStop &&
		l.InitialDirection == o.InitialDirection &&
		l.PeakBefore == o.PeakBefore &&
		l.PeakAfter == o.PeakAfter
}

// MetroNorthState is the Metro-North sub-allowance: line and direction
// changes force a new ticket, so the carried state is simpler than LIRR's.
type MetroNorthState struct {
	BoardStop string
	Direction string
	Peak      bool
	Line      string
}

func (m *MetroNorthState) comparable(o *MetroNorthState) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.BoardStop == o.BoardStop && m.Direction == o.Direction && m.Peak == o.Peak && m.Line == o.Line
}

// NYC is the multi-agency composite allowance: LIRR and Metro-North run as
// independent sub-state-machines alongside the MetroCard bus/subway/ferry
// transfer tracking. It is intentionally NOT built on Standard, because the
// comparability relation here is structural-equality-then-monotone rather
// than a flat value/count/expiration compare (spec.md §9 "avoid a common
// Standard base case leaking into system-specific cases").
type NYC struct {
	LIRR             *LIRRState
	MetroNorth       *MetroNorthState
	MetroCardSource  MetroCardTransferSource
	MetroCardExpiry  int64
	InSubwayPaidArea bool

	value          int64
	count          int
	expirationTime int64
}

func NewNYC(lirr *LIRRState, metroNorth *MetroNorthState, source MetroCardTransferSource, metroCardExpiry int64, inPaidArea bool, value int64, count int, expirationTime int64) NYC {
	return NYC{
		LIRR:             lirr,
		MetroNorth:       metroNorth,
		MetroCardSource:  source,
		MetroCardExpiry:  metroCardExpiry,
		InSubwayPaidArea: inPaidArea,
		value:            value,
		count:            count,
		expirationTime:   expirationTime,
	}
}

func (n NYC) Value() int64          { return n.value }
func (n NYC) Count() int            { return n.count }
func (n NYC) ExpirationTime() int64 { return n.expirationTime }

func (n NYC) TightenExpiration(maxClockTime int64) Allowance {
	n.expirationTime = minInt64(n.expirationTime, maxClockTime)
	n.MetroCardExpiry = minInt64(n.MetroCardExpiry, maxClockTime)
	if n.LIRR != nil {
		tightened := *n.LIRR
		n.LIRR = &tightened
	}
	return n
}

// AtLeastAsGoodAsFor requires all three sub-states to match structurally
// before falling back to value/count/expiration monotonicity (spec.md
// §4.4.5 "Dominance comparability for NYC requires all three sub-states to
// match structurally").
func (n NYC) AtLeastAsGoodAsFor(other Allowance) bool {
	o, ok := other.(NYC)
	if !ok {
		return false
	}
	if !n.LIRR.comparable(o.LIRR) {
		return false
	}
	if !n.MetroNorth.comparable(o.MetroNorth) {
		return false
	}
	if n.MetroCardSource != o.MetroCardSource || n.InSubwayPaidArea != o.InSubwayPaidArea {
		return false
	}
	if n.value < o.value || n.count < o.count || n.expirationTime < o.expirationTime {
		return false
	}
	if n.LIRR != nil && n.LIRR.CumulativeFare > o.LIRR.CumulativeFare {
		return false
	}
	return true
}

func (NYC) SystemTag() string { return "nyc" }
