package allowance

// BostonRuleGroup classifies the kind of ride that produced a Boston
// allowance, mirroring the CharlieCard transfer-rule groups (spec.md
// §4.4.3).
type BostonRuleGroup int

const (
	BostonRuleNone BostonRuleGroup = iota
	BostonRuleLocalBus
	BostonRuleSubway
	BostonRuleExpressBus
	BostonRuleSLFree
	BostonRuleLocalBusToSubway
	BostonRuleOutOfSubway
	BostonRuleOther
)

func (g BostonRuleGroup) String() string {
	switch g {
	case BostonRuleLocalBus:
		return "LocalBus"
	case BostonRuleSubway:
		return "Subway"
	case BostonRuleExpressBus:
		return "ExpressBus"
	case BostonRuleSLFree:
		return "SL_Free"
	case BostonRuleLocalBusToSubway:
		return "LocalBusToSubway"
	case BostonRuleOutOfSubway:
		return "OutOfSubway"
	case BostonRuleOther:
		return "Other"
	default:
		return "None"
	}
}

// Boston is the MBTA CharlieCard transfer allowance: a Standard triple plus
// the rule group that produced it and whether the rider is still behind
// the fare gates.
type Boston struct {
	Standard
	RuleGroup   BostonRuleGroup
	BehindGates bool
}

func NewBoston(value int64, count int, expirationTime int64, ruleGroup BostonRuleGroup, behindGates bool) Boston {
	return Boston{
		Standard:    NewStandard(value, count, expirationTime),
		RuleGroup:   ruleGroup,
		BehindGates: behindGates,
	}
}

func (b Boston) TightenExpiration(maxClockTime int64) Allowance {
	b.Standard = b.Standard.TightenExpiration(maxClockTime).(Standard)
	return b
}

// AtLeastAsGoodAsFor requires an exact rule-group and behind-gates match
// before comparing value/count/expiration. This is what makes the
// post-express-bus allowance incomparable to a post-subway allowance even
// at equal fare value (spec.md §4.4.3 "Express-bus incomparability"), and
// what makes a journey that leaves the rider behind the gates incomparable
// with an equally-fared one that doesn't.
func (b Boston) AtLeastAsGoodAsFor(other Allowance) bool {
	o, ok := other.(Boston)
	if !ok {
		return false
	}
	if b.RuleGroup != o.RuleGroup || b.BehindGates != o.BehindGates {
		return false
	}
	return b.Standard.AtLeastAsGoodAsFor(o.Standard)
}

func (Boston) SystemTag() string { return "boston" }
