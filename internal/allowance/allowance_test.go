package allowance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/antigravity/transitfare/internal/allowance"
)

func TestMustSameTag_PanicsOnMismatch(t *testing.T) {
	a := allowance.NewStandard(100, 1, 3600)
	b := allowance.NewChicagoRTA(100, 1, 3600, false)

	assert.Panics(t, func() {
		allowance.MustSameTag(a, b)
	})
}

func TestMustSameTag_NoPanicOnMatch(t *testing.T) {
	a := allowance.NewStandard(100, 1, 3600)
	b := allowance.NewStandard(50, 0, 7200)

	assert.NotPanics(t, func() {
		allowance.MustSameTag(a, b)
	})
}

func TestStandard_AtLeastAsGoodAsFor(t *testing.T) {
	better := allowance.NewStandard(100, 2, 3600)
	worse := allowance.NewStandard(50, 1, 1800)

	assert.True(t, better.AtLeastAsGoodAsFor(worse))
	assert.False(t, worse.AtLeastAsGoodAsFor(better))
}

func TestStandard_TightenExpiration(t *testing.T) {
	s := allowance.NewStandard(100, 1, 7200)
	tightened := s.TightenExpiration(3600)

	assert.Equal(t, int64(3600), tightened.ExpirationTime())
	assert.Equal(t, int64(100), tightened.Value())
}

func TestStandard_TightenExpiration_NeverLoosens(t *testing.T) {
	s := allowance.NewStandard(100, 1, 1800)
	tightened := s.TightenExpiration(7200)

	assert.Equal(t, int64(1800), tightened.ExpirationTime())
}

func TestNone_AlwaysAtLeastAsGood(t *testing.T) {
	a, b := allowance.None{}, allowance.None{}
	assert.True(t, a.AtLeastAsGoodAsFor(b))
	assert.Equal(t, "none", a.SystemTag())
}

func TestBoston_RuleGroupMismatchIncomparable(t *testing.T) {
	subway := allowance.NewBoston(0, 1, 3600, allowance.BostonRuleSubway, true)
	expressBus := allowance.NewBoston(0, 1, 3600, allowance.BostonRuleExpressBus, true)

	assert.False(t, subway.AtLeastAsGoodAsFor(expressBus))
	assert.False(t, expressBus.AtLeastAsGoodAsFor(subway))
}

func TestBoston_BehindGatesMismatchIncomparable(t *testing.T) {
	behind := allowance.NewBoston(0, 1, 3600, allowance.BostonRuleSubway, true)
	clear := allowance.NewBoston(0, 1, 3600, allowance.BostonRuleSubway, false)

	assert.False(t, behind.AtLeastAsGoodAsFor(clear))
}

func TestBoston_SameGroupComparesLikeStandard(t *testing.T) {
	better := allowance.NewBoston(100, 1, 3600, allowance.BostonRuleSubway, true)
	worse := allowance.NewBoston(50, 1, 1800, allowance.BostonRuleSubway, true)

	assert.True(t, better.AtLeastAsGoodAsFor(worse))
}

func TestBoston_TightenExpirationPreservesRuleGroup(t *testing.T) {
	b := allowance.NewBoston(100, 1, 7200, allowance.BostonRuleExpressBus, true)
	tightened := b.TightenExpiration(3600).(allowance.Boston)

	assert.Equal(t, int64(3600), tightened.ExpirationTime())
	assert.Equal(t, allowance.BostonRuleExpressBus, tightened.RuleGroup)
	assert.True(t, tightened.BehindGates)
}

func TestChicagoRTA_UnlimitedDominatesNonUnlimited(t *testing.T) {
	unlimited := allowance.NewChicagoRTA(0, 0, 3600, true)
	limited := allowance.NewChicagoRTA(500, 5, 7200, false)

	assert.True(t, unlimited.AtLeastAsGoodAsFor(limited))
	assert.False(t, limited.AtLeastAsGoodAsFor(unlimited))
}

func TestChicagoRTA_BothLimitedComparesLikeStandard(t *testing.T) {
	better := allowance.NewChicagoRTA(100, 1, 3600, false)
	worse := allowance.NewChicagoRTA(50, 0, 1800, false)

	assert.True(t, better.AtLeastAsGoodAsFor(worse))
}

func TestMixed_DifferentAgencyIncomparable(t *testing.T) {
	a := allowance.NewMixed(100, 1, 3600, "agency-a")
	b := allowance.NewMixed(100, 1, 3600, "agency-b")

	assert.False(t, a.AtLeastAsGoodAsFor(b))
}

func TestMixed_SameAgencyComparesLikeStandard(t *testing.T) {
	better := allowance.NewMixed(100, 1, 3600, "agency-a")
	worse := allowance.NewMixed(50, 0, 1800, "agency-a")

	assert.True(t, better.AtLeastAsGoodAsFor(worse))
}

func TestNYC_StructuralMismatchIncomparable(t *testing.T) {
	lirrA := &allowance.LIRRState{BoardStop: "jamaica", AlightStop: "penn"}
	lirrB := &allowance.LIRRState{BoardStop: "jamaica", AlightStop: "atlantic-terminal"}

	a := allowance.NewNYC(lirrA, nil, allowance.MetroCardNone, 0, false, 0, 0, 3600)
	b := allowance.NewNYC(lirrB, nil, allowance.MetroCardNone, 0, false, 0, 0, 3600)

	assert.False(t, a.AtLeastAsGoodAsFor(b))
}

func TestNYC_NilVsNonNilLIRRIncomparable(t *testing.T) {
	withLIRR := allowance.NewNYC(&allowance.LIRRState{BoardStop: "jamaica"}, nil, allowance.MetroCardNone, 0, false, 0, 0, 3600)
	withoutLIRR := allowance.NewNYC(nil, nil, allowance.MetroCardNone, 0, false, 0, 0, 3600)

	assert.False(t, withLIRR.AtLeastAsGoodAsFor(withoutLIRR))
	assert.False(t, withoutLIRR.AtLeastAsGoodAsFor(withLIRR))
}

func TestNYC_SameStructureMonotoneOnValue(t *testing.T) {
	lirr := &allowance.LIRRState{BoardStop: "jamaica", AlightStop: "penn", CumulativeFare: 400}
	better := allowance.NewNYC(lirr, nil, allowance.MetroCardSubway, 3600, true, 100, 1, 7200)

	lirrWorse := &allowance.LIRRState{BoardStop: "jamaica", AlightStop: "penn", CumulativeFare: 500}
	worse := allowance.NewNYC(lirrWorse, nil, allowance.MetroCardSubway, 3600, true, 50, 0, 3600)

	assert.True(t, better.AtLeastAsGoodAsFor(worse))
}

func TestNYC_HigherLIRRCumulativeFareNotDominant(t *testing.T) {
	lirrExpensive := &allowance.LIRRState{BoardStop: "jamaica", AlightStop: "penn", CumulativeFare: 900}
	a := allowance.NewNYC(lirrExpensive, nil, allowance.MetroCardSubway, 3600, true, 100, 1, 7200)

	lirrCheap := &allowance.LIRRState{BoardStop: "jamaica", AlightStop: "penn", CumulativeFare: 400}
	b := allowance.NewNYC(lirrCheap, nil, allowance.MetroCardSubway, 3600, true, 100, 1, 7200)

	assert.False(t, a.AtLeastAsGoodAsFor(b))
}

func TestNYC_TightenExpirationCapsMetroCardExpiryToo(t *testing.T) {
	n := allowance.NewNYC(nil, nil, allowance.MetroCardSubway, 7200, true, 0, 0, 7200)
	tightened := n.TightenExpiration(1800).(allowance.NYC)

	assert.Equal(t, int64(1800), tightened.ExpirationTime())
	assert.Equal(t, int64(1800), tightened.MetroCardExpiry)
}

func TestFaresV2_SupersetDominance(t *testing.T) {
	small := allowance.NewRuleSet()
	small.Set(1)

	big := allowance.NewRuleSet()
	big.Set(1)
	big.Set(2)

	a := allowance.NewFaresV2(big, nil, 0, nil, 100, 1, 3600)
	b := allowance.NewFaresV2(small, nil, 0, nil, 100, 1, 3600)

	assert.True(t, a.AtLeastAsGoodAsFor(b))
	assert.False(t, b.AtLeastAsGoodAsFor(a))
}

func TestFaresV2_DifferentAsRouteBoardStopIncomparable(t *testing.T) {
	rules := allowance.NewRuleSet()
	a := allowance.NewFaresV2(rules, nil, 1, nil, 100, 1, 3600)
	b := allowance.NewFaresV2(rules, nil, 2, nil, 100, 1, 3600)

	assert.False(t, a.AtLeastAsGoodAsFor(b))
}

func TestRuleSet_SetHasLenAcrossWords(t *testing.T) {
	s := allowance.NewRuleSet()
	s.Set(0)
	s.Set(63)
	s.Set(64)
	s.Set(200)

	assert.True(t, s.Has(0))
	assert.True(t, s.Has(63))
	assert.True(t, s.Has(64))
	assert.True(t, s.Has(200))
	assert.False(t, s.Has(1))
	assert.Equal(t, 4, s.Len())
}

func TestRuleSet_Each_VisitsEverySetBit(t *testing.T) {
	s := allowance.NewRuleSet()
	want := map[uint32]bool{5: true, 70: true, 130: true}
	for idx := range want {
		s.Set(idx)
	}

	seen := map[uint32]bool{}
	s.Each(func(idx uint32) { seen[idx] = true })

	assert.Equal(t, want, seen)
}

func TestRuleSet_Clone_IsIndependent(t *testing.T) {
	s := allowance.NewRuleSet()
	s.Set(5)

	clone := s.Clone()
	clone.Set(6)

	assert.False(t, s.Has(6))
	assert.True(t, clone.Has(5))
	assert.True(t, clone.Has(6))
}

func TestRuleSet_IsSupersetOf(t *testing.T) {
	superset := allowance.NewRuleSet()
	superset.Set(1)
	superset.Set(2)

	subset := allowance.NewRuleSet()
	subset.Set(1)

	assert.True(t, superset.IsSupersetOf(subset))
	assert.False(t, subset.IsSupersetOf(superset))
}
