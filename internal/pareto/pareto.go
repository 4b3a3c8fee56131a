// Package pareto implements the per-stop, per-round bounded set of
// non-dominated labels that the RAPTOR search offers every candidate label
// to (spec.md §4.3).
package pareto

import "github.com/antigravity/transitfare/internal/allowance"

// Offer is the result of presenting a label to a List.
type Offer int

const (
	Rejected Offer = iota
	Accepted
)

// Entry is anything the dominating list can rank: the four criteria from
// spec.md §4.2 ("Domination rule"). RAPTOR's Label type implements this
// directly; the list itself never looks past these four accessors.
type Entry interface {
	ArrivalTime() int64
	Round() int
	CumulativeFare() int64
	TransferAllowance() allowance.Allowance
}

// Dominates implements spec.md §4.2's domination rule: all four criteria
// hold with a ≤ relation (⪰ for the allowance) and at least one is strict.
// Strict equality on everything is handled by the caller (offer), which
// keeps the incumbent so insertion order — not this function — decides
// ties (spec.md §4.3 "the incumbent wins").
func Dominates[T Entry](a, b T) bool {
	if a.ArrivalTime() > b.ArrivalTime() {
		return false
	}
	if a.Round() > b.Round() {
		return false
	}
	if a.CumulativeFare() > b.CumulativeFare() {
		return false
	}
	aAllow, bAllow := a.TransferAllowance(), b.TransferAllowance()
	if !aAllow.AtLeastAsGoodAsFor(bAllow) {
		return false
	}

	strict := a.ArrivalTime() < b.ArrivalTime() ||
		a.Round() < b.Round() ||
		a.CumulativeFare() < b.CumulativeFare() ||
		(!bAllow.AtLeastAsGoodAsFor(aAllow))
	return strict
}

// List is the per-stop dominating set: a minimal, non-dominated collection
// of entries. Insertion cost is O(|list|) per offer; in practice the list
// stays small because dominance is multi-dimensional (spec.md §4.3).
type List[T Entry] struct {
	entries []T
}

func NewList[T Entry]() *List[T] {
	return &List[T]{}
}

func (l *List[T]) Entries() []T {
	return l.entries
}

func (l *List[T]) Len() int {
	return len(l.entries)
}

// tied reports an exact match across all four criteria: same arrival time,
// round and fare, and mutually at-least-as-good allowances.
func tied[T Entry](a, b T) bool {
	if a.ArrivalTime() != b.ArrivalTime() || a.Round() != b.Round() || a.CumulativeFare() != b.CumulativeFare() {
		return false
	}
	return a.TransferAllowance().AtLeastAsGoodAsFor(b.TransferAllowance()) &&
		b.TransferAllowance().AtLeastAsGoodAsFor(a.TransferAllowance())
}

// Offer inserts candidate iff no existing entry dominates it, evicting
// every entry candidate dominates in turn. On an exact tie across all
// criteria, the incumbent wins and candidate is rejected — this avoids
// needless churn when range-raptor revisits the same stop on an earlier
// departure minute with an identical outcome.
func (l *List[T]) Offer(candidate T) Offer {
	if len(l.entries) > 0 {
		checkSameSystem(l.entries[0].TransferAllowance(), candidate.TransferAllowance())
	}

	for _, existing := range l.entries {
		if tied(existing, candidate) || Dominates(existing, candidate) {
			return Rejected
		}
	}

	survivors := l.entries[:0]
	for _, existing := range l.entries {
		if !Dominates(candidate, existing) {
			survivors = append(survivors, existing)
		}
	}
	l.entries = append(survivors, candidate)
	return Accepted
}

// checkSameSystem enforces spec.md §7's "mixed allowance types offered to
// the same dominating list is a programmer error": every label offered to
// one stop's list within a search must come from the same fare calculator,
// so all its allowances share a SystemTag once the round-0 "none" seed
// ages out.
func checkSameSystem(a, b allowance.Allowance) {
	if a.SystemTag() == "none" || b.SystemTag() == "none" {
		return
	}
	allowance.MustSameTag(a, b)
}
