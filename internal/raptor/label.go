// Package raptor implements the round-based multi-criteria RAPTOR search
// (spec.md §4.2): range-raptor over departure minutes, transit/transfer
// relaxation per round, and per-stop Pareto pruning over
// (arrival_time, transfers, cumulative_fare, transfer_allowance).
package raptor

import (
	"github.com/antigravity/transitfare/internal/allowance"
	"github.com/antigravity/transitfare/internal/transit"
)

// LabelRef is an arena index. Using an integer rather than a pointer keeps
// back-references acyclic and lets the whole arena be dropped in one shot
// at the end of a search (spec.md §9 "Memory discipline").
type LabelRef int32

const NoLabel LabelRef = -1

// Label is the McLabel of spec.md §3: the per-stop, per-round state that
// the search builds up and the Pareto list arbitrates between.
type Label struct {
	Round      int
	Stop       transit.StopIndex
	ArrivalSec int64

	// Pattern is the last boarded pattern; transit.NoPattern marks a
	// label produced by an on-street relax step.
	Pattern   transit.PatternIndex
	TripIndex int
	BoardStop transit.StopIndex
	BoardSec  int64
	AlightSec int64

	TransferFromStop transit.StopIndex
	TransferSec      int64

	Back LabelRef

	CumulativeFareAmt int64
	Allowance         allowance.Allowance
}

func (l Label) IsTransfer() bool { return l.Pattern == transit.NoPattern && l.Back != NoLabel }

// Arena is the per-search bump allocator for Labels. Indices handed out by
// Alloc never change, so successors can hold a stable Back reference even
// as the arena keeps growing.
type Arena struct {
	labels []Label
}

func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) Alloc(l Label) LabelRef {
	ref := LabelRef(len(a.labels))
	a.labels = append(a.labels, l)
	return ref
}

func (a *Arena) Get(ref LabelRef) Label {
	return a.labels[ref]
}

func (a *Arena) Len() int { return len(a.labels) }

// Entry is the lightweight value pareto.List stores: the four dominance
// criteria copied out of the arena, plus the Ref needed to recover the
// full Label (board stop, pattern, back-pointer, ...) during path
// reconstruction. Copying the criteria here keeps dominance checks from
// touching the arena at all.
type Entry struct {
	Ref       LabelRef
	arrival   int64
	round     int
	fare      int64
	allowance allowance.Allowance
}

func (e Entry) ArrivalTime() int64                      { return e.arrival }
func (e Entry) Round() int                              { return e.round }
func (e Entry) CumulativeFare() int64                   { return e.fare }
func (e Entry) TransferAllowance() allowance.Allowance  { return e.allowance }

// NewEntry allocates label into arena and returns the Entry view used by
// the Pareto list.
func NewEntry(arena *Arena, label Label) Entry {
	ref := arena.Alloc(label)
	return Entry{
		Ref:       ref,
		arrival:   label.ArrivalSec,
		round:     label.Round,
		fare:      label.CumulativeFareAmt,
		allowance: label.Allowance,
	}
}
