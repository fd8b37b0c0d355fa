package debugger

import (
	"fmt"
	"iter"
	"strings"

	"github.com/Manu343726/rvdb/pkg/utils"
)

// PoolSize is the number of watchpoints that can be active at once
const PoolSize = 32

// MaxExpressionLength is the longest expression a watchpoint can track
const MaxExpressionLength = 255

const nilSlot = -1

// IDPolicy controls how watchpoint identifiers are assigned
type IDPolicy int

const (
	// IDUnique assigns identifiers from a counter that never goes back, so an
	// identifier is never reused after a removal
	IDUnique IDPolicy = iota
	// IDDense assigns the identifier of the current tail plus one (zero for an
	// empty list). Identifiers can repeat after interleaved adds and removes.
	IDDense
)

func (p IDPolicy) String() string {
	switch p {
	case IDUnique:
		return "unique"
	case IDDense:
		return "dense"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParseIDPolicy parses "unique" or "dense"
func ParseIDPolicy(name string) (IDPolicy, error) {
	switch strings.ToLower(name) {
	case "", "unique":
		return IDUnique, nil
	case "dense":
		return IDDense, nil
	default:
		return IDUnique, utils.MakeError(ErrBadArgument, "unknown watchpoint id policy '%v'", name)
	}
}

// Watchpoint is a tracked expression and its last evaluated value
type Watchpoint struct {
	ID    int
	Expr  string
	Value int32
}

// Change reports a watchpoint whose value differs from the last evaluation
type Change struct {
	Watchpoint
	Old int32
}

type slot struct {
	watchpoint Watchpoint
	tokens     []Token
	next       int
}

// WatchpointManager owns a fixed pool of watchpoint slots. Active
// watchpoints form a singly linked list in insertion order, unused slots form
// the free list. Links are slot indices.
type WatchpointManager struct {
	slots  [PoolSize]slot
	head   int
	tail   int
	free   int
	count  int
	nextID int
	policy IDPolicy
	eval   *Evaluator
}

// NewWatchpointManager creates an empty pool evaluating expressions with eval
func NewWatchpointManager(eval *Evaluator, policy IDPolicy) *WatchpointManager {
	m := &WatchpointManager{
		head:   nilSlot,
		tail:   nilSlot,
		free:   0,
		policy: policy,
		eval:   eval,
	}

	for i := range m.slots {
		m.slots[i].next = i + 1
	}
	m.slots[PoolSize-1].next = nilSlot

	return m
}

// Policy returns the id assignment policy
func (m *WatchpointManager) Policy() IDPolicy {
	return m.policy
}

// Len returns the number of active watchpoints
func (m *WatchpointManager) Len() int {
	return m.count
}

func (m *WatchpointManager) assignID() int {
	if m.policy == IDDense {
		if m.tail == nilSlot {
			return 0
		}
		return m.slots[m.tail].watchpoint.ID + 1
	}

	id := m.nextID
	m.nextID++
	return id
}

// Add evaluates expr and starts tracking it. Evaluation errors are returned
// as is. When the pool is full ErrPoolExhausted is returned and nothing
// changes.
func (m *WatchpointManager) Add(expr string) error {
	if len(expr) > MaxExpressionLength {
		return utils.MakeError(ErrExpressionTooLong, "%d characters, at most %d allowed", len(expr), MaxExpressionLength)
	}

	tokens, err := Tokenize(expr)
	if err != nil {
		return err
	}

	value, err := m.eval.Eval(tokens, 0, len(tokens)-1)
	if err != nil {
		return err
	}

	if m.free == nilSlot {
		return utils.MakeError(ErrPoolExhausted, "all %d watchpoints are in use", PoolSize)
	}

	idx := m.free
	m.free = m.slots[idx].next

	m.slots[idx] = slot{
		watchpoint: Watchpoint{ID: m.assignID(), Expr: expr, Value: value},
		tokens:     tokens,
		next:       nilSlot,
	}

	if m.tail == nilSlot {
		m.head = idx
	} else {
		m.slots[m.tail].next = idx
	}
	m.tail = idx
	m.count++

	return nil
}

// Last returns the most recently added active watchpoint
func (m *WatchpointManager) Last() (Watchpoint, bool) {
	if m.tail == nilSlot {
		return Watchpoint{}, false
	}
	return m.slots[m.tail].watchpoint, true
}

// Remove stops tracking the first watchpoint with the given id. Unknown ids
// are ignored. Returns whether a watchpoint was removed.
func (m *WatchpointManager) Remove(id int) bool {
	prev := nilSlot
	for idx := m.head; idx != nilSlot; prev, idx = idx, m.slots[idx].next {
		if m.slots[idx].watchpoint.ID != id {
			continue
		}

		next := m.slots[idx].next
		if prev == nilSlot {
			m.head = next
		} else {
			m.slots[prev].next = next
		}
		if m.tail == idx {
			m.tail = prev
		}

		m.slots[idx] = slot{next: m.free}
		m.free = idx
		m.count--
		return true
	}

	return false
}

// List yields the active watchpoints in insertion order
func (m *WatchpointManager) List() iter.Seq[Watchpoint] {
	return func(yield func(Watchpoint) bool) {
		for idx := m.head; idx != nilSlot; idx = m.slots[idx].next {
			if !yield(m.slots[idx].watchpoint) {
				return
			}
		}
	}
}

// Check re-evaluates every watchpoint, records the new values and returns the
// ones that changed
func (m *WatchpointManager) Check() ([]Change, error) {
	var changes []Change

	for idx := m.head; idx != nilSlot; idx = m.slots[idx].next {
		s := &m.slots[idx]

		value, err := m.eval.Eval(s.tokens, 0, len(s.tokens)-1)
		if err != nil {
			return changes, fmt.Errorf("watchpoint %d: %w", s.watchpoint.ID, err)
		}

		if value != s.watchpoint.Value {
			old := s.watchpoint.Value
			s.watchpoint.Value = value
			changes = append(changes, Change{Watchpoint: s.watchpoint, Old: old})
		}
	}

	return changes, nil
}
