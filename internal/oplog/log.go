package oplog

// DefaultUndoCapacity bounds the undo and redo stacks. When the undo stack
// is full the oldest group is evicted and becomes unrecoverable; bounding
// depth keeps memory use proportional to recent activity rather than to
// session length.
const DefaultUndoCapacity = 50

// removedOp is an operation taken out of the live sequence together with
// the index it held there, so undo can put it back exactly where it was.
type removedOp struct {
	index int
	op    Operation
}

// changeSet records what a single log mutation did so it can be reversed:
// operations appended at the tail and operations removed from the sequence
// with their original positions. A plain append has only added ops;
// resetting a tool has only removed ops; replacing a kind has both.
// Positional restore keeps every older undo entry valid: undoing a change
// set yields exactly the sequence that existed before it.
type changeSet struct {
	added   []Operation
	removed []removedOp
}

// Listener observes log changes. It is invoked with the current operations
// sequence after every state-changing call; the log itself never renders.
type Listener func(ops []Operation)

// Log is the edit history state machine: the live operations sequence plus
// bounded undo and redo stacks of change groups.
//
// A Log is not safe for concurrent mutation. Callers serialize
// append/undo/redo/coalesce on one logical editing goroutine per session;
// renderers take snapshots via Operations.
type Log struct {
	ops      []Operation
	undo     []changeSet
	redo     []changeSet
	capacity int
	listener Listener
}

// New creates an empty log with the default undo capacity.
func New() *Log {
	return NewWithCapacity(DefaultUndoCapacity)
}

// NewWithCapacity creates an empty log with an explicit undo/redo capacity.
func NewWithCapacity(capacity int) *Log {
	if capacity < 1 {
		capacity = 1
	}
	return &Log{capacity: capacity}
}

// SetListener registers the change listener. Passing nil removes it.
func (l *Log) SetListener(fn Listener) {
	l.listener = fn
}

// Operations returns a copy of the current operations sequence in apply
// order.
func (l *Log) Operations() []Operation {
	out := make([]Operation, len(l.ops))
	copy(out, l.ops)
	return out
}

// Len returns the number of live operations.
func (l *Log) Len() int { return len(l.ops) }

// CanUndo reports whether Undo would change state.
func (l *Log) CanUndo() bool { return len(l.undo) > 0 }

// CanRedo reports whether Redo would change state.
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }

// Append adds a single operation as its own undo group. Any redoable
// history is discarded.
func (l *Log) Append(op Operation) {
	l.AppendGroup([]Operation{op})
}

// AppendGroup adds a batch of operations that undo and redo together as one
// atomic step, e.g. the displacement samples of one liquify stroke.
func (l *Log) AppendGroup(ops []Operation) {
	if len(ops) == 0 {
		return
	}
	group := make([]Operation, len(ops))
	copy(group, ops)

	l.ops = append(l.ops, group...)
	l.pushUndo(changeSet{added: group})
	l.redo = nil
	l.notify()
}

// Undo reverses the most recent change group. It returns the operations
// that left the live sequence, or nil if the undo stack is empty (a no-op,
// not an error).
func (l *Log) Undo() []Operation {
	if len(l.undo) == 0 {
		return nil
	}

	cs := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]

	// The added ops are the trailing elements of the sequence: every
	// mutation appends at the tail, and undoing restores the exact
	// pre-mutation sequence, so nothing can have shifted them. Removed ops
	// go back to the indices they held, ascending so earlier insertions
	// line up the later ones.
	l.ops = l.ops[:len(l.ops)-len(cs.added)]
	for _, r := range cs.removed {
		l.ops = append(l.ops, nil)
		copy(l.ops[r.index+1:], l.ops[r.index:])
		l.ops[r.index] = r.op
	}

	l.pushRedo(cs)
	l.notify()
	return cs.added
}

// Redo re-applies the most recently undone change group. It returns the
// operations restored to the live sequence, or nil if the redo stack is
// empty.
func (l *Log) Redo() []Operation {
	if len(l.redo) == 0 {
		return nil
	}

	cs := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]

	// Undo restored the removed ops to their recorded indices and no
	// mutation can have happened since (mutations clear the redo stack),
	// so those indices are still accurate. Remove descending so earlier
	// indices stay valid, then re-append the added ops.
	for i := len(cs.removed) - 1; i >= 0; i-- {
		idx := cs.removed[i].index
		l.ops = append(l.ops[:idx], l.ops[idx+1:]...)
	}
	l.ops = append(l.ops, cs.added...)

	l.pushUndo(cs)
	l.notify()
	return cs.added
}

// ReplaceOfKind removes every live operation of the given kind and appends
// op as a new single undo step. Used when a slider-driven control should
// have at most one live instance instead of accumulating duplicates.
func (l *Log) ReplaceOfKind(kind Kind, op Operation) {
	removed := l.removeKind(kind)

	l.ops = append(l.ops, op)
	l.pushUndo(changeSet{added: []Operation{op}, removed: removed})
	l.redo = nil
	l.notify()
}

// ResetKind removes all operations of the given kind as one undoable step
// and returns them.
func (l *Log) ResetKind(kind Kind) []Operation {
	removed := l.removeKind(kind)
	if len(removed) == 0 {
		return nil
	}

	l.pushUndo(changeSet{removed: removed})
	l.redo = nil
	l.notify()

	ops := make([]Operation, len(removed))
	for i, r := range removed {
		ops[i] = r.op
	}
	return ops
}

// Restore replaces the live sequence wholesale and clears all history.
// Used when reopening a persisted session, which stores operations only.
func (l *Log) Restore(ops []Operation) {
	l.ops = make([]Operation, len(ops))
	copy(l.ops, ops)
	l.undo = nil
	l.redo = nil
	l.notify()
}

// removeKind filters ops of the given kind out of the live sequence,
// preserving the order of everything else, and returns the removed ops
// with the indices they held.
func (l *Log) removeKind(kind Kind) []removedOp {
	var removed []removedOp
	kept := l.ops[:0]
	for i, op := range l.ops {
		if op.Kind() == kind {
			removed = append(removed, removedOp{index: i, op: op})
		} else {
			kept = append(kept, op)
		}
	}
	l.ops = kept
	return removed
}

func (l *Log) pushUndo(cs changeSet) {
	if len(l.undo) >= l.capacity {
		l.undo = l.undo[1:]
	}
	l.undo = append(l.undo, cs)
}

func (l *Log) pushRedo(cs changeSet) {
	if len(l.redo) >= l.capacity {
		l.redo = l.redo[1:]
	}
	l.redo = append(l.redo, cs)
}

func (l *Log) notify() {
	if l.listener != nil {
		l.listener(l.Operations())
	}
}
