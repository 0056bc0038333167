package monix

import "sync"

// A CancelToken represents the right to abort in-flight work.
//
// Cancelation is monotonic: once a CancelToken reports IsCanceled true, it
// never reports false again, and re-canceling is a no-op.
// All CancelTokens are safe for concurrent use.
type CancelToken interface {
	// Cancel aborts whatever work this token owns. Canceling twice has no
	// additional effect.
	Cancel()

	// IsCanceled reports whether Cancel has already been called.
	IsCanceled() bool
}

type emptyCancelToken struct{}

func (emptyCancelToken) Cancel()          {}
func (emptyCancelToken) IsCanceled() bool { return false }

// Empty returns a CancelToken that does nothing when canceled and never
// reports itself as canceled. Useful as a placeholder where a CancelToken is
// required but there is nothing to cancel.
func Empty() CancelToken { return emptyCancelToken{} }

// funcCancelToken owns a single cancelation thunk, invoked at most once.
type funcCancelToken struct {
	mu   sync.Mutex
	f    func()
	done bool
}

// Cancelable returns a CancelToken that runs f at most once, the first time
// Cancel is called.
func Cancelable(f func()) CancelToken {
	if f == nil {
		return Empty()
	}
	return &funcCancelToken{f: f}
}

func (t *funcCancelToken) Cancel() {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	f := t.f
	t.f = nil
	t.mu.Unlock()
	f()
}

func (t *funcCancelToken) IsCanceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// A MultiAssignment is a CancelToken whose inner target can be rebound over
// time. Assigning a new inner handle replaces the previous binding without
// canceling it; only an explicit Cancel of the outer handle cancels whatever
// is currently assigned.
//
// MultiAssignment is the handle kind RunAsync hands back to callers: it is
// created once per run, and as the task graph descends into sub-tasks, each
// level reassigns it to reference the sub-task actually in flight, so that
// completed branches become garbage instead of being kept alive by a long
// chain of defunct handles.
type MultiAssignment struct {
	mu       sync.Mutex
	current  CancelToken
	canceled bool
}

// NewMultiAssignment returns a ready-to-use MultiAssignment with no inner
// handle assigned.
func NewMultiAssignment() *MultiAssignment {
	return &MultiAssignment{}
}

// Assign rebinds m's inner target to inner. If m has already been canceled,
// inner is canceled immediately instead of being stored. Assign does not
// cancel whatever was previously assigned.
func (m *MultiAssignment) Assign(inner CancelToken) {
	if inner == nil {
		inner = Empty()
	}
	m.mu.Lock()
	if m.canceled {
		m.mu.Unlock()
		inner.Cancel()
		return
	}
	m.current = inner
	m.mu.Unlock()
}

// Cancel cancels whatever is currently assigned to m, and marks m canceled so
// that any future Assign cancels its argument immediately instead of storing
// it.
func (m *MultiAssignment) Cancel() {
	m.mu.Lock()
	if m.canceled {
		m.mu.Unlock()
		return
	}
	m.canceled = true
	inner := m.current
	m.current = nil
	m.mu.Unlock()
	if inner != nil {
		inner.Cancel()
	}
}

// IsCanceled reports whether Cancel has been called on m.
func (m *MultiAssignment) IsCanceled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canceled
}

// A Composite is a CancelToken that fans out to a set of child handles.
// Canceling a Composite cancels every child currently registered with it.
// Removing a child from a Composite relieves the Composite of the
// responsibility of canceling it.
type Composite struct {
	mu       sync.Mutex
	children map[CancelToken]struct{}
	canceled bool
}

// NewComposite returns a ready-to-use Composite with no children.
func NewComposite() *Composite {
	return &Composite{}
}

// Add registers child with c. If c has already been canceled, child is
// canceled immediately instead of being added.
func (c *Composite) Add(child CancelToken) {
	if child == nil {
		return
	}
	c.mu.Lock()
	if c.canceled {
		c.mu.Unlock()
		child.Cancel()
		return
	}
	if c.children == nil {
		c.children = make(map[CancelToken]struct{})
	}
	c.children[child] = struct{}{}
	c.mu.Unlock()
}

// Remove unregisters child from c, relieving c of the responsibility of
// canceling it. Removing a handle not present in c is a no-op.
func (c *Composite) Remove(child CancelToken) {
	c.mu.Lock()
	delete(c.children, child)
	c.mu.Unlock()
}

// Cancel cancels every child currently registered with c, and marks c
// canceled so that any future Add cancels its argument immediately.
func (c *Composite) Cancel() {
	c.mu.Lock()
	if c.canceled {
		c.mu.Unlock()
		return
	}
	c.canceled = true
	children := c.children
	c.children = nil
	c.mu.Unlock()
	for child := range children {
		child.Cancel()
	}
}

// IsCanceled reports whether Cancel has been called on c.
func (c *Composite) IsCanceled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canceled
}
