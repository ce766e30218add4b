package effects

import "sync"

// Location is the addressable position of the running front end. Locale
// reconciliation rewrites its language segment.
type Location interface {
	Href() string
	Assign(href string)
}

// MemoryLocation keeps the location in memory and reports reassignment to
// an optional listener.
type MemoryLocation struct {
	mu       sync.Mutex
	href     string
	onAssign func(href string)
}

func NewMemoryLocation(href string) *MemoryLocation {
	return &MemoryLocation{href: href}
}

// OnAssign registers fn to run after every Assign.
func (l *MemoryLocation) OnAssign(fn func(href string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onAssign = fn
}

func (l *MemoryLocation) Href() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.href
}

func (l *MemoryLocation) Assign(href string) {
	l.mu.Lock()
	l.href = href
	fn := l.onAssign
	l.mu.Unlock()
	if fn != nil {
		fn(href)
	}
}
