package registry

import (
	"maps"
	"sync"

	"github.com/hazyhaar/confstatus/printer"
)

// Local is an in-process transport. Printers are added with Register and
// removed with the function it returns.
type Local struct {
	mu    sync.Mutex
	count int64
	next  uint64
	regs  []localReg
}

type localReg struct {
	id  uint64
	reg Registration
}

// NewLocal returns an empty in-process transport.
func NewLocal() *Local { return &Local{} }

// Register adds p under provider with the given properties and returns the
// function that removes it again. Calling unregister twice is harmless.
func (l *Local) Register(provider string, p printer.Printer, props map[string]any) (unregister func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	id := l.next
	l.regs = append(l.regs, localReg{id: id, reg: Registration{
		Provider:   provider,
		Printer:    p,
		Properties: maps.Clone(props),
	}})
	l.count++

	var once sync.Once
	return func() { once.Do(func() { l.remove(id) }) }
}

func (l *Local) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, r := range l.regs {
		if r.id == id {
			l.regs = append(l.regs[:i:i], l.regs[i+1:]...)
			l.count++
			return
		}
	}
}

// TrackingCount advances on every add and remove.
func (l *Local) TrackingCount() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Registrations returns the live registrations in registration order.
func (l *Local) Registrations() []Registration {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Registration, len(l.regs))
	for i, r := range l.regs {
		out[i] = r.reg
	}
	return out
}

// Len returns the number of live registrations.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.regs)
}
