package vault

// entryGuard serializes the vault's mutating entry points. It is a
// single-permit semaphore with try-acquire semantics: a second mutating
// call arriving while one is in flight fails fast with ErrReentrancy
// instead of queueing, so an operation can never be re-entered from
// within an external call it makes.
type entryGuard struct {
	permit chan struct{}
}

func newEntryGuard() *entryGuard {
	return &entryGuard{permit: make(chan struct{}, 1)}
}

func (g *entryGuard) acquire() error {
	select {
	case g.permit <- struct{}{}:
		return nil
	default:
		return ErrReentrancy
	}
}

func (g *entryGuard) release() {
	<-g.permit
}
