package props

// Host is the external authority that gates when a property may be mutated.
// Every property consults it before accepting a write; construction never
// touches it. The host outlives all properties built against it.
type Host interface {
	// BeforeMutate returns an error when the named target must not be
	// mutated at this point of the build lifecycle.
	BeforeMutate(target string) error
}

type nopHost struct{}

func (nopHost) BeforeMutate(string) error { return nil }

// NopHost allows every mutation. Useful for tests and one-shot tools that
// have no lifecycle to guard.
var NopHost Host = nopHost{}
