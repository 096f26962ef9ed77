package alloc

// Session tracks the machines consumed during one planning pass. It is
// shared between interactive and automatic allocation so that a machine
// takes at most one job per session, whichever mode committed it.
//
// A Session is not safe for concurrent use; the engine's contract is a
// single control thread per session.
type Session struct {
	used map[int]bool
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{used: make(map[int]bool)}
}

// Use marks a machine as consumed for the rest of the session.
func (s *Session) Use(machineNumber int) {
	s.used[machineNumber] = true
}

// Used reports whether a machine was already consumed this session.
func (s *Session) Used(machineNumber int) bool {
	return s.used[machineNumber]
}

// Count returns the number of consumed machines.
func (s *Session) Count() int {
	return len(s.used)
}

// Reset clears the session. Only an explicit planning restart calls this.
func (s *Session) Reset() {
	s.used = make(map[int]bool)
}

// UsedMachines returns the consumed machine numbers in unspecified order.
func (s *Session) UsedMachines() []int {
	out := make([]int, 0, len(s.used))
	for n := range s.used {
		out = append(out, n)
	}
	return out
}
