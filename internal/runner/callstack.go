package runner

// CallStack is the ordered list of script names currently executing. It is
// passed explicitly through every recursive invocation rather than shared
// globally, so independent top-level runs cannot corrupt each other's cycle
// detection. Extending it returns a new value; the caller's stack is
// naturally restored when the recursive call returns.
type CallStack []string

// Contains reports whether the named script is already on the stack.
func (s CallStack) Contains(name string) bool {
	for _, entry := range s {
		if entry == name {
			return true
		}
	}
	return false
}

// Push returns a new stack with the name appended.
func (s CallStack) Push(name string) CallStack {
	next := make(CallStack, len(s), len(s)+1)
	copy(next, s)
	return append(next, name)
}
