package banner

import "sync"

// Policy controls what happens to existing banners when a new one arrives.
type Policy int

const (
	// PolicyAccumulate keeps existing banners and appends, evicting the
	// oldest only when the stack is at capacity.
	PolicyAccumulate Policy = iota
	// PolicyReplace evicts every existing banner on each push.
	PolicyReplace
)

func (p Policy) String() string {
	switch p {
	case PolicyAccumulate:
		return "accumulate"
	case PolicyReplace:
		return "replace"
	}
	return "unknown"
}

// DefaultCapacity bounds a stack when no explicit capacity is configured.
const DefaultCapacity = 32

// StackOption configures a Stack.
type StackOption func(*Stack)

// WithPolicy sets the replacement policy.
func WithPolicy(p Policy) StackOption {
	return func(s *Stack) {
		s.policy = p
	}
}

// WithCapacity bounds the stack. Values below one fall back to
// DefaultCapacity.
func WithCapacity(n int) StackOption {
	return func(s *Stack) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// Stack owns the banners currently attached to one form.
type Stack struct {
	mu       sync.Mutex
	policy   Policy
	capacity int
	items    []Banner
}

// NewStack builds a stack with PolicyAccumulate and DefaultCapacity unless
// configured otherwise.
func NewStack(opts ...StackOption) *Stack {
	s := &Stack{policy: PolicyAccumulate, capacity: DefaultCapacity}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Policy returns the stack's replacement policy.
func (s *Stack) Policy() Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// Push adds b and returns the banners evicted to make room for it, oldest
// first. Callers are responsible for removing evicted banners from wherever
// they were displayed.
func (s *Stack) Push(b Banner) []Banner {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []Banner
	if s.policy == PolicyReplace {
		evicted = s.items
		s.items = nil
	}
	s.items = append(s.items, b)
	if over := len(s.items) - s.capacity; over > 0 {
		evicted = append(evicted, s.items[:over]...)
		s.items = append([]Banner(nil), s.items[over:]...)
	}
	return evicted
}

// Remove drops the banner with the given id, reporting whether it was held.
func (s *Stack) Remove(id string) (Banner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.items {
		if b.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return b, true
		}
	}
	return Banner{}, false
}

// Items returns a copy of the held banners, oldest first.
func (s *Stack) Items() []Banner {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Banner, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports how many banners the stack holds.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
