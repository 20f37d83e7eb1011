package entities

// PublishSet records the packages already published during one run, so a
// package reachable through several dependency paths is published once.
type PublishSet struct {
	names map[string]bool
	order []string
}

// NewPublishSet creates an empty set.
func NewPublishSet() *PublishSet {
	return &PublishSet{names: make(map[string]bool)}
}

// Has reports whether name was already published.
func (s *PublishSet) Has(name string) bool {
	return s.names[name]
}

// Add marks name as published.
func (s *PublishSet) Add(name string) {
	if s.names[name] {
		return
	}
	s.names[name] = true
	s.order = append(s.order, name)
}

// Names returns the published names in publish order.
func (s *PublishSet) Names() []string {
	return append([]string(nil), s.order...)
}
