package engine

// Serial runs every operation on the calling goroutine in a single pass.
type Serial struct {
	local
}

// NewSerial creates a serial strategy.
func NewSerial() *Serial {
	return &Serial{local: local{forEach: sequential}}
}

// Kind implements Strategy.
func (s *Serial) Kind() Kind { return KindSerial }

// Close implements Strategy.
func (s *Serial) Close() error {
	s.img = nil
	return nil
}
