package tracker

import (
	"fmt"
	"sync"

	"github.com/discovery-engine/internal/domain"
)

// PushSource is a PositionSource that the host feeds programmatically:
// websocket frames, stream messages or scripted readings in tests. Readings
// pushed before Start or after Stop are dropped, which gives the tracker its
// no-callbacks-after-stop guarantee for free.
type PushSource struct {
	mu       sync.Mutex
	started  bool
	onUpdate func(domain.TrackedPosition)
	onError  func(error)
}

func NewPushSource() *PushSource {
	return &PushSource{}
}

func (s *PushSource) Start(onUpdate func(domain.TrackedPosition), onError func(error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("position source already started")
	}
	s.started = true
	s.onUpdate = onUpdate
	s.onError = onError
	return nil
}

func (s *PushSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.started = false
	s.onUpdate = nil
	s.onError = nil
}

// Push delivers one reading synchronously to the subscriber, if any.
func (s *PushSource) Push(reading domain.TrackedPosition) {
	s.mu.Lock()
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(reading)
	}
}

// Fail reports a terminal acquisition failure to the subscriber, if any.
func (s *PushSource) Fail(err error) {
	s.mu.Lock()
	onError := s.onError
	s.mu.Unlock()

	if onError != nil {
		onError(err)
	}
}
