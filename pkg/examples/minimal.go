package examples

import (
	"fmt"
	"sync"

	"github.com/roomkit/codec-go/pkg/codec"
	"github.com/roomkit/codec-go/pkg/routing"
)

// Minimal is the smallest complete codec driver: it supplies the
// required producers, call control, sharing and switching, and relies
// on codec.Base for every audio path. Its audio feedbacks never change.
type Minimal struct {
	*codec.Base

	mu      sync.Mutex
	inCall  bool
	ringing bool
	input   any
}

// NewMinimal creates a minimal codec.
func NewMinimal(key, name string, opts ...codec.Option) (*Minimal, error) {
	m := &Minimal{}
	base, err := codec.NewBase(key, name, m, opts...)
	if err != nil {
		return nil, err
	}
	m.Base = base
	return m, nil
}

func (m *Minimal) InCall() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inCall, nil
}

func (m *Minimal) IncomingCall() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ringing, nil
}

func (m *Minimal) TransmitMute() (bool, error) { return false, nil }
func (m *Minimal) ReceiveMute() (bool, error)  { return false, nil }
func (m *Minimal) PrivacyMode() (bool, error)  { return false, nil }
func (m *Minimal) VolumeLevel() (int, error)   { return 0, nil }

// setCall updates the call flags and publishes them.
func (m *Minimal) setCall(inCall, ringing bool) error {
	m.mu.Lock()
	m.inCall, m.ringing = inCall, ringing
	m.mu.Unlock()
	return m.PollFeedbacks()
}

// Dial connects immediately.
func (m *Minimal) Dial(destination string) error {
	if destination == "" {
		return codec.ErrInvalidDestination
	}
	return m.setCall(true, false)
}

func (m *Minimal) EndCall() error    { return m.setCall(false, false) }
func (m *Minimal) AcceptCall() error { return m.setCall(true, false) }
func (m *Minimal) RejectCall() error { return m.setCall(false, false) }

// SendDTMF accepts any digits and discards them.
func (m *Minimal) SendDTMF(digits string) error {
	m.Logger().Debug("dtmf discarded", "digits", digits)
	return nil
}

// Ring marks an incoming call.
func (m *Minimal) Ring() error {
	return m.setCall(false, true)
}

// StartSharing and StopSharing are accepted but have no effect; the
// sharing-source feedback stays empty.
func (m *Minimal) StartSharing() error { return nil }
func (m *Minimal) StopSharing() error  { return nil }

// ExecuteSwitch records the selector if a port carries it.
func (m *Minimal) ExecuteSwitch(selector any) error {
	for _, p := range m.InputPorts().Ports() {
		if routing.SelectorEqual(p.Selector, selector) {
			m.mu.Lock()
			m.input = selector
			m.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("%w: %v", codec.ErrInvalidSelector, selector)
}

// Selected returns the last selector switched to.
func (m *Minimal) Selected() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input
}

var (
	_ codec.Codec  = (*Minimal)(nil)
	_ routing.Sink = (*Minimal)(nil)
)
