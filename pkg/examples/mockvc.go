package examples

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/roomkit/codec-go/pkg/codec"
	"github.com/roomkit/codec-go/pkg/control"
	"github.com/roomkit/codec-go/pkg/feedback"
	"github.com/roomkit/codec-go/pkg/log"
	"github.com/roomkit/codec-go/pkg/routing"
)

// Volume limits on the 16-bit level scale used by SetVolume.
const (
	MaxVolume  = 65535
	VolumeStep = 3277 // ~5%
)

// DefaultCommandTimeout bounds how long a command waits for the control queue.
const DefaultCommandTimeout = 5 * time.Second

const dtmfDigits = "0123456789*#ABCD"

// MockVC is an in-memory video codec. It implements every capability
// and keeps its state in memory, so it can stand in for real hardware in
// tests and in the simulator.
//
// All commands run on the codec's control queue. Each command mutates
// the state and then polls the feedbacks, so subscribers see changes in
// command order.
type MockVC struct {
	*codec.Base

	queue   *control.Queue
	timeout time.Duration
	manual  bool

	mu           sync.RWMutex
	state        codec.CallState
	remoteParty  string
	dtmf         []string
	sharing      bool
	currentInput string
	txMute       bool
	rxMute       bool
	privacy      bool
	mute         bool
	volume       int
	txLevel      int
	rxLevel      int
}

// MockVCConfig contains configuration for creating a MockVC.
type MockVCConfig struct {
	Key  string
	Name string

	// Inputs are the routable input ports. The first becomes the
	// current input.
	Inputs []routing.InputPort

	// ManualConnect leaves outgoing calls in DIALING until
	// SimulateRemoteAnswer is called. Otherwise calls connect at once.
	ManualConnect bool

	// InitialVolume is the starting volume level.
	InitialVolume int

	// PollInterval, when set, re-polls all feedbacks periodically.
	PollInterval time.Duration

	// CommandTimeout bounds each command. Default: DefaultCommandTimeout.
	CommandTimeout time.Duration

	Logger       *slog.Logger
	EventLogger  log.Logger
	UsageTracker codec.UsageTracker
}

// NewMockVC creates a mock codec and starts its control queue.
func NewMockVC(cfg MockVCConfig) (*MockVC, error) {
	m := &MockVC{
		timeout: cfg.CommandTimeout,
		manual:  cfg.ManualConnect,
		volume:  clampVolume(cfg.InitialVolume),
	}
	if m.timeout <= 0 {
		m.timeout = DefaultCommandTimeout
	}

	var opts []codec.Option
	if cfg.Logger != nil {
		opts = append(opts, codec.WithLogger(cfg.Logger))
	}
	if cfg.EventLogger != nil {
		opts = append(opts, codec.WithEventLogger(cfg.EventLogger))
	}
	if cfg.UsageTracker != nil {
		opts = append(opts, codec.WithUsageTracker(cfg.UsageTracker))
	}

	base, err := codec.NewBase(cfg.Key, cfg.Name, m, opts...)
	if err != nil {
		return nil, err
	}
	m.Base = base

	for i := range cfg.Inputs {
		port := cfg.Inputs[i]
		if port.ParentKey == "" {
			port.ParentKey = cfg.Key
		}
		if err := base.InputPorts().Add(&port); err != nil {
			_ = base.Close()
			return nil, fmt.Errorf("input %q: %w", port.Key, err)
		}
		if i == 0 {
			m.currentInput = port.Key
		}
	}

	qopts := []control.Option{control.WithLogger(base.Logger())}
	if cfg.PollInterval > 0 {
		qopts = append(qopts, control.WithTick(cfg.PollInterval, m.poll))
	}
	m.queue = control.NewQueue(qopts...)
	m.queue.Start()

	// Publish the initial state.
	if err := m.do(func() error { return m.PollFeedbacks() }); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// Close stops the control queue and releases the base.
func (m *MockVC) Close() error {
	m.queue.Stop()
	return m.Base.Close()
}

// do runs fn on the control queue and waits for it. A command that is
// still queued when the timeout expires is dropped and never applied; one
// that already started finishes and reports control.ErrTaskRunning.
func (m *MockVC) do(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	return m.queue.Do(ctx, fn)
}

// apply runs a state change on the control queue and polls the
// feedbacks afterwards. Used by commands without an error return.
func (m *MockVC) apply(command string, change func()) {
	err := m.do(func() error {
		m.mu.Lock()
		change()
		m.mu.Unlock()
		return m.PollFeedbacks()
	})
	if err != nil {
		m.ReportError(err, command)
	}
}

// transition runs a guarded state change and polls the feedbacks.
func (m *MockVC) transition(change func() error) error {
	return m.do(func() error {
		m.mu.Lock()
		err := change()
		m.mu.Unlock()
		if err != nil {
			return err
		}
		return m.PollFeedbacks()
	})
}

func (m *MockVC) poll() {
	// Errors are already logged and traced by PollFeedbacks.
	_ = m.PollFeedbacks()
}

// State producers.

func (m *MockVC) InCall() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.InCall(), nil
}

func (m *MockVC) IncomingCall() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Incoming(), nil
}

func (m *MockVC) TransmitMute() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.txMute, nil
}

func (m *MockVC) ReceiveMute() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rxMute, nil
}

func (m *MockVC) PrivacyMode() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.privacy, nil
}

func (m *MockVC) VolumeLevel() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volume, nil
}

func (m *MockVC) Mute() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mute, nil
}

func (m *MockVC) TransmitLevel() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.txLevel, nil
}

func (m *MockVC) ReceiveLevel() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rxLevel, nil
}

func (m *MockVC) SharingSource() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.sharing {
		return "", nil
	}
	return m.currentInput, nil
}

// Dialer.

// Dial places a call. Without ManualConnect the call connects at once.
func (m *MockVC) Dial(destination string) error {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return codec.ErrInvalidDestination
	}

	err := m.transition(func() error {
		if m.state.Active() {
			return codec.ErrCallInProgress
		}
		m.state = codec.CallDialing
		m.remoteParty = destination
		m.dtmf = nil
		return nil
	})
	if err != nil || m.manual {
		return err
	}
	return m.SimulateRemoteAnswer()
}

// EndCall hangs up an active or dialing call.
func (m *MockVC) EndCall() error {
	return m.transition(func() error {
		if m.state != codec.CallConnected && m.state != codec.CallDialing {
			return codec.ErrNotInCall
		}
		m.hangup()
		return nil
	})
}

// AcceptCall answers a ringing call.
func (m *MockVC) AcceptCall() error {
	return m.transition(func() error {
		if m.state != codec.CallRinging {
			return codec.ErrNoIncomingCall
		}
		m.state = codec.CallConnected
		return nil
	})
}

// RejectCall declines a ringing call.
func (m *MockVC) RejectCall() error {
	return m.transition(func() error {
		if m.state != codec.CallRinging {
			return codec.ErrNoIncomingCall
		}
		m.hangup()
		return nil
	})
}

// SendDTMF records digits sent during a connected call.
func (m *MockVC) SendDTMF(digits string) error {
	if digits == "" || strings.Trim(digits, dtmfDigits) != "" {
		return fmt.Errorf("%w: %q", codec.ErrInvalidDTMF, digits)
	}
	return m.do(func() error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.state != codec.CallConnected {
			return codec.ErrNotInCall
		}
		m.dtmf = append(m.dtmf, digits)
		return nil
	})
}

// hangup resets the call. Caller holds m.mu.
func (m *MockVC) hangup() {
	m.state = codec.CallIdle
	m.remoteParty = ""
}

// Sharing.

// StartSharing shares the current input.
func (m *MockVC) StartSharing() error {
	return m.transition(func() error {
		if m.currentInput == "" {
			return fmt.Errorf("%w: no input to share", codec.ErrInvalidSelector)
		}
		m.sharing = true
		return nil
	})
}

// StopSharing stops content sharing. Stopping when idle is a no-op.
func (m *MockVC) StopSharing() error {
	return m.transition(func() error {
		m.sharing = false
		return nil
	})
}

// Routing.

// ExecuteSwitch selects the input whose selector equals selector. A
// string selector may also name the port key.
func (m *MockVC) ExecuteSwitch(selector any) error {
	port := m.findPort(selector)
	if port == nil {
		return fmt.Errorf("%w: %v", codec.ErrInvalidSelector, selector)
	}
	return m.transition(func() error {
		m.currentInput = port.Key
		return nil
	})
}

func (m *MockVC) findPort(selector any) *routing.InputPort {
	if selector == nil {
		return nil
	}
	for _, p := range m.InputPorts().Ports() {
		if routing.SelectorEqual(p.Selector, selector) {
			return p
		}
	}
	if key, ok := selector.(string); ok {
		if p, err := m.InputPorts().Get(key); err == nil {
			return p
		}
	}
	return nil
}

// Audio path overrides.

func (m *MockVC) TransmitMuteOn()     { m.apply("TransmitMuteOn", func() { m.txMute = true }) }
func (m *MockVC) TransmitMuteOff()    { m.apply("TransmitMuteOff", func() { m.txMute = false }) }
func (m *MockVC) TransmitMuteToggle() { m.apply("TransmitMuteToggle", func() { m.txMute = !m.txMute }) }

func (m *MockVC) SetTransmitVolume(level uint16) {
	m.apply("SetTransmitVolume", func() { m.txLevel = int(level) })
}

func (m *MockVC) ReceiveMuteOn()     { m.apply("ReceiveMuteOn", func() { m.rxMute = true }) }
func (m *MockVC) ReceiveMuteOff()    { m.apply("ReceiveMuteOff", func() { m.rxMute = false }) }
func (m *MockVC) ReceiveMuteToggle() { m.apply("ReceiveMuteToggle", func() { m.rxMute = !m.rxMute }) }

func (m *MockVC) SetReceiveVolume(level uint16) {
	m.apply("SetReceiveVolume", func() { m.rxLevel = int(level) })
}

func (m *MockVC) PrivacyModeOn()     { m.apply("PrivacyModeOn", func() { m.privacy = true }) }
func (m *MockVC) PrivacyModeOff()    { m.apply("PrivacyModeOff", func() { m.privacy = false }) }
func (m *MockVC) PrivacyModeToggle() { m.apply("PrivacyModeToggle", func() { m.privacy = !m.privacy }) }

func (m *MockVC) MuteOn()     { m.apply("MuteOn", func() { m.mute = true }) }
func (m *MockVC) MuteOff()    { m.apply("MuteOff", func() { m.mute = false }) }
func (m *MockVC) MuteToggle() { m.apply("MuteToggle", func() { m.mute = !m.mute }) }

func (m *MockVC) SetVolume(level uint16) {
	m.apply("SetVolume", func() { m.volume = int(level) })
}

// VolumeUp steps the volume once per press. Releases are ignored.
func (m *MockVC) VolumeUp(pressRelease bool) {
	if !pressRelease {
		return
	}
	m.apply("VolumeUp", func() { m.volume = clampVolume(m.volume + VolumeStep) })
}

// VolumeDown steps the volume once per press. Releases are ignored.
func (m *MockVC) VolumeDown(pressRelease bool) {
	if !pressRelease {
		return
	}
	m.apply("VolumeDown", func() { m.volume = clampVolume(m.volume - VolumeStep) })
}

func clampVolume(v int) int {
	return max(0, min(v, MaxVolume))
}

// Feedbacks extends the base set with the sharing, level and volume
// feedbacks this codec drives.
func (m *MockVC) Feedbacks() feedback.Collection {
	return append(m.Base.Feedbacks(),
		m.SharingSourceFeedback(),
		m.VolumeLevelFeedback(),
		m.MuteFeedback(),
		m.TransmitLevelFeedback(),
		m.ReceiveLevelFeedback(),
	)
}

// Simulation hooks.

// SimulateIncomingCall rings the codec from caller.
func (m *MockVC) SimulateIncomingCall(caller string) error {
	return m.transition(func() error {
		if m.state.Active() {
			return codec.ErrCallInProgress
		}
		m.state = codec.CallRinging
		m.remoteParty = caller
		m.dtmf = nil
		return nil
	})
}

// SimulateRemoteAnswer connects a dialing call.
func (m *MockVC) SimulateRemoteAnswer() error {
	return m.transition(func() error {
		if m.state != codec.CallDialing {
			return codec.ErrNotInCall
		}
		m.state = codec.CallConnected
		return nil
	})
}

// SimulateRemoteHangup ends the call from the far end.
func (m *MockVC) SimulateRemoteHangup() error {
	return m.transition(func() error {
		if !m.state.Active() {
			return codec.ErrNotInCall
		}
		m.hangup()
		return nil
	})
}

// Status accessors.

// CallState returns the current call state.
func (m *MockVC) CallState() codec.CallState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// RemoteParty returns the dialed destination or the caller.
func (m *MockVC) RemoteParty() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.remoteParty
}

// DTMFHistory returns the digit strings sent in the current call.
func (m *MockVC) DTMFHistory() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.dtmf))
	copy(out, m.dtmf)
	return out
}

// CurrentInput returns the selected input port key.
func (m *MockVC) CurrentInput() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentInput
}

var (
	_ codec.Codec                 = (*MockVC)(nil)
	_ codec.LevelReporter         = (*MockVC)(nil)
	_ codec.SharingSourceReporter = (*MockVC)(nil)
	_ codec.MuteReporter          = (*MockVC)(nil)
)
