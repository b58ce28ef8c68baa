package codec

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roomkit/codec-go/pkg/feedback"
	"github.com/roomkit/codec-go/pkg/log"
	"github.com/roomkit/codec-go/pkg/routing"
)

// Feedback keys.
const (
	KeyInCall        = "inCall"
	KeyIncomingCall  = "incomingCall"
	KeyTransmitMute  = "transmitMute"
	KeyReceiveMute   = "receiveMute"
	KeyPrivacyMode   = "privacyMode"
	KeyVolumeLevel   = "volumeLevel"
	KeyMute          = "mute"
	KeyTransmitLevel = "transmitLevel"
	KeyReceiveLevel  = "receiveLevel"
	KeySharingSource = "sharingSource"
)

// Option configures a Base.
type Option func(*Base)

// WithLogger sets the operational logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Base) {
		b.logger = logger
	}
}

// WithEventLogger sets the event trace receiving feedback changes,
// usage edges and isolated failures.
func WithEventLogger(events log.Logger) Option {
	return func(b *Base) {
		if events != nil {
			b.events = events
		}
	}
}

// WithUsageTracker attaches a usage tracker at construction.
func WithUsageTracker(tracker UsageTracker) Option {
	return func(b *Base) {
		b.tracker = tracker
	}
}

// Base is the shared part of every codec driver.
type Base struct {
	key  string
	name string

	logger *slog.Logger
	events log.Logger

	inputPorts *routing.PortCollection

	inCall        *feedback.Feedback[bool]
	incomingCall  *feedback.Feedback[bool]
	transmitMute  *feedback.Feedback[bool]
	receiveMute   *feedback.Feedback[bool]
	privacyMode   *feedback.Feedback[bool]
	mute          *feedback.Feedback[bool]
	volumeLevel   *feedback.Feedback[int]
	transmitLevel *feedback.Feedback[int]
	receiveLevel  *feedback.Feedback[int]
	sharingSource *feedback.Feedback[string]

	// all owned feedbacks in poll order
	owned feedback.Collection

	mu      sync.RWMutex
	tracker UsageTracker
	subs    []ownedSubscription
	closed  bool
}

type ownedSubscription struct {
	fb feedback.Observable
	id feedback.SubscriptionID
}

// NewBase creates the shared codec state for a driver.
//
// Construction happens in fixed steps: the arguments are validated,
// every feedback is bound to its producer on src, and only then are the
// internal subscribers (usage tracking, event trace) registered. A nil
// src is a contract violation and returns ErrMissingStateSource.
func NewBase(key, name string, src StateSource, opts ...Option) (*Base, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingStateSource, key)
	}

	b := &Base{
		key:        key,
		name:       name,
		logger:     slog.Default(),
		events:     log.NoopLogger{},
		inputPorts: routing.NewPortCollection(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("device", key)

	b.buildFeedbacks(src)
	b.subscribe()

	return b, nil
}

func (b *Base) buildFeedbacks(src StateSource) {
	opt := feedback.WithLogger(b.logger)

	b.inCall = feedback.NewBool(KeyInCall, src.InCall, opt)
	b.incomingCall = feedback.NewBool(KeyIncomingCall, src.IncomingCall, opt)
	b.transmitMute = feedback.NewBool(KeyTransmitMute, src.TransmitMute, opt)
	b.receiveMute = feedback.NewBool(KeyReceiveMute, src.ReceiveMute, opt)
	b.privacyMode = feedback.NewBool(KeyPrivacyMode, src.PrivacyMode, opt)
	b.volumeLevel = feedback.NewInt(KeyVolumeLevel, src.VolumeLevel, opt)

	if r, ok := src.(MuteReporter); ok {
		b.mute = feedback.NewBool(KeyMute, r.Mute, opt)
	} else {
		b.mute = feedback.Static(KeyMute, false, opt)
	}

	if r, ok := src.(LevelReporter); ok {
		b.transmitLevel = feedback.NewInt(KeyTransmitLevel, r.TransmitLevel, opt)
		b.receiveLevel = feedback.NewInt(KeyReceiveLevel, r.ReceiveLevel, opt)
	} else {
		b.transmitLevel = feedback.Static(KeyTransmitLevel, 0, opt)
		b.receiveLevel = feedback.Static(KeyReceiveLevel, 0, opt)
	}

	if r, ok := src.(SharingSourceReporter); ok {
		b.sharingSource = feedback.NewString(KeySharingSource, r.SharingSource, opt)
	} else {
		b.sharingSource = feedback.Static(KeySharingSource, "", opt)
	}

	// In-call first so usage edges precede the other changes of a poll.
	b.owned = feedback.Collection{
		b.inCall,
		b.incomingCall,
		b.transmitMute,
		b.receiveMute,
		b.privacyMode,
		b.volumeLevel,
		b.mute,
		b.transmitLevel,
		b.receiveLevel,
		b.sharingSource,
	}
}

func (b *Base) subscribe() {
	usageID := b.inCall.Subscribe(b.onInCallChange)
	b.subs = append(b.subs, ownedSubscription{fb: b.inCall, id: usageID})

	for _, fb := range b.owned {
		kind := uint8(fb.Kind())
		id := fb.SubscribeAny(func(key string, value any) {
			b.events.Log(log.NewFeedbackEvent(b.key, key, kind, value))
		})
		b.subs = append(b.subs, ownedSubscription{fb: fb, id: id})
	}
}

// onInCallChange turns in-call edges into usage tracker calls.
func (b *Base) onInCallChange(inCall bool) {
	b.mu.RLock()
	tracker := b.tracker
	b.mu.RUnlock()

	if tracker == nil {
		return
	}

	action := log.UsageEnd
	call := tracker.EndDeviceUsage
	if inCall {
		action = log.UsageStart
		call = tracker.StartDeviceUsage
	}

	if err := callTracker(call); err != nil {
		b.logger.Warn("usage tracker failed", "action", action.String(), "error", err)
		b.events.Log(log.NewErrorEvent(b.key, log.ErrorSourceTracker, err, "usage "+action.String()))
		return
	}
	ev := log.NewUsageEvent(b.key, action, 0)
	if r, ok := tracker.(SessionReporter); ok {
		ev.SessionID = r.SessionID()
		if action == log.UsageEnd {
			ev.Usage.Duration = r.LastDuration()
		}
	}
	b.events.Log(ev)
}

// callTracker runs a tracker call, converting a panic into an error.
func callTracker(call func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("usage tracker panic: %v", r)
		}
	}()
	return call()
}

// Key returns the device key.
func (b *Base) Key() string {
	return b.key
}

// Name returns the display name.
func (b *Base) Name() string {
	return b.name
}

// Logger returns the device logger for use by the driver.
func (b *Base) Logger() *slog.Logger {
	return b.logger
}

// InputPorts returns the routable inputs. Drivers add their ports after
// construction.
func (b *Base) InputPorts() *routing.PortCollection {
	return b.inputPorts
}

// UsageTracker returns the attached tracker, or nil.
func (b *Base) UsageTracker() UsageTracker {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tracker
}

// SetUsageTracker attaches tracker; nil detaches. In-call transitions
// that happen while detached are not replayed on attach.
func (b *Base) SetUsageTracker(tracker UsageTracker) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.tracker = tracker
}

// InCallFeedback reports whether a call is connected.
func (b *Base) InCallFeedback() *feedback.Feedback[bool] { return b.inCall }

// IncomingCallFeedback reports whether a call is ringing.
func (b *Base) IncomingCallFeedback() *feedback.Feedback[bool] { return b.incomingCall }

// TransmitMuteIsOnFeedback reports whether outgoing audio is muted.
func (b *Base) TransmitMuteIsOnFeedback() *feedback.Feedback[bool] { return b.transmitMute }

// ReceiveMuteIsOnFeedback reports whether incoming audio is muted.
func (b *Base) ReceiveMuteIsOnFeedback() *feedback.Feedback[bool] { return b.receiveMute }

// PrivacyModeIsOnFeedback reports whether the camera privacy mode is on.
func (b *Base) PrivacyModeIsOnFeedback() *feedback.Feedback[bool] { return b.privacyMode }

// MuteFeedback reports the combined microphone mute state.
func (b *Base) MuteFeedback() *feedback.Feedback[bool] { return b.mute }

// VolumeLevelFeedback carries the speaker volume level.
func (b *Base) VolumeLevelFeedback() *feedback.Feedback[int] { return b.volumeLevel }

// TransmitLevelFeedback carries the outgoing audio level.
func (b *Base) TransmitLevelFeedback() *feedback.Feedback[int] { return b.transmitLevel }

// ReceiveLevelFeedback carries the incoming audio level.
func (b *Base) ReceiveLevelFeedback() *feedback.Feedback[int] { return b.receiveLevel }

// SharingSourceFeedback carries the active content sharing source.
func (b *Base) SharingSourceFeedback() *feedback.Feedback[string] { return b.sharingSource }

// Feedbacks returns the call and mute feedbacks every codec exposes.
// Drivers with more feedbacks wrap this method and append their own.
func (b *Base) Feedbacks() feedback.Collection {
	return feedback.Collection{
		b.inCall,
		b.incomingCall,
		b.receiveMute,
		b.transmitMute,
		b.privacyMode,
	}
}

// AllFeedbacks returns every feedback owned by the base in poll order.
func (b *Base) AllFeedbacks() feedback.Collection {
	all := make(feedback.Collection, len(b.owned))
	copy(all, b.owned)
	return all
}

// PollFeedbacks polls every owned feedback. Drivers call it after
// updating their state. Producer failures are logged to the event trace
// and returned joined; they never stop the remaining polls.
func (b *Base) PollFeedbacks() error {
	var errs []error
	for _, fb := range b.owned {
		if _, err := fb.Poll(); err != nil {
			b.events.Log(log.NewErrorEvent(b.key, log.ErrorSourceProducer, err, "poll "+fb.Key()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReportError records a driver failure in the event trace.
func (b *Base) ReportError(err error, context string) {
	b.logger.Warn("driver error", "context", context, "error", err)
	b.events.Log(log.NewErrorEvent(b.key, log.ErrorSourceDriver, err, context))
}

// Close releases the internal subscriptions and detaches the usage
// tracker. It is safe to call more than once.
func (b *Base) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, s := range b.subs {
		s.fb.Unsubscribe(s.id)
	}
	b.subs = nil
	b.tracker = nil
	return nil
}

// Closed reports whether Close has been called.
func (b *Base) Closed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}
