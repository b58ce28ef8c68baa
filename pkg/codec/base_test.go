package codec_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomkit/codec-go/pkg/codec"
	"github.com/roomkit/codec-go/pkg/codec/mocks"
	"github.com/roomkit/codec-go/pkg/feedback"
	"github.com/roomkit/codec-go/pkg/log"
)

// fakeState is a StateSource whose values the test sets directly.
type fakeState struct {
	inCall       bool
	incoming     bool
	txMute       bool
	rxMute       bool
	privacy      bool
	volume       int
	volumeErr    error
	volumePanics bool
}

func (s *fakeState) InCall() (bool, error)       { return s.inCall, nil }
func (s *fakeState) IncomingCall() (bool, error) { return s.incoming, nil }
func (s *fakeState) TransmitMute() (bool, error) { return s.txMute, nil }
func (s *fakeState) ReceiveMute() (bool, error)  { return s.rxMute, nil }
func (s *fakeState) PrivacyMode() (bool, error)  { return s.privacy, nil }

func (s *fakeState) VolumeLevel() (int, error) {
	if s.volumePanics {
		panic("volume register unreadable")
	}
	return s.volume, s.volumeErr
}

// richState adds the optional reporters.
type richState struct {
	fakeState
	txLevel int
	rxLevel int
	mute    bool
	source  string
}

func (s *richState) TransmitLevel() (int, error)    { return s.txLevel, nil }
func (s *richState) ReceiveLevel() (int, error)     { return s.rxLevel, nil }
func (s *richState) Mute() (bool, error)            { return s.mute, nil }
func (s *richState) SharingSource() (string, error) { return s.source, nil }

// recordingLogger captures events for assertions.
type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingLogger) byCategory(c log.Category) []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []log.Event
	for _, e := range r.events {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// countingTracker counts calls and can be told to fail or panic.
type countingTracker struct {
	starts, ends int
	err          error
	panics       bool
}

func (c *countingTracker) StartDeviceUsage() error {
	c.starts++
	if c.panics {
		panic("tracker exploded")
	}
	return c.err
}

func (c *countingTracker) EndDeviceUsage() error {
	c.ends++
	if c.panics {
		panic("tracker exploded")
	}
	return c.err
}

func newBase(t *testing.T, src codec.StateSource, opts ...codec.Option) *codec.Base {
	t.Helper()
	b, err := codec.NewBase("codec-1", "Room Codec", src, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func setInCall(t *testing.T, b *codec.Base, src *fakeState, v bool) {
	t.Helper()
	src.inCall = v
	_, err := b.InCallFeedback().Poll()
	require.NoError(t, err)
}

func TestNewBaseValidation(t *testing.T) {
	t.Run("empty key", func(t *testing.T) {
		_, err := codec.NewBase("", "x", &fakeState{})
		assert.ErrorIs(t, err, codec.ErrEmptyKey)
	})

	t.Run("nil state source", func(t *testing.T) {
		_, err := codec.NewBase("codec-1", "x", nil)
		assert.ErrorIs(t, err, codec.ErrMissingStateSource)
	})

	t.Run("valid", func(t *testing.T) {
		b, err := codec.NewBase("codec-1", "Room Codec", &fakeState{})
		require.NoError(t, err)
		assert.Equal(t, "codec-1", b.Key())
		assert.Equal(t, "Room Codec", b.Name())
		assert.NotNil(t, b.Logger())
		assert.NotNil(t, b.InputPorts())
		assert.Nil(t, b.UsageTracker())
	})
}

func TestFeedbacksStartAtZeroValue(t *testing.T) {
	src := &fakeState{inCall: true, volume: 40}
	b := newBase(t, src)

	assert.False(t, b.InCallFeedback().Value())
	assert.Equal(t, 0, b.VolumeLevelFeedback().Value())

	require.NoError(t, b.PollFeedbacks())
	assert.True(t, b.InCallFeedback().Value())
	assert.Equal(t, 40, b.VolumeLevelFeedback().Value())
}

func TestFeedbacksSet(t *testing.T) {
	b := newBase(t, &fakeState{})

	assert.Equal(t, []string{
		codec.KeyInCall,
		codec.KeyIncomingCall,
		codec.KeyReceiveMute,
		codec.KeyTransmitMute,
		codec.KeyPrivacyMode,
	}, b.Feedbacks().Keys())

	all := b.AllFeedbacks()
	assert.Len(t, all, 10)
	assert.Equal(t, codec.KeyInCall, all[0].Key())

	// AllFeedbacks returns a copy.
	all[0] = nil
	assert.NotNil(t, b.AllFeedbacks()[0])
}

func TestOptionalReporters(t *testing.T) {
	t.Run("absent reporters are static", func(t *testing.T) {
		b := newBase(t, &fakeState{})
		require.NoError(t, b.PollFeedbacks())

		assert.Equal(t, 0, b.TransmitLevelFeedback().Value())
		assert.Equal(t, 0, b.ReceiveLevelFeedback().Value())
		assert.False(t, b.MuteFeedback().Value())
		assert.Equal(t, "", b.SharingSourceFeedback().Value())
	})

	t.Run("present reporters are bound", func(t *testing.T) {
		src := &richState{txLevel: 30, rxLevel: 55, mute: true, source: "hdmi1"}
		b := newBase(t, src)
		require.NoError(t, b.PollFeedbacks())

		assert.Equal(t, 30, b.TransmitLevelFeedback().Value())
		assert.Equal(t, 55, b.ReceiveLevelFeedback().Value())
		assert.True(t, b.MuteFeedback().Value())
		assert.Equal(t, "hdmi1", b.SharingSourceFeedback().Value())
	})
}

func TestUsageTrackingEdges(t *testing.T) {
	src := &fakeState{}
	tracker := mocks.NewMockUsageTracker(t)
	tracker.EXPECT().StartDeviceUsage().Return(nil).Once()
	tracker.EXPECT().EndDeviceUsage().Return(nil).Once()

	b := newBase(t, src, codec.WithUsageTracker(tracker))

	setInCall(t, b, src, true)
	// Same value again is not an edge.
	setInCall(t, b, src, true)
	setInCall(t, b, src, false)
	setInCall(t, b, src, false)
}

func TestUsageTrackingWithoutTracker(t *testing.T) {
	src := &fakeState{}
	b := newBase(t, src)

	setInCall(t, b, src, true)
	setInCall(t, b, src, false)
	assert.False(t, b.InCallFeedback().Value())
}

func TestUsageTrackerAttachDetach(t *testing.T) {
	src := &fakeState{}
	b := newBase(t, src)
	tracker := &countingTracker{}

	// Call starts while detached; the edge is not replayed on attach.
	setInCall(t, b, src, true)
	b.SetUsageTracker(tracker)
	assert.Equal(t, tracker, b.UsageTracker())
	assert.Equal(t, 0, tracker.starts)

	setInCall(t, b, src, false)
	assert.Equal(t, 1, tracker.ends)

	b.SetUsageTracker(nil)
	setInCall(t, b, src, true)
	setInCall(t, b, src, false)
	assert.Equal(t, 0, tracker.starts)
	assert.Equal(t, 1, tracker.ends)
}

func TestUsageTrackerFailureIsIsolated(t *testing.T) {
	tests := []struct {
		name    string
		tracker *countingTracker
	}{
		{"error", &countingTracker{err: errors.New("billing offline")}},
		{"panic", &countingTracker{panics: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeState{}
			events := &recordingLogger{}
			b := newBase(t, src, codec.WithUsageTracker(tt.tracker), codec.WithEventLogger(events))

			otherCalls := 0
			b.InCallFeedback().Subscribe(func(bool) { otherCalls++ })

			setInCall(t, b, src, true)
			setInCall(t, b, src, false)

			assert.False(t, b.InCallFeedback().Value())
			assert.Equal(t, 1, tt.tracker.starts)
			assert.Equal(t, 1, tt.tracker.ends)
			assert.Equal(t, 2, otherCalls)

			errs := events.byCategory(log.CategoryError)
			require.Len(t, errs, 2)
			assert.Equal(t, log.ErrorSourceTracker, errs[0].Error.Source)
			assert.Equal(t, "usage START", errs[0].Error.Context)
			assert.Equal(t, "usage END", errs[1].Error.Context)
			assert.Empty(t, events.byCategory(log.CategoryUsage))
		})
	}
}

func TestUsageEventsRecorded(t *testing.T) {
	src := &fakeState{}
	events := &recordingLogger{}
	b := newBase(t, src, codec.WithUsageTracker(&countingTracker{}), codec.WithEventLogger(events))

	setInCall(t, b, src, true)
	setInCall(t, b, src, false)

	usage := events.byCategory(log.CategoryUsage)
	require.Len(t, usage, 2)
	assert.Equal(t, log.UsageStart, usage[0].Usage.Action)
	assert.Equal(t, log.UsageEnd, usage[1].Usage.Action)
	assert.Equal(t, "codec-1", usage[0].DeviceKey)

	changes := events.byCategory(log.CategoryFeedback)
	require.Len(t, changes, 2)
	assert.Equal(t, codec.KeyInCall, changes[0].Feedback.Key)
	assert.Equal(t, uint8(feedback.KindBool), changes[0].Feedback.Kind)
	assert.Equal(t, true, changes[0].Feedback.Value)
}

func TestInertDefaultsLeaveFeedbackUnchanged(t *testing.T) {
	src := &fakeState{txMute: true}
	b := newBase(t, src)
	require.NoError(t, b.PollFeedbacks())

	b.SetTransmitVolume(50)
	b.TransmitMuteOff()
	b.TransmitMuteToggle()
	b.SetReceiveVolume(10)
	b.ReceiveMuteOn()
	b.PrivacyModeOn()
	b.MuteOn()
	b.SetVolume(65535)
	b.VolumeUp(true)
	b.VolumeDown(false)
	require.NoError(t, b.PollFeedbacks())

	assert.Equal(t, 0, b.TransmitLevelFeedback().Value())
	assert.True(t, b.TransmitMuteIsOnFeedback().Value())
	assert.False(t, b.ReceiveMuteIsOnFeedback().Value())
	assert.False(t, b.PrivacyModeIsOnFeedback().Value())
	assert.Equal(t, 0, b.VolumeLevelFeedback().Value())
}

func TestPollFeedbacksProducerFailure(t *testing.T) {
	tests := []struct {
		name string
		set  func(*fakeState)
	}{
		{"error", func(s *fakeState) { s.volumeErr = errors.New("serial timeout") }},
		{"panic", func(s *fakeState) { s.volumePanics = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeState{volume: 20}
			events := &recordingLogger{}
			b := newBase(t, src, codec.WithEventLogger(events))
			require.NoError(t, b.PollFeedbacks())

			tt.set(src)
			src.volume = 80
			src.privacy = true

			err := b.PollFeedbacks()
			require.Error(t, err)
			assert.ErrorIs(t, err, feedback.ErrProducerFailed)

			assert.Equal(t, 20, b.VolumeLevelFeedback().Value())
			// Other feedbacks still polled.
			assert.True(t, b.PrivacyModeIsOnFeedback().Value())

			errs := events.byCategory(log.CategoryError)
			require.Len(t, errs, 1)
			assert.Equal(t, log.ErrorSourceProducer, errs[0].Error.Source)
			assert.Equal(t, "poll "+codec.KeyVolumeLevel, errs[0].Error.Context)
		})
	}
}

func TestReportError(t *testing.T) {
	events := &recordingLogger{}
	b := newBase(t, &fakeState{}, codec.WithEventLogger(events))

	b.ReportError(errors.New("socket closed"), "reconnect")

	errs := events.byCategory(log.CategoryError)
	require.Len(t, errs, 1)
	assert.Equal(t, log.ErrorSourceDriver, errs[0].Error.Source)
	assert.Equal(t, "socket closed", errs[0].Error.Message)
	assert.Equal(t, "reconnect", errs[0].Error.Context)
}

func TestClose(t *testing.T) {
	src := &fakeState{}
	tracker := &countingTracker{}
	b, err := codec.NewBase("codec-1", "Room Codec", src, codec.WithUsageTracker(tracker))
	require.NoError(t, err)

	before := b.InCallFeedback().SubscriberCount()
	assert.Equal(t, 2, before)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.True(t, b.Closed())
	assert.Equal(t, 0, b.InCallFeedback().SubscriberCount())
	assert.Nil(t, b.UsageTracker())

	b.SetUsageTracker(tracker)
	assert.Nil(t, b.UsageTracker())

	setInCall(t, b, src, true)
	assert.Equal(t, 0, tracker.starts)
}

func TestCallState(t *testing.T) {
	tests := []struct {
		state    codec.CallState
		name     string
		inCall   bool
		incoming bool
		active   bool
	}{
		{codec.CallIdle, "IDLE", false, false, false},
		{codec.CallDialing, "DIALING", false, false, true},
		{codec.CallRinging, "RINGING", false, true, true},
		{codec.CallConnected, "CONNECTED", true, false, true},
		{codec.CallDisconnecting, "DISCONNECTING", false, false, true},
		{codec.CallState(99), "UNKNOWN", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.state.String())
			assert.Equal(t, tt.inCall, tt.state.InCall())
			assert.Equal(t, tt.incoming, tt.state.Incoming())
			assert.Equal(t, tt.active, tt.state.Active())
		})
	}
}

func TestCapabilities(t *testing.T) {
	b := newBase(t, &fakeState{})

	// Base alone lacks the protocol capabilities.
	assert.Equal(t, []string{
		codec.CapabilityTransmitAudio,
		codec.CapabilityReceiveAudio,
		codec.CapabilityPrivacy,
		codec.CapabilityVolume,
		codec.CapabilityUsage,
	}, codec.Capabilities(b))

	assert.Empty(t, codec.Capabilities(struct{}{}))
}
