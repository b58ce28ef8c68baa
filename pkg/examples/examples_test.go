package examples

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomkit/codec-go/pkg/codec"
	"github.com/roomkit/codec-go/pkg/codec/mocks"
	"github.com/roomkit/codec-go/pkg/routing"
	"github.com/roomkit/codec-go/pkg/usage"
)

func testInputs() []routing.InputPort {
	return []routing.InputPort{
		{Key: "hdmi1", Signal: routing.SignalAudioVideo, Connection: routing.ConnectionHDMI, Selector: 1},
		{Key: "hdmi2", Signal: routing.SignalAudioVideo, Connection: routing.ConnectionHDMI, Selector: 2},
		{Key: "camera", Signal: routing.SignalVideo, Selector: "cam", Internal: true},
	}
}

func newMockVC(t *testing.T, mutate ...func(*MockVCConfig)) *MockVC {
	t.Helper()
	cfg := MockVCConfig{
		Key:           "room-101-codec",
		Name:          "Room 101",
		Inputs:        testInputs(),
		InitialVolume: 30000,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	m, err := NewMockVC(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// boolRecorder collects notifications from a bool feedback.
type boolRecorder struct {
	mu     sync.Mutex
	values []bool
}

func (r *boolRecorder) record(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *boolRecorder) get() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.values...)
}

func TestMockVCCreation(t *testing.T) {
	m := newMockVC(t)

	assert.Equal(t, "room-101-codec", m.Key())
	assert.Equal(t, "Room 101", m.Name())
	assert.Equal(t, codec.CallIdle, m.CallState())
	assert.Equal(t, 3, m.InputPorts().Len())
	assert.Equal(t, "hdmi1", m.CurrentInput())
	assert.Equal(t, 30000, m.VolumeLevelFeedback().Value())

	port, err := m.InputPorts().Get("camera")
	require.NoError(t, err)
	assert.Equal(t, "room-101-codec", port.ParentKey)

	assert.Equal(t, []string{
		codec.CapabilityDialer,
		codec.CapabilitySharing,
		codec.CapabilityRouting,
		codec.CapabilityTransmitAudio,
		codec.CapabilityReceiveAudio,
		codec.CapabilityPrivacy,
		codec.CapabilityVolume,
		codec.CapabilityUsage,
	}, codec.Capabilities(m))
}

func TestMockVCCreationErrors(t *testing.T) {
	_, err := NewMockVC(MockVCConfig{Name: "no key"})
	assert.ErrorIs(t, err, codec.ErrEmptyKey)

	_, err = NewMockVC(MockVCConfig{
		Key:    "c",
		Inputs: []routing.InputPort{{Key: "a"}, {Key: "a"}},
	})
	assert.ErrorIs(t, err, routing.ErrDuplicatePort)
}

func TestMockVCCallLifecycle(t *testing.T) {
	tracker := mocks.NewMockUsageTracker(t)
	tracker.EXPECT().StartDeviceUsage().Return(nil).Once()
	tracker.EXPECT().EndDeviceUsage().Return(nil).Once()

	m := newMockVC(t, func(c *MockVCConfig) { c.UsageTracker = tracker })

	rec := &boolRecorder{}
	m.InCallFeedback().Subscribe(rec.record)

	require.NoError(t, m.Dial("sip:alice@example.com"))
	assert.Equal(t, codec.CallConnected, m.CallState())
	assert.True(t, m.InCallFeedback().Value())
	assert.Equal(t, "sip:alice@example.com", m.RemoteParty())

	assert.ErrorIs(t, m.Dial("sip:bob@example.com"), codec.ErrCallInProgress)

	require.NoError(t, m.EndCall())
	assert.Equal(t, codec.CallIdle, m.CallState())
	assert.ErrorIs(t, m.EndCall(), codec.ErrNotInCall)

	// A re-poll with no state change notifies nobody.
	require.NoError(t, m.PollFeedbacks())
	assert.Equal(t, []bool{true, false}, rec.get())
}

func TestMockVCManualConnect(t *testing.T) {
	m := newMockVC(t, func(c *MockVCConfig) { c.ManualConnect = true })

	require.NoError(t, m.Dial("1234"))
	assert.Equal(t, codec.CallDialing, m.CallState())
	assert.False(t, m.InCallFeedback().Value())

	require.NoError(t, m.SimulateRemoteAnswer())
	assert.True(t, m.InCallFeedback().Value())
	assert.ErrorIs(t, m.SimulateRemoteAnswer(), codec.ErrNotInCall)

	require.NoError(t, m.SimulateRemoteHangup())
	assert.False(t, m.InCallFeedback().Value())
	assert.ErrorIs(t, m.SimulateRemoteHangup(), codec.ErrNotInCall)
}

func TestMockVCIncomingCall(t *testing.T) {
	m := newMockVC(t)

	assert.ErrorIs(t, m.AcceptCall(), codec.ErrNoIncomingCall)
	assert.ErrorIs(t, m.RejectCall(), codec.ErrNoIncomingCall)

	require.NoError(t, m.SimulateIncomingCall("bob"))
	assert.True(t, m.IncomingCallFeedback().Value())
	assert.False(t, m.InCallFeedback().Value())
	assert.ErrorIs(t, m.SimulateIncomingCall("carol"), codec.ErrCallInProgress)

	require.NoError(t, m.AcceptCall())
	assert.False(t, m.IncomingCallFeedback().Value())
	assert.True(t, m.InCallFeedback().Value())
	assert.Equal(t, "bob", m.RemoteParty())
	require.NoError(t, m.EndCall())

	require.NoError(t, m.SimulateIncomingCall("carol"))
	require.NoError(t, m.RejectCall())
	assert.False(t, m.IncomingCallFeedback().Value())
	assert.False(t, m.InCallFeedback().Value())
}

func TestMockVCDTMF(t *testing.T) {
	m := newMockVC(t)

	assert.ErrorIs(t, m.SendDTMF("123"), codec.ErrNotInCall)

	require.NoError(t, m.Dial("conference"))
	require.NoError(t, m.SendDTMF("1234#"))
	require.NoError(t, m.SendDTMF("*9"))

	assert.ErrorIs(t, m.SendDTMF(""), codec.ErrInvalidDTMF)
	assert.ErrorIs(t, m.SendDTMF("12x"), codec.ErrInvalidDTMF)

	assert.Equal(t, []string{"1234#", "*9"}, m.DTMFHistory())

	// History resets with the next call.
	require.NoError(t, m.EndCall())
	require.NoError(t, m.Dial("other"))
	assert.Empty(t, m.DTMFHistory())
}

func TestMockVCSharingAndRouting(t *testing.T) {
	m := newMockVC(t)

	require.NoError(t, m.StartSharing())
	assert.Equal(t, "hdmi1", m.SharingSourceFeedback().Value())

	// Switching while sharing moves the shared source.
	require.NoError(t, m.ExecuteSwitch(2))
	assert.Equal(t, "hdmi2", m.CurrentInput())
	assert.Equal(t, "hdmi2", m.SharingSourceFeedback().Value())

	require.NoError(t, routing.SwitchTo(m, "camera"))
	assert.Equal(t, "camera", m.CurrentInput())

	// Port keys work as selectors too.
	require.NoError(t, m.ExecuteSwitch("hdmi1"))
	assert.Equal(t, "hdmi1", m.CurrentInput())

	assert.ErrorIs(t, m.ExecuteSwitch(99), codec.ErrInvalidSelector)
	assert.ErrorIs(t, m.ExecuteSwitch(nil), codec.ErrInvalidSelector)
	assert.ErrorIs(t, routing.SwitchTo(m, "vga"), routing.ErrPortNotFound)

	require.NoError(t, m.StopSharing())
	assert.Equal(t, "", m.SharingSourceFeedback().Value())
	require.NoError(t, m.StopSharing())
}

func TestMockVCAudio(t *testing.T) {
	m := newMockVC(t)

	m.TransmitMuteOn()
	assert.True(t, m.TransmitMuteIsOnFeedback().Value())
	m.TransmitMuteToggle()
	assert.False(t, m.TransmitMuteIsOnFeedback().Value())

	m.ReceiveMuteToggle()
	assert.True(t, m.ReceiveMuteIsOnFeedback().Value())
	m.ReceiveMuteOff()
	assert.False(t, m.ReceiveMuteIsOnFeedback().Value())

	m.PrivacyModeOn()
	assert.True(t, m.PrivacyModeIsOnFeedback().Value())
	m.PrivacyModeToggle()
	assert.False(t, m.PrivacyModeIsOnFeedback().Value())

	m.SetTransmitVolume(400)
	m.SetReceiveVolume(500)
	assert.Equal(t, 400, m.TransmitLevelFeedback().Value())
	assert.Equal(t, 500, m.ReceiveLevelFeedback().Value())

	m.MuteToggle()
	assert.True(t, m.MuteFeedback().Value())
	m.MuteOff()
	assert.False(t, m.MuteFeedback().Value())
}

func TestMockVCVolumeRamp(t *testing.T) {
	m := newMockVC(t)

	m.SetVolume(MaxVolume - 10)
	m.VolumeUp(true)
	m.VolumeUp(false)
	assert.Equal(t, MaxVolume, m.VolumeLevelFeedback().Value())

	m.SetVolume(VolumeStep + 5)
	m.VolumeDown(true)
	assert.Equal(t, 5, m.VolumeLevelFeedback().Value())
	m.VolumeDown(true)
	assert.Equal(t, 0, m.VolumeLevelFeedback().Value())
}

func TestMockVCFeedbacks(t *testing.T) {
	m := newMockVC(t)

	assert.Equal(t, []string{
		codec.KeyInCall,
		codec.KeyIncomingCall,
		codec.KeyReceiveMute,
		codec.KeyTransmitMute,
		codec.KeyPrivacyMode,
		codec.KeySharingSource,
		codec.KeyVolumeLevel,
		codec.KeyMute,
		codec.KeyTransmitLevel,
		codec.KeyReceiveLevel,
	}, m.Feedbacks().Keys())
}

func TestMockVCPollInterval(t *testing.T) {
	m := newMockVC(t, func(c *MockVCConfig) { c.PollInterval = 5 * time.Millisecond })

	// Change state behind the queue's back; the ticker publishes it.
	m.mu.Lock()
	m.privacy = true
	m.mu.Unlock()

	assert.Eventually(t, func() bool {
		return m.PrivacyModeIsOnFeedback().Value()
	}, time.Second, 5*time.Millisecond)
}

func TestMockVCUsageRecorder(t *testing.T) {
	var ended []usage.Session
	rec := usage.NewRecorder("room-101-codec", usage.OnUsageEnded(func(s usage.Session) {
		ended = append(ended, s)
	}))
	m := newMockVC(t, func(c *MockVCConfig) { c.UsageTracker = rec })

	require.NoError(t, m.Dial("1000"))
	_, active := rec.Active()
	assert.True(t, active)

	require.NoError(t, m.EndCall())
	require.Len(t, ended, 1)
	assert.Equal(t, "room-101-codec", ended[0].DeviceKey)
}

func TestMinimalDriver(t *testing.T) {
	tracker := mocks.NewMockUsageTracker(t)
	tracker.EXPECT().StartDeviceUsage().Return(nil).Once()
	tracker.EXPECT().EndDeviceUsage().Return(nil).Once()

	m, err := NewMinimal("minimal-1", "Minimal", codec.WithUsageTracker(tracker))
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.InputPorts().Add(&routing.InputPort{Key: "in1", Selector: "in1"}))

	t.Run("inert audio leaves feedback unchanged", func(t *testing.T) {
		m.SetTransmitVolume(40000)
		m.TransmitMuteOn()
		m.SetVolume(100)
		m.MuteOn()
		require.NoError(t, m.PollFeedbacks())

		assert.Equal(t, 0, m.TransmitLevelFeedback().Value())
		assert.False(t, m.TransmitMuteIsOnFeedback().Value())
		assert.Equal(t, 0, m.VolumeLevelFeedback().Value())
		assert.False(t, m.MuteFeedback().Value())
	})

	t.Run("call edges reach tracker once", func(t *testing.T) {
		require.NoError(t, m.Ring())
		assert.True(t, m.IncomingCallFeedback().Value())
		require.NoError(t, m.AcceptCall())
		require.NoError(t, m.SendDTMF("5"))
		require.NoError(t, m.EndCall())
		require.NoError(t, m.EndCall())
	})

	t.Run("sharing is accepted but inert", func(t *testing.T) {
		require.NoError(t, m.StartSharing())
		assert.Equal(t, "", m.SharingSourceFeedback().Value())
		require.NoError(t, m.StopSharing())
	})

	t.Run("switch", func(t *testing.T) {
		require.NoError(t, routing.SwitchTo(m, "in1"))
		assert.Equal(t, "in1", m.Selected())
		assert.ErrorIs(t, m.ExecuteSwitch("in2"), codec.ErrInvalidSelector)
	})

	assert.ErrorIs(t, m.Dial(""), codec.ErrInvalidDestination)
}

func TestSwitchWithUncomparableSelectors(t *testing.T) {
	t.Run("mockvc map selector", func(t *testing.T) {
		m := newMockVC(t, func(cfg *MockVCConfig) {
			cfg.Inputs = append(cfg.Inputs, routing.InputPort{
				Key:      "matrix",
				Signal:   routing.SignalVideo,
				Selector: map[string]int{"row": 1, "col": 2},
			})
		})

		require.NoError(t, routing.SwitchTo(m, "matrix"))
		assert.Equal(t, "matrix", m.CurrentInput())

		require.NoError(t, m.ExecuteSwitch(1))
		require.NoError(t, m.ExecuteSwitch(map[string]int{"row": 1, "col": 2}))
		assert.Equal(t, "matrix", m.CurrentInput())

		assert.ErrorIs(t, m.ExecuteSwitch(map[string]int{"row": 2}), codec.ErrInvalidSelector)
		assert.ErrorIs(t, m.ExecuteSwitch([]int{1}), codec.ErrInvalidSelector)
	})

	t.Run("minimal slice selector", func(t *testing.T) {
		m, err := NewMinimal("huddle-codec", "Huddle")
		require.NoError(t, err)
		t.Cleanup(func() { _ = m.Close() })
		require.NoError(t, m.InputPorts().Add(&routing.InputPort{Key: "in1", Selector: "in1"}))
		require.NoError(t, m.InputPorts().Add(&routing.InputPort{Key: "matrix", Selector: []int{1, 2}}))

		require.NoError(t, routing.SwitchTo(m, "matrix"))
		assert.Equal(t, []int{1, 2}, m.Selected())

		assert.ErrorIs(t, m.ExecuteSwitch([]int{2, 1}), codec.ErrInvalidSelector)
		require.NoError(t, m.ExecuteSwitch("in1"))
		assert.Equal(t, "in1", m.Selected())
	})
}
