package routing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortCollectionOrderAndLookup(t *testing.T) {
	c := NewPortCollection()
	require.NoError(t, c.Add(&InputPort{Key: "hdmi1", Signal: SignalAudioVideo, Connection: ConnectionHDMI, Selector: 1}))
	require.NoError(t, c.Add(&InputPort{Key: "camera", Signal: SignalVideo, Connection: ConnectionSDI, Selector: 2, Internal: true}))
	require.NoError(t, c.Add(&InputPort{Key: "mic", Signal: SignalAudio, Connection: ConnectionLineAudio, Selector: 3}))

	assert.Equal(t, 3, c.Len())

	var keys []string
	for _, p := range c.Ports() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"hdmi1", "camera", "mic"}, keys)

	p, err := c.Get("camera")
	require.NoError(t, err)
	assert.True(t, p.Internal)

	_, err = c.Get("nope")
	assert.ErrorIs(t, err, ErrPortNotFound)
}

func TestPortCollectionAddErrors(t *testing.T) {
	c := NewPortCollection()
	require.NoError(t, c.Add(&InputPort{Key: "hdmi1"}))

	assert.ErrorIs(t, c.Add(&InputPort{Key: "hdmi1"}), ErrDuplicatePort)
	assert.ErrorIs(t, c.Add(&InputPort{}), ErrEmptyPortKey)
	assert.Equal(t, 1, c.Len())
}

func TestPortCollectionRemove(t *testing.T) {
	c := NewPortCollection()
	require.NoError(t, c.Add(&InputPort{Key: "a"}))
	require.NoError(t, c.Add(&InputPort{Key: "b"}))

	require.NoError(t, c.Remove("a"))
	assert.ErrorIs(t, c.Remove("a"), ErrPortNotFound)
	assert.Equal(t, 1, c.Len())
}

func TestPortCollectionPortsIsCopy(t *testing.T) {
	c := NewPortCollection()
	require.NoError(t, c.Add(&InputPort{Key: "a"}))

	ports := c.Ports()
	ports[0] = &InputPort{Key: "replaced"}

	p, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", p.Key)
}

func TestPortCollectionWithSignal(t *testing.T) {
	c := NewPortCollection()
	require.NoError(t, c.Add(&InputPort{Key: "av", Signal: SignalAudioVideo}))
	require.NoError(t, c.Add(&InputPort{Key: "v", Signal: SignalVideo}))
	require.NoError(t, c.Add(&InputPort{Key: "a", Signal: SignalAudio}))

	video := c.WithSignal(SignalVideo)
	require.Len(t, video, 2)
	assert.Equal(t, "av", video[0].Key)
	assert.Equal(t, "v", video[1].Key)

	assert.Len(t, c.WithSignal(SignalAudioVideo), 1)
	assert.Empty(t, c.WithSignal(0))
}

func TestSignalTypeString(t *testing.T) {
	tests := []struct {
		signal SignalType
		want   string
	}{
		{0, "none"},
		{SignalAudio, "audio"},
		{SignalAudioVideo, "audio+video"},
		{SignalVideo | SignalUSB, "video+usb"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.signal.String())
	}
}

func TestConnectionType(t *testing.T) {
	assert.Equal(t, "hdmi", ConnectionHDMI.String())
	assert.Equal(t, "unknown", ConnectionType(200).String())
	assert.Equal(t, ConnectionHDMI, ParseConnectionType("HDMI"))
	assert.Equal(t, ConnectionLineAudio, ParseConnectionType("lineaudio"))
	assert.Equal(t, ConnectionUnknown, ParseConnectionType("scart"))
}

type fakeSink struct {
	ports    *PortCollection
	selected any
	err      error
}

func (s *fakeSink) Key() string { return "sink" }

func (s *fakeSink) InputPorts() *PortCollection { return s.ports }

func (s *fakeSink) ExecuteSwitch(sel any) error {
	s.selected = sel
	return s.err
}

func TestSwitchTo(t *testing.T) {
	sink := &fakeSink{ports: NewPortCollection()}
	require.NoError(t, sink.ports.Add(&InputPort{Key: "hdmi2", Selector: "input-2"}))

	require.NoError(t, SwitchTo(sink, "hdmi2"))
	assert.Equal(t, "input-2", sink.selected)

	assert.ErrorIs(t, SwitchTo(sink, "hdmi9"), ErrPortNotFound)

	sink.err = errors.New("device busy")
	assert.EqualError(t, SwitchTo(sink, "hdmi2"), "device busy")
}

func TestSelectorEqual(t *testing.T) {
	type pair struct{ Row, Col int }

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and value", nil, 1, false},
		{"ints", 3, 3, true},
		{"different ints", 3, 4, false},
		{"int and string", 1, "1", false},
		{"strings", "cam", "cam", true},
		{"structs", pair{1, 2}, pair{1, 2}, true},
		{"slices", []int{1, 2}, []int{1, 2}, true},
		{"different slices", []int{1, 2}, []int{2, 1}, false},
		{"maps", map[string]int{"in": 1}, map[string]int{"in": 1}, true},
		{"slice and map", []int{1}, map[int]int{0: 1}, false},
		{"struct holding slice", struct{ V any }{[]int{1}}, struct{ V any }{[]int{1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectorEqual(tt.a, tt.b))
		})
	}
}
