package feedback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// source is a controllable producer for tests.
type source[T comparable] struct {
	value T
	err   error
	panic bool
	calls int
}

func (s *source[T]) produce() (T, error) {
	s.calls++
	if s.panic {
		panic("producer exploded")
	}
	return s.value, s.err
}

func TestFeedbackValueDoesNotPoll(t *testing.T) {
	src := &source[int]{value: 7}
	fb := NewInt("level", src.produce)

	assert.Equal(t, 0, fb.Value())
	assert.Equal(t, 0, src.calls)

	changed, err := fb.Poll()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 7, fb.Value())
	assert.Equal(t, 1, src.calls)

	_ = fb.Value()
	assert.Equal(t, 1, src.calls)
}

func TestFeedbackNotifiesOnlyOnChange(t *testing.T) {
	src := &source[bool]{}
	fb := NewBool("inCall", src.produce)

	var got []bool
	fb.Subscribe(func(v bool) { got = append(got, v) })

	sequence := []bool{false, true, true, false, false, true, false}
	for _, v := range sequence {
		src.value = v
		_, err := fb.Poll()
		require.NoError(t, err)
	}

	// The cache starts at false, so the first false poll is not a change.
	assert.Equal(t, []bool{true, false, true, false}, got)
}

func TestFeedbackNoDuplicateFire(t *testing.T) {
	tests := []struct {
		name    string
		outputs []string
		want    int
	}{
		{"empty", nil, 0},
		{"all zero", []string{"", "", ""}, 0},
		{"single change", []string{"camera", "camera", "camera"}, 1},
		{"alternating", []string{"a", "b", "a", "b"}, 4},
		{"runs", []string{"a", "a", "b", "b", "b", "a"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &source[string]{}
			fb := NewString("sharingSource", src.produce)

			fired := 0
			fb.Subscribe(func(string) { fired++ })

			for _, out := range tt.outputs {
				src.value = out
				_, _ = fb.Poll()
			}
			assert.Equal(t, tt.want, fired)
		})
	}
}

func TestFeedbackProducerErrorKeepsCache(t *testing.T) {
	src := &source[int]{value: 40}
	fb := NewInt("volume", src.produce)
	_, err := fb.Poll()
	require.NoError(t, err)

	fired := 0
	fb.Subscribe(func(int) { fired++ })

	src.value = 90
	src.err = errors.New("serial timeout")

	changed, err := fb.Poll()
	assert.False(t, changed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProducerFailed)
	assert.Contains(t, err.Error(), "serial timeout")
	assert.Equal(t, 40, fb.Value())
	assert.Equal(t, 0, fired)

	// Recovery on the next successful poll.
	src.err = nil
	changed, err = fb.Poll()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 90, fb.Value())
	assert.Equal(t, 1, fired)
}

func TestFeedbackProducerPanicIsRecovered(t *testing.T) {
	src := &source[bool]{value: true}
	fb := NewBool("privacy", src.produce)
	_, err := fb.Poll()
	require.NoError(t, err)

	fired := 0
	fb.Subscribe(func(bool) { fired++ })

	src.value = false
	src.panic = true

	changed, err := fb.Poll()
	assert.False(t, changed)
	assert.ErrorIs(t, err, ErrProducerFailed)
	assert.True(t, fb.Value())
	assert.Equal(t, 0, fired)
}

func TestFeedbackUnsubscribe(t *testing.T) {
	src := &source[int]{}
	fb := NewInt("level", src.produce)

	var a, b int
	idA := fb.Subscribe(func(int) { a++ })
	fb.Subscribe(func(int) { b++ })
	assert.Equal(t, 2, fb.SubscriberCount())

	src.value = 1
	_, _ = fb.Poll()

	fb.Unsubscribe(idA)
	fb.Unsubscribe(idA) // unknown IDs are ignored
	assert.Equal(t, 1, fb.SubscriberCount())

	src.value = 2
	_, _ = fb.Poll()

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestFeedbackSubscribeAny(t *testing.T) {
	src := &source[string]{}
	fb := NewString("sharingSource", src.produce)

	var gotKey string
	var gotValue any
	fb.SubscribeAny(func(key string, value any) {
		gotKey = key
		gotValue = value
	})

	src.value = "laptop"
	_, _ = fb.Poll()

	assert.Equal(t, "sharingSource", gotKey)
	assert.Equal(t, "laptop", gotValue)
}

func TestFeedbackKind(t *testing.T) {
	assert.Equal(t, KindBool, Static("a", true).Kind())
	assert.Equal(t, KindInt, Static("b", 1).Kind())
	assert.Equal(t, KindString, Static("c", "x").Kind())
	assert.Equal(t, KindUnknown, Static("d", 1.5).Kind())
	assert.Equal(t, "bool", KindBool.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestFeedbackNilProducerPanics(t *testing.T) {
	assert.PanicsWithValue(t, "feedback producer is nil: broken", func() {
		NewBool("broken", nil)
	})
}

func TestStaticFeedback(t *testing.T) {
	fb := Static("muted", true)

	fired := 0
	fb.Subscribe(func(bool) { fired++ })

	for i := 0; i < 3; i++ {
		_, err := fb.Poll()
		require.NoError(t, err)
	}
	assert.True(t, fb.Value())
	assert.Equal(t, 1, fired)
}
