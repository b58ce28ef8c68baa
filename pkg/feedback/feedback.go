package feedback

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Feedback errors.
var (
	ErrProducerFailed = errors.New("feedback producer failed")
	ErrNilProducer    = errors.New("feedback producer is nil")
)

// Kind identifies the value type carried by a feedback.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBool
	KindInt
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Producer computes the current value of a feedback.
type Producer[T comparable] func() (T, error)

// SubscriptionID identifies a registered change callback.
type SubscriptionID uint64

// Observable is the type-erased view of a feedback, used by code that
// handles feedbacks of mixed types (UIs, event logs, collections).
type Observable interface {
	// Key returns the feedback name, unique within its device.
	Key() string

	// Kind returns the value type.
	Kind() Kind

	// Any returns the cached value.
	Any() any

	// Poll runs the producer and notifies subscribers on change.
	Poll() (bool, error)

	// SubscribeAny registers a callback receiving the key and new value.
	SubscribeAny(fn func(key string, value any)) SubscriptionID

	// Unsubscribe removes a callback registered with either Subscribe
	// or SubscribeAny.
	Unsubscribe(id SubscriptionID)
}

// Option configures a feedback.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report producer failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

type subscriber[T comparable] struct {
	id SubscriptionID
	fn func(T)
}

// Feedback is a cached, pollable value with change notification.
type Feedback[T comparable] struct {
	mu sync.RWMutex

	key      string
	kind     Kind
	producer Producer[T]
	logger   *slog.Logger

	value T

	subscribers []subscriber[T]
	nextID      SubscriptionID
}

// New creates a feedback bound to producer. The cached value starts at
// the zero value of T; call Poll to load the first value.
//
// New panics if producer is nil: a feedback without a producer is a
// construction error in the owning device, not a runtime condition.
func New[T comparable](key string, producer Producer[T], opts ...Option) *Feedback[T] {
	if producer == nil {
		panic(fmt.Sprintf("%v: %s", ErrNilProducer, key))
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	return &Feedback[T]{
		key:      key,
		kind:     kindOf(zero),
		producer: producer,
		logger:   o.logger,
	}
}

// NewBool creates a bool feedback.
func NewBool(key string, producer Producer[bool], opts ...Option) *Feedback[bool] {
	return New(key, producer, opts...)
}

// NewInt creates an int feedback.
func NewInt(key string, producer Producer[int], opts ...Option) *Feedback[int] {
	return New(key, producer, opts...)
}

// NewString creates a string feedback.
func NewString(key string, producer Producer[string], opts ...Option) *Feedback[string] {
	return New(key, producer, opts...)
}

// Static creates a feedback whose producer always returns value.
// Polling it once loads the value; later polls never notify.
func Static[T comparable](key string, value T, opts ...Option) *Feedback[T] {
	return New(key, func() (T, error) { return value, nil }, opts...)
}

func kindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int:
		return KindInt
	case string:
		return KindString
	default:
		return KindUnknown
	}
}

// Key returns the feedback name.
func (f *Feedback[T]) Key() string {
	return f.key
}

// Kind returns the value type.
func (f *Feedback[T]) Kind() Kind {
	return f.kind
}

// Value returns the cached value without running the producer.
func (f *Feedback[T]) Value() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

// Any returns the cached value as an untyped value.
func (f *Feedback[T]) Any() any {
	return f.Value()
}

// Poll runs the producer and, if the result differs from the cached
// value, stores it and notifies subscribers. It reports whether the
// value changed.
//
// If the producer fails, the cached value is kept, no subscriber is
// notified, and the returned error wraps ErrProducerFailed.
func (f *Feedback[T]) Poll() (bool, error) {
	v, err := f.produce()
	if err != nil {
		f.logger.Warn("feedback poll failed", "feedback", f.key, "error", err)
		return false, err
	}

	f.mu.Lock()
	if v == f.value {
		f.mu.Unlock()
		return false, nil
	}
	f.value = v
	subs := make([]subscriber[T], len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
	return true, nil
}

// produce runs the producer, converting a panic into an error.
func (f *Feedback[T]) produce() (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = fmt.Errorf("%w: %s: panic: %v", ErrProducerFailed, f.key, r)
		}
	}()

	v, err = f.producer()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s: %w", ErrProducerFailed, f.key, err)
	}
	return v, nil
}

// Subscribe registers fn to be called with every new value.
func (f *Feedback[T]) Subscribe(fn func(T)) SubscriptionID {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	f.subscribers = append(f.subscribers, subscriber[T]{id: f.nextID, fn: fn})
	return f.nextID
}

// SubscribeAny registers fn to be called with the key and every new value.
func (f *Feedback[T]) SubscribeAny(fn func(key string, value any)) SubscriptionID {
	key := f.key
	return f.Subscribe(func(v T) { fn(key, v) })
}

// Unsubscribe removes a subscriber. Unknown IDs are ignored.
func (f *Feedback[T]) Unsubscribe(id SubscriptionID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, s := range f.subscribers {
		if s.id == id {
			f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
			return
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (f *Feedback[T]) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// Compile-time interface satisfaction checks.
var (
	_ Observable = (*Feedback[bool])(nil)
	_ Observable = (*Feedback[int])(nil)
	_ Observable = (*Feedback[string])(nil)
)
