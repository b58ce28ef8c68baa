package feedback

import "errors"

// Collection is an ordered set of feedbacks belonging to one device.
type Collection []Observable

// PollAll polls every feedback in order. A failing producer does not
// stop the remaining polls; all failures are joined into the result.
func (c Collection) PollAll() error {
	var errs []error
	for _, fb := range c {
		if _, err := fb.Poll(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get returns the feedback with the given key.
func (c Collection) Get(key string) (Observable, bool) {
	for _, fb := range c {
		if fb.Key() == key {
			return fb, true
		}
	}
	return nil, false
}

// Keys returns the feedback keys in collection order.
func (c Collection) Keys() []string {
	keys := make([]string, 0, len(c))
	for _, fb := range c {
		keys = append(keys, fb.Key())
	}
	return keys
}

// Values returns a snapshot of all cached values keyed by feedback key.
func (c Collection) Values() map[string]any {
	values := make(map[string]any, len(c))
	for _, fb := range c {
		values[fb.Key()] = fb.Any()
	}
	return values
}
