// Package feedback implements observable device state values.
//
// A Feedback is a cached value bound to a producer function supplied by
// the device driver. Polling runs the producer, compares the result with
// the cached value and notifies subscribers only when the value changed:
//
//	inCall := feedback.NewBool("inCall", func() (bool, error) {
//	    return driver.callActive, nil
//	})
//	inCall.Subscribe(func(v bool) { fmt.Println("in call:", v) })
//
//	driver.callActive = true
//	inCall.Poll() // prints "in call: true"
//	inCall.Poll() // no notification, value unchanged
//
// # Producer Failures
//
// A producer that returns an error (or panics) never causes a
// notification. The cached value from the last successful poll is kept,
// and the error is returned to the caller of Poll wrapped in
// ErrProducerFailed.
//
// # Concurrency
//
// Feedback values are safe for concurrent use, but notifications run
// synchronously on the goroutine that called Poll. Devices that receive
// events on several goroutines serialize them through a control queue
// (see package control) so changes are observed in order.
package feedback
