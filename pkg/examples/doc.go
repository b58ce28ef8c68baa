// Package examples provides reference codec drivers built on codec.Base.
//
// The example implementations show:
//   - Embedding *codec.Base and passing the driver as its StateSource
//   - Overriding inert audio defaults with real state
//   - Serialising commands and state changes through a control.Queue
//   - Polling feedbacks after every state change
//
// Available examples:
//   - MockVC: an in-memory video codec implementing every capability
//   - Minimal: a driver that supplies only the required operations
//
// These examples can serve as templates for vendor drivers.
package examples
