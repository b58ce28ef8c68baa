// Package codec defines the control contract for video-conferencing
// codecs.
//
// # Capabilities
//
// A codec's surface is split into small, independent interfaces so an
// automation engine can drive any vendor's device without knowing its
// protocol:
//
//   - Dialer: dial, end, accept, reject, DTMF
//   - Sharing: start/stop content sharing, sharing-source feedback
//   - TransmitAudio, ReceiveAudio, PrivacyControl: mute and level paths
//   - BasicVolumeWithFeedback: generic volume and mute
//   - routing.Sink: routable inputs and input switching
//   - UsageTracking: attachment point for a UsageTracker
//
// Codec is the union of all of them.
//
// # Base
//
// Concrete drivers embed *Base. NewBase builds every feedback from the
// producer methods of a StateSource, then subscribes to the in-call
// feedback to drive usage tracking:
//
//	in-call false -> true   UsageTracker.StartDeviceUsage()
//	in-call true  -> false  UsageTracker.EndDeviceUsage()
//
// Base implements the audio-path and basic-volume methods as inert
// no-ops. A driver that supports them overrides the methods; one that
// does not still satisfies Codec, and the matching feedbacks stay
// static. Dial, sharing and ExecuteSwitch have no default: a driver must
// implement them to satisfy Codec.
//
// # Call State
//
// Base does not validate call-state transitions. The driver owns the
// call state (see CallState) and exposes it through StateSource.InCall
// and StateSource.IncomingCall; Base only observes the resulting
// feedback edges.
package codec
