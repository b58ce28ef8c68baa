package main

import (
	"context"
	"log"
	"time"
)

// ringer is implemented by drivers that can fake far-end activity.
type ringer interface {
	SimulateIncomingCall(caller string) error
	SimulateRemoteHangup() error
}

// minimalRinger adapts drivers that only expose Ring.
type minimalRinger interface {
	Ring() error
}

var simCallers = []string{
	"sip:boardroom@example.com",
	"sip:helpdesk@example.com",
	"h323:10.0.0.42",
}

// runSimulation rings the codec every interval, answers after a short
// delay and lets the far end hang up half an interval later.
func runSimulation(ctx context.Context, dev device, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	answerDelay := every / 4
	hangupDelay := every / 2

	var n int
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if dev.InCallFeedback().Value() {
			log.Println("[SIM] Call in progress, skipping ring")
			continue
		}

		caller := simCallers[n%len(simCallers)]
		n++

		switch r := dev.(type) {
		case ringer:
			if err := r.SimulateIncomingCall(caller); err != nil {
				log.Printf("[SIM] Ring failed: %v", err)
				continue
			}
		case minimalRinger:
			if err := r.Ring(); err != nil {
				log.Printf("[SIM] Ring failed: %v", err)
				continue
			}
		default:
			log.Println("[SIM] Driver cannot simulate calls, stopping")
			return
		}
		log.Printf("[SIM] Incoming call from %s", caller)

		if !sleepCtx(ctx, answerDelay) {
			return
		}
		if !dev.IncomingCallFeedback().Value() {
			continue
		}
		if err := dev.AcceptCall(); err != nil {
			log.Printf("[SIM] Accept failed: %v", err)
			continue
		}
		log.Println("[SIM] Call answered")

		if !sleepCtx(ctx, hangupDelay) {
			return
		}
		if !dev.InCallFeedback().Value() {
			continue
		}
		var err error
		if r, ok := dev.(ringer); ok {
			err = r.SimulateRemoteHangup()
		} else {
			err = dev.EndCall()
		}
		if err != nil {
			log.Printf("[SIM] Hangup failed: %v", err)
			continue
		}
		log.Println("[SIM] Far end hung up")
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
