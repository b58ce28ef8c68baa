// Package interactive provides the interactive command-line interface
// for codec-sim.
package interactive

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/roomkit/codec-go/pkg/codec"
	"github.com/roomkit/codec-go/pkg/discovery"
	"github.com/roomkit/codec-go/pkg/routing"
	"github.com/roomkit/codec-go/pkg/usage"
)

// Simulator is implemented by drivers that can fake far-end activity.
type Simulator interface {
	SimulateIncomingCall(caller string) error
	SimulateRemoteAnswer() error
	SimulateRemoteHangup() error
}

// Console handles interactive mode for codec-sim.
type Console struct {
	rl      *readline.Instance
	browser *discovery.MDNSBrowser

	dev      codec.Codec
	recorder *usage.Recorder
}

// New creates a new console.
func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "codec> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{
		rl:      rl,
		browser: discovery.NewMDNSBrowser(discovery.BrowserConfig{}),
	}, nil
}

// SetBrowser replaces the browser used by the discover command.
func (c *Console) SetBrowser(b *discovery.MDNSBrowser) {
	c.browser = b
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop. recorder may be nil.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc, dev codec.Codec, recorder *usage.Recorder) {
	defer c.rl.Close()

	c.dev = dev
	c.recorder = recorder

	subID := dev.InCallFeedback().Subscribe(func(inCall bool) {
		if inCall {
			fmt.Fprintln(c.rl.Stdout(), "[CALL] Connected")
		} else {
			fmt.Fprintln(c.rl.Stdout(), "[CALL] Ended")
		}
	})
	defer dev.InCallFeedback().Unsubscribe(subID)

	ringID := dev.IncomingCallFeedback().Subscribe(func(ringing bool) {
		if ringing {
			fmt.Fprintln(c.rl.Stdout(), "[CALL] Incoming call (type 'accept' or 'reject')")
		}
	})
	defer dev.IncomingCallFeedback().Unsubscribe(ringID)

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "dial", "d":
			c.cmdDial(args)

		case "hangup", "end":
			c.report("hangup", c.dev.EndCall())

		case "accept", "a":
			c.report("accept", c.dev.AcceptCall())

		case "reject":
			c.report("reject", c.dev.RejectCall())

		case "dtmf":
			c.cmdDTMF(args)

		case "mute", "m":
			c.cmdMute(args)

		case "privacy", "p":
			c.cmdPrivacy(args)

		case "volume", "vol", "v":
			c.cmdVolume(args)

		case "share":
			c.cmdShare(args)

		case "switch", "input":
			c.cmdSwitch(args)

		case "inputs":
			c.cmdInputs()

		case "incoming", "ring":
			c.cmdIncoming(args)

		case "answer":
			c.cmdRemote("answer")

		case "remote-hangup":
			c.cmdRemote("hangup")

		case "status", "s":
			c.cmdStatus()

		case "discover":
			c.cmdDiscover(ctx, args)

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Codec Commands:
  Calls:
    dial <destination>   - Place a call
    hangup               - End the active call
    accept               - Answer the incoming call
    reject               - Decline the incoming call
    dtmf <digits>        - Send DTMF digits in the active call

  Audio:
    mute tx|rx [on|off|toggle] - Transmit or receive mute
    mute [on|off|toggle]       - Speaker mute
    privacy [on|off|toggle]    - Microphone privacy
    volume <0-65535>|up|down   - Speaker volume

  Content:
    share start|stop     - Start or stop content sharing
    switch <port>        - Route an input port
    inputs               - List input ports

  Simulation:
    incoming <caller>    - Ring the codec
    answer               - Far end answers a dialing call
    remote-hangup        - Far end hangs up

  Network:
    discover [seconds]   - Browse for codecs via mDNS (default 3s)

  General:
    status               - Show feedbacks and usage
    help                 - Show this help
    quit                 - Exit`)
}

func (c *Console) report(action string, err error) {
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %s: %v\n", action, err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "OK")
}

func (c *Console) cmdDial(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: dial <destination>")
		return
	}
	c.report("dial", c.dev.Dial(strings.Join(args, " ")))
}

func (c *Console) cmdDTMF(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: dtmf <digits>")
		return
	}
	c.report("dtmf", c.dev.SendDTMF(strings.Join(args, "")))
}

// switchAction maps on/off/toggle to one of three calls.
func switchAction(arg string, on, off, toggle func()) bool {
	switch strings.ToLower(arg) {
	case "on":
		on()
	case "off":
		off()
	case "", "toggle":
		toggle()
	default:
		return false
	}
	return true
}

func (c *Console) cmdMute(args []string) {
	path := ""
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "tx", "rx":
			path = strings.ToLower(args[0])
			args = args[1:]
		}
	}
	action := ""
	if len(args) > 0 {
		action = args[0]
	}

	var ok bool
	switch path {
	case "tx":
		ok = switchAction(action, c.dev.TransmitMuteOn, c.dev.TransmitMuteOff, c.dev.TransmitMuteToggle)
	case "rx":
		ok = switchAction(action, c.dev.ReceiveMuteOn, c.dev.ReceiveMuteOff, c.dev.ReceiveMuteToggle)
	default:
		ok = switchAction(action, c.dev.MuteOn, c.dev.MuteOff, c.dev.MuteToggle)
	}
	if !ok {
		fmt.Fprintln(c.rl.Stdout(), "Usage: mute [tx|rx] [on|off|toggle]")
		return
	}
	c.printMute()
}

func (c *Console) printMute() {
	fmt.Fprintf(c.rl.Stdout(), "tx=%v rx=%v speaker=%v\n",
		c.dev.TransmitMuteIsOnFeedback().Value(),
		c.dev.ReceiveMuteIsOnFeedback().Value(),
		c.dev.MuteFeedback().Value())
}

func (c *Console) cmdPrivacy(args []string) {
	action := ""
	if len(args) > 0 {
		action = args[0]
	}
	if !switchAction(action, c.dev.PrivacyModeOn, c.dev.PrivacyModeOff, c.dev.PrivacyModeToggle) {
		fmt.Fprintln(c.rl.Stdout(), "Usage: privacy [on|off|toggle]")
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "privacy=%v\n", c.dev.PrivacyModeIsOnFeedback().Value())
}

func (c *Console) cmdVolume(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(c.rl.Stdout(), "volume=%d\n", c.dev.VolumeLevelFeedback().Value())
		return
	}

	switch strings.ToLower(args[0]) {
	case "up", "+":
		c.dev.VolumeUp(true)
		c.dev.VolumeUp(false)
	case "down", "-":
		c.dev.VolumeDown(true)
		c.dev.VolumeDown(false)
	default:
		level, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			fmt.Fprintln(c.rl.Stdout(), "Usage: volume <0-65535>|up|down")
			return
		}
		c.dev.SetVolume(uint16(level))
	}
	fmt.Fprintf(c.rl.Stdout(), "volume=%d\n", c.dev.VolumeLevelFeedback().Value())
}

func (c *Console) cmdShare(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: share start|stop")
		return
	}
	switch strings.ToLower(args[0]) {
	case "start", "on":
		c.report("share", c.dev.StartSharing())
	case "stop", "off":
		c.report("share", c.dev.StopSharing())
	default:
		fmt.Fprintln(c.rl.Stdout(), "Usage: share start|stop")
		return
	}
	if src := c.dev.SharingSourceFeedback().Value(); src != "" {
		fmt.Fprintf(c.rl.Stdout(), "sharing %s\n", src)
	}
}

func (c *Console) cmdSwitch(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: switch <port>")
		return
	}
	c.report("switch", routing.SwitchTo(c.dev, args[0]))
}

func (c *Console) cmdInputs() {
	ports := c.dev.InputPorts().Ports()
	if len(ports) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No input ports")
		return
	}
	for _, p := range ports {
		internal := ""
		if p.Internal {
			internal = " (internal)"
		}
		fmt.Fprintf(c.rl.Stdout(), "  %-10s %-12s %-8s selector=%v%s\n",
			p.Key, p.Signal, p.Connection, p.Selector, internal)
	}
}

func (c *Console) cmdIncoming(args []string) {
	sim, ok := c.dev.(Simulator)
	if !ok {
		fmt.Fprintln(c.rl.Stdout(), "Driver cannot simulate incoming calls")
		return
	}
	caller := "sip:guest@example.com"
	if len(args) > 0 {
		caller = args[0]
	}
	c.report("incoming", sim.SimulateIncomingCall(caller))
}

func (c *Console) cmdRemote(action string) {
	sim, ok := c.dev.(Simulator)
	if !ok {
		fmt.Fprintln(c.rl.Stdout(), "Driver cannot simulate the far end")
		return
	}
	switch action {
	case "answer":
		c.report(action, sim.SimulateRemoteAnswer())
	case "hangup":
		c.report(action, sim.SimulateRemoteHangup())
	}
}

func (c *Console) cmdStatus() {
	out := c.rl.Stdout()
	fmt.Fprintf(out, "Device: %s (%s)\n", c.dev.Name(), c.dev.Key())
	fmt.Fprintf(out, "Capabilities: %s\n", strings.Join(codec.Capabilities(c.dev), ", "))

	fmt.Fprintln(out, "Feedbacks:")
	values := c.dev.Feedbacks().Values()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-24s %v\n", k, values[k])
	}

	if c.recorder == nil {
		return
	}
	total, n := c.recorder.Total()
	fmt.Fprintf(out, "Usage: %d call(s), %s in call\n", n, total.Round(time.Second))
	if s, ok := c.recorder.Active(); ok {
		fmt.Fprintf(out, "Active session: %s since %s\n", s.ID, s.Start.Format(time.TimeOnly))
	}
}

func (c *Console) cmdDiscover(ctx context.Context, args []string) {
	wait := 3 * time.Second
	if len(args) > 0 {
		secs, err := strconv.Atoi(args[0])
		if err != nil || secs <= 0 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: discover [seconds]")
			return
		}
		wait = time.Duration(secs) * time.Second
	}

	fmt.Fprintf(c.rl.Stdout(), "Browsing %s for %s...\n", discovery.ServiceType, wait)
	browseCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	services := c.browser.Discover(browseCtx)
	if len(services) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No codecs found")
		return
	}
	for _, svc := range services {
		self := ""
		if svc.Key == c.dev.Key() {
			self = " (this codec)"
		}
		fmt.Fprintf(c.rl.Stdout(), "  %-20s %-20s %s:%d%s\n",
			svc.Key, svc.Name, strings.Join(svc.Addresses, ","), svc.Port, self)
		if len(svc.Capabilities) > 0 {
			fmt.Fprintf(c.rl.Stdout(), "  %-20s caps: %s\n", "", strings.Join(svc.Capabilities, ", "))
		}
	}
}
