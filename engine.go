package netprobe

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/shellrow/netprobe/internal/datalink"
	"github.com/shellrow/netprobe/internal/filter"
)

// matchFunc inspects one decoded captured frame and, if it answers the
// outstanding round, returns the ProbeResult to emit. The four engines
// differ only in how they build a packet, what a match means, and what to
// do when the round ends — the send/receive/timeout machinery itself is
// shared in runRound (spec.md §9 design note: "Implementations should
// express this as a single generic driver parameterized by those four
// capabilities rather than repeating code per protocol").
type matchFunc func(frame *filter.DecodedFrame) (ProbeResult, bool)

// channelReceiver is the minimal send/receive contract runRound and
// traceRound need from a live channel.
type channelReceiver interface {
	Send([]byte) error
	Receive() ([]byte, error)
}

// receiveCtx runs ch.Receive on its own goroutine and returns as soon as
// either it completes or ctx is cancelled, so a round blocked in the
// pcap read can still observe cancellation instead of only being checked
// between rounds (spec.md §5: "Cancellation is cooperative via
// context.Context, checked at every suspension point"). The goroutine
// outlives the call when ctx wins the race, but it is bounded by the
// channel's own configured read timeout and exits on its own.
func receiveCtx(ctx context.Context, ch interface{ Receive() ([]byte, error) }) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	resultCh := make(chan result, 1)
	go func() {
		data, err := ch.Receive()
		resultCh <- result{data, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-resultCh:
		return r.data, r.err
	}
}

// runRound sends packet once, then loops on ch.Receive until match succeeds,
// the round's receive timeout elapses, ctx is cancelled, or the channel
// itself errors (spec.md §4.4 steps 1-4, generalized across protocols).
func runRound(ctx context.Context, ch channelReceiver, parseOpt filter.ParseOption, seq int, packet []byte, receiveTimeout time.Duration, protocol Protocol, dstIP net.IP, hostName string, match matchFunc) ProbeResult {
	sendTime := time.Now()
	if err := ch.Send(packet); err != nil {
		Logger.WithField("seq", seq).WithError(err).Warn("netprobe: send failed")
		return ErrorResult(seq, dstIP, hostName, protocol, len(packet), err)
	}

	for {
		data, err := receiveCtx(ctx, ch)
		if err != nil {
			if ctx.Err() != nil {
				return ErrorResult(seq, dstIP, hostName, protocol, len(packet), ctx.Err())
			}
			// A read error under a timeout-configured reader is, in
			// practice, "no data ready" (spec.md §7) — treated like a
			// timeout rather than a distinct error state.
			return TimeoutResult(seq, dstIP, hostName, protocol, len(packet))
		}
		frame := filter.Decode(data, parseOpt)
		if result, ok := match(frame); ok {
			result.Seq = seq
			result.RTT = time.Since(sendTime)
			result.SentPacketSize = len(packet)
			result.ReceivedPacketSize = len(data)
			return result
		}
		if time.Since(sendTime) > receiveTimeout {
			return TimeoutResult(seq, dstIP, hostName, protocol, len(packet))
		}
	}
}

// parseOptionFor computes spec.md §3's tunnel/loopback parse offset.
func parseOptionFor(s ProbeSetting) filter.ParseOption {
	if !s.Tunnel {
		return filter.ParseOption{}
	}
	offset := 0
	if s.Loopback {
		offset = 14
	}
	return filter.ParseOption{FromIPPacket: true, Offset: offset}
}

func matchParamsFor(s ProbeSetting) filter.MatchParams {
	return filter.MatchParams{
		SrcIP:      s.SrcIP,
		DstIP:      s.DstIP,
		DstPort:    s.DstPort,
		HasDstPort: s.DstPort != 0,
	}
}

// openChannel is the one place every engine acquires a datalink.Channel,
// scoped to the worker's lifetime with the read timeout and buffer sizes
// spec.md §5 names.
func openChannel(s ProbeSetting) (*datalink.Channel, error) {
	ch, err := datalink.Open(s.IfName, datalink.Config{ReadTimeout: s.ReceiveTimeout, Promiscuous: false})
	if err != nil {
		return nil, fmt.Errorf("netprobe: unable to open channel on %s: %w", s.IfName, err)
	}
	return ch, nil
}

// progressSink is the shared-receiver progress channel every engine owns:
// the sender lives with the worker goroutine, the receiver is exposed to
// the consumer through a lock-guarded accessor (spec.md §5).
type progressSink struct {
	mu sync.Mutex
	ch chan ProbeResult
}

func newProgressSink(buf int) *progressSink {
	return &progressSink{ch: make(chan ProbeResult, buf)}
}

// push delivers a progress update. It blocks on a full channel — spec.md §5
// lists the progress send as a suspension point "bounded by consumer
// throughput" — but a disconnected receiver never panics or aborts the
// session (spec.md §7: progress-send failures are swallowed), which in Go
// simply falls out of the channel staying open for the worker's lifetime.
func (p *progressSink) push(r ProbeResult) {
	p.ch <- r
}

func (p *progressSink) receiver() <-chan ProbeResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch
}

func (p *progressSink) close() {
	close(p.ch)
}
