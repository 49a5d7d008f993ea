package netprobe

import (
	"context"
	"fmt"
	"time"

	"github.com/shellrow/netprobe/internal/filter"
	"github.com/shellrow/netprobe/internal/packet"
)

// Tracer runs a TTL-incrementing UDP traceroute session (spec.md §4.6).
type Tracer struct {
	setting ProbeSetting
	sink    *progressSink
}

// NewTracer validates setting and returns a Tracer ready to Trace.
// Trace probes TTLs 1..setting.HopLimit-1; setting.Protocol must be UDP.
func NewTracer(setting ProbeSetting) (*Tracer, error) {
	if setting.Protocol != ProtocolUDP {
		return nil, fmt.Errorf("%w: traceroute only supports UDP, got %s", ErrUnsupportedProtocol, setting.Protocol)
	}
	ifc, err := ResolveInterface(setting)
	if err != nil {
		return nil, err
	}
	if err := setting.Validate(ifc); err != nil {
		return nil, err
	}
	return &Tracer{setting: setting, sink: newProgressSink(int(setting.HopLimit) + 1)}, nil
}

// Progress returns the shared progress receiver.
func (t *Tracer) Progress() <-chan ProbeResult { return t.sink.receiver() }

// Trace sweeps TTL from 1 to HopLimit-1, emitting one ProbeResult per hop
// and stopping at the first DestinationUnreachable (spec.md §4.6).
func (t *Tracer) Trace(ctx context.Context) (TracerouteResult, error) {
	s := t.setting
	ch, err := openChannel(s)
	if err != nil {
		t.sink.close()
		return TracerouteResult{}, err
	}
	defer ch.Close()

	parseOpt := parseOptionFor(s)
	matchParams := matchParamsFor(s)
	startTime := time.Now()
	var hops []ProbeResult

	maxTTL := int(s.HopLimit) - 1
	for ttl := 1; ttl <= maxTTL; ttl++ {
		if ctx.Err() != nil {
			break
		}
		round := s
		round.HopLimit = uint8(ttl)

		pkt, err := packet.BuildUDP(packet.Params{
			SrcMAC: round.SrcMAC, DstMAC: round.DstMAC,
			SrcIP: round.SrcIP, DstIP: round.DstIP,
			SrcPort: round.SrcPort, DstPort: round.DstPort,
			HopLimit: round.HopLimit, Tunnel: round.Tunnel, Seq: ttl,
		})
		if err != nil {
			r := ErrorResult(ttl, s.DstIP, s.DstHostname, ProtocolUDP, 0, err)
			hops = append(hops, r)
			t.sink.push(r)
			break
		}

		result := traceRound(ctx, ch, parseOpt, ttl, pkt, s.ReceiveTimeout, matchParams)
		hops = append(hops, result)
		t.sink.push(result)

		if result.NodeType == NodeDestination {
			break
		}
		if ttl < maxTTL {
			select {
			case <-ctx.Done():
			case <-time.After(s.SendRate):
			}
		}
	}

	t.sink.close()
	return TracerouteResult{
		sessionAggregate: sessionAggregate{
			Protocol:    ProtocolUDP,
			StartTime:   startTime,
			EndTime:     time.Now(),
			ElapsedTime: time.Since(startTime),
			ProbeStatus: Done(),
		},
		Hops: hops,
	}, nil
}

// traceRound runs one TTL round: a TimeExceeded from any source is a relay
// hop (DefaultGateway at ttl==1), a DestinationUnreachable ends the trace
// (spec.md §4.6 "node_type assignment").
func traceRound(ctx context.Context, ch channelReceiver, parseOpt filter.ParseOption, ttl int, pkt []byte, receiveTimeout time.Duration, mp filter.MatchParams) ProbeResult {
	sendTime := time.Now()
	if err := ch.Send(pkt); err != nil {
		Logger.WithField("ttl", ttl).WithError(err).Warn("netprobe: send failed")
		return ErrorResult(ttl, nil, "", ProtocolUDP, len(pkt), err)
	}

	for {
		data, err := receiveCtx(ctx, ch)
		if err != nil {
			if ctx.Err() != nil {
				return ErrorResult(ttl, nil, "", ProtocolUDP, len(pkt), ctx.Err())
			}
			return TraceTimeoutResult(ttl, len(pkt))
		}
		frame := filter.Decode(data, parseOpt)
		verdict := filter.MatchTraceReply(frame, mp)
		if verdict.Matched {
			nodeType := NodeRelay
			if verdict.DestinationReached {
				nodeType = NodeDestination
			} else if ttl == 1 {
				nodeType = NodeDefaultGateway
			}
			portStatus := PortStatus("")
			if verdict.DestinationReached {
				portStatus = PortClosed
			}
			return ProbeResult{
				Seq:                ttl,
				MACAddr:            frame.SourceMAC(),
				IPAddr:             frame.IPSource(),
				RTT:                time.Since(sendTime),
				ProbeStatus:        Done(),
				Protocol:           ProtocolUDP,
				NodeType:           nodeType,
				PortStatus:         portStatus,
				HasPort:            verdict.DestinationReached,
				SentPacketSize:     len(pkt),
				ReceivedPacketSize: len(data),
			}
		}
		if time.Since(sendTime) > receiveTimeout {
			return TraceTimeoutResult(ttl, len(pkt))
		}
	}
}
