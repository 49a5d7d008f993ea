package netprobe

import (
	"context"
	"fmt"
	"time"

	"github.com/shellrow/netprobe/internal/filter"
	"github.com/shellrow/netprobe/internal/packet"
)

// Pinger runs a sequential, count-bounded ICMP/TCP/UDP ping session
// (spec.md §4.5).
type Pinger struct {
	setting ProbeSetting
	sink    *progressSink
}

// NewPinger validates setting and returns a Pinger ready to Ping. setting
// must resolve to a live interface, per spec.md §6 ("unable to get
// interface").
func NewPinger(setting ProbeSetting) (*Pinger, error) {
	if setting.Protocol != ProtocolICMP && setting.Protocol != ProtocolTCP && setting.Protocol != ProtocolUDP {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProtocol, setting.Protocol)
	}
	ifc, err := ResolveInterface(setting)
	if err != nil {
		return nil, err
	}
	if err := setting.Validate(ifc); err != nil {
		return nil, err
	}
	return &Pinger{setting: setting, sink: newProgressSink(int(setting.Count) + 1)}, nil
}

// Progress returns the shared progress receiver.
func (p *Pinger) Progress() <-chan ProbeResult { return p.sink.receiver() }

// Ping runs the ping session to completion and returns the terminal
// aggregate (spec.md §4.5). probe_timeout is enforced as a session-wide
// deadline checked between rounds only (spec.md §9 open question — a round
// already in flight always finishes, only the *next* round is skipped).
func (p *Pinger) Ping(ctx context.Context) (PingResult, error) {
	s := p.setting
	ch, err := openChannel(s)
	if err != nil {
		p.sink.close()
		return PingResult{}, err
	}
	defer ch.Close()

	parseOpt := parseOptionFor(s)
	matchParams := matchParamsFor(s)
	startTime := time.Now()
	var responses []ProbeResult

	for seq := 1; seq <= int(s.Count); seq++ {
		if ctx.Err() != nil {
			break
		}
		if time.Since(startTime) > s.ProbeTimeout {
			Logger.WithField("seq", seq).Warn("netprobe: probe_timeout exceeded, stopping session early")
			break
		}

		pkt, err := buildPingPacket(s, seq)
		if err != nil {
			r := ErrorResult(seq, s.DstIP, s.DstHostname, s.Protocol, 0, err)
			responses = append(responses, r)
			p.sink.push(r)
			break
		}
		result := runRound(ctx, ch, parseOpt, seq, pkt, s.ReceiveTimeout, s.Protocol, s.DstIP, s.DstHostname, pingMatcher(s, matchParams))
		result.HostName = s.DstHostname
		responses = append(responses, result)
		p.sink.push(result)

		if seq < int(s.Count) {
			select {
			case <-ctx.Done():
			case <-time.After(s.SendRate):
			}
		}
	}

	p.sink.close()
	probeTime := time.Since(startTime)
	return PingResult{
		sessionAggregate: sessionAggregate{
			Protocol:    s.Protocol,
			StartTime:   startTime,
			EndTime:     time.Now(),
			ElapsedTime: probeTime,
			ProbeStatus: Done(),
		},
		Stat: NewPingStat(responses, int(s.Count), probeTime),
	}, nil
}

func buildPingPacket(s ProbeSetting, seq int) ([]byte, error) {
	p := packet.Params{
		SrcMAC: s.SrcMAC, DstMAC: s.DstMAC,
		SrcIP: s.SrcIP, DstIP: s.DstIP,
		SrcPort: s.SrcPort, DstPort: s.DstPort,
		HopLimit: s.HopLimit, Tunnel: s.Tunnel, Seq: seq,
	}
	switch s.Protocol {
	case ProtocolTCP:
		return packet.BuildTCPSyn(p)
	case ProtocolUDP:
		return packet.BuildUDP(p)
	default:
		return packet.BuildICMPEcho(p)
	}
}

// pingMatcher dispatches to the protocol-specific reply filter (spec.md
// §4.2) and shapes the matched ProbeResult.
func pingMatcher(s ProbeSetting, mp filter.MatchParams) matchFunc {
	return func(frame *filter.DecodedFrame) (ProbeResult, bool) {
		switch s.Protocol {
		case ProtocolTCP:
			v := filter.MatchTCPPingReply(frame, mp)
			if !v.Matched {
				return ProbeResult{}, false
			}
			status := PortClosed
			if v.Open {
				status = PortOpen
			}
			ttl := frame.TTL()
			return ProbeResult{
				MACAddr: frame.SourceMAC(), IPAddr: s.DstIP,
				PortNumber: s.DstPort, HasPort: true, PortStatus: status,
				TTL: ttl, Hop: hopCount(ttl),
				ProbeStatus: Done(), Protocol: ProtocolTCP, NodeType: NodeDestination,
			}, true
		case ProtocolUDP:
			if !filter.MatchUDPPingReply(frame, mp) {
				return ProbeResult{}, false
			}
			ttl := frame.TTL()
			return ProbeResult{
				MACAddr: frame.SourceMAC(), IPAddr: s.DstIP,
				PortNumber: s.DstPort, HasPort: true, PortStatus: PortClosed,
				TTL: ttl, Hop: hopCount(ttl),
				ProbeStatus: Done(), Protocol: ProtocolUDP, NodeType: NodeDestination,
			}, true
		default:
			if !filter.MatchICMPEchoReply(frame, mp) {
				return ProbeResult{}, false
			}
			ttl := frame.TTL()
			return ProbeResult{
				MACAddr: frame.SourceMAC(), IPAddr: s.DstIP,
				TTL: ttl, Hop: hopCount(ttl),
				ProbeStatus: Done(), Protocol: ProtocolICMP, NodeType: NodeDestination,
			}, true
		}
	}
}
