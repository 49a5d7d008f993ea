package netprobe

import (
	"context"
	"fmt"
	"time"

	"github.com/shellrow/netprobe/internal/filter"
	"github.com/shellrow/netprobe/internal/packet"
)

// ErrUnsupportedProtocol is returned when an engine is constructed with a
// ProbeSetting.Protocol it does not handle.
var ErrUnsupportedProtocol = fmt.Errorf("netprobe: unsupported protocol")

// DeviceResolver runs ARP or NDP neighbor-resolution sessions (spec.md §4.4).
type DeviceResolver struct {
	setting ProbeSetting
	sink    *progressSink
}

// NewDeviceResolver resolves setting's interface, validates setting, and
// returns a DeviceResolver ready to Resolve. setting.Protocol must be
// ProtocolARP or ProtocolNDP.
func NewDeviceResolver(setting ProbeSetting) (*DeviceResolver, error) {
	if setting.Protocol != ProtocolARP && setting.Protocol != ProtocolNDP {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProtocol, setting.Protocol)
	}
	ifc, err := ResolveInterface(setting)
	if err != nil {
		return nil, err
	}
	if err := setting.Validate(ifc); err != nil {
		return nil, err
	}
	return &DeviceResolver{setting: setting, sink: newProgressSink(int(setting.Count) + 1)}, nil
}

// Progress returns the shared progress receiver; safe to read concurrently
// with Resolve (spec.md §5/§6).
func (d *DeviceResolver) Progress() <-chan ProbeResult { return d.sink.receiver() }

// Resolve runs the neighbor-resolution session to completion synchronously
// on the calling goroutine (spec.md §6). Call it from its own goroutine to
// stream Progress() concurrently.
func (d *DeviceResolver) Resolve(ctx context.Context) (DeviceResolveResult, error) {
	s := d.setting
	ch, err := openChannel(s)
	if err != nil {
		d.sink.close()
		return DeviceResolveResult{}, err
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
		pkt, err := buildNeighborPacket(s, seq)
		if err != nil {
			r := ErrorResult(seq, s.DstIP, s.DstHostname, s.Protocol, 0, err)
			responses = append(responses, r)
			d.sink.push(r)
			break
		}
		result := runRound(ctx, ch, parseOpt, seq, pkt, s.ReceiveTimeout, s.Protocol, s.DstIP, s.DstHostname, neighborMatcher(s, matchParams))
		result.HostName = s.DstHostname
		responses = append(responses, result)
		d.sink.push(result)

		if seq < int(s.Count) {
			select {
			case <-ctx.Done():
			case <-time.After(s.SendRate):
			}
		}
	}

	d.sink.close()
	return DeviceResolveResult{
		sessionAggregate: sessionAggregate{
			Protocol:    s.Protocol,
			StartTime:   startTime,
			EndTime:     time.Now(),
			ElapsedTime: time.Since(startTime),
			ProbeStatus: Done(),
		},
		Responses: responses,
	}, nil
}

func buildNeighborPacket(s ProbeSetting, seq int) ([]byte, error) {
	p := packet.Params{
		SrcMAC: s.SrcMAC, DstMAC: s.DstMAC,
		SrcIP: s.SrcIP, DstIP: s.DstIP,
		HopLimit: s.HopLimit, Tunnel: s.Tunnel, Seq: seq,
	}
	if s.Protocol == ProtocolNDP {
		return packet.BuildNeighborSolicitation(p)
	}
	return packet.BuildARPRequest(p)
}

// neighborMatcher returns the match callback for §4.4 step 2: on match,
// emit a Destination ProbeResult carrying the reply's Ethernet source MAC.
// For NDP this is the Ethernet header's address, not the advertisement's
// link-layer address option.
func neighborMatcher(s ProbeSetting, mp filter.MatchParams) matchFunc {
	return func(frame *filter.DecodedFrame) (ProbeResult, bool) {
		var matched bool
		if s.Protocol == ProtocolNDP {
			matched = filter.MatchNeighborAdvertisement(frame, mp)
		} else {
			matched = filter.MatchARPReply(frame, mp)
		}
		if !matched {
			return ProbeResult{}, false
		}
		ttl := frame.TTL()
		return ProbeResult{
			MACAddr:     frame.SourceMAC(),
			IPAddr:      s.DstIP,
			ProbeStatus: Done(),
			Protocol:    s.Protocol,
			NodeType:    NodeDestination,
			TTL:         ttl,
			Hop:         hopCount(ttl),
		}, true
	}
}
