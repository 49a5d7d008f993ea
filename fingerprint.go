package netprobe

import (
	"context"
	"time"

	"github.com/shellrow/netprobe/internal/filter"
	"github.com/shellrow/netprobe/internal/packet"
)

// Fingerprinter emits a single stimulus packet selected by a FingerprintType
// and returns the first matching reply frame, or a timeout (spec.md §4.7).
type Fingerprinter struct {
	setting ProbeSetting
	fpType  FingerprintType
}

// NewFingerprinter returns a Fingerprinter for probeType. setting.Protocol
// must already be FingerprintType.Protocol() — NewFingerprintSetting sets
// this for you.
func NewFingerprinter(setting ProbeSetting, probeType FingerprintType) *Fingerprinter {
	return &Fingerprinter{setting: setting, fpType: probeType}
}

// Probe runs the single-shot probe synchronously (spec.md §4.7). Channel
// construction failures produce probe_status=Error; a non-matching,
// non-erroring session produces probe_status=Timeout after receive_timeout;
// ctx cancellation while waiting on a reply also produces probe_status=Error
// (spec.md §5: cancellation is observed at the receive suspension point, not
// only between rounds).
func (f *Fingerprinter) Probe(ctx context.Context) Fingerprint {
	s := f.setting
	ch, err := openChannel(s)
	if err != nil {
		return Fingerprint{ProbeStatus: ErrorStatus(err.Error())}
	}
	defer ch.Close()

	parseOpt := parseOptionFor(s)
	pkt, err := buildFingerprintPacket(s, f.fpType)
	if err != nil {
		return Fingerprint{ProbeStatus: ErrorStatus(err.Error())}
	}

	sendTime := time.Now()
	if err := ch.Send(pkt); err != nil {
		Logger.WithError(err).Warn("netprobe: fingerprint send failed")
	}

	mp := matchParamsFor(s)
	for {
		data, err := receiveCtx(ctx, ch)
		if err != nil && ctx.Err() != nil {
			return Fingerprint{ProbeStatus: ErrorStatus(ctx.Err().Error())}
		}
		if err == nil {
			frame := filter.Decode(data, parseOpt)
			if filter.MatchFingerprint(frame, mp, filter.FingerprintType(f.fpType)) {
				return Fingerprint{ProbeStatus: Done(), RTT: time.Since(sendTime), Frame: frame}
			}
		}
		if time.Since(sendTime) > s.ReceiveTimeout {
			return Fingerprint{ProbeStatus: TimeoutStatus("Probe timeout")}
		}
	}
}

func buildFingerprintPacket(s ProbeSetting, fpType FingerprintType) ([]byte, error) {
	p := packet.Params{
		SrcMAC: s.SrcMAC, DstMAC: s.DstMAC,
		SrcIP: s.SrcIP, DstIP: s.DstIP,
		SrcPort: s.SrcPort, DstPort: s.DstPort,
		HopLimit: s.HopLimit, Tunnel: s.Tunnel,
	}
	switch fpType {
	case IcmpUnreachable:
		return packet.BuildUDP(p)
	case TcpSynAck, TcpRstAck, TcpEcn:
		return packet.BuildTCPFingerprintProbe(p, packet.FingerprintType(fpType))
	default:
		return packet.BuildICMPProbe(p, packet.FingerprintType(fpType))
	}
}
