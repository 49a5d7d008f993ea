package main

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/shellrow/netprobe"
)

var fingerprintTypes = map[string]netprobe.FingerprintType{
	"icmpecho":        netprobe.IcmpEcho,
	"icmptimestamp":   netprobe.IcmpTimestamp,
	"icmpaddressmask": netprobe.IcmpAddressMask,
	"icmpinformation": netprobe.IcmpInformation,
	"icmpunreachable": netprobe.IcmpUnreachable,
	"tcpsynack":       netprobe.TcpSynAck,
	"tcprstack":       netprobe.TcpRstAck,
	"tcpecn":          netprobe.TcpEcn,
}

func newFingerprintCmd() *cobra.Command {
	var dst string
	var typeName string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Send a single classifier stimulus and report the reply's shape",
		RunE: func(cmd *cobra.Command, args []string) error {
			ifc, err := requireInterface()
			if err != nil {
				return err
			}
			dstIP := net.ParseIP(dst)
			if dstIP == nil {
				return fmt.Errorf("netprobe: -d must be a valid IP address")
			}
			fpType, ok := fingerprintTypes[strings.ToLower(typeName)]
			if !ok {
				return fmt.Errorf("netprobe: unknown fingerprint type %q", typeName)
			}
			setting, err := netprobe.NewFingerprintSetting(ifc, dstIP, fpType, timeout)
			if err != nil {
				return err
			}
			fp := netprobe.NewFingerprinter(setting, fpType).Probe(cmd.Context())
			switch fp.ProbeStatus.State {
			case netprobe.StateDone:
				pterm.Success.Printfln("%s answered in %s", typeName, fp.RTT.Round(time.Microsecond))
			case netprobe.StateTimeout:
				pterm.Warning.Printfln("%s: %s", typeName, fp.ProbeStatus.Message)
			default:
				pterm.Error.Printfln("%s: %s", typeName, fp.ProbeStatus.Message)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&dst, "dst", "d", "", "destination IP address")
	flags.StringVar(&typeName, "type", "IcmpEcho", "fingerprint stimulus type")
	flags.DurationVar(&timeout, "receive-timeout", netprobe.DefaultReceiveTimeout, "reply wait timeout")
	cmd.MarkFlagRequired("dst")
	return cmd
}
