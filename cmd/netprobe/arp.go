package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/shellrow/netprobe"
)

func newARPCmd() *cobra.Command {
	var dst string
	var count uint8
	var timeout time.Duration
	var rate time.Duration

	cmd := &cobra.Command{
		Use:   "arp",
		Short: "Resolve a neighbor's MAC address with ARP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ifc, err := requireInterface()
			if err != nil {
				return err
			}
			dstIP := net.ParseIP(dst).To4()
			if dstIP == nil {
				return fmt.Errorf("netprobe: -d must be a valid IPv4 address")
			}
			setting, err := netprobe.NewARPSetting(ifc, dstIP, count, timeout, rate)
			if err != nil {
				return err
			}
			resolver, err := netprobe.NewDeviceResolver(setting)
			if err != nil {
				return err
			}
			return runResolve(cmd.Context(), resolver, "ARP")
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&dst, "dst", "d", "", "destination IPv4 address")
	flags.Uint8VarP(&count, "count", "c", netprobe.DefaultCount, "number of requests to send")
	flags.DurationVar(&timeout, "receive-timeout", netprobe.DefaultReceiveTimeout, "per-round receive timeout")
	flags.DurationVar(&rate, "send-rate", netprobe.DefaultSendRate, "delay between requests")
	cmd.MarkFlagRequired("dst")
	return cmd
}

func runResolve(ctx context.Context, resolver *netprobe.DeviceResolver, label string) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range resolver.Progress() {
			printProbeResult(r)
		}
	}()

	result, err := resolver.Resolve(ctx)
	<-done
	if err != nil {
		return err
	}
	pterm.Info.Printfln("%s: %d response(s) in %s", label, len(result.Responses), result.ElapsedTime.Round(time.Millisecond))
	return nil
}

func printProbeResult(r netprobe.ProbeResult) {
	switch r.ProbeStatus.State {
	case netprobe.StateDone:
		pterm.Success.Printfln("seq=%d from=%s mac=%s rtt=%s", r.Seq, r.IPAddr, r.MACAddr, r.RTT.Round(time.Microsecond))
	case netprobe.StateTimeout:
		pterm.Warning.Printfln("seq=%d timeout", r.Seq)
	default:
		pterm.Error.Printfln("seq=%d error: %s", r.Seq, r.ProbeStatus.Message)
	}
}
