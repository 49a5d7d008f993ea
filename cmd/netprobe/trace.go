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

func newTraceCmd() *cobra.Command {
	var dst string
	var maxHops uint8
	var timeout time.Duration
	var rate time.Duration

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Trace the path to a host with a TTL-incrementing UDP sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			ifc, err := requireInterface()
			if err != nil {
				return err
			}
			dstIP := net.ParseIP(dst)
			if dstIP == nil {
				return fmt.Errorf("netprobe: -d must be a valid IP address")
			}
			setting, err := netprobe.NewTracerouteSetting(ifc, dstIP, maxHops, timeout, rate)
			if err != nil {
				return err
			}
			tracer, err := netprobe.NewTracer(setting)
			if err != nil {
				return err
			}
			return runTrace(cmd.Context(), tracer)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&dst, "dst", "d", "", "destination IP address")
	flags.Uint8Var(&maxHops, "max-hops", netprobe.DefaultHopLimit, "TTL limit; TTLs 1 to max-hops-1 are probed")
	flags.DurationVar(&timeout, "receive-timeout", netprobe.DefaultReceiveTimeout, "per-hop receive timeout")
	flags.DurationVar(&rate, "send-rate", netprobe.DefaultSendRate, "delay between hops")
	cmd.MarkFlagRequired("dst")
	return cmd
}

func runTrace(ctx context.Context, tracer *netprobe.Tracer) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range tracer.Progress() {
			printHop(r)
		}
	}()

	result, err := tracer.Trace(ctx)
	<-done
	if err != nil {
		return err
	}
	pterm.Info.Printfln("trace complete: %d hop(s) in %s", len(result.Hops), result.ElapsedTime.Round(time.Millisecond))
	return nil
}

func printHop(r netprobe.ProbeResult) {
	switch r.ProbeStatus.State {
	case netprobe.StateDone:
		pterm.Success.Printfln("%2d  %-15s  %-14s  %s", r.Seq, r.IPAddr, r.NodeType, r.RTT.Round(time.Microsecond))
	default:
		pterm.Warning.Printfln("%2d  *", r.Seq)
	}
}
