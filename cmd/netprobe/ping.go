package main

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/shellrow/netprobe"
)

func newPingCmd() *cobra.Command {
	var dst string
	var protocol string
	var port uint16
	var count uint8
	var timeout time.Duration
	var rate time.Duration
	var probeTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping a host over ICMP, TCP or UDP and report RTT statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ifc, err := requireInterface()
			if err != nil {
				return err
			}
			dstIP := net.ParseIP(dst)
			if dstIP == nil {
				return fmt.Errorf("netprobe: -d must be a valid IP address")
			}
			proto, err := parsePingProtocol(protocol)
			if err != nil {
				return err
			}
			setting, err := netprobe.NewPingSetting(ifc, dstIP, proto, port, count, timeout, rate, probeTimeout)
			if err != nil {
				return err
			}
			pinger, err := netprobe.NewPinger(setting)
			if err != nil {
				return err
			}
			return runPing(cmd.Context(), pinger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&dst, "dst", "d", "", "destination IP address")
	flags.StringVar(&protocol, "protocol", "icmp", "probe protocol: icmp, tcp or udp")
	flags.Uint16VarP(&port, "port", "p", 0, "destination port (tcp/udp)")
	flags.Uint8VarP(&count, "count", "c", netprobe.DefaultCount, "number of probes to send")
	flags.DurationVar(&timeout, "receive-timeout", netprobe.DefaultReceiveTimeout, "per-round receive timeout")
	flags.DurationVar(&rate, "send-rate", netprobe.DefaultSendRate, "delay between probes")
	flags.DurationVar(&probeTimeout, "probe-timeout", netprobe.DefaultProbeTimeout, "session-wide deadline")
	cmd.MarkFlagRequired("dst")
	return cmd
}

func parsePingProtocol(s string) (netprobe.Protocol, error) {
	switch strings.ToLower(s) {
	case "icmp", "":
		return netprobe.ProtocolICMP, nil
	case "tcp":
		return netprobe.ProtocolTCP, nil
	case "udp":
		return netprobe.ProtocolUDP, nil
	default:
		return "", fmt.Errorf("netprobe: unknown ping protocol %q", s)
	}
}

func runPing(ctx context.Context, pinger *netprobe.Pinger) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range pinger.Progress() {
			printProbeResult(r)
		}
	}()

	result, err := pinger.Ping(ctx)
	<-done
	if err != nil {
		return err
	}
	stat := result.Stat
	pterm.Info.Printfln(
		"%d transmitted, %d received, %.1f%% loss, min/avg/max = %s/%s/%s",
		stat.TransmittedCount, stat.ReceivedCount, stat.LossPercent(),
		stat.Min.Round(time.Microsecond), stat.Avg.Round(time.Microsecond), stat.Max.Round(time.Microsecond),
	)
	return nil
}
