package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/shellrow/netprobe"
)

func newNDPCmd() *cobra.Command {
	var dst string
	var count uint8
	var timeout time.Duration
	var rate time.Duration

	cmd := &cobra.Command{
		Use:   "ndp",
		Short: "Resolve a neighbor's MAC address with IPv6 Neighbor Discovery",
		RunE: func(cmd *cobra.Command, args []string) error {
			ifc, err := requireInterface()
			if err != nil {
				return err
			}
			dstIP := net.ParseIP(dst)
			if dstIP == nil || dstIP.To4() != nil {
				return fmt.Errorf("netprobe: -d must be a valid IPv6 address")
			}
			setting, err := netprobe.NewNDPSetting(ifc, dstIP, count, timeout, rate)
			if err != nil {
				return err
			}
			resolver, err := netprobe.NewDeviceResolver(setting)
			if err != nil {
				return err
			}
			return runResolve(cmd.Context(), resolver, "NDP")
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&dst, "dst", "d", "", "destination IPv6 address")
	flags.Uint8VarP(&count, "count", "c", netprobe.DefaultCount, "number of solicitations to send")
	flags.DurationVar(&timeout, "receive-timeout", netprobe.DefaultReceiveTimeout, "per-round receive timeout")
	flags.DurationVar(&rate, "send-rate", netprobe.DefaultSendRate, "delay between solicitations")
	cmd.MarkFlagRequired("dst")
	return cmd
}
