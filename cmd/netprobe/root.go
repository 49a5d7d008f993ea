// Command netprobe is a CLI harness over the netprobe library: one
// subcommand per probe engine (arp, ndp, ping, trace, fingerprint), mirroring
// the shape of the standalone probe examples the library ships alongside.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shellrow/netprobe"
	"github.com/shellrow/netprobe/internal/netprobecfg"
)

var (
	cfgFile  string
	ifName   string
	logLevel string
	cfg      *netprobecfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "netprobe",
	Short: "Active network probing over raw link-layer frames",
	Long: `netprobe crafts and emits raw Ethernet/ARP/NDP/ICMP/TCP/UDP frames to
resolve neighbors, measure round-trip time, trace a path and fingerprint a
remote stack — one subcommand per engine:

  netprobe arp -i eth0 -d 192.168.1.1
  netprobe ping -i eth0 -d 192.168.1.1 --protocol tcp -p 443
  netprobe trace -i eth0 -d 1.1.1.1
  netprobe fingerprint -i eth0 -d 192.168.1.1 --type TcpSynAck
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
}

// Execute runs the root command; it is the only symbol main calls.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "netprobe: unexpected error: %v\n", r)
			os.Exit(1)
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&ifName, "interface", "i", "", "network interface name")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML defaults file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newARPCmd())
	rootCmd.AddCommand(newNDPCmd())
	rootCmd.AddCommand(newPingCmd())
	rootCmd.AddCommand(newTraceCmd())
	rootCmd.AddCommand(newFingerprintCmd())
}

func initLogger() error {
	loaded, err := netprobecfg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := logLevel
	format := "text"
	if cfg.Log != nil {
		if level == "" {
			level = cfg.Log.Level
		}
		format = cfg.Log.Format
	}
	return netprobe.ConfigureLogger(level, format)
}

func requireInterface() (netprobe.Interface, error) {
	name := ifName
	if name == "" && cfg != nil && cfg.Interface != nil {
		name = cfg.Interface.Name
	}
	if name == "" {
		return netprobe.Interface{}, fmt.Errorf("netprobe: -i/--interface is required")
	}
	return netprobe.FindInterfaceByName(name)
}

func main() {
	Execute()
}
