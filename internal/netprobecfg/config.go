// Package netprobecfg loads the YAML defaults file cmd/netprobe reads at
// startup, the way the teacher's internal/config loads a YAML defaults file
// into a typed struct. cmd/netprobe uses the file's interface name when -i is
// not given and its log format; the file's log level applies only when
// --log-level is passed as an empty string, and the timing and ports sections
// are loaded but not applied to any subcommand's flags.
package netprobecfg

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk defaults file shape. Every field is optional; zero
// values fall through to netprobe's own per-protocol defaults.
type Config struct {
	Interface *InterfaceConfig `yaml:"interface"`
	Timing    *TimingConfig    `yaml:"timing"`
	Ports     *PortConfig      `yaml:"ports"`
	Log       *LogConfig       `yaml:"log"`
}

// InterfaceConfig names the interface cmd/netprobe binds to absent -i.
type InterfaceConfig struct {
	Name string `yaml:"name"`
}

// TimingConfig mirrors the ProbeSetting timing fields.
type TimingConfig struct {
	ReceiveTimeout time.Duration `yaml:"receive_timeout"`
	SendRate       time.Duration `yaml:"send_rate"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout"`
	Count          uint8         `yaml:"count"`
	HopLimit       uint8         `yaml:"hop_limit"`
}

// PortConfig mirrors the ProbeSetting TCP/UDP port fields.
type PortConfig struct {
	TCPSrcPort uint16 `yaml:"tcp_src_port"`
	TCPDstPort uint16 `yaml:"tcp_dst_port"`
	UDPSrcPort uint16 `yaml:"udp_src_port"`
	UDPDstPort uint16 `yaml:"udp_dst_port"`
}

// LogConfig mirrors the teacher's LogConfig shape (level/format/output),
// trimmed to what netprobe.Logger actually consults.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in defaults applied when no file is found.
func Default() *Config {
	return &Config{
		Timing: &TimingConfig{
			ReceiveTimeout: time.Second,
			SendRate:       time.Second,
			ProbeTimeout:   30 * time.Second,
			Count:          4,
			HopLimit:       64,
		},
		Ports: &PortConfig{
			TCPSrcPort: 44322,
			TCPDstPort: 80,
			UDPSrcPort: 53445,
			UDPDstPort: 33435,
		},
		Log: &LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path as YAML and merges it over Default(); a missing file is
// not an error — it just means the built-in defaults apply untouched.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("netprobecfg: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("netprobecfg: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveSrcIP picks the first address on ifc whose family matches dst.
func ResolveSrcIP(ifc *net.Interface, dst net.IP) (net.IP, error) {
	addrs, err := ifc.Addrs()
	if err != nil {
		return nil, fmt.Errorf("netprobecfg: addresses for %s: %w", ifc.Name, err)
	}
	wantV4 := dst.To4() != nil
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		isV4 := ipNet.IP.To4() != nil
		if isV4 == wantV4 {
			return ipNet.IP, nil
		}
	}
	return nil, fmt.Errorf("netprobecfg: no address on %s matching destination family", ifc.Name)
}
