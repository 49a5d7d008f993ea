// Package datalink provides the bounded send/receive pair over one
// interface at layer 2 that spec.md §6 calls the "Channel Abstraction" —
// the one external collaborator the spec leaves unspecified. It is backed
// by github.com/google/gopacket/pcap, the pack's canonical raw-capture
// library (facebook/time's node.Sender, and the go.mod manifests for
// untangle-packetd, yerden-go-snf and malbeclabs-doublezero all depend on
// gopacket for exactly this).
package datalink

import (
	"fmt"
	"time"

	"github.com/google/gopacket/pcap"
)

const (
	writeBufferSize = 4096
	readBufferSize  = 4096
)

// Config mirrors spec.md §5's "Resource lifecycle" parameters.
type Config struct {
	ReadTimeout time.Duration
	Promiscuous bool
}

// Channel is a live-capture handle scoped to one interface's lifetime,
// closed via Close on every exit path (spec.md §5).
type Channel struct {
	handle *pcap.Handle
}

// Open acquires a layer-2 channel on ifName with a read timeout and
// 4096-byte buffers, non-promiscuous by default (spec.md §5/§6).
func Open(ifName string, cfg Config) (*Channel, error) {
	inactive, err := pcap.NewInactiveHandle(ifName)
	if err != nil {
		return nil, fmt.Errorf("netprobe: open channel on %s: %w", ifName, err)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(writeBufferSize); err != nil {
		return nil, fmt.Errorf("netprobe: set snaplen on %s: %w", ifName, err)
	}
	if err := inactive.SetPromisc(cfg.Promiscuous); err != nil {
		return nil, fmt.Errorf("netprobe: set promisc on %s: %w", ifName, err)
	}
	if err := inactive.SetTimeout(cfg.ReadTimeout); err != nil {
		return nil, fmt.Errorf("netprobe: set read timeout on %s: %w", ifName, err)
	}
	if err := inactive.SetImmediateMode(true); err != nil {
		return nil, fmt.Errorf("netprobe: set immediate mode on %s: %w", ifName, err)
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, fmt.Errorf("netprobe: activate channel on %s: %w", ifName, err)
	}
	return &Channel{handle: handle}, nil
}

// Send transmits a fully-built frame.
func (c *Channel) Send(frame []byte) error {
	if err := c.handle.WritePacketData(frame); err != nil {
		return fmt.Errorf("netprobe: send: %w", err)
	}
	return nil
}

// Receive blocks up to the channel's configured read timeout and returns the
// next captured frame, or an error when none arrives in time — spec.md
// §7 treats a receive error under a timeout-configured reader the same as a
// plain timeout.
func (c *Channel) Receive() ([]byte, error) {
	data, _, err := c.handle.ReadPacketData()
	if err != nil {
		return nil, fmt.Errorf("netprobe: receive: %w", err)
	}
	return data, nil
}

// Close releases the channel. Safe to call once per Open.
func (c *Channel) Close() {
	c.handle.Close()
}
