package netprobe

import (
	"context"
	"fmt"
	"net"
	"slices"
	"time"
)

// SweepOptions bounds a subnet sweep's concurrency and per-host timing.
type SweepOptions struct {
	Concurrency    int
	Count          uint8
	ReceiveTimeout time.Duration
	SendRate       time.Duration
}

func (o SweepOptions) applyDefaults() SweepOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = 32
	}
	if o.Count == 0 {
		o.Count = 1
	}
	if o.ReceiveTimeout == 0 {
		o.ReceiveTimeout = DefaultReceiveTimeout
	}
	if o.SendRate == 0 {
		o.SendRate = DefaultSendRate
	}
	return o
}

// NeighborSweepResult pairs one swept address with its resolution outcome.
type NeighborSweepResult struct {
	IP     net.IP
	Result DeviceResolveResult
	Err    error
}

// SweepNeighbors ARPs every host address in cidr concurrently (bounded by
// opts.Concurrency) and returns one NeighborSweepResult per address that
// produced at least one Done response — a whole-subnet neighbor discovery
// built from the same engine that answers a single ARP query. A host that
// only timed out is not reported alive, matching isAlive()'s
// PacketsRecv > 0 check.
func SweepNeighbors(ctx context.Context, ifc Interface, cidr *net.IPNet, opts SweepOptions) ([]NeighborSweepResult, error) {
	opts = opts.applyDefaults()
	hosts, err := hostAddresses(cidr)
	if err != nil {
		return nil, err
	}

	sem := make(chan struct{}, opts.Concurrency)
	resultCh := make(chan NeighborSweepResult, len(hosts))

	for _, ip := range hosts {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		go func(target net.IP) {
			defer func() { <-sem }()
			resultCh <- sweepOne(ctx, ifc, target, opts)
		}(ip)
	}

	var alive []NeighborSweepResult
	for range hosts {
		r := <-resultCh
		if sweptHostIsAlive(r) {
			alive = append(alive, r)
		}
	}
	return alive, nil
}

// sweptHostIsAlive reports whether r's resolution produced at least one
// Done response. A session that only timed out is not alive, matching the
// teacher's isAlive()'s PacketsRecv > 0 check.
func sweptHostIsAlive(r NeighborSweepResult) bool {
	if r.Err != nil {
		return false
	}
	return slices.ContainsFunc(r.Result.Responses, func(p ProbeResult) bool {
		return p.ProbeStatus.State == StateDone
	})
}

func sweepOne(ctx context.Context, ifc Interface, target net.IP, opts SweepOptions) NeighborSweepResult {
	setting, err := NewARPSetting(ifc, target, opts.Count, opts.ReceiveTimeout, opts.SendRate)
	if err != nil {
		return NeighborSweepResult{IP: target, Err: err}
	}
	resolver, err := NewDeviceResolver(setting)
	if err != nil {
		return NeighborSweepResult{IP: target, Err: err}
	}
	go func() {
		for range resolver.Progress() {
		}
	}()
	result, err := resolver.Resolve(ctx)
	return NeighborSweepResult{IP: target, Result: result, Err: err}
}

// hostAddresses enumerates every usable host address in cidr, excluding the
// network and broadcast addresses for subnets wider than /31.
func hostAddresses(cidr *net.IPNet) ([]net.IP, error) {
	base := cidr.IP.To4()
	if base == nil {
		return nil, fmt.Errorf("netprobe: sweep only supports IPv4 subnets")
	}
	var ips []net.IP
	for ip := cloneIP(base); cidr.Contains(ip); incIP(ip) {
		ips = append(ips, cloneIP(ip))
	}
	if len(ips) > 2 {
		return ips[1 : len(ips)-1], nil
	}
	return ips, nil
}

func cloneIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)
	return out
}

func incIP(ip net.IP) {
	for j := len(ip) - 1; j >= 0; j-- {
		ip[j]++
		if ip[j] > 0 {
			break
		}
	}
}
