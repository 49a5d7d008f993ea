package netprobe

import (
	"context"
)

// RaceResult names which of a set of raced sessions answered first.
type RaceResult struct {
	Protocol Protocol
	Result   ProbeStatus
}

// RaceNeighborResolvers runs several DeviceResolver sessions concurrently —
// typically an ARP and an NDP resolver built from the same Interface — and
// returns as soon as the first one produces a Done response, cancelling the
// rest. Useful when a caller does not know in advance whether a destination
// will answer ARP or NDP.
func RaceNeighborResolvers(ctx context.Context, resolvers ...*DeviceResolver) (RaceResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		protocol Protocol
		result   DeviceResolveResult
		err      error
	}
	resultCh := make(chan outcome, len(resolvers))

	for _, r := range resolvers {
		go func(resolver *DeviceResolver) {
			go func() {
				for range resolver.Progress() {
				}
			}()
			res, err := resolver.Resolve(ctx)
			resultCh <- outcome{protocol: resolver.setting.Protocol, result: res, err: err}
		}(r)
	}

	var lastErr error
	for range resolvers {
		select {
		case o := <-resultCh:
			if o.err != nil {
				lastErr = o.err
				continue
			}
			for _, resp := range o.result.Responses {
				if resp.ProbeStatus.State == StateDone {
					cancel()
					return RaceResult{Protocol: o.protocol, Result: Done()}, nil
				}
			}
		case <-ctx.Done():
			return RaceResult{}, ctx.Err()
		}
	}
	if lastErr != nil {
		return RaceResult{}, lastErr
	}
	return RaceResult{Result: TimeoutStatus("no resolver answered")}, nil
}
