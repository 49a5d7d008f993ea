package netprobe

// commonInitialTTLs are the hop-limit defaults widely used by real stacks
// (spec.md §4.3).
var commonInitialTTLs = [...]uint8{64, 128, 255}

// guessInitialTTL returns the smallest of {64,128,255} that is >= received,
// spec.md §4.3's initial-TTL inference policy.
func guessInitialTTL(received uint8) uint8 {
	for _, guess := range commonInitialTTLs {
		if guess >= received {
			return guess
		}
	}
	return commonInitialTTLs[len(commonInitialTTLs)-1]
}

// hopCount derives the reported hop count from an observed TTL/hop-limit,
// returning 0 when ttl is 0 (no IP layer was present to observe, e.g. a bare
// ARP reply — spec.md §4.3 is silent here, but a hop count only makes sense
// once an IP layer has been seen).
func hopCount(ttl uint8) uint8 {
	if ttl == 0 {
		return 0
	}
	return guessInitialTTL(ttl) - ttl
}
