package netprobe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuessInitialTTL(t *testing.T) {
	assert.EqualValues(t, 64, guessInitialTTL(53))
	assert.EqualValues(t, 128, guessInitialTTL(120))
	assert.EqualValues(t, 255, guessInitialTTL(250))
	assert.EqualValues(t, 64, guessInitialTTL(64))
	assert.EqualValues(t, 255, guessInitialTTL(255))
}

func TestHopCount(t *testing.T) {
	assert.EqualValues(t, 11, hopCount(53))
	assert.EqualValues(t, 8, hopCount(120))
	assert.EqualValues(t, 5, hopCount(250))
	assert.EqualValues(t, 0, hopCount(0), "no IP layer observed means no hop count")
}
