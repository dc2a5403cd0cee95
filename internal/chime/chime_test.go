package chime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChimeWithoutAudioIsSilent(t *testing.T) {
	var c *Chime
	assert.NotPanics(t, c.Play)
	assert.NotPanics(t, c.Close)
	assert.NotPanics(t, (&Chime{}).Play)
	assert.NotPanics(t, (&Chime{}).Close)
}
