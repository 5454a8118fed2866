package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		assert.Equal(t, m, ParseMode(string(m)))
	}

	assert.Equal(t, ModeParaphrase, ParseMode(""))
	assert.Equal(t, ModeParaphrase, ParseMode("pirate"))
	assert.Equal(t, ModeParaphrase, ParseMode("FORMAL"), "modes are case-sensitive")
}

func TestModesAreValid(t *testing.T) {
	assert.Len(t, Modes, 8)
	for _, m := range Modes {
		assert.True(t, m.Valid())
	}
	assert.False(t, Mode("poem").Valid())
}
