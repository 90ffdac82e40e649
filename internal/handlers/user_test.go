package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUintIDs(t *testing.T) {
	ids := parseUintIDs([]string{"3", "17", "not-a-number", "42"})
	assert.Equal(t, []uint{3, 17, 42}, ids)
}

func TestParseUintIDsEmpty(t *testing.T) {
	assert.Empty(t, parseUintIDs(nil))
}
