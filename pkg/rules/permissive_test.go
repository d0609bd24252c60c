package rules_test

import (
	"testing"

	"github.com/herohde/banzuke/pkg/match"
	"github.com/herohde/banzuke/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissiveAcceptsWellFormedMoves(t *testing.T) {
	var r rules.Permissive
	assert.True(t, r.IsLegal("startpos", nil, "7g7f"))
	assert.True(t, r.IsLegal("startpos", nil, "e2e4"))
	assert.True(t, r.IsLegal("startpos", nil, "a7a8q"))
}

func TestPermissiveRejectsMalformedMoves(t *testing.T) {
	var r rules.Permissive
	assert.False(t, r.IsLegal("startpos", nil, ""))
	assert.False(t, r.IsLegal("startpos", nil, "x"))
}

func TestPermissiveApplyPreservesFEN(t *testing.T) {
	var r rules.Permissive
	fen, err := r.Apply("startpos", nil, "7g7f")
	require.NoError(t, err)
	assert.Equal(t, "startpos", fen)
}

func TestPermissiveApplyRejectsMalformed(t *testing.T) {
	var r rules.Permissive
	_, err := r.Apply("startpos", nil, "")
	require.Error(t, err)
}

func TestPermissiveNeverSelfTerminal(t *testing.T) {
	var r rules.Permissive
	outcome, ok := r.Terminal("startpos", []string{"7g7f", "3c3d"})
	assert.False(t, ok)
	assert.Equal(t, match.None, outcome)
}
