package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/roomsignal/internal/auth"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("ROOMSIGNAL_JWT_SECRET", "cli-secret")
	t.Setenv("ROOMSIGNAL_JWT_ISSUER", "cli")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "config.yaml"), "token", "alice", "--name", "Alice"})
	require.NoError(t, root.Execute())

	claims, err := auth.ValidateToken(&auth.JWTConfig{Secret: []byte("cli-secret"), Issuer: "cli"}, strings.TrimSpace(out.String()))
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, "Alice", claims.DisplayName)
}

func TestTokenCommandWithoutSecret(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "config.yaml"), "token", "alice"})
	require.Error(t, root.Execute())
}
