package handle_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaarrunii/VidVault/internal/handle"
)

func TestRegistryMintAndResolve(t *testing.T) {
	r := handle.NewRegistry("/media/")

	h := r.Mint([]byte("content"), "video/mp4")
	require.True(t, strings.HasPrefix(string(h), "/media/"))

	token := strings.TrimPrefix(string(h), "/media/")
	data, contentType, ok := r.Resolve(token)
	require.True(t, ok)
	require.Equal(t, []byte("content"), data)
	require.Equal(t, "video/mp4", string(contentType))
}

func TestRegistryMintsIndependentHandles(t *testing.T) {
	r := handle.NewRegistry("/media/")

	// Minting the same bytes twice yields independent handles.
	first := r.Mint([]byte("content"), "video/mp4")
	second := r.Mint([]byte("content"), "video/mp4")
	require.NotEqual(t, first, second)
	require.Equal(t, 2, r.Len())

	r.Revoke(first)
	require.Equal(t, 1, r.Len())

	_, _, ok := r.Resolve(strings.TrimPrefix(string(first), "/media/"))
	require.False(t, ok)

	_, _, ok = r.Resolve(strings.TrimPrefix(string(second), "/media/"))
	require.True(t, ok)
}

func TestRegistryRevokeUnknownHandle(t *testing.T) {
	r := handle.NewRegistry("/media/")
	r.Revoke(handle.Handle("/media/unknown"))
	require.Equal(t, 0, r.Len())
}
