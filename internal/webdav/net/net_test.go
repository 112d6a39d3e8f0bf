package net_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
)

func TestCalculateURIStripsBase(t *testing.T) {
	got, err := davnet.CalculateURI("/dav/", "/dav/docs/readme.txt")
	require.NoError(t, err)
	require.Equal(t, "docs/readme.txt", got)
}

func TestCalculateURIEmptyForBase(t *testing.T) {
	got, err := davnet.CalculateURI("/dav/", "/dav")
	require.NoError(t, err)
	require.Equal(t, "", got)

	got, err = davnet.CalculateURI("/dav/", "/dav/")
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestCalculateURIOutsideBaseIsForbidden(t *testing.T) {
	_, err := davnet.CalculateURI("/dav/", "/other/path")
	require.ErrorIs(t, err, davnet.ErrOutsideBase)
}

func TestCalculateURIStripsSchemeAndAuthority(t *testing.T) {
	got, err := davnet.CalculateURI("/dav/", "http://example.com/dav/a/b")
	require.NoError(t, err)
	require.Equal(t, "a/b", got)
}

func TestCalculateURICollapsesDoubleSlashes(t *testing.T) {
	got, err := davnet.CalculateURI("/dav/", "/dav//a//b")
	require.NoError(t, err)
	require.Equal(t, "a/b", got)
}

func TestCalculateURIPercentDecodes(t *testing.T) {
	got, err := davnet.CalculateURI("/dav/", "/dav/a%20b")
	require.NoError(t, err)
	require.Equal(t, "a b", got)
}

func TestCalculateURIIdempotent(t *testing.T) {
	base := "/dav/"
	raw := "/dav/a/b/c"
	first, err := davnet.CalculateURI(base, raw)
	require.NoError(t, err)

	second, err := davnet.CalculateURI(base, base+first)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestSplitPath(t *testing.T) {
	parent, name := davnet.SplitPath("a/b/c")
	require.Equal(t, "a/b", parent)
	require.Equal(t, "c", name)

	parent, name = davnet.SplitPath("c")
	require.Equal(t, "", parent)
	require.Equal(t, "c", name)
}

func TestJoinPath(t *testing.T) {
	require.Equal(t, "a/b", davnet.JoinPath("a", "b"))
	require.Equal(t, "b", davnet.JoinPath("", "b"))
	require.Equal(t, "", davnet.JoinPath("", ""))
}

func TestClarkRoundTrip(t *testing.T) {
	name := davnet.Clark("DAV:", "getetag")
	require.Equal(t, "{DAV:}getetag", name)

	ns, local := davnet.SplitClark(name)
	require.Equal(t, "DAV:", ns)
	require.Equal(t, "getetag", local)
}

func TestSplitClarkWithoutNamespace(t *testing.T) {
	ns, local := davnet.SplitClark("plainname")
	require.Equal(t, "", ns)
	require.Equal(t, "plainname", local)
}

func TestEncodePathEscapesSpecialChars(t *testing.T) {
	got := davnet.EncodePath("/a b/c#d")
	require.Equal(t, "/a%20b/c%23d", got)
}
