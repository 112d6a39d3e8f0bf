package props_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opencloud-eu/davcore/internal/webdav/props"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
	"github.com/opencloud-eu/davcore/internal/webdav/tree/memtree"
)

func newFile(t *testing.T, ctx context.Context, tr *memtree.Tree, name string, data []byte) tree.Node {
	t.Helper()
	root, err := tr.GetNodeForPath(ctx, "")
	require.NoError(t, err)
	coll, ok := root.(tree.ICollection)
	require.True(t, ok)
	_, err = coll.CreateFile(ctx, name, data)
	require.NoError(t, err)
	n, err := tr.GetNodeForPath(ctx, name)
	require.NoError(t, err)
	return n
}

func TestResolveGetContentLengthOnFile(t *testing.T) {
	ctx := context.Background()
	tr := memtree.New()
	fileNode := newFile(t, ctx, tr, "a.txt", []byte("hello"))

	value, ok, err := props.Resolve(ctx, fileNode, props.GetContentLength)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "5", value)
}

func TestResolveGetContentLengthOnCollectionIsUnknown(t *testing.T) {
	ctx := context.Background()
	tr := memtree.New()
	root, err := tr.GetNodeForPath(ctx, "")
	require.NoError(t, err)

	_, ok, err := props.Resolve(ctx, root, props.GetContentLength)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolveResourceTypeOnCollection(t *testing.T) {
	ctx := context.Background()
	tr := memtree.New()
	root, err := tr.GetNodeForPath(ctx, "")
	require.NoError(t, err)

	value, ok, err := props.Resolve(ctx, root, props.ResourceType)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `<d:collection/>`, value)
	require.True(t, props.IsCollection(value))
}

func TestResolveResourceTypeOnFileIsEmpty(t *testing.T) {
	ctx := context.Background()
	tr := memtree.New()
	fileNode := newFile(t, ctx, tr, "a.txt", []byte("x"))

	value, ok, err := props.Resolve(ctx, fileNode, props.ResourceType)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "", value)
	require.False(t, props.IsCollection(value))
}

func TestResolveGetETagOnFile(t *testing.T) {
	ctx := context.Background()
	tr := memtree.New()
	fileNode := newFile(t, ctx, tr, "a.txt", []byte("x"))

	value, ok, err := props.Resolve(ctx, fileNode, props.GetETag)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, value)
}

func TestResolveUnknownNameIsNotOK(t *testing.T) {
	ctx := context.Background()
	tr := memtree.New()
	root, err := tr.GetNodeForPath(ctx, "")
	require.NoError(t, err)

	_, ok, err := props.Resolve(ctx, root, "{DAV:}not-a-real-property")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIsProtected(t *testing.T) {
	require.True(t, props.IsProtected(props.GetETag))
	require.True(t, props.IsProtected(props.ResourceType))
	require.False(t, props.IsProtected("{DAV:}displayname"))
}

func TestDefaultNamesCoversCoreLiveProperties(t *testing.T) {
	require.Contains(t, props.DefaultNames, props.GetETag)
	require.Contains(t, props.DefaultNames, props.ResourceType)
	require.Contains(t, props.DefaultNames, props.GetContentLength)
}
