package lockexample_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opencloud-eu/davcore/internal/webdav/events"
	"github.com/opencloud-eu/davcore/internal/webdav/plugin/lockexample"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

func TestLockThenDoubleLockFails(t *testing.T) {
	p := lockexample.New()
	token, err := p.Lock("docs/a.txt")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = p.Lock("docs/a.txt")
	require.Equal(t, errtypes.KindLocked, errtypes.AsError(err).Kind())
}

func TestUnlockWithWrongTokenFails(t *testing.T) {
	p := lockexample.New()
	_, err := p.Lock("docs/a.txt")
	require.NoError(t, err)

	err = p.Unlock("docs/a.txt", "not-the-token")
	require.Equal(t, errtypes.KindForbidden, errtypes.AsError(err).Kind())
}

func TestUnlockReleasesLock(t *testing.T) {
	p := lockexample.New()
	token, err := p.Lock("docs/a.txt")
	require.NoError(t, err)

	require.NoError(t, p.Unlock("docs/a.txt", token))

	token2, err := p.Lock("docs/a.txt")
	require.NoError(t, err)
	require.NotEmpty(t, token2)
}

func TestSubscribeVetoesWriteToLockedPath(t *testing.T) {
	p := lockexample.New()
	_, err := p.Lock("docs/a.txt")
	require.NoError(t, err)

	var bus events.Bus
	p.Subscribe(&bus)

	veto, err := bus.Emit(context.Background(), events.BeforeWriteContent, "docs/a.txt")
	require.True(t, veto)
	require.Equal(t, errtypes.KindLocked, errtypes.AsError(err).Kind())
}

func TestSubscribeAllowsWriteToUnlockedPath(t *testing.T) {
	p := lockexample.New()
	var bus events.Bus
	p.Subscribe(&bus)

	veto, err := bus.Emit(context.Background(), events.BeforeWriteContent, "docs/other.txt")
	require.NoError(t, err)
	require.False(t, veto)
}

func TestFeaturesAndMethods(t *testing.T) {
	p := lockexample.New()
	require.Equal(t, []string{"2"}, p.Features())
	require.Equal(t, []string{"LOCK", "UNLOCK"}, p.HTTPMethods("/any"))
}
