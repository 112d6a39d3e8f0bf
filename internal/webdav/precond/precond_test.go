package precond_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/internal/webdav/precond"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

func req(headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestIfMatchStarFailsWhenMissing(t *testing.T) {
	_, err := precond.Evaluate(req(map[string]string{net.HeaderIfMatch: "*"}), precond.Resource{Exists: false}, false)
	require.Equal(t, errtypes.KindPreconditionFailed, errtypes.AsError(err).Kind())
}

func TestIfMatchStarPassesWhenPresent(t *testing.T) {
	res, err := precond.Evaluate(req(map[string]string{net.HeaderIfMatch: "*"}), precond.Resource{Exists: true, ETag: `"abc"`}, false)
	require.NoError(t, err)
	require.False(t, res.Redirected)
}

func TestIfMatchEtagMustEqual(t *testing.T) {
	_, err := precond.Evaluate(req(map[string]string{net.HeaderIfMatch: `"zzz"`}), precond.Resource{Exists: true, ETag: `"abc"`}, false)
	require.Error(t, err)

	res, err := precond.Evaluate(req(map[string]string{net.HeaderIfMatch: `"abc"`}), precond.Resource{Exists: true, ETag: `"abc"`}, false)
	require.NoError(t, err)
	require.False(t, res.Redirected)
}

func TestIfNoneMatchStarOnGETRedirects(t *testing.T) {
	res, err := precond.Evaluate(req(map[string]string{net.HeaderIfNoneMatch: "*"}), precond.Resource{Exists: true, ETag: `"abc"`}, true)
	require.NoError(t, err)
	require.True(t, res.Redirected)
}

func TestIfNoneMatchStarOnNonGETIsPreconditionFailed(t *testing.T) {
	_, err := precond.Evaluate(req(map[string]string{net.HeaderIfNoneMatch: "*"}), precond.Resource{Exists: true, ETag: `"abc"`}, false)
	require.Equal(t, errtypes.KindPreconditionFailed, errtypes.AsError(err).Kind())
}

func TestIfNoneMatchMissingResourcePasses(t *testing.T) {
	res, err := precond.Evaluate(req(map[string]string{net.HeaderIfNoneMatch: "*"}), precond.Resource{Exists: false}, false)
	require.NoError(t, err)
	require.False(t, res.Redirected)
}

func TestIfModifiedSinceSkippedWhenIfNoneMatchPresent(t *testing.T) {
	old := time.Now().Add(-time.Hour)
	res, err := precond.Evaluate(req(map[string]string{
		net.HeaderIfNoneMatch:     `"other"`,
		net.HeaderIfModifiedSince: old.Format(http.TimeFormat),
	}), precond.Resource{Exists: true, ETag: `"abc"`, LastModified: time.Now()}, true)
	require.NoError(t, err)
	require.False(t, res.Redirected)
}

func TestIfModifiedSinceRedirectsWhenNotModified(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	res, err := precond.Evaluate(req(map[string]string{
		net.HeaderIfModifiedSince: now.Format(http.TimeFormat),
	}), precond.Resource{Exists: true, LastModified: now}, true)
	require.NoError(t, err)
	require.True(t, res.Redirected)
}

func TestIfUnmodifiedSinceFailsWhenModifiedAfter(t *testing.T) {
	since := time.Now().Add(-time.Hour)
	_, err := precond.Evaluate(req(map[string]string{
		net.HeaderIfUnmodifiedSince: since.Format(http.TimeFormat),
	}), precond.Resource{Exists: true, LastModified: time.Now()}, false)
	require.Equal(t, errtypes.KindPreconditionFailed, errtypes.AsError(err).Kind())
}

func TestIfUnmodifiedSincePassesWhenNotModifiedAfter(t *testing.T) {
	since := time.Now().Add(time.Hour)
	res, err := precond.Evaluate(req(map[string]string{
		net.HeaderIfUnmodifiedSince: since.Format(http.TimeFormat),
	}), precond.Resource{Exists: true, LastModified: time.Now()}, false)
	require.NoError(t, err)
	require.False(t, res.Redirected)
}

func TestNoHeadersIsNoOp(t *testing.T) {
	res, err := precond.Evaluate(req(nil), precond.Resource{Exists: true}, false)
	require.NoError(t, err)
	require.False(t, res.Redirected)
}
