package webdav_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	webdav "github.com/opencloud-eu/davcore/internal/webdav"
	"github.com/opencloud-eu/davcore/internal/webdav/tree/memtree"
)

func newTestServer(t *testing.T) (*webdav.Server, *memtree.Tree) {
	t.Helper()
	tr := memtree.New()
	s := webdav.New(webdav.Config{BaseURI: "/"}, tr, nil)
	return s, tr
}

func do(t *testing.T, s *webdav.Server, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)
	return rec
}

func TestPropfindDepth0OnRoot(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, "PROPFIND", "/", "", map[string]string{"Depth": "0"})
	require.Equal(t, 207, rec.Code)
	body := rec.Body.String()
	require.Equal(t, 1, strings.Count(body, "<d:response>"))
	require.Contains(t, body, "<d:resourcetype><d:collection/></d:resourcetype>")
}

func TestPutCreatesFileThenGet(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPut, "/new.txt", "hi", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/new.txt", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hi", rec.Body.String())
}

func TestGetByteRange(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPut, "/range.txt", "abcdefghij", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/range.txt", "", map[string]string{"Range": "bytes=0-4"})
	require.Equal(t, http.StatusPartialContent, rec.Code)
	require.Equal(t, "bytes 0-4/10", rec.Header().Get("Content-Range"))
	require.Equal(t, "5", rec.Header().Get("Content-Length"))
	require.Equal(t, "abcde", rec.Body.String())
}

func TestMkcolThenPropfindDepth1ListsChild(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, "MKCOL", "/sub", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, "PROPFIND", "/", "", map[string]string{"Depth": "1"})
	require.Equal(t, 207, rec.Code)
	body := rec.Body.String()
	require.Equal(t, 2, strings.Count(body, "<d:response>"))
	require.Contains(t, body, "/sub/")
}

func TestMoveOverwriteForbiddenIsPreconditionFailed(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/a", "aaa", nil).Code)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/b", "bbb", nil).Code)

	rec := do(t, s, "MOVE", "/a", "", map[string]string{
		"Destination": "/b",
		"Overwrite":   "F",
	})
	require.Equal(t, http.StatusPreconditionFailed, rec.Code)

	// Neither resource was mutated.
	rec = do(t, s, http.MethodGet, "/a", "", nil)
	require.Equal(t, "aaa", rec.Body.String())
	rec = do(t, s, http.MethodGet, "/b", "", nil)
	require.Equal(t, "bbb", rec.Body.String())
}

func TestMoveOverwriteAllowedReturns204(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/a", "aaa", nil).Code)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/b", "bbb", nil).Code)

	rec := do(t, s, "MOVE", "/a", "", map[string]string{
		"Destination": "/b",
		"Overwrite":   "T",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/b", "", nil)
	require.Equal(t, "aaa", rec.Body.String())

	rec = do(t, s, http.MethodGet, "/a", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProppatchProtectedPropertyRejectedAtomically(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/doc.txt", "data", nil).Code)

	body := `<?xml version="1.0"?>
<d:propertyupdate xmlns:d="DAV:">
  <d:set>
    <d:prop>
      <d:getetag>bogus</d:getetag>
      <d:displayname>My Doc</d:displayname>
    </d:prop>
  </d:set>
</d:propertyupdate>`
	rec := do(t, s, "PROPPATCH", "/doc.txt", body, nil)
	require.Equal(t, 207, rec.Code)
	respBody := rec.Body.String()
	require.Contains(t, respBody, "403")
	require.Contains(t, respBody, "getetag")
	// displayname did not commit: atomic rejection means it never attempted.
	require.Contains(t, respBody, "424")
	require.Contains(t, respBody, "displayname")
}

func TestOptionsAdvertisesDAVAndAllow(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodOptions, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("DAV"), "1")
	require.Contains(t, rec.Header().Get("DAV"), "extended-mkcol")
	require.Contains(t, rec.Header().Get("Allow"), "PROPFIND")
	require.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
}

func TestHeadOnCollectionReturns200WithoutError(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodHead, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteRemovesNode(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/gone.txt", "x", nil).Code)

	rec := do(t, s, http.MethodDelete, "/gone.txt", "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/gone.txt", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportWithoutSubscriberIsNotImplemented(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, "REPORT", "/", `<d:expand-property xmlns:d="DAV:"/>`, nil)
	require.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestUnknownMethodIsNotImplemented(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, "FROBNICATE", "/", "", nil)
	require.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestIfMatchPreconditionFailure(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/f.txt", "v1", nil).Code)

	rec := do(t, s, http.MethodGet, "/f.txt", "", map[string]string{"If-Match": `"does-not-match"`})
	require.Equal(t, http.StatusPreconditionFailed, rec.Code)
}
