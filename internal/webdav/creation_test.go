package webdav_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMkcolWithExtendedBodyRejectsNonCollectionResourceType(t *testing.T) {
	s, _ := newTestServer(t)

	body := `<?xml version="1.0"?>
<d:mkcol xmlns:d="DAV:">
  <d:set>
    <d:prop>
      <d:resourcetype><d:collection/><d:other-type/></d:resourcetype>
    </d:prop>
  </d:set>
</d:mkcol>`
	rec := do(t, s, "MKCOL", "/odd", body, map[string]string{"Content-Type": "application/xml"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// The collection must not have been left behind by the failed request.
	rec = do(t, s, http.MethodGet, "/odd", "", map[string]string{"Depth": "0"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMkcolWithoutResourceTypeIsBadRequest(t *testing.T) {
	s, _ := newTestServer(t)
	body := `<?xml version="1.0"?>
<d:mkcol xmlns:d="DAV:">
  <d:set>
    <d:prop>
      <d:displayname>no resourcetype here</d:displayname>
    </d:prop>
  </d:set>
</d:mkcol>`
	rec := do(t, s, "MKCOL", "/bad", body, map[string]string{"Content-Type": "application/xml"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMkcolRejectsNonXMLContentType(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, "MKCOL", "/bad2", "not xml", map[string]string{"Content-Type": "text/plain"})
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestMkcolOnExistingResourceIsMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/taken", "x", nil).Code)
	rec := do(t, s, "MKCOL", "/taken", "", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
