package webdav

import (
	"bytes"
	"encoding/xml"
	"io"
	"net/http"

	"github.com/opencloud-eu/davcore/internal/webdav/events"
	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/pkg/errtypes"
)

// handleReport identifies the requested report by its body's root element
// name and emits it on the event bus; the core implements no reports
// itself (spec §4.3). A report subscriber is expected to write its own
// response and signal it handled the request by returning veto=true —
// the same convention every other veto-capable event uses, repurposed here
// to mean "handled" rather than "abort".
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	uri, err := s.resolveURI(r)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errtypes.BadRequest(err.Error())
	}

	name, err := reportRootName(body)
	if err != nil {
		return errtypes.BadRequest("REPORT body: " + err.Error())
	}

	handled, err := s.events.Emit(ctx, events.Report, name, uri, w, body)
	if err != nil {
		return err
	}
	if !handled {
		return errtypes.ReportNotImplemented("no subscriber handles report " + name)
	}
	return nil
}

func reportRootName(body []byte) (string, error) {
	d := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return davnet.Clark(se.Name.Space, se.Name.Local), nil
		}
	}
}
