// Package dom is the WebDAV request/response XML codec: PROPFIND and
// PROPPATCH body parsing, the extended-MKCOL body, and the multi-status
// envelope writer. Parsing uses encoding/xml typed structs rather than a
// generic DOM tree: RFC 4918 bodies have a small, known shape, so a typed
// struct with xml tags is both less code and cheaper than walking an ad hoc
// node tree.
package dom

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	davnet "github.com/opencloud-eu/davcore/internal/webdav/net"
)

// next returns the next token in d's stream, skipping comments, directives,
// and processing instructions — RFC 4918 requires property values to ignore
// them.
func next(d *xml.Decoder) (xml.Token, error) {
	for {
		t, err := d.Token()
		if err != nil {
			return t, err
		}
		switch t.(type) {
		case xml.Comment, xml.Directive, xml.ProcInst:
			continue
		default:
			return t, nil
		}
	}
}

// propfindProps is the decoded form of a DAV:prop element inside a PROPFIND
// body: just the set of requested property names, values are never present.
type propfindProps []xml.Name

func (pn *propfindProps) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		t, err := next(d)
		if err != nil {
			return err
		}
		switch e := t.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			t, err := next(d)
			if err != nil {
				return err
			}
			if _, ok := t.(xml.EndElement); !ok {
				return fmt.Errorf("dom: unexpected token %T inside prop name %s", t, e.Name.Local)
			}
			*pn = append(*pn, e.Name)
		}
	}
}

type propfindXML struct {
	XMLName  xml.Name      `xml:"DAV: propfind"`
	Allprop  *struct{}     `xml:"DAV: allprop"`
	Propname *struct{}     `xml:"DAV: propname"`
	Prop     propfindProps `xml:"DAV: prop"`
	Include  propfindProps `xml:"DAV: include"`
}

// ErrInvalidPropfind is returned by ParsePropfind when the body mixes
// mutually exclusive elements (allprop with prop, prop with propname, ...).
var ErrInvalidPropfind = fmt.Errorf("dom: invalid propfind body")

// Propfind is the parsed form of a PROPFIND request body.
type Propfind struct {
	// Allprop is true if the client requested the default property set
	// (including an empty body, per RFC 4918 §9.1).
	Allprop bool
	// Propname is true if the client requested only property names, no
	// values (DAV:propname).
	Propname bool
	// Names holds the requested property names in Clark notation, set only
	// when neither Allprop nor Propname is true.
	Names []string
}

// ParsePropfind parses a PROPFIND request body. An empty body means allprop,
// per RFC 4918 §9.1.
func ParsePropfind(r io.Reader) (Propfind, error) {
	var pf propfindXML
	n, err := countingDecode(r, &pf)
	if err != nil {
		if err == io.EOF {
			if n == 0 {
				return Propfind{Allprop: true}, nil
			}
		}
		return Propfind{}, fmt.Errorf("dom: decoding propfind body: %w", err)
	}

	if pf.Allprop == nil && pf.Include != nil {
		return Propfind{}, ErrInvalidPropfind
	}
	if pf.Allprop != nil && (pf.Prop != nil || pf.Propname != nil) {
		return Propfind{}, ErrInvalidPropfind
	}
	if pf.Prop != nil && pf.Propname != nil {
		return Propfind{}, ErrInvalidPropfind
	}
	if pf.Propname == nil && pf.Allprop == nil && pf.Prop == nil {
		// An empty DAV:prop (or no recognized child at all) is treated as
		// allprop, matching the lenient reading real clients rely on.
		return Propfind{Allprop: true}, nil
	}

	if pf.Propname != nil {
		return Propfind{Propname: true}, nil
	}
	if pf.Allprop != nil {
		return Propfind{Allprop: true}, nil
	}

	names := make([]string, 0, len(pf.Prop))
	for _, n := range pf.Prop {
		names = append(names, davnet.Clark(n.Space, n.Local))
	}
	return Propfind{Names: names}, nil
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func countingDecode(r io.Reader, v any) (int, error) {
	c := &countingReader{r: r}
	err := xml.NewDecoder(c).Decode(v)
	return c.n, err
}

// propertyXML is a single property name/value pair as it appears inside a
// DAV:prop element, either in a PROPPATCH request body or in a response.
type propertyXML struct {
	XMLName  xml.Name
	Lang     string `xml:"xml:lang,attr,omitempty"`
	InnerXML []byte `xml:",innerxml"`
}

type xmlValue []byte

func (v *xmlValue) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b bytes.Buffer
	e := xml.NewEncoder(&b)
	for {
		t, err := next(d)
		if err != nil {
			return err
		}
		if end, ok := t.(xml.EndElement); ok && end.Name == start.Name {
			break
		}
		if err := e.EncodeToken(t); err != nil {
			return err
		}
	}
	if err := e.Flush(); err != nil {
		return err
	}
	*v = b.Bytes()
	return nil
}

type proppatchProps []propertyXML

func (ps *proppatchProps) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	lang := xmlLang(start, "")
	for {
		t, err := next(d)
		if err != nil {
			return err
		}
		switch elem := t.(type) {
		case xml.EndElement:
			if len(*ps) == 0 {
				return fmt.Errorf("dom: %s must not be empty", start.Name.Local)
			}
			return nil
		case xml.StartElement:
			p := propertyXML{
				XMLName: elem.Name,
				Lang:    xmlLang(elem, lang),
			}
			if err := d.DecodeElement((*xmlValue)(&p.InnerXML), &elem); err != nil {
				return err
			}
			*ps = append(*ps, p)
		}
	}
}

var xmlLangName = xml.Name{Space: "http://www.w3.org/XML/1998/namespace", Local: "lang"}

func xmlLang(s xml.StartElement, d string) string {
	for _, attr := range s.Attr {
		if attr.Name == xmlLangName {
			return attr.Value
		}
	}
	return d
}

type setRemove struct {
	XMLName xml.Name
	Lang    string         `xml:"xml:lang,attr,omitempty"`
	Prop    proppatchProps `xml:"DAV: prop"`
}

type propertyupdate struct {
	XMLName   xml.Name    `xml:"DAV: propertyupdate"`
	Lang      string      `xml:"xml:lang,attr,omitempty"`
	SetRemove []setRemove `xml:",any"`
}

// ErrInvalidProppatch is returned by ParsePropertyUpdate on a malformed body
// (a remove carrying a value, or a set/remove element that isn't either).
var ErrInvalidProppatch = fmt.Errorf("dom: invalid propertyupdate body")

// PropertyOp is one (name, value) mutation requested by a PROPPATCH body.
// Remove is true for a DAV:remove entry, in which case Value is unused.
type PropertyOp struct {
	Name   string // Clark notation
	Remove bool
	Value  string // raw inner XML of the property element
}

// ParsePropertyUpdate parses a PROPPATCH request body into an ordered list
// of property operations, preserving request order (spec §4.9 applies them
// atomically in this order).
func ParsePropertyUpdate(r io.Reader) ([]PropertyOp, error) {
	var pu propertyupdate
	if err := xml.NewDecoder(r).Decode(&pu); err != nil {
		return nil, fmt.Errorf("dom: decoding propertyupdate body: %w", err)
	}

	var ops []PropertyOp
	for _, op := range pu.SetRemove {
		remove := false
		switch op.XMLName {
		case xml.Name{Space: "DAV:", Local: "set"}:
		case xml.Name{Space: "DAV:", Local: "remove"}:
			for _, p := range op.Prop {
				if len(p.InnerXML) > 0 {
					return nil, ErrInvalidProppatch
				}
			}
			remove = true
		default:
			return nil, ErrInvalidProppatch
		}
		for _, p := range op.Prop {
			ops = append(ops, PropertyOp{
				Name:   davnet.Clark(p.XMLName.Space, p.XMLName.Local),
				Remove: remove,
				Value:  string(p.InnerXML),
			})
		}
	}
	return ops, nil
}

// mkcolXML is the RFC 5689 extended-MKCOL request body.
type mkcolXML struct {
	XMLName xml.Name `xml:"DAV: mkcol"`
	Set     struct {
		Prop proppatchProps `xml:"DAV: prop"`
	} `xml:"DAV: set"`
}

// Mkcol is the parsed form of an extended-MKCOL request body.
type Mkcol struct {
	// ResourceTypes are the Clark names of the child elements of
	// DAV:resourcetype, as found in the request's DAV:set/DAV:prop block.
	ResourceTypes []string
	// Properties holds every other requested property, Clark name to raw
	// inner XML.
	Properties map[string]string
}

// ErrInvalidMkcol is returned by ParseMkcol when the body does not carry a
// DAV:resourcetype entry, which RFC 5689 requires.
var ErrInvalidMkcol = fmt.Errorf("dom: mkcol body missing DAV:resourcetype")

// ParseMkcol parses an extended-MKCOL request body.
func ParseMkcol(r io.Reader) (Mkcol, error) {
	var m mkcolXML
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return Mkcol{}, fmt.Errorf("dom: decoding mkcol body: %w", err)
	}

	out := Mkcol{Properties: map[string]string{}}
	var foundResourceType bool
	for _, p := range m.Set.Prop {
		if p.XMLName == (xml.Name{Space: "DAV:", Local: "resourcetype"}) {
			foundResourceType = true
			types, err := parseResourceTypeChildren(p.InnerXML)
			if err != nil {
				return Mkcol{}, err
			}
			out.ResourceTypes = types
			continue
		}
		out.Properties[davnet.Clark(p.XMLName.Space, p.XMLName.Local)] = string(p.InnerXML)
	}
	if !foundResourceType {
		return Mkcol{}, ErrInvalidMkcol
	}
	return out, nil
}

func parseResourceTypeChildren(innerXML []byte) ([]string, error) {
	d := xml.NewDecoder(bytes.NewReader(innerXML))
	var names []string
	for {
		tok, err := next(d)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dom: parsing resourcetype children: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			names = append(names, davnet.Clark(se.Name.Space, se.Name.Local))
			if err := d.Skip(); err != nil {
				return nil, err
			}
		}
	}
	return names, nil
}

// Propstat is one status bucket of a multi-status response element: the
// properties that landed at Status, each given as a Clark name paired with
// its raw XML value (empty for a propname-only or removal response).
type Propstat struct {
	Status int
	Props  []Property
}

// Property is a single property name/value to render inside a propstat
// block. Value is raw XML content, already escaped by the caller if it is
// not itself markup (use EscapeText for scalar values).
type Property struct {
	Name  string // Clark notation
	Value string // raw inner XML, empty to render a valueless property name
}

// Response is one DAV:response element of a multi-status body.
type Response struct {
	Href     string
	Propstat []Propstat
	// Status, when set, renders a simple DAV:status instead of propstat
	// entries — used for whole-resource outcomes (e.g. a COPY/MOVE
	// per-resource failure in a multi-status body).
	Status int
	// Error, when set, renders a DAV:error with a Sabre-compatible
	// exception token.
	Error *ErrorBody
}

// ErrorBody is the content of a DAV:error element.
type ErrorBody struct {
	Exception string
	Message   string
}

// EscapeText escapes s for use as a Property.Value holding plain character
// data rather than markup.
func EscapeText(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// WriteMultiStatus renders a complete DAV:multistatus document for responses
// to w.
func WriteMultiStatus(w io.Writer, responses []Response, statusLineFor func(code int) string) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `<d:multistatus xmlns:d="DAV:" xmlns:s="http://sabredav.org/ns" xmlns:oc="http://owncloud.org/ns">`); err != nil {
		return err
	}
	for _, r := range responses {
		if err := writeResponse(w, r, statusLineFor); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</d:multistatus>`)
	return err
}

func writeResponse(w io.Writer, r Response, statusLineFor func(code int) string) error {
	if _, err := io.WriteString(w, `<d:response><d:href>`); err != nil {
		return err
	}
	if _, err := io.WriteString(w, EscapeText(davnet.EncodePath(r.Href))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `</d:href>`); err != nil {
		return err
	}

	if r.Status != 0 {
		fmt.Fprintf(w, `<d:status>%s</d:status>`, statusLineFor(r.Status))
	}

	sorted := make([]Propstat, len(r.Propstat))
	copy(sorted, r.Propstat)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Status < sorted[j].Status })

	for _, ps := range sorted {
		if err := writePropstat(w, ps, statusLineFor); err != nil {
			return err
		}
	}

	if r.Error != nil {
		fmt.Fprintf(w, `<d:error><s:exception>%s</s:exception><s:message>%s</s:message></d:error>`,
			EscapeText(r.Error.Exception), EscapeText(r.Error.Message))
	}

	_, err := io.WriteString(w, `</d:response>`)
	return err
}

func writePropstat(w io.Writer, ps Propstat, statusLineFor func(code int) string) error {
	if _, err := io.WriteString(w, `<d:propstat><d:prop>`); err != nil {
		return err
	}
	for _, p := range ps.Props {
		ns, local := davnet.SplitClark(p.Name)
		if ns == "" || ns == davnet.NsDav {
			if p.Value == "" {
				fmt.Fprintf(w, `<d:%s/>`, local)
			} else {
				fmt.Fprintf(w, `<d:%s>%s</d:%s>`, local, p.Value, local)
			}
			continue
		}
		prefix := "x0"
		if p.Value == "" {
			fmt.Fprintf(w, `<%s:%s xmlns:%s=%q/>`, prefix, local, prefix, ns)
		} else {
			fmt.Fprintf(w, `<%s:%s xmlns:%s=%q>%s</%s:%s>`, prefix, local, prefix, ns, p.Value, prefix, local)
		}
	}
	if _, err := io.WriteString(w, `</d:prop>`); err != nil {
		return err
	}
	fmt.Fprintf(w, `<d:status>%s</d:status>`, statusLineFor(ps.Status))
	_, err := io.WriteString(w, `</d:propstat>`)
	return err
}

// WriteError renders a standalone (non-multistatus) DAV:error body for a
// request that failed outside any multi-status response.
func WriteError(w io.Writer, exception, message string) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, `<d:error xmlns:d="DAV:" xmlns:s="http://sabredav.org/ns"><s:exception>%s</s:exception><s:message>%s</s:message></d:error>`,
		EscapeText(exception), EscapeText(message))
	return err
}
