package net

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Namespaces used throughout property and error serialization.
const (
	NsDav = "DAV:"
)

// replaceAllStringSubmatchFunc is ported from
// https://elliotchance.medium.com/go-replace-string-with-regular-expression-callback-f89948bad0bb
func replaceAllStringSubmatchFunc(re *regexp.Regexp, str string, repl func([]string) string) string {
	result := ""
	lastIndex := 0
	for _, v := range re.FindAllSubmatchIndex([]byte(str), -1) {
		groups := []string{}
		for i := 0; i < len(v); i += 2 {
			groups = append(groups, str[v[i]:v[i+1]])
		}
		result += str[lastIndex:v[0]] + repl(groups)
		lastIndex = v[1]
	}
	return result + str[lastIndex:]
}

var hrefre = regexp.MustCompile(`([^A-Za-z0-9_\-.~()/:@!$])`)

// EncodePath percent-encodes the path portion of an href for use in a
// multi-status response. Slashes are treated as path separators and left
// untouched.
func EncodePath(p string) string {
	return replaceAllStringSubmatchFunc(hrefre, p, func(groups []string) string {
		b := groups[1]
		var sb strings.Builder
		for i := 0; i < len(b); i++ {
			sb.WriteString(fmt.Sprintf("%%%x", b[i]))
		}
		return sb.String()
	})
}

// CalculateURI derives the server-relative path for a raw request URI (as
// seen on the wire, e.g. Request-URI or a client-supplied Destination
// header) against baseURI. baseURI always ends with "/".
//
// It strips scheme and authority if present, collapses doubled slashes,
// percent-decodes, removes the base prefix, and trims the leading and
// trailing slash of the remainder. A raw value that does not fall under
// baseURI yields ErrOutsideBase (Forbidden, per spec).
//
// A raw value with no scheme/authority is treated as already
// request-relative — only the base prefix stripping and trimming applies.
// This matches a directly constructed path (as opposed to one lifted from
// Request-URI) still round-tripping through CalculateURI.
func CalculateURI(baseURI, raw string) (string, error) {
	if !strings.HasSuffix(baseURI, "/") {
		baseURI += "/"
	}

	p := raw
	if u, err := url.Parse(raw); err == nil && (u.Scheme != "" || u.Host != "") {
		p = u.Path
	}

	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}

	decoded, err := url.PathUnescape(p)
	if err != nil {
		return "", fmt.Errorf("calculateUri: invalid percent-encoding: %w", err)
	}
	p = decoded

	if !strings.HasPrefix(p, baseURI) {
		// A bare base URI without its trailing slash is accepted and maps
		// to the empty path.
		if p+"/" == baseURI || p == strings.TrimSuffix(baseURI, "/") {
			return "", nil
		}
		return "", ErrOutsideBase
	}

	rel := strings.TrimPrefix(p, baseURI)
	rel = strings.Trim(rel, "/")
	return rel, nil
}

// ErrOutsideBase is returned by CalculateURI when raw does not fall under
// the configured base URI.
var ErrOutsideBase = fmt.Errorf("webdav: request URI outside base URI")

// SplitPath splits a server-relative path into its parent directory and
// final segment, both without leading/trailing slashes. SplitPath("a/b")
// returns ("a", "b"); SplitPath("a") returns ("", "a").
func SplitPath(p string) (parent, name string) {
	p = strings.Trim(p, "/")
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "", p
	}
	return p[:i], p[i+1:]
}

// JoinPath joins a parent path and a name into a server-relative path,
// eliding empty segments.
func JoinPath(parent, name string) string {
	parent = strings.Trim(parent, "/")
	name = strings.Trim(name, "/")
	switch {
	case parent == "" && name == "":
		return ""
	case parent == "":
		return name
	case name == "":
		return parent
	default:
		return parent + "/" + name
	}
}

// Clark converts a namespace/local pair into Clark notation "{ns}local".
func Clark(namespace, local string) string {
	return "{" + namespace + "}" + local
}

var clarkRe = regexp.MustCompile(`^\{([^}]*)\}(.+)$`)

// SplitClark parses a Clark-notation name "{ns}local" back into its
// namespace and local parts. If name does not carry a namespace
// (no leading "{...}"), namespace is returned empty.
func SplitClark(name string) (namespace, local string) {
	m := clarkRe.FindStringSubmatch(name)
	if m == nil {
		return "", name
	}
	return m[1], m[2]
}
