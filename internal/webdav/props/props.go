// Package props is the built-in property registry consulted by
// getPropertiesForPath (spec §4.8) for every requested name a node's own
// IProperties values do not already supply; plugins see the combined result
// afterwards, through afterGetProperties. It knows the DAV: live properties
// it can compute from a node's IFile, ICollection and IQuota capabilities:
// getlastmodified, getcontentlength, resourcetype, quota-*, getetag,
// getcontenttype, supported-report-set.
package props

import (
	"context"
	"strconv"

	"github.com/opencloud-eu/davcore/internal/webdav/net"
	"github.com/opencloud-eu/davcore/internal/webdav/tree"
)

// Clark names of the live properties this package resolves.
const (
	GetLastModified     = "{DAV:}getlastmodified"
	GetContentLength    = "{DAV:}getcontentlength"
	ResourceType        = "{DAV:}resourcetype"
	QuotaUsedBytes      = "{DAV:}quota-used-bytes"
	QuotaAvailableBytes = "{DAV:}quota-available-bytes"
	GetETag             = "{DAV:}getetag"
	GetContentType      = "{DAV:}getcontenttype"
	SupportedReportSet  = "{DAV:}supported-report-set"
)

// DefaultNames is the property set requested by an allprop PROPFIND (spec
// §4.8 step 3), before being unioned with whatever names a node's own
// IProperties implementation already supplied.
var DefaultNames = []string{
	GetLastModified,
	GetContentLength,
	ResourceType,
	QuotaUsedBytes,
	QuotaAvailableBytes,
	GetETag,
	GetContentType,
}

// protected lists the live properties a PROPPATCH request may never set or
// remove; spec §4.9 requires these to fail with 403.
var protected = map[string]bool{
	ResourceType:        true,
	GetETag:             true,
	GetLastModified:     true,
	GetContentLength:    true,
	QuotaUsedBytes:      true,
	QuotaAvailableBytes: true,
	SupportedReportSet:  true,
}

// IsProtected reports whether name is a built-in property PROPPATCH may
// never mutate.
func IsProtected(name string) bool {
	return protected[name]
}

// Resolve attempts to answer name against node's declared capabilities. ok
// is false when name is not one of this package's live properties or the
// node lacks the capability needed to answer it (e.g. getetag on a
// collection) — the caller then buckets the name into 404.
func Resolve(ctx context.Context, node tree.Node, name string) (value string, ok bool, err error) {
	switch name {
	case GetLastModified:
		f, isFile := node.(tree.IFile)
		if !isFile {
			return "", false, nil
		}
		t, err := f.LastModified(ctx)
		if err != nil {
			return "", true, err
		}
		return t.Format(net.RFC1123), true, nil

	case GetContentLength:
		f, isFile := node.(tree.IFile)
		if !isFile {
			return "", false, nil
		}
		size, err := f.Size(ctx)
		if err != nil {
			return "", true, err
		}
		return strconv.FormatInt(size, 10), true, nil

	case ResourceType:
		return ResourceTypeValue(node), true, nil

	case QuotaUsedBytes:
		q, isQuota := node.(tree.IQuota)
		if !isQuota {
			return "", false, nil
		}
		used, err := q.QuotaUsedBytes(ctx)
		if err != nil {
			return "", true, err
		}
		return strconv.FormatInt(used, 10), true, nil

	case QuotaAvailableBytes:
		q, isQuota := node.(tree.IQuota)
		if !isQuota {
			return "", false, nil
		}
		avail, err := q.QuotaAvailableBytes(ctx)
		if err != nil {
			return "", true, err
		}
		return strconv.FormatInt(avail, 10), true, nil

	case GetETag:
		f, isFile := node.(tree.IFile)
		if !isFile {
			return "", false, nil
		}
		etag, err := f.ETag(ctx)
		if err != nil {
			return "", true, err
		}
		return etag, true, nil

	case GetContentType:
		f, isFile := node.(tree.IFile)
		if !isFile {
			return "", false, nil
		}
		ct, err := f.ContentType(ctx)
		if err != nil {
			return "", true, err
		}
		return ct, true, nil

	case SupportedReportSet:
		// The core implements no reports itself (spec §4.3 REPORT); the
		// default answer is an empty set. Plugins that register reports are
		// expected to contribute their own value via IProperties.
		return "", true, nil

	default:
		return "", false, nil
	}
}

// ResourceTypeValue renders the DAV:resourcetype value for node: a single
// DAV:collection child if node implements ICollection, empty otherwise.
func ResourceTypeValue(node tree.Node) string {
	if _, ok := node.(tree.ICollection); ok {
		return `<d:collection/>`
	}
	return ""
}

// IsCollection reports whether a resolved resourcetype value denotes a
// collection — used to decide whether a response href needs a trailing
// slash (spec §4.8 step 7).
func IsCollection(resourceTypeValue string) bool {
	return resourceTypeValue != ""
}
