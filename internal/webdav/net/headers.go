package net

// Request headers consumed by the dispatcher and method handlers.
const (
	HeaderDepth             = "Depth"
	HeaderDestination       = "Destination"
	HeaderOverwrite         = "Overwrite"
	HeaderRange             = "Range"
	HeaderIfRange           = "If-Range"
	HeaderIfMatch           = "If-Match"
	HeaderIfNoneMatch       = "If-None-Match"
	HeaderIfModifiedSince   = "If-Modified-Since"
	HeaderIfUnmodifiedSince = "If-Unmodified-Since"
)

// Response headers emitted by the dispatcher and method handlers.
const (
	HeaderAllow         = "Allow"
	HeaderDav           = "DAV"
	HeaderMSAuthorVia   = "MS-Author-Via"
	HeaderAcceptRanges  = "Accept-Ranges"
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderContentRange  = "Content-Range"
	HeaderLastModified  = "Last-Modified"
	HeaderETag          = "ETag"
	HeaderLockToken     = "Lock-Token"
	HeaderRetryAfter    = "Retry-After"
)

// RFC1123 is the RFC 1123 time layout used for Last-Modified, formatted
// with a literal "GMT" suffix. time.RFC1123 would instead render the zone
// abbreviation of the local *time.Location, which for UTC prints "UTC"
// rather than the "GMT" WebDAV clients expect.
const RFC1123 = "Mon, 02 Jan 2006 15:04:05 GMT"
