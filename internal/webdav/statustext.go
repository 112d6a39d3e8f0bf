package webdav

import "fmt"

// statusText maps a status code to its RFC 4918 reason phrase for the
// multi-status DAV:status line, which must read "HTTP/1.1 CODE TEXT".
var statusText = map[int]string{
	200: "OK",
	201: "Created",
	204: "No Content",
	207: "Multi-Status",
	304: "Not Modified",
	400: "Bad Request",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	409: "Conflict",
	412: "Precondition Failed",
	415: "Unsupported Media Type",
	422: "Unprocessable Entity",
	423: "Locked",
	424: "Failed Dependency",
	500: "Internal Server Error",
	501: "Not Implemented",
	507: "Insufficient Storage",
}

func statusLine(code int) string {
	text, ok := statusText[code]
	if !ok {
		text = "Unknown"
	}
	return fmt.Sprintf("HTTP/1.1 %d %s", code, text)
}
