package httpmsg

import "strings"

// mimeTable is the authoritative extension -> Content-Type table. An
// unknown extension has no entry and the caller must respond 415.
var mimeTable = map[string]string{
	".html":  "text/html",
	".htm":   "text/html",
	".css":   "text/css",
	".js":    "text/javascript",
	".txt":   "text/plain",
	".json":  "application/json",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".woff2": "font/woff2",
}

const (
	MediaFormURLEncoded = "application/x-www-form-urlencoded"
	MediaTextHTML       = "text/html"
)

// MIMEForPath extracts the path's last-dot extension and looks it up
// against mimeTable. ok is false for an unknown or missing extension.
func MIMEForPath(path string) (mediaType string, ok bool) {
	dot := strings.LastIndexByte(path, '.')
	if dot == -1 {
		return "", false
	}
	ext := strings.ToLower(path[dot:])
	mediaType, ok = mimeTable[ext]
	return mediaType, ok
}
