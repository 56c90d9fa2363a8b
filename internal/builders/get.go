package builders

import (
	"os"
	"strconv"

	"github.com/nnickles/origind/internal/httpmsg"
	"github.com/nnickles/origind/internal/resolver"
)

// StaticThreshold is the file-size cutoff above which a GET response is
// served via sendfile instead of being read fully into memory: 128 KiB.
const StaticThreshold = 128 * 1024

// GetBuilder resolves a URI under a document root and builds a 200
// response from the resulting file.
type GetBuilder struct {
	root      string
	indexFile string
}

// NewGetBuilder returns a GetBuilder rooted at root, serving indexFile
// for "/".
func NewGetBuilder(root, indexFile string) *GetBuilder {
	return &GetBuilder{root: root, indexFile: indexFile}
}

func (b *GetBuilder) Build(req *httpmsg.Request) Result {
	path, code, ok := resolver.Resolve(b.root, req.Target, b.indexFile)
	if !ok {
		return Failure(code)
	}

	mediaType, known := httpmsg.MIMEForPath(path)
	if !known {
		return Failure(httpmsg.StatusUnsupportedMedia)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Failure(httpmsg.StatusNotFound)
	}

	resp := httpmsg.NewResponse(httpmsg.StatusOK)
	resp.Header.Replace("Content-Type", mediaType)

	if info.Size() > StaticThreshold {
		resp.Static = true
		resp.FilePath = path
		resp.Header.Replace("Content-Length", strconv.FormatInt(info.Size(), 10))
		resp.Header.Replace("File-Path", path)
		return Success(resp)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Failure(httpmsg.StatusInternalServerError)
	}
	resp.Body = content
	resp.Header.Replace("Content-Length", strconv.Itoa(len(content)))
	return Success(resp)
}
