package builders

import (
	"strconv"
	"strings"

	"github.com/nnickles/origind/internal/httpmsg"
)

// PostBuilder handles POST /submit form echoes.
type PostBuilder struct{}

// NewPostBuilder returns a ready-to-use PostBuilder.
func NewPostBuilder() *PostBuilder { return &PostBuilder{} }

func (b *PostBuilder) Build(req *httpmsg.Request) Result {
	contentType, _ := req.Header.Get("Content-Type")
	if semi := strings.IndexByte(contentType, ';'); semi != -1 {
		contentType = contentType[:semi]
	}
	if contentType != httpmsg.MediaFormURLEncoded {
		return Failure(httpmsg.StatusUnsupportedMedia)
	}
	if req.Target != "/submit" {
		return Failure(httpmsg.StatusNotFound)
	}

	pairs := parseForm(string(req.Body))

	var body strings.Builder
	for _, p := range pairs {
		body.WriteString(p.key)
		body.WriteString(": ")
		body.WriteString(p.value)
		body.WriteString("\r\n")
	}
	body.WriteString("POST Successful!")

	resp := httpmsg.NewResponse(httpmsg.StatusOK)
	resp.Header.Replace("Content-Type", httpmsg.MediaTextHTML)
	resp.Header.Replace("Content-Length", strconv.Itoa(body.Len()))
	resp.Header.Replace("Connection", "close")
	resp.Body = []byte(body.String())
	return Success(resp)
}

type formPair struct{ key, value string }

// parseForm splits body on '&' into key=value pairs, percent-decoding
// both sides. A pair with no '=' is treated as an empty value.
func parseForm(body string) []formPair {
	if body == "" {
		return nil
	}
	rawPairs := strings.Split(body, "&")
	pairs := make([]formPair, 0, len(rawPairs))
	for _, raw := range rawPairs {
		eq := strings.IndexByte(raw, '=')
		var key, value string
		if eq == -1 {
			key = httpmsg.PercentDecode(raw)
		} else {
			key = httpmsg.PercentDecode(raw[:eq])
			value = httpmsg.PercentDecode(raw[eq+1:])
		}
		pairs = append(pairs, formPair{key: key, value: value})
	}
	return pairs
}
