package builders

import (
	"strings"
	"testing"

	"github.com/nnickles/origind/internal/httpmsg"
)

func newPostRequest(target, contentType, body string) *httpmsg.Request {
	req := &httpmsg.Request{Method: httpmsg.MethodPOST, Target: target, Version: httpmsg.HTTPVersion, Header: httpmsg.NewHeader()}
	req.Header.Set("Content-Type", contentType)
	req.Body = []byte(body)
	return req
}

func TestPostBuilderEchoesFormFields(t *testing.T) {
	b := NewPostBuilder()
	req := newPostRequest("/submit", httpmsg.MediaFormURLEncoded, "name=Ada&role=engineer")

	result := b.Build(req)
	if !result.OK() {
		t.Fatalf("expected success, got code %v", result.Code)
	}
	body := string(result.Resp.Body)
	if !strings.Contains(body, "name: Ada\r\n") || !strings.Contains(body, "role: engineer\r\n") {
		t.Fatalf("unexpected body: %q", body)
	}
	if !strings.HasSuffix(body, "POST Successful!") {
		t.Fatalf("missing trailer: %q", body)
	}
	if conn, _ := result.Resp.Header.Get("Connection"); conn != "close" {
		t.Fatal("POST response must set Connection: close")
	}
}

func TestPostBuilderDecodesPercentEscapesNotPlus(t *testing.T) {
	b := NewPostBuilder()
	req := newPostRequest("/submit", httpmsg.MediaFormURLEncoded, "q=a%2Bb+c")

	result := b.Build(req)
	if !result.OK() {
		t.Fatalf("expected success, got code %v", result.Code)
	}
	if !strings.Contains(string(result.Resp.Body), "q: a+b+c\r\n") {
		t.Fatalf("unexpected body: %q", result.Resp.Body)
	}
}

func TestPostBuilderIgnoresContentTypeParameters(t *testing.T) {
	b := NewPostBuilder()
	req := newPostRequest("/submit", httpmsg.MediaFormURLEncoded+"; charset=UTF-8", "a=1")

	result := b.Build(req)
	if !result.OK() {
		t.Fatalf("expected success, got code %v", result.Code)
	}
}

func TestPostBuilderWrongContentTypeIsUnsupportedMedia(t *testing.T) {
	b := NewPostBuilder()
	req := newPostRequest("/submit", "application/json", "{}")

	result := b.Build(req)
	if result.OK() || result.Code != httpmsg.StatusUnsupportedMedia {
		t.Fatalf("got (ok=%v, code=%v), want StatusUnsupportedMedia", result.OK(), result.Code)
	}
}

func TestPostBuilderWrongTargetIsNotFound(t *testing.T) {
	b := NewPostBuilder()
	req := newPostRequest("/other", httpmsg.MediaFormURLEncoded, "a=1")

	result := b.Build(req)
	if result.OK() || result.Code != httpmsg.StatusNotFound {
		t.Fatalf("got (ok=%v, code=%v), want StatusNotFound", result.OK(), result.Code)
	}
}
