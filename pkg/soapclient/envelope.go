package soapclient

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"html"
	"regexp"
	"strings"
)

const (
	envelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	serviceNS  = "http://example.com/user"

	// UnknownResponse is the message reported when a reply has no message tag.
	UnknownResponse = "Unknown response"
)

// ErrNoData is returned by Response.Decode when the reply carried no payload.
var ErrNoData = errors.New("soapclient: response has no data")

// Param is one child element of the operation element. Order is preserved.
type Param struct {
	Name  string
	Value string
}

// BuildEnvelope wraps operation and params into a SOAP 1.1 request. Values
// are XML-escaped; names are written as given.
func BuildEnvelope(operation string, params []Param) string {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<soap:Envelope xmlns:soap="` + envelopeNS + `" xmlns:tns="` + serviceNS + `">`)
	b.WriteString("<soap:Body>")
	b.WriteString("<tns:" + operation + ">")
	for _, p := range params {
		b.WriteString("<" + p.Name + ">")
		_ = xml.EscapeText(&b, []byte(p.Value))
		b.WriteString("</" + p.Name + ">")
	}
	b.WriteString("</tns:" + operation + ">")
	b.WriteString("</soap:Body>")
	b.WriteString("</soap:Envelope>")
	return b.String()
}

// Response is the parsed three-field reply. Data is nil when the reply had
// no data element; otherwise it holds the entity-decoded JSON text.
type Response struct {
	Success bool    `json:"success"`
	Data    *string `json:"data"`
	Message string  `json:"message"`
}

// HasData reports whether a non-empty payload is present.
func (r Response) HasData() bool {
	return r.Data != nil && *r.Data != ""
}

// Decode unmarshals the JSON payload into v.
func (r Response) Decode(v any) error {
	if !r.HasData() {
		return ErrNoData
	}
	return json.Unmarshal([]byte(*r.Data), v)
}

var (
	successTag = tagPattern("success")
	dataTag    = tagPattern("data")
	messageTag = tagPattern("message")
)

// tagPattern matches the first <tag>…</tag> pair, each side allowing an
// optional namespace prefix. Content does not span lines.
func tagPattern(tag string) *regexp.Regexp {
	prefix := `(?:[A-Za-z_][\w.\-]*:)?`
	return regexp.MustCompile(`<` + prefix + tag + `>(.*?)</` + prefix + tag + `>`)
}

// ParseResponse scrapes success, data and message out of raw. It is not a
// full XML parse: absent tags fall back to false, nil and UnknownResponse.
func ParseResponse(raw string) Response {
	resp := Response{Message: UnknownResponse}
	if m := successTag.FindStringSubmatch(raw); m != nil {
		resp.Success = m[1] == "true"
	}
	if m := dataTag.FindStringSubmatch(raw); m != nil {
		decoded := html.UnescapeString(m[1])
		resp.Data = &decoded
	}
	if m := messageTag.FindStringSubmatch(raw); m != nil {
		resp.Message = m[1]
	}
	return resp
}
