package soap

import (
	"encoding/xml"
	"errors"
	"io"
)

const (
	EnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	ServiceNS  = "http://example.com/user"
)

var errMalformed = errors.New("soap: malformed envelope")

// Per-operation request parameters. Element names match regardless of
// namespace prefix; absent elements decode to "".
type (
	GetUserByIDRequest struct {
		ID string `xml:"id"`
	}
	CreateUserRequest struct {
		Name  string `xml:"name"`
		Email string `xml:"email"`
		Phone string `xml:"phone"`
	}
	UpdateUserRequest struct {
		ID    string `xml:"id"`
		Name  string `xml:"name"`
		Email string `xml:"email"`
		Phone string `xml:"phone"`
	}
	DeleteUserRequest struct {
		ID string `xml:"id"`
	}
)

type responseEnvelope struct {
	XMLName xml.Name     `xml:"soap:Envelope"`
	SoapNS  string       `xml:"xmlns:soap,attr"`
	TnsNS   string       `xml:"xmlns:tns,attr"`
	Body    responseBody `xml:"soap:Body"`
}

type responseBody struct {
	Response *operationResponse
	Fault    *fault
}

// operationResponse is the fixed three-field reply. XMLName is set per
// operation to tns:<operation>Response. A nil Data omits the element.
type operationResponse struct {
	XMLName xml.Name
	Success string  `xml:"tns:success"`
	Data    *string `xml:"tns:data,omitempty"`
	Message string  `xml:"tns:message"`
}

type fault struct {
	XMLName xml.Name `xml:"soap:Fault"`
	Code    string   `xml:"faultcode"`
	String  string   `xml:"faultstring"`
}

func newEnvelope(body responseBody) responseEnvelope {
	return responseEnvelope{SoapNS: EnvelopeNS, TnsNS: ServiceNS, Body: body}
}

// call is an inbound invocation positioned at the operation element. start is
// nil when Body carried no element.
type call struct {
	operation string
	decoder   *xml.Decoder
	start     *xml.StartElement
}

// readCall walks Envelope/Body up to the first element inside Body. Header
// blocks are skipped unread.
func readCall(r io.Reader) (*call, error) {
	d := xml.NewDecoder(r)
	var sawEnvelope, inBody bool
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			if !sawEnvelope {
				return nil, errMalformed
			}
			return &call{decoder: d}, nil
		}
		if err != nil {
			return nil, errors.Join(errMalformed, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case !sawEnvelope:
				if t.Name.Local != "Envelope" {
					return nil, errMalformed
				}
				sawEnvelope = true
			case inBody:
				start := t.Copy()
				return &call{operation: t.Name.Local, decoder: d, start: &start}, nil
			case t.Name.Local == "Body":
				inBody = true
			default:
				if err := d.Skip(); err != nil {
					return nil, errors.Join(errMalformed, err)
				}
			}
		case xml.EndElement:
			if inBody && t.Name.Local == "Body" {
				return &call{decoder: d}, nil
			}
		}
	}
}

// decodeParams reads the operation element into T. A call without an
// element yields the zero value.
func decodeParams[T any](c *call) (T, error) {
	var req T
	if c.start == nil {
		return req, nil
	}
	if err := c.decoder.DecodeElement(&req, c.start); err != nil {
		return req, errors.Join(errMalformed, err)
	}
	return req, nil
}
