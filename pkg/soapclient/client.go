package soapclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultURL is the SOAP endpoint of a locally running service.
const DefaultURL = "http://localhost:9720/soap"

// User mirrors the JSON payload the service puts in the data field.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserInput carries the writable fields of createUser and updateUser.
type UserInput struct {
	Name  string
	Email string
	Phone string
}

func (in UserInput) params() []Param {
	return []Param{{Name: "name", Value: in.Name}, {Name: "email", Value: in.Email}, {Name: "phone", Value: in.Phone}}
}

// Client invokes the UserService SOAP operations over HTTP. Failures never
// surface as Go errors: they come back as unsuccessful Responses.
type Client struct {
	url  string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{url: url, http: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call posts one operation and parses the reply. Non-2xx statuses and
// transport errors short-circuit to Success=false with the cause in Message.
func (c *Client) Call(ctx context.Context, operation string, params []Param) Response {
	body := BuildEnvelope(operation, params)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(body))
	if err != nil {
		return transportFault(err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", operation)
	req.Header.Set("Accept", "text/xml, application/soap+xml, application/xml")
	req.Header.Set("Cache-Control", "no-cache")

	res, err := c.http.Do(req)
	if err != nil {
		return transportFault(err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return transportFault(fmt.Errorf("HTTP error! status: %d", res.StatusCode))
	}
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return transportFault(err)
	}
	return ParseResponse(string(raw))
}

func (c *Client) GetAllUsers(ctx context.Context) Response {
	return c.Call(ctx, "getAllUsers", nil)
}

func (c *Client) GetUserByID(ctx context.Context, id int64) Response {
	return c.Call(ctx, "getUserById", []Param{idParam(id)})
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) Response {
	return c.Call(ctx, "createUser", in.params())
}

func (c *Client) UpdateUser(ctx context.Context, id int64, in UserInput) Response {
	return c.Call(ctx, "updateUser", append([]Param{idParam(id)}, in.params()...))
}

func (c *Client) DeleteUser(ctx context.Context, id int64) Response {
	return c.Call(ctx, "deleteUser", []Param{idParam(id)})
}

func idParam(id int64) Param {
	return Param{Name: "id", Value: strconv.FormatInt(id, 10)}
}

func transportFault(err error) Response {
	return Response{Success: false, Message: fmt.Sprintf("Error: %v", err)}
}
