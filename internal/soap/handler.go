package soap

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"encoding/xml"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-user-soap/internal/user"
	"github.com/ovaphlow/pitchfork/service-user-soap/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-user-soap/pkg/utilities"
)

//go:embed user.wsdl
var defaultWSDL string

const (
	defaultLocation  = "http://localhost:9720/soap"
	maxEnvelopeBytes = 1 << 20
	msgCompleted     = "Operation completed"
)

// Observer receives one notification per request, faults included. Faults
// raised before the operation is known are labelled "unknown".
type Observer interface {
	ObserveOperation(operation string, success bool)
}

// Config tunes the adapter. Both fields are optional.
type Config struct {
	// PublicURL is the externally reachable base URL written into the WSDL.
	PublicURL string
	Observer  Observer
}

// Handler serves the UserService/UserPort SOAP endpoint and its WSDL.
type Handler struct {
	store    user.Store
	logger   *zap.SugaredLogger
	observer Observer
	wsdl     []byte
}

func NewHandler(store user.Store, logger *zap.SugaredLogger, cfg Config) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	wsdl := defaultWSDL
	if base := strings.TrimRight(cfg.PublicURL, "/"); base != "" {
		wsdl = strings.Replace(wsdl, defaultLocation, base+"/soap", 1)
	}
	return &Handler{store: store, logger: logger, observer: cfg.Observer, wsdl: []byte(wsdl)}
}

type operation struct {
	name   string
	list   bool
	invoke func(ctx context.Context, store user.Store, c *call) (user.Result, error)
}

var operations = map[string]operation{
	"getAllUsers": {name: "getAllUsers", list: true, invoke: func(ctx context.Context, store user.Store, _ *call) (user.Result, error) {
		return store.List(ctx), nil
	}},
	"getUserById": {name: "getUserById", invoke: func(ctx context.Context, store user.Store, c *call) (user.Result, error) {
		req, err := decodeParams[GetUserByIDRequest](c)
		if err != nil {
			return user.Result{}, err
		}
		id, valid := parseID(req.ID)
		if !valid {
			return user.NotFound(), nil
		}
		return store.Get(ctx, id), nil
	}},
	"createUser": {name: "createUser", invoke: func(ctx context.Context, store user.Store, c *call) (user.Result, error) {
		req, err := decodeParams[CreateUserRequest](c)
		if err != nil {
			return user.Result{}, err
		}
		return store.Create(ctx, entity.Fields{Name: req.Name, Email: req.Email, Phone: req.Phone}), nil
	}},
	"updateUser": {name: "updateUser", invoke: func(ctx context.Context, store user.Store, c *call) (user.Result, error) {
		req, err := decodeParams[UpdateUserRequest](c)
		if err != nil {
			return user.Result{}, err
		}
		id, valid := parseID(req.ID)
		if !valid {
			return user.NotFound(), nil
		}
		return store.Update(ctx, id, entity.Fields{Name: req.Name, Email: req.Email, Phone: req.Phone}), nil
	}},
	"deleteUser": {name: "deleteUser", invoke: func(ctx context.Context, store user.Store, c *call) (user.Result, error) {
		req, err := decodeParams[DeleteUserRequest](c)
		if err != nil {
			return user.Result{}, err
		}
		id, valid := parseID(req.ID)
		if !valid {
			return user.NotFound(), nil
		}
		return store.Delete(ctx, id), nil
	}},
}

// ServeHTTP handles POST envelopes; GET with ?wsdl returns the descriptor.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && r.URL.Query().Has("wsdl") {
		h.ServeWSDL(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqID := utilities.RequestID(r.Context())

	c, err := readCall(http.MaxBytesReader(w, r.Body, maxEnvelopeBytes))
	if err != nil {
		h.logger.Debugw("malformed soap envelope", "err", err, "request_id", reqID)
		h.observe(unknownOperation, false)
		h.writeFault(w, "soap:Client", "Malformed SOAP envelope")
		return
	}
	op, known := lookupOperation(c.operation, r.Header.Get("SOAPAction"))
	if !known {
		h.logger.Debugw("unknown soap operation", "element", c.operation, "soap_action", r.Header.Get("SOAPAction"), "request_id", reqID)
		h.observe(unknownOperation, false)
		h.writeFault(w, "soap:Client", "Unknown operation")
		return
	}
	h.logger.Debugw("soap request received", "operation", op.name, "request_id", reqID)

	res, err := h.dispatch(r.Context(), op, c)
	if err != nil {
		h.logger.Debugw("soap parameters rejected", "operation", op.name, "err", err, "request_id", reqID)
		h.observe(op.name, false)
		h.writeFault(w, "soap:Client", "Malformed SOAP envelope")
		return
	}
	resp, err := encodeResult(op, res)
	if err != nil {
		h.logger.Errorw("encode soap result failed", "operation", op.name, "err", err, "request_id", reqID)
		res = user.Internal()
		resp = internalResponse(op)
	}
	h.observe(op.name, res.Success)
	h.writeEnvelope(w, http.StatusOK, responseBody{Response: &resp})
}

// unknownOperation labels faults raised before an operation is resolved.
const unknownOperation = "unknown"

func (h *Handler) observe(op string, success bool) {
	if h.observer != nil {
		h.observer.ObserveOperation(op, success)
	}
}

// ServeWSDL writes the static service descriptor.
func (h *Handler) ServeWSDL(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(h.wsdl)
}

// dispatch runs the operation and turns a panic into the generic internal
// result so nothing escapes to the transport.
func (h *Handler) dispatch(ctx context.Context, op operation, c *call) (res user.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			h.logger.Errorw("soap operation panicked", "operation", op.name, "panic", p, "request_id", utilities.RequestID(ctx))
			res, err = user.Internal(), nil
		}
	}()
	return op.invoke(ctx, h.store, c)
}

func encodeResult(op operation, res user.Result) (operationResponse, error) {
	out := operationResponse{
		XMLName: responseName(op),
		Success: strconv.FormatBool(res.Success),
		Message: res.Message,
	}
	if out.Message == "" {
		out.Message = msgCompleted
	}
	if res.Data != nil {
		b, err := json.Marshal(res.Data)
		if err != nil {
			return out, err
		}
		if s := string(b); s != "null" {
			out.Data = &s
		}
	}
	if out.Data == nil && op.list {
		empty := "[]"
		out.Data = &empty
	}
	return out, nil
}

func internalResponse(op operation) operationResponse {
	out := operationResponse{XMLName: responseName(op), Success: "false", Message: user.MsgInternal}
	if op.list {
		empty := "[]"
		out.Data = &empty
	}
	return out
}

func responseName(op operation) xml.Name {
	return xml.Name{Local: "tns:" + op.name + "Response"}
}

func (h *Handler) writeFault(w http.ResponseWriter, code, msg string) {
	h.writeEnvelope(w, http.StatusInternalServerError, responseBody{Fault: &fault{Code: code, String: msg}})
}

func (h *Handler) writeEnvelope(w http.ResponseWriter, status int, body responseBody) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(newEnvelope(body)); err != nil {
		h.logger.Errorw("marshal soap envelope failed", "err", err)
		http.Error(w, user.MsgInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// lookupOperation prefers the body element name and falls back to the
// SOAPAction header ("createUser", "\"createUser\"" or ".../createUser").
func lookupOperation(element, soapAction string) (operation, bool) {
	if op, found := operations[element]; found {
		return op, true
	}
	action := strings.Trim(strings.TrimSpace(soapAction), `"`)
	if i := strings.LastIndexAny(action, "/#"); i >= 0 {
		action = action[i+1:]
	}
	op, found := operations[action]
	return op, found
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	return id, err == nil
}
