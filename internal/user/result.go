package user

import "github.com/ovaphlow/pitchfork/service-user-soap/internal/user/entity"

// Messages shared by both protocol adapters.
const (
	MsgNotFound       = "User not found"
	MsgDuplicateEmail = "Email already exists"
	MsgFieldsRequired = "Name and email are required"
	MsgInternal       = "Internal server error"
)

// Result is the uniform outcome of every store operation. Data is one of
// *entity.User, []entity.User, entity.DeleteReceipt or nil.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func ok(data any, msg string) Result { return Result{Success: true, Data: data, Message: msg} }

func fail(msg string) Result { return Result{Success: false, Message: msg} }

// NotFound is the result for an id that matches no user. Adapters use it
// directly when an id cannot be parsed.
func NotFound() Result { return fail(MsgNotFound) }

// Internal is the generic result for faults outside the store.
func Internal() Result { return fail(MsgInternal) }

// Users returns the list payload of a successful List result.
func (r Result) Users() ([]entity.User, bool) {
	u, isList := r.Data.([]entity.User)
	return u, isList
}

// User returns the single-entity payload of a Get, Create or Update result.
func (r Result) User() (*entity.User, bool) {
	u, isUser := r.Data.(*entity.User)
	return u, isUser && u != nil
}
