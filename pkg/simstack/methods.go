package simstack

import (
	"fmt"
	"time"

	"github.com/uamon-protocol/uamon-go/pkg/log"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// ArgKind declares the expected type of one method input argument.
type ArgKind uint8

const (
	// ArgAny accepts any value, including null.
	ArgAny ArgKind = iota
	ArgInt
	ArgFloat
	ArgBool
	ArgString
)

// MethodFunc executes a registered method. It runs outside the sim
// lock and may use the Sim API. A returned *ua.StatusError sets the
// method status; any other error maps to BadUnexpectedError.
type MethodFunc func(args []ua.Variant) ([]ua.Variant, error)

type methodKey struct {
	object ua.NodeID
	method ua.NodeID
}

type method struct {
	args []ArgKind
	fn   MethodFunc
}

// RegisterMethod binds a handler to an object/method node pair,
// replacing any previous registration. Input arguments are validated
// against kinds before the handler runs.
func (s *Sim) RegisterMethod(object, methodID ua.NodeID, kinds []ArgKind, fn MethodFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[methodKey{object: object, method: methodID}] = &method{
		args: append([]ArgKind(nil), kinds...),
		fn:   fn,
	}
}

func (s *Sim) callMethod(req *ua.CallMethodRequest) ua.CallMethodResult {
	s.mu.Lock()
	m := s.methods[methodKey{object: req.ObjectID, method: req.MethodID}]
	objectKnown := false
	if m == nil {
		for k := range s.methods {
			if k.object == req.ObjectID {
				objectKnown = true
				break
			}
		}
	}
	s.mu.Unlock()

	if m == nil {
		if objectKnown {
			return ua.CallMethodResult{StatusCode: ua.BadMethodInvalid}
		}
		return ua.CallMethodResult{StatusCode: ua.BadNodeIDUnknown}
	}
	if len(req.InputArguments) < len(m.args) {
		return ua.CallMethodResult{StatusCode: ua.BadArgumentsMissing}
	}
	if len(req.InputArguments) > len(m.args) {
		return ua.CallMethodResult{StatusCode: ua.BadTooManyArguments}
	}
	argResults := make([]ua.StatusCode, len(m.args))
	rejected := false
	for i, kind := range m.args {
		if !kind.accepts(req.InputArguments[i]) {
			argResults[i] = ua.BadTypeMismatch
			rejected = true
		}
	}
	if rejected {
		return ua.CallMethodResult{
			StatusCode:           ua.BadInvalidArgument,
			InputArgumentResults: argResults,
		}
	}

	out, err := s.invokeMethod(req, m)
	if err != nil {
		if code, ok := ua.ErrorCode(err); ok {
			return ua.CallMethodResult{StatusCode: code}
		}
		return ua.CallMethodResult{StatusCode: ua.BadUnexpectedError}
	}
	return ua.CallMethodResult{OutputArguments: out}
}

// invokeMethod runs the handler with panic containment. A handler
// fault must not take the sim down with it.
func (s *Sim) invokeMethod(req *ua.CallMethodRequest, m *method) (out []ua.Variant, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("method handler panic: %v", r)
			s.logger.Log(log.Event{
				Timestamp:    time.Now(),
				ConnectionID: s.id,
				Direction:    log.DirectionIn,
				Layer:        log.LayerStack,
				Category:     log.CategoryError,
				LocalRole:    log.RoleServer,
				Error: &log.ErrorEventData{
					Layer:   log.LayerStack,
					Message: fmt.Sprintf("method handler panic: %v", r),
					Context: fmt.Sprintf("method %s on %s", req.MethodID, req.ObjectID),
				},
			})
		}
	}()
	return m.fn(req.InputArguments)
}

func (k ArgKind) accepts(v ua.Variant) bool {
	switch k {
	case ArgInt:
		_, ok := v.Int()
		return ok
	case ArgFloat:
		_, ok := v.Float()
		return ok
	case ArgBool:
		_, ok := v.Bool()
		return ok
	case ArgString:
		_, ok := v.Str()
		return ok
	default:
		return true
	}
}
