package endpoint

import (
	"context"
	"fmt"
	"net/http"

	"github.com/beevik/etree"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Message is the inbound message a handler sees.
type Message struct {
	Operation string
	Action    string
	Version   string
	Header    http.Header
	Envelope  *etree.Document
	Payload   *etree.Element
}

// Handler processes messages before they reach the invoker. Handlers run in
// chain order; the first error stops processing and is returned to the caller.
type Handler interface {
	HandleMessage(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, msg *Message) error

// HandleMessage calls f.
func (f HandlerFunc) HandleMessage(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// GuardHandler admits a message only when its expression evaluates to true.
//
// The expression sees operation, action and version as strings and may call
// header(name) and xpath(path):
//
//	operation != "factorial" || int(xpath("//number")) <= 12
type GuardHandler struct {
	name       string
	expression string
	program    *vm.Program
}

// guardEnv returns the expression environment with placeholders when msg is nil.
func guardEnv(msg *Message) map[string]any {
	env := map[string]any{
		"operation": "",
		"action":    "",
		"version":   "",
		"header":    func(string) string { return "" },
		"xpath":     func(string) string { return "" },
	}
	if msg == nil {
		return env
	}
	env["operation"] = msg.Operation
	env["action"] = msg.Action
	env["version"] = msg.Version
	env["header"] = func(name string) string {
		if msg.Header == nil {
			return ""
		}
		return msg.Header.Get(name)
	}
	env["xpath"] = func(path string) string {
		return ExtractXPath(msg.Envelope, path)
	}
	return env
}

// NewGuardHandler compiles expression into a GuardHandler.
func NewGuardHandler(name, expression string) (*GuardHandler, error) {
	program, err := expr.Compile(expression, expr.Env(guardEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, &InvalidConfigurationError{Field: "handler " + name, Reason: "invalid guard expression", Err: err}
	}
	return &GuardHandler{name: name, expression: expression, program: program}, nil
}

// Name returns the handler name.
func (g *GuardHandler) Name() string {
	return g.name
}

// HandleMessage evaluates the guard and rejects the message with a client fault when it is false.
func (g *GuardHandler) HandleMessage(_ context.Context, msg *Message) error {
	out, err := expr.Run(g.program, guardEnv(msg))
	if err != nil {
		return &Fault{Code: FaultServer, Message: fmt.Sprintf("handler %s failed", g.name), Detail: err.Error()}
	}
	if ok, _ := out.(bool); !ok {
		return &Fault{Code: FaultClient, Message: fmt.Sprintf("rejected by handler %s", g.name)}
	}
	return nil
}
