package endpoint

import (
	"context"
	"fmt"
	"sort"

	"github.com/beevik/etree"
)

// Invoker runs an operation of the service implementation.
type Invoker interface {
	Invoke(ctx context.Context, operation string, payload *etree.Element) (*etree.Element, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, operation string, payload *etree.Element) (*etree.Element, error)

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, operation string, payload *etree.Element) (*etree.Element, error) {
	return f(ctx, operation, payload)
}

// TableInvoker dispatches through a fixed operation table.
type TableInvoker struct {
	ops OperationTable
}

// NewTableInvoker copies ops into a new TableInvoker.
func NewTableInvoker(ops OperationTable) *TableInvoker {
	cp := make(OperationTable, len(ops))
	for name, op := range ops {
		cp[name] = op
	}
	return &TableInvoker{ops: cp}
}

// Invoke runs the named operation.
func (t *TableInvoker) Invoke(ctx context.Context, operation string, payload *etree.Element) (*etree.Element, error) {
	op, ok := t.ops[operation]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, operation)
	}
	return op(ctx, payload)
}

// Operations returns the sorted operation names.
func (t *TableInvoker) Operations() []string {
	names := make([]string, 0, len(t.ops))
	for name := range t.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
