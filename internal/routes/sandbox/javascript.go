package sandbox

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/webforge-labs/webforge-backend/internal/routes/domain"
)

// compileJS evaluates source in a fresh goja runtime holding only a
// console object and the endpoint_function slot. The runtime lives for
// the life of the unit; a goja runtime is single-threaded, so
// invocations of one unit serialize on its mutex.
func compileJS(source string) (*Unit, error) {
	prog, err := goja.Compile("endpoint.js", source, false)
	if err != nil {
		return nil, &CompileError{Language: domain.LangJavaScript, Message: err.Error()}
	}

	vm := goja.New()
	installConsole(vm)

	if _, err := vm.RunProgram(prog); err != nil {
		return nil, &CompileError{Language: domain.LangJavaScript, Message: err.Error()}
	}

	fn, ok := goja.AssertFunction(vm.Get("endpoint_function"))
	if !ok {
		return nil, &CompileError{
			Language: domain.LangJavaScript,
			Message:  "code must define a function endpoint_function(params)",
		}
	}

	var mu sync.Mutex
	return &Unit{
		lang: domain.LangJavaScript,
		invoke: func(ctx context.Context, params map[string]any) (any, error) {
			mu.Lock()
			defer mu.Unlock()
			defer vm.ClearInterrupt()

			done := make(chan struct{})
			defer close(done)
			go func() {
				select {
				case <-ctx.Done():
					vm.Interrupt("execution timed out")
				case <-done:
				}
			}()

			res, err := fn(goja.Undefined(), vm.ToValue(params))
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, &RuntimeError{Message: jsErrorMessage(err)}
			}

			return toJSONValue(res.Export()), nil
		},
	}, nil
}

// toJSONValue coerces an exported goja value to a plain JSON value.
// Anything encoding/json rejects becomes the documented error shape.
func toJSONValue(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": "non-serializable result"}
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]any{"error": "non-serializable result"}
	}
	return out
}

func jsErrorMessage(err error) string {
	if ex, ok := err.(*goja.Exception); ok {
		return ex.Value().String()
	}
	return err.Error()
}

func installConsole(vm *goja.Runtime) {
	writeLine := func(level string) func(call goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, a := range call.Arguments {
				parts = append(parts, a.String())
			}
			log.Printf("[sandbox:js] %s: %s", level, strings.Join(parts, " "))
			return goja.Undefined()
		}
	}

	console := vm.NewObject()
	_ = console.Set("log", writeLine("log"))
	_ = console.Set("error", writeLine("error"))
	_ = console.Set("warn", writeLine("warn"))
	_ = vm.Set("console", console)
}
