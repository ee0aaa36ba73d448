// Package sandbox turns user-supplied handler source into invokable
// units. JavaScript runs on an embedded goja runtime; Python runs in a
// resident interpreter process per unit. Units are refcounted so a
// release during an in-flight invocation defers teardown until the call
// returns.
package sandbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/webforge-labs/webforge-backend/internal/routes/domain"
)

// Host compiles guest source into Units. The language is dispatched at
// compile time; invocation is uniform.
type Host struct {
	pythonBin string
}

func NewHost(pythonBin string) *Host {
	if pythonBin == "" {
		pythonBin = "python3"
	}
	return &Host{pythonBin: pythonBin}
}

// CompileError reports that guest source failed to load. A Unit is still
// produced (a stub that reports the error on invocation) so the endpoint
// stays visible over HTTP.
type CompileError struct {
	Language domain.Language
	Message  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s compile: %s", e.Language, e.Message)
}

// RuntimeError reports a guest exception during invocation.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

// Compile loads source for the given language. On compile failure the
// returned Unit is a stub whose invocation reports the stored error, and
// the CompileError is returned alongside for logging; registration must
// proceed either way.
func (h *Host) Compile(ctx context.Context, lang domain.Language, source string) (*Unit, error) {
	var (
		u   *Unit
		err error
	)
	switch lang {
	case domain.LangJavaScript:
		u, err = compileJS(source)
	case domain.LangPython:
		u, err = compilePython(ctx, h.pythonBin, source)
	default:
		err = &CompileError{Language: lang, Message: fmt.Sprintf("unsupported language %q", lang)}
	}
	if err != nil {
		ce, ok := err.(*CompileError)
		if !ok {
			ce = &CompileError{Language: lang, Message: err.Error()}
		}
		return newStub(lang, ce), ce
	}
	return u, nil
}

// Unit is one compiled handler. Invoke and Release may race: Release on
// a unit with calls in flight defers the underlying teardown until the
// last call returns. Release is idempotent.
type Unit struct {
	lang domain.Language

	invoke func(ctx context.Context, params map[string]any) (any, error)
	close  func()

	mu       sync.Mutex
	inflight int
	released bool
}

func (u *Unit) Language() domain.Language { return u.lang }

func (u *Unit) Invoke(ctx context.Context, params map[string]any) (any, error) {
	u.mu.Lock()
	if u.released {
		u.mu.Unlock()
		return nil, &RuntimeError{Message: "handler has been released"}
	}
	u.inflight++
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.inflight--
		if u.released && u.inflight == 0 && u.close != nil {
			u.close()
			u.close = nil
		}
		u.mu.Unlock()
	}()

	return u.invoke(ctx, params)
}

func (u *Unit) Release() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.released {
		return
	}
	u.released = true
	if u.inflight == 0 && u.close != nil {
		u.close()
		u.close = nil
	}
}

func languageLabel(lang domain.Language) string {
	switch lang {
	case domain.LangJavaScript:
		return "JavaScript"
	case domain.LangPython:
		return "Python"
	}
	return string(lang)
}

// newStub builds the visible-failure handler for source that did not
// compile: invocation succeeds and the body carries the stored error.
func newStub(lang domain.Language, ce *CompileError) *Unit {
	body := map[string]any{
		"error":   fmt.Sprintf("%s compilation error", languageLabel(lang)),
		"details": ce.Message,
	}
	return &Unit{
		lang: lang,
		invoke: func(context.Context, map[string]any) (any, error) {
			return body, nil
		},
	}
}
