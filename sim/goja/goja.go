// Package goja is a sim.Runtime backed by dop251/goja: grammar
// authors supply ECMAScript source for Call.arbitrary(ix) slots and
// span callbacks, and the runtime exercises that source against real
// property values and buffer bytes during a dry run.
package goja

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"

	"github.com/loomlang/loom/sim"
)

var _ sim.Runtime = (*Runtime)(nil)

// Runtime evaluates author-supplied ECMAScript for every
// Call.arbitrary index and every span callback name a Machine's
// Storage names. Source is looked up by ix/name at call time rather
// than precompiled as a whole program, since goja (unlike V8) can't
// currently combine separately-parsed ast.Programs -- the same
// constraint sheens' interpreters/goja.go documents on its own
// CompileLibrary method.
type Runtime struct {
	// ArbitrarySrc maps a Call.arbitrary index to a JS function
	// body run with `args` bound to the call's argument values;
	// it must `return` a number.
	ArbitrarySrc map[int]string

	// SpanSrc maps a callback name to a JS function body run with
	// `start`, `end`, and `buf` (the matched slice, as a string)
	// bound; it must `return` a number.
	SpanSrc map[string]string

	programs map[string]*goja.Program
}

// NewRuntime makes a Runtime with empty source tables; callers fill
// ArbitrarySrc/SpanSrc directly before use.
func NewRuntime() *Runtime {
	return &Runtime{
		ArbitrarySrc: map[int]string{},
		SpanSrc:      map[string]string{},
		programs:     map[string]*goja.Program{},
	}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

func (r *Runtime) compile(key, src string) (*goja.Program, error) {
	if p, have := r.programs[key]; have {
		return p, nil
	}
	p, err := goja.Compile(key, wrapSrc(src), true)
	if err != nil {
		return nil, fmt.Errorf("sim/goja: compile %s: %w", key, err)
	}
	if r.programs == nil {
		r.programs = map[string]*goja.Program{}
	}
	r.programs[key] = p
	return p, nil
}

func (r *Runtime) run(ctx context.Context, key, src string, env map[string]interface{}) (uint64, error) {
	p, err := r.compile(key, src)
	if err != nil {
		return 0, err
	}

	o := goja.New()
	for k, v := range env {
		o.Set(k, v)
	}
	o.Set("cronNext", func(expr string) interface{} {
		c, err := cronexpr.Parse(expr)
		if err != nil {
			panic(o.ToValue(err.Error()))
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	})

	ictx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ictx.Done()
		o.Interrupt("sim/goja: timeout")
	}()

	v, err := o.RunProgram(p)
	if err != nil {
		return 0, err
	}

	n, ok := v.Export().(int64)
	if !ok {
		f, ok := v.Export().(float64)
		if !ok {
			return 0, errors.New("sim/goja: result is not a number")
		}
		return uint64(f), nil
	}
	return uint64(n), nil
}

// Arbitrary implements sim.Runtime.
func (r *Runtime) Arbitrary(ctx context.Context, ix int, args []uint64) (uint64, error) {
	src, have := r.ArbitrarySrc[ix]
	if !have {
		return 0, fmt.Errorf("sim/goja: no source for arbitrary call %d", ix)
	}
	return r.run(ctx, fmt.Sprintf("arbitrary#%d", ix), src, map[string]interface{}{
		"args": args,
	})
}

// Span implements sim.Runtime.
func (r *Runtime) Span(ctx context.Context, name string, start, end int, buf []byte) (uint64, error) {
	src, have := r.SpanSrc[name]
	if !have {
		return 0, fmt.Errorf("sim/goja: no source for span callback %q", name)
	}
	var slice string
	if start >= 0 && end <= len(buf) && start <= end {
		slice = string(buf[start:end])
	}
	return r.run(ctx, "span#"+name, src, map[string]interface{}{
		"start": start,
		"end":   end,
		"buf":   slice,
	})
}
