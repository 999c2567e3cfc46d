// Package engine evaluates scene scripts. It wraps zygomys in a sandboxed
// environment and produces a SceneGraph from user source code.
package engine

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/stager/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	NodeID  graph.NodeID
}

func (w EvalWarning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

// EvalResult bundles the full output of evaluating one script.
type EvalResult struct {
	Graph    *graph.SceneGraph
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter for scene script evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate takes scene script source and produces a new SceneGraph.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns graph + nil errors + nil error
//   - On parse/eval failure: returns nil graph + eval errors + nil error
//   - On fatal failure (timeout, cancellation, panic): returns nil + nil + error
func (e *Engine) Evaluate(ctx context.Context, source string) (*graph.SceneGraph, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		g, evalErrs, err := e.evaluate(source)
		ch <- evalResult{graph: g, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ctx, ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*graph.SceneGraph, []EvalError, error) {
	// Empty source is a valid program that produces an empty graph.
	if strings.TrimSpace(source) == "" {
		return graph.New(), nil, nil
	}

	// Create a fresh sandboxed zygomys environment.
	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	g := graph.New()
	registerBuiltins(env, g)

	// Load and compile the source string into bytecode.
	err := env.LoadString(preprocessSource(source))
	if err != nil {
		evalErrs := parseZygomysError(err)
		return nil, evalErrs, nil
	}

	// Execute the compiled bytecode.
	_, err = env.Run()
	if err != nil {
		evalErrs := parseZygomysError(err)
		return nil, evalErrs, nil
	}

	return g, nil, nil
}

// EvaluateFile reads and evaluates a script file, then validates the
// resulting graph. Validation errors are reported as EvalErrors; warnings
// are carried in the result.
func (e *Engine) EvaluateFile(ctx context.Context, path string) (EvalResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return EvalResult{}, fmt.Errorf("read script: %w", err)
	}
	g, evalErrs, err := e.Evaluate(ctx, string(src))
	if err != nil {
		return EvalResult{}, fmt.Errorf("evaluate %s: %w", path, err)
	}
	res := EvalResult{Graph: g, Errors: evalErrs}
	if g == nil {
		return res, nil
	}

	vr := graph.ValidateAll(g)
	for _, ve := range vr.Errors {
		res.Errors = append(res.Errors, EvalError{Message: ve.Error()})
	}
	for _, w := range vr.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Message: w.Message, NodeID: w.NodeID})
	}
	return res, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ...".
// The detail may span several lines.
var linePattern = regexp.MustCompile(`(?is)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// Try to extract line numbers from the error message.
	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	// Fallback: no line info available.
	return []EvalError{{
		Line:    0,
		Col:     0,
		Message: strings.TrimSpace(msg),
	}}
}
