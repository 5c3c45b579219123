// Package recipe evaluates greeble recipes.
// A recipe is a small Lisp program, run in a sandboxed zygomys
// environment, whose forms override the default generation
// configuration:
//
//	(shape :notch45 0.3 :recursion 1)
//	(recursion :depth 3 :inset 0.5)
//	(batch :seed 42 :radius 2 :mode :panels)
package recipe

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/greeble/pkg/config"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in the recipe, or a setting that
// fails validation.
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

// Recipe is the outcome of a successful evaluation.
type Recipe struct {
	Config config.Config
}

// Engine wraps the zygomys interpreter for recipe evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	// Timeout bounds each evaluation. Zero means EvalTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{Timeout: EvalTimeout}
}

// Evaluate runs recipe source on top of config.Default.
//
// Return semantics:
//   - On success: returns recipe + nil errors + nil error
//   - On parse/eval/validation failure: returns nil recipe + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Recipe, []EvalError, error) {
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

		r, evalErrs, err := e.evaluate(source)
		ch <- evalResult{recipe: r, errors: evalErrs, err: err}
	}()

	limit := e.Timeout
	if limit <= 0 {
		limit = EvalTimeout
	}
	return waitWithTimeout(ch, limit, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Recipe, []EvalError, error) {
	cfg := config.Default()

	// Empty source is a valid recipe that keeps every default.
	if strings.TrimSpace(source) == "" {
		return &Recipe{Config: cfg}, nil, nil
	}

	// Sandbox mode prevents recipes from touching the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, &cfg)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, ValidationErrors(err), nil
	}
	return &Recipe{Config: cfg}, nil, nil
}

// ValidationErrors flattens a joined validation error into one EvalError
// per violated setting.
func ValidationErrors(err error) []EvalError {
	errs := []error{err}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		errs = j.Unwrap()
	}
	out := make([]EvalError, 0, len(errs))
	for _, e := range errs {
		msg := e.Error()
		if errors.Is(e, config.ErrInvalid) {
			msg = "invalid setting: " + strings.TrimPrefix(msg, config.ErrInvalid.Error()+": ")
		}
		out = append(out, EvalError{Message: msg})
	}
	return out
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
