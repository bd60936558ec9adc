package policy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	//nolint:staticcheck // OPA v1 migration pending
	"github.com/open-policy-agent/opa/ast"
	//nolint:staticcheck // OPA v1 migration pending
	"github.com/open-policy-agent/opa/rego"
)

// Action defines the outcome of a screening rule evaluation.
type Action string

const (
	// ActionAllow lets the call ring through.
	ActionAllow Action = "allow"
	// ActionReject drops the call.
	ActionReject Action = "reject"
	// ActionSilence rings the call silently.
	ActionSilence Action = "silence"
)

// Decision captures the result of evaluating the screening policy for
// one call.
type Decision struct {
	Action Action
	Reason string
}

// Input provides the call attributes visible to Rego rules.
type Input struct {
	Number     string
	CallerName string
	ReceivedAt time.Time
	// Entrypoint overrides the engine's default decision path.
	Entrypoint string
}

const defaultEntrypoint = "screening/decision"

// EngineOptions control engine construction.
type EngineOptions struct {
	// Entrypoint is the default policy decision path
	// (e.g. "screening/decision").
	Entrypoint string
	// Modules contains the Rego modules loaded into the engine.
	Modules map[string]string
}

// Engine evaluates screening decisions using an embedded OPA instance.
type Engine struct {
	moduleOrder   []string
	parsedModules map[string]*ast.Module
	entrypoint    string
	queries       map[string]*rego.PreparedEvalQuery
	mu            sync.RWMutex
}

// NewEngine constructs an Engine for the supplied modules and warms the
// default entrypoint to surface syntax errors early.
func NewEngine(ctx context.Context, opts EngineOptions) (*Engine, error) {
	entry := strings.TrimSpace(opts.Entrypoint)
	if entry == "" {
		entry = defaultEntrypoint
	}

	if len(opts.Modules) == 0 {
		return nil, errors.New("screening policy engine requires at least one rego module")
	}

	moduleOrder := make([]string, 0, len(opts.Modules))
	for name := range opts.Modules {
		moduleOrder = append(moduleOrder, name)
	}
	sort.Strings(moduleOrder)

	parsedModules := make(map[string]*ast.Module, len(opts.Modules))
	for _, name := range moduleOrder {
		module, err := ast.ParseModuleWithOpts(name, opts.Modules[name], ast.ParserOptions{RegoVersion: ast.RegoV1})
		if err != nil {
			return nil, fmt.Errorf("parse rego module %q: %w", name, err)
		}
		parsedModules[name] = module
	}

	engine := &Engine{
		moduleOrder:   moduleOrder,
		parsedModules: parsedModules,
		entrypoint:    entry,
		queries:       make(map[string]*rego.PreparedEvalQuery),
	}

	if _, err := engine.getPreparedQuery(ctx, entry); err != nil {
		return nil, fmt.Errorf("compile rego modules: %w", err)
	}

	return engine, nil
}

// Evaluate runs the screening policy against the call attributes. An
// undefined decision evaluates to allow.
func (e *Engine) Evaluate(ctx context.Context, input Input) (Decision, error) {
	entry := strings.TrimSpace(input.Entrypoint)
	if entry == "" {
		entry = e.entrypoint
	}

	payload := map[string]any{
		"number":      input.Number,
		"caller_name": input.CallerName,
		"hour":        input.ReceivedAt.Hour(),
		"weekday":     strings.ToLower(input.ReceivedAt.Weekday().String()),
	}

	prepared, err := e.getPreparedQuery(ctx, entry)
	if err != nil {
		return Decision{}, fmt.Errorf("prepare query: %w", err)
	}

	results, err := prepared.Eval(ctx, rego.EvalInput(payload))
	if err != nil {
		return Decision{}, fmt.Errorf("rego decision: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{Action: ActionAllow}, nil
	}

	decisionPayload, ok := results[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return Decision{}, fmt.Errorf("rego decision: unexpected result type %T", results[0].Expressions[0].Value)
	}

	action, err := parseAction(decisionPayload["action"])
	if err != nil {
		return Decision{}, err
	}
	reason, _ := decisionPayload["reason"].(string)

	return Decision{Action: action, Reason: reason}, nil
}

func (e *Engine) getPreparedQuery(ctx context.Context, entry string) (*rego.PreparedEvalQuery, error) {
	e.mu.RLock()
	if prepared, ok := e.queries[entry]; ok {
		e.mu.RUnlock()
		return prepared, nil
	}
	e.mu.RUnlock()

	query := "data." + strings.ReplaceAll(entry, "/", ".")

	opts := make([]func(*rego.Rego), 0, len(e.parsedModules)+1)
	opts = append(opts, rego.Query(query))
	for _, name := range e.moduleOrder {
		opts = append(opts, rego.ParsedModule(e.parsedModules[name]))
	}

	prepared, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Another goroutine may have already prepared the query; respect
	// first entry.
	if existing, ok := e.queries[entry]; ok {
		return existing, nil
	}

	e.queries[entry] = &prepared
	return &prepared, nil
}

func parseAction(raw any) (Action, error) {
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("rego decision: action is %T, want string", raw)
	}
	switch Action(s) {
	case ActionAllow, ActionReject, ActionSilence:
		return Action(s), nil
	default:
		return "", fmt.Errorf("rego decision: unknown action %q", s)
	}
}
