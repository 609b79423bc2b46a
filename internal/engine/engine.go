package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dhrn/devkit/internal/options"
	"github.com/dhrn/devkit/internal/rules"
	"github.com/dhrn/devkit/internal/tree"
)

// OptionTransformer validates raw options against a schematic schema.
// Implemented by *options.Transformer.
type OptionTransformer interface {
	Transform(schema string, raw any) (map[string]any, error)
}

// Engine owns collections and rule factories, and provides contexts and
// option transformation to the schematics it creates.
//
// Thread-safety model:
//   - AddCollection / RegisterFactory: safe from any goroutine
//   - CreateSchematic / Schematic: safe from any goroutine
//   - CreateContext / TransformOptions: safe from any goroutine, no shared
//     state is mutated
//
// INVARIANTS:
//   - a schematic is constructed at most once per (collection, name)
//   - contexts never outlive the call they were created for
type Engine struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	factories   map[string]RuleFactory

	transformer OptionTransformer
	idGen       IDGenerator
	logger      *slog.Logger
	debug       bool
	strategy    tree.MergeStrategy
	maxDepth    int
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the base logger. Contexts derive from it.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithDebug sets the default debug flag of created contexts.
func WithDebug(debug bool) EngineOption {
	return func(e *Engine) {
		e.debug = debug
	}
}

// WithStrategy sets the default merge strategy of created contexts.
func WithStrategy(s tree.MergeStrategy) EngineOption {
	return func(e *Engine) {
		e.strategy = s
	}
}

// WithIDGenerator overrides the invocation ID generator.
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) {
		e.idGen = g
	}
}

// WithTransformer overrides the option transformer.
// Default: options.NewTransformer().
func WithTransformer(t OptionTransformer) EngineOption {
	return func(e *Engine) {
		e.transformer = t
	}
}

// WithFactory registers a rule factory under key.
func WithFactory(key string, f RuleFactory) EngineOption {
	return func(e *Engine) {
		e.factories[key] = f
	}
}

// New creates an Engine. Options are applied in order.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		collections: make(map[string]*Collection),
		factories:   make(map[string]RuleFactory),
		transformer: options.NewTransformer(),
		idGen:       UUIDv7Generator{},
		logger:      slog.Default(),
		strategy:    tree.Default,
		maxDepth:    DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RegisterFactory registers a rule factory under key, replacing any
// previous registration.
func (e *Engine) RegisterFactory(key string, f RuleFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.factories[key] = f
}

// AddCollection registers a collection.
//
// Schematic names are validated here so a bad manifest fails at load time
// rather than on first call.
func (e *Engine) AddCollection(desc CollectionDescription) (*Collection, error) {
	for key, sd := range desc.Schematics {
		name := sd.Name
		if name == "" {
			name = key
		}
		if !SchematicNamePattern.MatchString(name) {
			return nil, fmt.Errorf("collection %s: %w", desc.Name, &InvalidSchematicNameError{Name: name})
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.collections[desc.Name]; ok {
		return nil, &LookupError{Code: ErrCodeDuplicateCollection, Collection: desc.Name}
	}

	c := newCollection(desc)
	e.collections[desc.Name] = c

	e.logger.Debug("collection registered",
		"collection", desc.Name,
		"version", desc.Version,
		"schematics", len(desc.Schematics),
	)

	return c, nil
}

// Collection returns a registered collection.
func (e *Engine) Collection(name string) (*Collection, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.collections[name]
	if !ok {
		return nil, &LookupError{Code: ErrCodeUnknownCollection, Collection: name}
	}
	return c, nil
}

// Collections returns the names of all registered collections, sorted.
func (e *Engine) Collections() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.collections))
	for name := range e.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateSchematic resolves name (or an alias) in collection and returns the
// schematic, constructing it on first use.
func (e *Engine) CreateSchematic(collection, name string) (*Schematic, error) {
	c, err := e.Collection(collection)
	if err != nil {
		return nil, err
	}

	desc, ok := c.resolve(name)
	if !ok {
		return nil, &LookupError{Code: ErrCodeUnknownSchematic, Collection: collection, Name: name}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.schematics[desc.Name]; ok {
		return s, nil
	}

	e.mu.RLock()
	factory, ok := e.factories[desc.Factory]
	e.mu.RUnlock()
	if !ok {
		return nil, &LookupError{Code: ErrCodeUnknownFactory, Collection: collection, Name: desc.Factory}
	}

	s, err := NewSchematic(desc, factory, c, e)
	if err != nil {
		return nil, err
	}
	c.schematics[desc.Name] = s

	return s, nil
}

// Schematic implements rules.Engine so rules can reach other schematics
// through their context.
func (e *Engine) Schematic(collection, name string) (rules.Invocable, error) {
	s, err := e.CreateSchematic(collection, name)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateContext builds a fresh context for one call of s.
//
// Engine defaults apply first. A non-nil parent then overrides the
// strategy unless it is tree.Default, turns debug on if set, and supplies
// the logger if it has one.
// Depth is one more than the parent's, and every context gets a new
// invocation ID.
func (e *Engine) CreateContext(s *Schematic, parent *rules.Context) *rules.Context {
	sctx := &rules.Context{
		Engine:       e,
		Debug:        e.debug,
		Strategy:     e.strategy,
		MaxDepth:     e.maxDepth,
		InvocationID: e.idGen.Generate(),
	}

	logger := e.logger
	if parent != nil {
		if parent.Strategy != tree.Default {
			sctx.Strategy = parent.Strategy
		}
		sctx.Debug = sctx.Debug || parent.Debug
		sctx.Depth = parent.Depth + 1
		if parent.Logger != nil {
			logger = parent.Logger
		}
	}

	sctx.Logger = logger.With(
		"invocation_id", sctx.InvocationID,
		"schematic", s.Description().Name,
	)

	e.logger.Debug("context created",
		"invocation_id", sctx.InvocationID,
		"schematic", s.Description().Name,
		"depth", sctx.Depth,
	)

	return sctx
}

// TransformOptions validates options against the schematic schema and
// fills in defaults.
func (e *Engine) TransformOptions(s *Schematic, raw any) (any, error) {
	desc := s.Description()
	out, err := e.transformer.Transform(desc.Schema, raw)
	if err != nil {
		return nil, fmt.Errorf("schematic %s: %w", desc.Name, err)
	}
	return out, nil
}
