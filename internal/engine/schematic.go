package engine

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/dhrn/devkit/internal/rules"
)

// SchematicNamePattern is the identifier pattern every schematic name must
// match.
var SchematicNamePattern = regexp.MustCompile(`^[-@/_.a-zA-Z0-9]+$`)

// RuleFactory builds a rule from transformed options. It is invoked once
// per Call.
type RuleFactory func(options any) rules.Rule

// Host is what a Schematic needs from the engine that owns it.
type Host interface {
	// CreateContext builds the execution context for one call, merging
	// parent (which may be nil) over the engine defaults.
	CreateContext(s *Schematic, parent *rules.Context) *rules.Context

	// TransformOptions turns raw caller options into the shape the
	// schematic's factory expects.
	TransformOptions(s *Schematic, options any) (any, error)
}

// Schematic binds a validated description to its rule factory, collection
// and engine. It holds no per-call state and is safe to call concurrently
// as long as the Host and factory are.
type Schematic struct {
	description SchematicDescription
	factory     RuleFactory
	collection  *Collection
	host        Host
}

// NewSchematic validates desc.Name and returns the schematic.
//
// Returns *InvalidSchematicNameError if the name does not match
// SchematicNamePattern.
func NewSchematic(desc SchematicDescription, factory RuleFactory, coll *Collection, host Host) (*Schematic, error) {
	if !SchematicNamePattern.MatchString(desc.Name) {
		return nil, &InvalidSchematicNameError{Name: desc.Name}
	}
	return &Schematic{
		description: desc,
		factory:     factory,
		collection:  coll,
		host:        host,
	}, nil
}

// MustSchematic is like NewSchematic but panics on an invalid name.
// Intended for statically known schematics.
func MustSchematic(desc SchematicDescription, factory RuleFactory, coll *Collection, host Host) *Schematic {
	s, err := NewSchematic(desc, factory, coll, host)
	if err != nil {
		panic(err)
	}
	return s
}

// Description returns the schematic description.
func (s *Schematic) Description() SchematicDescription {
	return s.description
}

// Collection returns the collection that owns the schematic.
func (s *Schematic) Collection() *Collection {
	return s.collection
}

// Call runs the schematic on the trees emitted by input.
//
// The context and options are prepared eagerly; the rule runs when the
// returned stream is consumed. An option transformation failure becomes
// the stream's terminal error.
func (s *Schematic) Call(ctx context.Context, options any, input rules.Stream, parent *rules.Context) rules.Stream {
	sctx := s.host.CreateContext(s, parent)

	transformed, err := s.host.TransformOptions(s, options)
	if err != nil {
		sctx.Log().Debug("option transformation failed",
			"schematic", s.description.Name,
			"invocation_id", sctx.InvocationID,
			"error", err,
		)
		return rules.Fail(err)
	}

	sctx.Log().Debug("calling schematic",
		slog.String("schematic", s.description.Name),
		slog.String("collection", s.collectionName()),
		slog.String("invocation_id", sctx.InvocationID),
		slog.Bool("debug", sctx.Debug),
		slog.String("strategy", sctx.Strategy.String()),
	)

	return rules.CallRule(ctx, s.factory(transformed), input, sctx)
}

func (s *Schematic) collectionName() string {
	if s.collection == nil {
		return ""
	}
	return s.collection.Description().Name
}
