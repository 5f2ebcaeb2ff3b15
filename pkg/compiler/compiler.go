// Package compiler wires together the four compiler stages (ingestion,
// type pipeline, constant compiler, conversion compiler) and the
// namespace-prefix pass into the single Schema -> MIR -> PIR pipeline
// spec.md §2 describes, with pass-level diagnostics and bounded
// cross-protocol parallelism as the ambient stack this expansion adds.
package compiler

import (
	"context"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/compiler/constants"
	"github.com/blockberries/wireforge/pkg/compiler/conversions"
	"github.com/blockberries/wireforge/pkg/compiler/ingest"
	"github.com/blockberries/wireforge/pkg/compiler/nsprefix"
	"github.com/blockberries/wireforge/pkg/compiler/types"
	"github.com/blockberries/wireforge/pkg/ir"
)

// Options configures a compile. Logger defaults to a silent logger, the
// way a library should, so callers (and tests) aren't forced to see
// output they never asked for.
type Options struct {
	Logger logrus.FieldLogger
	// MaxParallel bounds CompileAll's worker pool. Zero (or a negative
	// value) sets no limit: errgroup's default unbounded goroutine fan-out,
	// one goroutine per schema.
	MaxParallel int
}

var silentLogger logrus.FieldLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return silentLogger
}

// CompileProtocol runs the full pipeline for exactly one protocol: it does
// not recurse into schema.References, so externalTypes and
// externalConversions must already hold every transitively-referenced
// protocol's finalized output (see Compile, which does recurse). namespace,
// if non-empty, is applied as the final namespace-prefix pass.
func CompileProtocol(
	schema *ir.ProtocolSchema,
	externalTypes map[string]ir.RootType,
	externalConversions map[ir.ConversionKey]ir.RootConversion,
	namespace ir.QName,
	opts Options,
) (ir.Protocol, cerrors.Errors) {
	log := opts.logger().WithField("protocol", schema.Name)

	def, errs := ingest.IngestProtocol(schema)
	if len(errs) > 0 {
		return ir.Protocol{}, errs
	}
	log.WithField("pass", "ingest").Debug("pass complete")

	pt, errs := types.Compile(def, externalTypes)
	if len(errs) > 0 {
		return ir.Protocol{}, errs
	}
	log.WithFields(logrus.Fields{"pass": "types", "types": len(pt.Own)}).Debug("pass complete")

	constTable := constants.Compile(constantDefs(def))
	log.WithFields(logrus.Fields{"pass": "constants", "constants": len(constTable)}).Debug("pass complete")

	pc, errs := conversions.Compile(def.Name, def.Conversions, pt.Types, externalConversions)
	if len(errs) > 0 {
		return ir.Protocol{}, errs
	}
	log.WithFields(logrus.Fields{"pass": "conversions", "conversions": len(pc.Own)}).Debug("pass complete")

	proto := ir.Protocol{
		Name:        ir.NewQName(def.Name),
		Types:       pt,
		Constants:   ir.ProtocolConstants{Constants: constTable},
		Conversions: pc,
	}

	if !namespace.IsEmpty() {
		proto = nsprefix.Prefix(proto, namespace)
		log.WithFields(logrus.Fields{"pass": "nsprefix", "namespace": namespace.String()}).Debug("pass complete")
	}

	return proto, nil
}

func constantDefs(def *ingest.ProtocolDef) []ir.RootConstantDef {
	out := make([]ir.RootConstantDef, 0, len(def.Constants))
	for _, name := range sortedKeys(def.Constants) {
		out = append(out, def.Constants[name])
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Compile recursively compiles schema and every protocol it transitively
// references (memoizing each by name, since a diamond-shaped reference
// graph would otherwise recompile a shared dependency once per path to
// it), then compiles schema itself with the accumulated external type and
// conversion graphs. A reference cycle is reported by the ingestion stage
// of whichever protocol closes the loop, exactly as spec.md §4.1
// describes; this function does not attempt to break cycles itself.
func Compile(schema *ir.ProtocolSchema, namespace ir.QName, opts Options) (ir.Protocol, cerrors.Errors) {
	c := &compileState{done: make(map[string]ir.Protocol), opts: opts}
	proto, errs := c.compile(schema)
	if len(errs) > 0 {
		return ir.Protocol{}, errs
	}
	if !namespace.IsEmpty() {
		proto = nsprefix.Prefix(proto, namespace)
	}
	return proto, nil
}

type compileState struct {
	done map[string]ir.Protocol
	opts Options
}

func (c *compileState) compile(schema *ir.ProtocolSchema) (ir.Protocol, cerrors.Errors) {
	if proto, ok := c.done[schema.Name]; ok {
		return proto, nil
	}

	externalTypes := map[string]ir.RootType{}
	externalConversions := map[ir.ConversionKey]ir.RootConversion{}
	for _, name := range sortedKeys(schema.References) {
		refProto, errs := c.compile(schema.References[name])
		if len(errs) > 0 {
			return ir.Protocol{}, errs
		}
		for k, v := range refProto.Types.Types {
			externalTypes[k] = v
		}
		for k, v := range refProto.Conversions.Graph {
			externalConversions[k] = v
		}
	}

	proto, errs := CompileProtocol(schema, externalTypes, externalConversions, ir.QName{}, c.opts)
	if len(errs) > 0 {
		return ir.Protocol{}, errs
	}
	c.done[schema.Name] = proto
	return proto, nil
}

// CompileAll compiles a set of independent root schemas concurrently,
// bounded by opts.MaxParallel, per spec.md §5's "implementations may
// parallelize by-protocol compilation". Each schema is compiled with its
// own Compile call (including its own reference closure), so schemas that
// happen to share a referenced protocol recompile it independently rather
// than sharing memoized state across goroutines — a deliberate simplicity
// trade-off over a shared, lock-protected cache. Results preserve the
// input order; the first encountered error aborts the remaining work.
func CompileAll(ctx context.Context, schemas []*ir.ProtocolSchema, namespace ir.QName, opts Options) ([]ir.Protocol, error) {
	results := make([]ir.Protocol, len(schemas))
	g, gctx := errgroup.WithContext(ctx)
	if opts.MaxParallel > 0 {
		g.SetLimit(opts.MaxParallel)
	}

	for i, schema := range schemas {
		i, schema := i, schema
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			proto, errs := Compile(schema, namespace, opts)
			if len(errs) > 0 {
				return errs
			}
			results[i] = proto
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
