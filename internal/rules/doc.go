// Package rules implements the invocation contract for rules and sources.
//
// A Source produces a tree from nothing; a Rule transforms a tree. Either
// may answer in one of three shapes, expressed as a Result:
//
//   - Produce(v): the value itself
//   - Await(fn): a deferred computation resolving to the value
//   - Emit(seq): a stream of values
//
// A Rule may also return NoOp(), meaning "forward the input tree unchanged".
//
// CallSource and CallRule turn any of these into a single canonical Stream
// (iter.Seq2[tree.Tree, error]). Every value is checked with tree.IsTree
// before it is emitted; the first value that fails terminates the stream
// with InvalidSourceResultError or InvalidRuleResultError. Values emitted
// before the failure stand as delivered.
//
// Streams are lazy and demand driven. Nothing runs until the stream is
// ranged over, and breaking out of the loop stops further rule invocation:
//
//	for t, err := range rules.CallRule(ctx, rule, rules.Trees(input), sctx) {
//	    if err != nil {
//	        return err
//	    }
//	    use(t)
//	}
//
// Upstream trees are processed strictly in order; the sub-stream produced
// for one upstream tree is drained before the next upstream tree is pulled.
package rules
