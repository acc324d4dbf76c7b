// Package ruleset resolves lint configuration fragments into the effective
// configuration for a single file.
//
// A Fragment is one configuration document: environment flags, parser
// settings, plugins, a rule table, file-scoped override blocks and references
// to the fragments it extends. Fragments are linked by a loader before they
// reach this package and are never modified here.
//
// Resolution runs in two passes. The extends graph of every input fragment is
// flattened depth-first (bases before the fragment that extends them) and the
// resulting chain is merged left to right. Then every override block whose
// file patterns match the target path is applied on top, in the same order.
//
//	r, err := ruleset.NewResolver(root)
//	if err != nil {
//		return err
//	}
//	cfg := r.Resolve("test/unit/parser.test.ts")
//	fmt.Println(cfg.Rules["func-names"].Severity)
//
// A Resolver holds no mutable state after construction and may be shared by
// goroutines resolving different paths.
package ruleset
