/*Package dsort is a distributed sample-sort engine: given a collection of
data chunks scattered across workers, it produces a new, globally sorted
collection of chunks, with every element of chunk i ordered at or before
every element of chunk i+1.

The engine expresses all chunk-level work (sampling, splitting, merging) as
deferred computation nodes over immutable chunk handles. Splitter values are
estimated from bounded per-chunk samples, and the split-and-merge phase is
batched recursively so no single operation ever fans in more than the
configured batch-size ceiling. Output chunks are assigned round-robin across
workers, and each assignment is propagated backward through the chunk's
dependency chain as a placement hint, co-locating intermediate results with
their final destination to minimize cross-worker data movement.

Chunks are opaque to the engine: callers supply a Strategy implementing the
chunk-level primitives (local sort, sampling, pairwise merge, range split).
Strategies for plain slices of ordered elements and for key-value tables are
included.
*/
package dsort
