/*
Package crdt implements the two convergent replicated data types of
flotsync: a latest-value-wins register holding one opaque payload, and a
linear text sequence backed by a coalescing run arena.

CAUTION! Consider these two requirements:
* Operations may be delivered in any order and duplicated any number of
  times (at-least-once delivery). Re-delivery of an already incorporated
  operation yields the AlreadyApplied outcome and leaves state unchanged,
  while an operation referencing state this replica can never have observed,
  e.g. a delete of an unknown position identifier, fails with
  ErrDataIntegrity and also leaves state unchanged.
* Access to the functions this package provides is expected to be
  synchronized explicitly by some outside measures, e.g. by wrapping calls
  to this package with a mutex lock if concurrent access is possible. This
  package does not(!) synchronize access by itself. Every mutation is a pure
  value transition from (current state, one operation) to (new state,
  outcome), without I/O, goroutines or internal locking.

The sequence implementation follows the replicated growable array family of
text CRDTs: every element carries a stable position identifier, deletions
leave ordering-relevant tombstones behind, and concurrent inserts at the
same anchor interleave deterministically by identifier order. Contiguous
elements from one insertion batch are coalesced into single run nodes to
keep the arena small under sequential typing.
*/
package crdt
