// Package arc holds the analyses behind automatic reference counting:
// the type classifier, the declaration cycle detector, and per-function
// ownership analysis.
//
// The classifier answers one question, NeedsRC: do values of a type
// carry a reference count at runtime. It is total and conservative;
// anything it cannot prove scalar is refcounted. Downstream passes
// accept the Classification interface so the policy can be swapped
// without touching the algorithms.
//
// The cycle detector rejects cyclic type declarations at compile time.
// Sigil has no weak references, so a type that can reach itself through
// direct fields would leak by construction; such declarations are
// reported as errors and the module never proceeds to ARC lowering.
// Containers and Option are the sanctioned cycle breakers: a reference
// reached only through list, map, set, or Option elements is recorded
// but never forms a rejected cycle.
//
// Ownership analysis walks a typed function body once, top down,
// propagating the context a parent imposes on each child (Owned,
// Borrowed, Moved, Escapes). Its output is two flat sets: expression
// ids whose refcount traffic is provably unnecessary, and bindings
// that need a release at scope exit. Consumers read the sets; nothing
// here mutates the tree.
package arc
