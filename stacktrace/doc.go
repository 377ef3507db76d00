// Package stacktrace implements a call-stack deduplication tree that
// attributes heap allocations to the full call stack active at allocation
// time.
//
// Identity for deduplication is (name, call site), not call occurrence: a
// loop calling the same function from the same site contributes exactly one
// node, and only distinct call sites produce siblings. The interpreter
// pushes on function entry and pops exactly once per exited call, whether
// the exit is a return, a thrown exception, or a native-call completion.
package stacktrace
