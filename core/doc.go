// Package core implements the grammar lowering pipeline: the
// transformation of a declarative Grammar (named states, each with an
// ordered list of pattern/action cases) into a Machine, a flat,
// indexed array of Instructions suitable for a code emitter.
//
// The pipeline has three stages. The Specializer (specialize.go) takes
// the cases at a single Node and produces a Tree that factors shared
// prefixes and checks that alternatives are mutually disjoint. The
// Translator (translate.go) walks that Tree, picks a consumer shape
// (single byte, range, bitmap class, dense switch, or mixed checks)
// for each byte branch point by grouping arms with identical compiled
// continuations, and emits a Machine: a numbered array of Inst values,
// each holding one Instruction, with goto targets resolved to indices.
// Interval (interval.go) is the byte-set algebra both stages build on.
//
// Translate is a pure function of a Grammar: given the same Grammar,
// it produces byte-for-byte the same Machine, including node order,
// branch-arm order, and bitmap numbering. There is no global state; a
// Machine under construction and its bitmap interning table are
// threaded through compilation as explicit values.
//
// This package does not parse a surface grammar DSL and does not emit
// target-language source. It sits between those two concerns.
package core
