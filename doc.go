// Package loom is a parser-generator lowering pipeline: it takes a
// declarative Grammar (named states, pattern/action cases) and
// compiles it to a Machine, a flat instruction stream a target-
// language back-end can render into an incremental parser.
//
// The lowering pipeline itself lives in package core. backend adapts
// a compiled Machine for a code emitter. sim is a development-time
// interpreter for dry-running a Machine against real input before
// handing it to a back-end. gramfile loads/saves Grammars as YAML.
// cache persists compiled Machines keyed by grammar digest. cmd/gramd
// and cmd/gramdoc are a compile daemon and a documentation renderer
// built on top of those packages.
package loom
