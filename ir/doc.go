// Package ir defines the intermediate representation for shaderblend.
//
// The IR is designed to be:
//   - Arena based: expressions live in a per-function slice and are
//     referenced by ExpressionHandle
//   - Explicitly ordered: an expression becomes visible to statements
//     only after a StmtEmit covering it
//   - Small: it carries what a fragment program needs to compute and
//     write its color outputs
//
// # Structure
//
// A Module contains:
//   - Types: all type definitions used in the shader
//   - Functions: all function definitions
//   - EntryPoints: shader entry points with stage information
//
// Fragment color outputs are written with StmtStoreOutput. Entry points
// that return their outputs are converted to that form by
// LowerEntryResults. Passes that add code use a Builder, which tracks
// emit ranges and records the type of every expression it appends.
//
// # References
//
// This IR design is inspired by:
//   - naga (Rust): https://github.com/gfx-rs/naga
//   - SPIR-V specification: https://www.khronos.org/registry/SPIR-V/
package ir
