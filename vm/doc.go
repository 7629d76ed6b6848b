// Package vm implements the Intcode machine.
//
// This package contains:
//   - Program loading from text and from CBOR images
//   - Sparse, growable big-integer memory
//   - Instruction decoding (opcode plus per-parameter addressing modes)
//   - The resumable interpreter: a run suspends when an Input instruction
//     finds no queued value and resumes on the next Execute
//   - Disassembly and per-instruction tracing
//
// Composition of several machines, such as amplifier chains feeding each
// other's outputs, is left to the caller.
package vm
