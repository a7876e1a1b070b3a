// Package core defines the shared language of the funcsql compiler.
//
// This package contains:
//   - The command protocol (Command, Base, Factory, Context)
//   - The argument slot state machine (Machine, Consumer)
//   - The per-scope query accumulator (Statement)
//   - The syntax error taxonomy (SyntaxError, ErrorKind)
//
// The Golden Rule: pkg/core imports ONLY pkg/token, pkg/relation and stdlib.
// Commands and the compiler depend on core, not the reverse.
package core
