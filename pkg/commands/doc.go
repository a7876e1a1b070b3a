// Package commands implements the built-in command catalogue: joins,
// filters, projections, grouping, ordering, aggregates, alias references
// and logical combinators. Every command is built on the core slot
// protocol and receives its statement, clause sink and drive table through
// core.Context.
package commands
