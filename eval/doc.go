// Package eval compiles expressions over tuple fields.
//
// Expressions use the expr language. Every field of the schema is a
// variable of its Go type, so for a schema [id int64, score float32]
//
//	id > 10 && score < 2.5
//
// is a valid boolean expression. The set function writes a field and
// returns true, which makes mutating expressions possible:
//
//	set("id", id + 1)
//
// Programs are type checked against the schema at compile time and can be
// run concurrently against different tuples.
package eval
