// Package schema describes tuple shapes discovered at run time.
//
// A Schema is an ordered list of uniquely named fields, each carrying one of
// the primitive kinds:
//
//	Kind     Size
//	──────────────
//	bool     1
//	int8     1
//	int16    2
//	int32    4
//	int64    8
//	float32  4
//	float64  8
//
// Schemas are built once through a Builder and never change afterwards.
// Identity is structural: two schemas with the same ordered fields have the
// same Key and Hash and compare Equal, so they are interchangeable for
// caching.
//
//	b := schema.NewBuilder()
//	_ = b.AddField("id", schema.KindInt64)
//	_ = b.AddField("score", schema.KindFloat32)
//	s, err := b.Build()
package schema
