// Package witschema converts between schemas and WIT record types.
//
// A schema maps to a WIT record whose fields are bool, s8, s16, s32, s64,
// f32 or f64. Tuples laid out with CanonicalOptions use the component
// model's canonical ABI record layout, so a tuple in Wasm linear memory can
// be passed to a guest function expecting that record by pointer.
package witschema
