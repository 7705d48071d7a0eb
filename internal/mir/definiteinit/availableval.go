package definiteinit

import "github.com/orizon-lang/definit/internal/mir"

// aggregateAvailableValues implements §4.5.3 step 6: synthesizes a load's
// result of type t from a fully-populated available table (computed by
// ElementPromotion.computeAvailableValues), starting at flat index base.
// Returns the assembled value and any instructions needed to produce it,
// ready for insertion immediately before the load being promoted.
func aggregateAvailableValues(gen *refGen, t mir.Type, base int, available []availableValue) (mir.Value, []mir.Instr) {
	n := subElementCount(t)
	if n > 0 {
		if v, ok := sameSourceRun(base, n, available); ok {
			return v, nil
		}
	}

	switch tt := t.(type) {
	case mir.TupleType:
		if len(tt.Elements) == 0 {
			dst := gen.value()
			return dst, []mir.Instr{mir.TupleConstruct{Dst: dst.Ref}}
		}
		var instrs []mir.Instr
		fieldVals := make([]mir.Value, len(tt.Elements))
		offset := 0
		for i, e := range tt.Elements {
			fv, fi := aggregateAvailableValues(gen, e, base+offset, available)
			instrs = append(instrs, fi...)
			fieldVals[i] = fv
			offset += subElementCount(e)
		}
		dst := gen.value()
		instrs = append(instrs, mir.TupleConstruct{Dst: dst.Ref, Elements: fieldVals})
		return dst, instrs

	case mir.StructType:
		if len(tt.Fields) == 0 {
			dst := gen.value()
			return dst, []mir.Instr{mir.StructConstruct{Dst: dst.Ref, Struct: &tt}}
		}
		var instrs []mir.Instr
		fieldVals := make([]mir.Value, len(tt.Fields))
		offset := 0
		for i, f := range tt.Fields {
			fv, fi := aggregateAvailableValues(gen, f.Type, base+offset, available)
			instrs = append(instrs, fi...)
			fieldVals[i] = fv
			offset += subElementCount(f.Type)
		}
		dst := gen.value()
		instrs = append(instrs, mir.StructConstruct{Dst: dst.Ref, Struct: &tt, Elements: fieldVals})
		return dst, instrs

	default:
		e := available[base]
		assertf(e.ok, "aggregateAvailableValues: required bit %d missing from a successful computeAvailableValues run", base)
		return extractSubValue(gen, e.source, e.sourceType, e.offset)
	}
}

// sameSourceRun is step 6's fast path: the n entries starting at base all
// trace back to the same source value at consecutive offsets, so that source
// can be forwarded directly with no extraction or reconstruction at all —
// the single-element and full-aggregate-match cases.
func sameSourceRun(base, n int, available []availableValue) (mir.Value, bool) {
	first := available[base]
	if !first.ok {
		return mir.Value{}, false
	}
	for k := 1; k < n; k++ {
		e := available[base+k]
		if !e.ok || e.source != first.source || e.offset != first.offset+k {
			return mir.Value{}, false
		}
	}
	return first.source, true
}

// extractSubValue descends sourceType to the leaf at offset, emitting one
// TupleExtract/StructExtract per level, mirroring pathStringInto's address
// traversal but over already-materialized values.
func extractSubValue(gen *refGen, source mir.Value, sourceType mir.Type, offset int) (mir.Value, []mir.Instr) {
	if offset == 0 && subElementCount(sourceType) <= 1 {
		return source, nil
	}
	switch tt := sourceType.(type) {
	case mir.TupleType:
		for i, e := range tt.Elements {
			n := subElementCount(e)
			if offset < n {
				dst := gen.value()
				extract := mir.TupleExtract{Dst: dst.Ref, Val: source, Field: i}
				v, rest := extractSubValue(gen, dst, e, offset)
				return v, append([]mir.Instr{extract}, rest...)
			}
			offset -= n
		}
		assertf(false, "extractSubValue: tuple offset out of range")
	case mir.StructType:
		for i, f := range tt.Fields {
			n := subElementCount(f.Type)
			if offset < n {
				dst := gen.value()
				extract := mir.StructExtract{Dst: dst.Ref, Val: source, Field: i}
				v, rest := extractSubValue(gen, dst, f.Type, offset)
				return v, append([]mir.Instr{extract}, rest...)
			}
			offset -= n
		}
		assertf(false, "extractSubValue: struct offset out of range")
	}
	return source, nil
}
