package mir

import "fmt"

// ParamConvention describes how an Apply argument reaches the callee, for the
// purpose of use classification: does the argument address get written to
// (IndirectResult), read-and-written (IndirectInOut), or merely observed by
// value, in which case passing the tracked address itself counts as an escape.
type ParamConvention int

const (
	ConventionDirect ParamConvention = iota
	ConventionIndirectResult
	ConventionIndirectInOut
)

func (c ParamConvention) String() string {
	switch c {
	case ConventionIndirectResult:
		return "@indirect-result"
	case ConventionIndirectInOut:
		return "@inout"
	default:
		return "@direct"
	}
}

// AllocBox allocates a heap box. Result 0 is a strong reference used for
// retain/release tracking; result 1 is the address of the boxed storage.
type AllocBox struct {
	RefDst, AddrDst string
	Name            string
	ElemType        Type
}

// AllocStack allocates storage on the current frame. Analogous to AllocBox:
// result 0 is a pseudo-reference observed by StrongRelease/DeallocStack,
// result 1 is the address.
type AllocStack struct {
	RefDst, AddrDst string
	Name            string
	ElemType        Type
}

// MarkUninitialized is a pass-through marker over an existing address,
// flagging it as requiring definite-initialization analysis. Name carries
// the wrapped allocation's variable name through, so diagnostics against
// this root don't fall back to an unnamed placeholder.
type MarkUninitialized struct {
	Dst      string
	Operand  Value
	Name     string
	ElemType Type
}

// TupleElementAddr projects the address of one field of a tuple-typed address.
type TupleElementAddr struct {
	Dst   string
	Addr  Value
	Tuple *TupleType
	Field int
}

// StructElementAddr projects the address of one stored property of a
// struct-typed address.
type StructElementAddr struct {
	Dst    string
	Addr   Value
	Struct *StructType
	Field  int
}

// EnumDataAddr projects the address of an enum's payload.
type EnumDataAddr struct {
	Dst  string
	Addr Value
	Enum *EnumType
}

// Assign is the abstract initialize-or-overwrite operation; definiteinit
// lowers every Assign to a Store (init) or a load-store-destroy trio
// (overwrite) before the pass completes.
type Assign struct {
	Addr Value
	Val  Value
}

// CopyAddr copies the value at Src to Dst, optionally consuming the source
// (IsTake) and optionally treating Dst as fresh storage (IsInitOfDest).
type CopyAddr struct {
	Src, Dst     Value
	IsTake       bool
	IsInitOfDest bool
	Type         Type
}

// LoadWeak reads through a weak reference.
type LoadWeak struct {
	Dst  string
	Addr Value
}

// StoreWeak writes through a weak reference.
type StoreWeak struct {
	Addr, Val    Value
	IsInitOfDest bool
}

// InitializeVar marks every sub-element of Addr as stored, without itself
// carrying a value operand (used for default-initialization forms).
type InitializeVar struct {
	Addr Value
	Type Type
}

// InitExistential stores into existential (boxed-protocol) storage. Dst is
// the address of the concrete value the container now exposes; writes
// through it are partial stores against the existential as a whole, not
// independent initializations.
type InitExistential struct {
	Addr Value
	Dst  string
	Type Type
}

// UpcastExistential copies from one existential container to another,
// treating Src as a load and Dst as a store.
type UpcastExistential struct{ Src, Dst Value }

// ProjectExistential extracts the address of the concrete value boxed inside
// an existential container. The container must already be fully initialized;
// the projection itself is a read, not a write.
type ProjectExistential struct {
	Addr Value
	Dst  string
	Type Type
}

// ProtocolMethod looks up a witness-table method on an existential
// container's boxed value. Also a read of the container.
type ProtocolMethod struct {
	Addr   Value
	Dst    string
	Method string
}

// InjectEnumAddr writes an enum's discriminator (and implicitly its payload
// storage) in place.
type InjectEnumAddr struct {
	Addr Value
	Case string
}

// StrongRelease decrements the retain count of a reference value.
type StrongRelease struct{ Value Value }

// DeallocStack ends the lifetime of a stack allocation's storage.
type DeallocStack struct{ Addr Value }

// MarkFunctionEscape records that an address is captured by a closure or
// otherwise escapes the analyzable region of the function.
type MarkFunctionEscape struct{ Addr Value }

// TupleExtract reads one field out of an already-materialized tuple value.
type TupleExtract struct {
	Dst   string
	Val   Value
	Field int
}

// StructExtract reads one field out of an already-materialized struct value.
type StructExtract struct {
	Dst   string
	Val   Value
	Field int
}

// TupleConstruct assembles a tuple value from its element values.
type TupleConstruct struct {
	Dst      string
	Elements []Value
}

// StructConstruct assembles a struct value from its field values, in
// declaration order.
type StructConstruct struct {
	Dst      string
	Struct   *StructType
	Elements []Value
}

// DestroyValue symbolically releases a non-trivial value with no further
// addressing; emitted by TypeLowering.EmitDestroyValue implementations that
// have nothing more specific to lower to.
type DestroyValue struct{ Value Value }

func (AllocBox) isInstr()           {}
func (AllocStack) isInstr()         {}
func (MarkUninitialized) isInstr()  {}
func (TupleElementAddr) isInstr()   {}
func (StructElementAddr) isInstr()  {}
func (EnumDataAddr) isInstr()       {}
func (Assign) isInstr()             {}
func (CopyAddr) isInstr()           {}
func (LoadWeak) isInstr()           {}
func (StoreWeak) isInstr()          {}
func (InitializeVar) isInstr()      {}
func (InitExistential) isInstr()    {}
func (UpcastExistential) isInstr()  {}
func (ProjectExistential) isInstr() {}
func (ProtocolMethod) isInstr()     {}
func (InjectEnumAddr) isInstr()     {}
func (StrongRelease) isInstr()      {}
func (DeallocStack) isInstr()       {}
func (MarkFunctionEscape) isInstr() {}
func (TupleExtract) isInstr()       {}
func (StructExtract) isInstr()      {}
func (TupleConstruct) isInstr()     {}
func (StructConstruct) isInstr()    {}
func (DestroyValue) isInstr()       {}

func (i AllocBox) String() string {
	return fmt.Sprintf("%s, %s = alloc_box %s", i.RefDst, i.AddrDst, i.ElemType)
}
func (i AllocStack) String() string {
	return fmt.Sprintf("%s, %s = alloc_stack %s", i.RefDst, i.AddrDst, i.ElemType)
}
func (i MarkUninitialized) String() string {
	return fmt.Sprintf("%s = mark_uninitialized %s", i.Dst, i.Operand)
}
func (i TupleElementAddr) String() string {
	return fmt.Sprintf("%s = tuple_element_addr %s, %d", i.Dst, i.Addr, i.Field)
}
func (i StructElementAddr) String() string {
	name := fmt.Sprintf("%d", i.Field)
	if i.Struct != nil && i.Field < len(i.Struct.Fields) {
		name = i.Struct.Fields[i.Field].Name
	}
	return fmt.Sprintf("%s = struct_element_addr %s, #%s", i.Dst, i.Addr, name)
}
func (i EnumDataAddr) String() string {
	return fmt.Sprintf("%s = enum_data_addr %s", i.Dst, i.Addr)
}
func (i Assign) String() string { return fmt.Sprintf("assign %s to %s", i.Val, i.Addr) }
func (i CopyAddr) String() string {
	take, init := "", ""
	if i.IsTake {
		take = " [take]"
	}
	if i.IsInitOfDest {
		init = " [init]"
	}
	return fmt.Sprintf("copy_addr%s %s to%s %s", take, i.Src, init, i.Dst)
}
func (i LoadWeak) String() string { return fmt.Sprintf("%s = load_weak %s", i.Dst, i.Addr) }
func (i StoreWeak) String() string {
	init := ""
	if i.IsInitOfDest {
		init = " [init]"
	}
	return fmt.Sprintf("store_weak %s to%s %s", i.Val, init, i.Addr)
}
func (i InitializeVar) String() string { return fmt.Sprintf("initialize_var %s", i.Addr) }
func (i InitExistential) String() string {
	return fmt.Sprintf("%s = init_existential %s : %s", i.Dst, i.Addr, i.Type)
}
func (i UpcastExistential) String() string {
	return fmt.Sprintf("upcast_existential %s to %s", i.Src, i.Dst)
}
func (i ProjectExistential) String() string {
	return fmt.Sprintf("%s = project_existential %s : %s", i.Dst, i.Addr, i.Type)
}
func (i ProtocolMethod) String() string {
	return fmt.Sprintf("%s = protocol_method %s, #%s", i.Dst, i.Addr, i.Method)
}
func (i InjectEnumAddr) String() string {
	return fmt.Sprintf("inject_enum_addr %s, #%s", i.Addr, i.Case)
}
func (i StrongRelease) String() string { return fmt.Sprintf("strong_release %s", i.Value) }
func (i DeallocStack) String() string  { return fmt.Sprintf("dealloc_stack %s", i.Addr) }
func (i MarkFunctionEscape) String() string {
	return fmt.Sprintf("mark_function_escape %s", i.Addr)
}
func (i TupleExtract) String() string {
	return fmt.Sprintf("%s = tuple_extract %s, %d", i.Dst, i.Val, i.Field)
}
func (i StructExtract) String() string {
	return fmt.Sprintf("%s = struct_extract %s, %d", i.Dst, i.Val, i.Field)
}
func (i TupleConstruct) String() string {
	return fmt.Sprintf("%s = tuple %v", i.Dst, i.Elements)
}
func (i StructConstruct) String() string {
	return fmt.Sprintf("%s = struct %s %v", i.Dst, i.Struct, i.Elements)
}
func (i DestroyValue) String() string { return fmt.Sprintf("destroy_value %s", i.Value) }
