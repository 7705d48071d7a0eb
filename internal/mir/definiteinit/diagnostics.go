package definiteinit

import (
	"fmt"

	"github.com/orizon-lang/definit/internal/diagnostic"
	"github.com/orizon-lang/definit/internal/position"
)

// MessageKind enumerates every diagnosable definite-initialization failure.
// The eighth kind from spec.md §6, variable_defined_here, is not a Diagnose
// call of its own — it is the companion note every call above attaches via
// DiagnosticBuilder.Related.
type MessageKind int

const (
	MsgUsedBeforeInitialized MessageKind = iota
	MsgStructNotFullyInitialized
	MsgInitializedOnSomePaths
	MsgInoutBeforeInitialized
	MsgGlobalFunctionUseUninit
	MsgEscapeBeforeInitialized
	MsgDestroyedBeforeInitialized
)

func (k MessageKind) code() string {
	switch k {
	case MsgUsedBeforeInitialized:
		return "DI0001"
	case MsgStructNotFullyInitialized:
		return "DI0002"
	case MsgInitializedOnSomePaths:
		return "DI0003"
	case MsgInoutBeforeInitialized:
		return "DI0004"
	case MsgGlobalFunctionUseUninit:
		return "DI0005"
	case MsgEscapeBeforeInitialized:
		return "DI0006"
	case MsgDestroyedBeforeInitialized:
		return "DI0007"
	default:
		return "DI0000"
	}
}

func (k MessageKind) format(elementName string) string {
	switch k {
	case MsgUsedBeforeInitialized:
		return fmt.Sprintf("variable '%s' used before being initialized", elementName)
	case MsgStructNotFullyInitialized:
		return fmt.Sprintf("'%s' not fully initialized", elementName)
	case MsgInitializedOnSomePaths:
		return fmt.Sprintf("variable '%s' initialized on some paths but not others", elementName)
	case MsgInoutBeforeInitialized:
		return fmt.Sprintf("variable '%s' passed by reference before being initialized", elementName)
	case MsgGlobalFunctionUseUninit:
		return fmt.Sprintf("variable '%s' captured by a closure before being initialized", elementName)
	case MsgEscapeBeforeInitialized:
		return fmt.Sprintf("variable '%s' used before being initialized", elementName)
	case MsgDestroyedBeforeInitialized:
		return fmt.Sprintf("variable '%s' destroyed before being initialized", elementName)
	default:
		return fmt.Sprintf("definite-initialization error on '%s'", elementName)
	}
}

// DiagnosticSink receives one diagnosis per definite-initialization
// violation. at is the offending use's source location; defSite is the
// allocation's own location, attached as a "variable defined here" note.
type DiagnosticSink interface {
	Diagnose(kind MessageKind, elementName string, at, defSite position.Span)
}

// DiagnosticEngineSink adapts DiagnosticSink to the teacher's
// *diagnostic.DiagnosticEngine, building one error-level Diagnostic per call
// via DiagnosticBuilder and attaching the definition-site note through
// Related.
type DiagnosticEngineSink struct {
	Engine *diagnostic.DiagnosticEngine
}

func (s DiagnosticEngineSink) Diagnose(kind MessageKind, elementName string, at, defSite position.Span) {
	d := diagnostic.NewDiagnostic().
		Error().
		Semantic().
		Code(kind.code()).
		Title("definite initialization").
		Message(kind.format(elementName)).
		Span(at).
		Related(defSite, fmt.Sprintf("'%s' declared here", elementName)).
		Build()
	s.Engine.AddDiagnostic(d)
}
