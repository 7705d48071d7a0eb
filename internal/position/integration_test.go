package position

import (
	"strings"
	"testing"
)

// TestPositionIntegrationWithAST tests integration between position system and AST.
func TestPositionIntegrationWithAST(t *testing.T) {
	sourceMap := NewSourceMap()
	content := `func fibonacci(n int) int {
	if n <= 1 {
		return n
	}
	return fibonacci(n-1) + fibonacci(n-2)
}`
	file := sourceMap.AddFile("fibonacci.oriz", content)

	tests := []struct {
		name     string
		line     int
		column   int
		expected string
	}{
		{"function keyword", 1, 1, "func"},
		{"function name", 1, 6, "fibonacci"},
		{"parameter", 1, 16, "n"},
		{"if keyword", 2, 2, "if"},
		{"return keyword", 3, 3, "return"},
		{"recursive call", 5, 9, "fibonacci"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pos := Position{
				Filename: "fibonacci.oriz",
				Line:     test.line,
				Column:   test.column,
				Offset:   file.OffsetFromPosition(Position{Filename: "fibonacci.oriz", Line: test.line, Column: test.column}),
			}

			span := Span{
				Start: pos,
				End: Position{
					Filename: "fibonacci.oriz",
					Line:     test.line,
					Column:   test.column + len(test.expected),
					Offset:   pos.Offset + len(test.expected),
				},
			}

			spanText := sourceMap.GetSpanText(span)
			if spanText != test.expected {
				t.Errorf("Expected span text '%s', got '%s'", test.expected, spanText)
			}
		})
	}
}

// TestDiagnosticIntegration tests diagnostic reporting with source context.
func TestDiagnosticIntegration(t *testing.T) {
	sourceMap := NewSourceMap()
	content := `func main() {
	let x = 10
	let y = x +
	println(x, y)
}`
	sourceMap.AddFile("syntax_error.oriz", content)

	diag := NewDiagnostic()

	syntaxErrorPos := Position{
		Filename: "syntax_error.oriz",
		Line:     3,
		Column:   13,
		Offset:   27,
	}
	diag.AddError(syntaxErrorPos, "syntax", "unexpected end of line")

	warningPos := Position{
		Filename: "syntax_error.oriz",
		Line:     4,
		Column:   11,
		Offset:   40,
	}
	diag.AddWarning(warningPos, "unused", "variable 'y' may be uninitialized")

	if diag.ErrorCount() != 1 {
		t.Errorf("expected 1 error, got %d", diag.ErrorCount())
	}
	if diag.WarningCount() != 1 {
		t.Errorf("expected 1 warning, got %d", diag.WarningCount())
	}
	if !strings.Contains(diag.Errors[0].String(), "unexpected end of line") {
		t.Errorf("error string missing message: %s", diag.Errors[0].String())
	}
	if !strings.Contains(diag.Warnings[0].String(), "may be uninitialized") {
		t.Errorf("warning string missing message: %s", diag.Warnings[0].String())
	}
}

// TestSourceMapMultipleFiles tests source map with multiple files.
func TestSourceMapMultipleFiles(t *testing.T) {
	sourceMap := NewSourceMap()

	sourceMap.AddFile("a.oriz", "func a() {}\n")
	sourceMap.AddFile("b.oriz", "func b() {}\n")

	if len(sourceMap.GetFiles()) != 2 {
		t.Fatalf("expected 2 files, got %d", len(sourceMap.GetFiles()))
	}

	if sourceMap.GetFile("a.oriz") == nil {
		t.Error("expected to find a.oriz")
	}
	if sourceMap.GetFile("missing.oriz") != nil {
		t.Error("expected nil for missing file")
	}
}

// TestErrorRecoveryWithPosition tests error recovery scenarios with multiple diagnostics.
func TestErrorRecoveryWithPosition(t *testing.T) {
	sourceMap := NewSourceMap()
	content := `func problematic() {
	let x = 10 +
	let y = 20 *
	let z = x + y
	return z
}`
	sourceMap.AddFile("errors.oriz", content)

	diag := NewDiagnostic()

	diag.AddError(
		Position{Filename: "errors.oriz", Line: 2, Column: 13, Offset: 25},
		"syntax",
		"expected expression after '+'",
	)
	diag.AddError(
		Position{Filename: "errors.oriz", Line: 3, Column: 13, Offset: 40},
		"syntax",
		"expected expression after '*'",
	)
	diag.AddWarning(
		Position{Filename: "errors.oriz", Line: 4, Column: 10, Offset: 55},
		"semantic",
		"variables 'x' and 'y' may not be properly initialized",
	)

	if diag.ErrorCount() != 2 {
		t.Errorf("expected 2 errors, got %d", diag.ErrorCount())
	}
	if !diag.HasWarnings() {
		t.Error("expected at least one warning")
	}

	lines := sourceMap.GetFiles()["errors.oriz"].Lines
	if len(lines) == 0 {
		t.Error("expected source lines to be recorded")
	}
}
