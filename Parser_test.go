package main

import (
	"testing"
)

func parseString(t *testing.T, input string) *CommandNode {
	t.Helper()
	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		t.Fatalf("Expected no lex error for %q, got %v", input, err)
	}
	node, err := NewParser(tokens).ParseLine()
	if err != nil {
		t.Fatalf("Expected no parse error for %q, got %v", input, err)
	}
	return node
}

func parseError(t *testing.T, input string) error {
	t.Helper()
	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		t.Fatalf("Expected no lex error for %q, got %v", input, err)
	}
	_, err = NewParser(tokens).ParseLine()
	if err == nil {
		t.Fatalf("Expected parse error for %q", input)
	}
	return err
}

func TestParseEmptyLine(t *testing.T) {
	if node := parseString(t, ""); node != nil {
		t.Errorf("Expected nil tree for empty line")
	}
	if node := parseString(t, "   # comment"); node != nil {
		t.Errorf("Expected nil tree for comment-only line")
	}
}

func TestParseLeaf(t *testing.T) {
	node := parseString(t, "echo a b")
	if !node.IsLeaf() {
		t.Fatalf("Expected leaf, got op %s", node.Op)
	}
	if got := node.Scmd.Verb.DebugString(); got != "echo" {
		t.Errorf("Expected verb echo, got %s", got)
	}
	if len(node.Scmd.Args) != 2 {
		t.Errorf("Expected 2 args, got %d", len(node.Scmd.Args))
	}
}

func TestParseSequential(t *testing.T) {
	node := parseString(t, "a ; b")
	if node.Op != OP_SEQUENTIAL {
		t.Fatalf("Expected OP_SEQUENTIAL, got %s", node.Op)
	}
	if !node.Left.IsLeaf() || !node.Right.IsLeaf() {
		t.Errorf("Expected leaf children")
	}
}

func TestParsePrecedence(t *testing.T) {
	// `;` binds loosest, then `&&`, then `|`
	node := parseString(t, "a | b && c ; d")
	if node.Op != OP_SEQUENTIAL {
		t.Fatalf("Expected OP_SEQUENTIAL at root, got %s", node.Op)
	}
	left := node.Left
	if left.Op != OP_COND_ZERO {
		t.Fatalf("Expected OP_COND_ZERO below, got %s", left.Op)
	}
	if left.Left.Op != OP_PIPE {
		t.Errorf("Expected OP_PIPE at the bottom, got %s", left.Left.Op)
	}
}

func TestParseLeftAssociativity(t *testing.T) {
	node := parseString(t, "a | b | c")
	if node.Op != OP_PIPE {
		t.Fatalf("Expected OP_PIPE at root, got %s", node.Op)
	}
	if node.Left.Op != OP_PIPE {
		t.Errorf("Expected left-nested pipe, got %s", node.Left.Op)
	}
	if !node.Right.IsLeaf() {
		t.Errorf("Expected rightmost command as a leaf")
	}
}

func TestParseConditionalOperators(t *testing.T) {
	node := parseString(t, "a && b")
	if node.Op != OP_COND_ZERO {
		t.Errorf("Expected OP_COND_ZERO for &&, got %s", node.Op)
	}
	node = parseString(t, "a || b")
	if node.Op != OP_COND_NZERO {
		t.Errorf("Expected OP_COND_NZERO for ||, got %s", node.Op)
	}
}

func TestParseParallel(t *testing.T) {
	node := parseString(t, "a & b")
	if node.Op != OP_PARALLEL {
		t.Errorf("Expected OP_PARALLEL, got %s", node.Op)
	}
}

func TestTrailingSemicolonAllowed(t *testing.T) {
	node := parseString(t, "a ;")
	if !node.IsLeaf() {
		t.Errorf("Expected plain leaf for 'a ;', got %s", node.Op)
	}
}

func TestTrailingAmpersandRejected(t *testing.T) {
	parseError(t, "a &")
}

func TestLeadingOperatorRejected(t *testing.T) {
	parseError(t, "; a")
	parseError(t, "| a")
	parseError(t, "&& a")
}

func TestDanglingOperatorRejected(t *testing.T) {
	parseError(t, "a &&")
	parseError(t, "a |")
	parseError(t, "a ||")
}

func TestParseRedirects(t *testing.T) {
	node := parseString(t, "cmd < in > out 2> err")
	s := node.Scmd
	if s.In == nil || s.In.DebugString() != "in" {
		t.Errorf("Expected input redirect to 'in'")
	}
	if s.Out == nil || s.Out.DebugString() != "out" {
		t.Errorf("Expected output redirect to 'out'")
	}
	if s.Err == nil || s.Err.DebugString() != "err" {
		t.Errorf("Expected error redirect to 'err'")
	}
	if s.Append {
		t.Errorf("Expected truncate mode")
	}
}

func TestParseAppendRedirect(t *testing.T) {
	node := parseString(t, "cmd >> out")
	if !node.Scmd.Append {
		t.Errorf("Expected append flag for >>")
	}
	node = parseString(t, "cmd 2>> err")
	if !node.Scmd.Append {
		t.Errorf("Expected append flag for 2>>")
	}
}

func TestParseBothGreatSharesTarget(t *testing.T) {
	node := parseString(t, "cmd &> all")
	s := node.Scmd
	if s.Out == nil || s.Err == nil {
		t.Fatalf("Expected both out and err set")
	}
	if s.Out != s.Err {
		t.Errorf("Expected out and err to share one target word")
	}
}

func TestRedirectMissingTarget(t *testing.T) {
	parseError(t, "cmd >")
	parseError(t, "cmd > ; b")
}

func TestRedirectBeforeVerb(t *testing.T) {
	node := parseString(t, "> out cmd arg")
	s := node.Scmd
	if s.Out == nil {
		t.Errorf("Expected output redirect")
	}
	if got := s.Verb.DebugString(); got != "cmd" {
		t.Errorf("Expected verb cmd, got %s", got)
	}
	if len(s.Args) != 1 {
		t.Errorf("Expected 1 arg, got %d", len(s.Args))
	}
}
