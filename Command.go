package main

type Operator int

const (
	OP_NONE Operator = iota
	OP_SEQUENTIAL
	OP_PARALLEL
	OP_COND_NZERO
	OP_COND_ZERO
	OP_PIPE
)

func (op Operator) String() string {
	switch op {
	case OP_NONE:
		return "OP_NONE"
	case OP_SEQUENTIAL:
		return "OP_SEQUENTIAL"
	case OP_PARALLEL:
		return "OP_PARALLEL"
	case OP_COND_NZERO:
		return "OP_COND_NZERO"
	case OP_COND_ZERO:
		return "OP_COND_ZERO"
	case OP_PIPE:
		return "OP_PIPE"
	}
	return "UNKNOWN"
}

// SimpleCommand is one command invocation: the verb, its argument words,
// and the optional redirection targets. `&> f` parses with Out and Err
// sharing the same word. Append is a single flag for the whole command,
// set when any append-redirect token (>> or 2>>) appeared.
type SimpleCommand struct {
	Verb   Word
	Args   []Word
	Out    *Word
	Err    *Word
	In     *Word
	Append bool
}

// Argv resolves the verb and arguments into an argument vector.
func (s *SimpleCommand) Argv(getenv func(string) string) []string {
	argv := make([]string, 0, len(s.Args)+1)
	argv = append(argv, s.Verb.Resolve(getenv))
	for i := range s.Args {
		argv = append(argv, s.Args[i].Resolve(getenv))
	}
	return argv
}

// CommandNode is a binary tree node. A leaf holds a SimpleCommand and
// OP_NONE; an internal node holds a connecting operator and two children.
// No node is ever both or neither.
type CommandNode struct {
	Op    Operator
	Left  *CommandNode
	Right *CommandNode
	Scmd  *SimpleCommand
}

func NewLeaf(scmd *SimpleCommand) *CommandNode {
	return &CommandNode{Op: OP_NONE, Scmd: scmd}
}

func NewInternal(op Operator, left *CommandNode, right *CommandNode) *CommandNode {
	return &CommandNode{Op: op, Left: left, Right: right}
}

// IsLeaf reports whether the node is a well-formed leaf.
func (c *CommandNode) IsLeaf() bool {
	return c.Op == OP_NONE && c.Scmd != nil && c.Left == nil && c.Right == nil
}

// Malformed reports a violation of the leaf/internal invariant.
func (c *CommandNode) Malformed() bool {
	if c.Scmd != nil {
		return c.Op != OP_NONE || c.Left != nil || c.Right != nil
	}
	return c.Op == OP_NONE || c.Left == nil || c.Right == nil
}
