package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// InternalError marks a malformed tree or empty verb. It is negative so
// it can never be mistaken for a shell exit status.
const InternalError = -1

// EvalResult is the outcome of evaluating a command tree: an exit status
// in [0,255], or the shell-exit sentinel carried out-of-band in ExitShell
// so that arithmetic on Status can never misread it. Signaled records
// that the command's process died to a signal rather than exiting.
type EvalResult struct {
	Status    int
	ExitShell bool
	Signaled  bool
}

func SimpleSuccess() EvalResult {
	return EvalResult{}
}

func StatusResult(status int) EvalResult {
	return EvalResult{Status: status}
}

func ShellExitResult() EvalResult {
	return EvalResult{ExitShell: true}
}

// Diagnose reports a non-fatal failure on the context's standard error.
func Diagnose(ctx *ExecuteContext, format string, args ...interface{}) {
	out := os.Stderr
	if ctx != nil && ctx.Stderr != nil {
		out = ctx.Stderr
	}
	fmt.Fprintf(out, format+"\n", args...)
}

// ExecuteContext carries the ambient state one branch of the tree runs
// under. The root context is backed directly by the process: environment
// updates go through os.Setenv and cd through os.Chdir, so they persist
// across sequential siblings. Pipe and parallel branches run under
// cloned contexts holding their own environment overlay and working
// directory, so changes made inside them die with the branch, the same
// way they died with the forked child they stand in for.
type ExecuteContext struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	env map[string]string
	dir string
}

func RootContext() *ExecuteContext {
	return &ExecuteContext{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (ctx *ExecuteContext) IsSubshell() bool {
	return ctx.env != nil
}

// Clone produces the context a concurrent branch evaluates under: same
// stream targets, private copies of the environment and working
// directory.
func (ctx *ExecuteContext) Clone() *ExecuteContext {
	clone := &ExecuteContext{Stdin: ctx.Stdin, Stdout: ctx.Stdout, Stderr: ctx.Stderr}
	clone.env = make(map[string]string)
	if ctx.env == nil {
		for _, kv := range os.Environ() {
			if eq := strings.IndexByte(kv, '='); eq > 0 {
				clone.env[kv[:eq]] = kv[eq+1:]
			}
		}
	} else {
		for k, v := range ctx.env {
			clone.env[k] = v
		}
	}
	clone.dir = ctx.dir
	if clone.dir == "" {
		if wd, err := os.Getwd(); err == nil {
			clone.dir = wd
		}
	}
	return clone
}

func (ctx *ExecuteContext) Getenv(name string) string {
	if ctx.env != nil {
		return ctx.env[name]
	}
	return os.Getenv(name)
}

func (ctx *ExecuteContext) Setenv(name string, value string) error {
	if ctx.env != nil {
		ctx.env[name] = value
		return nil
	}
	return os.Setenv(name, value)
}

// Chdir changes the branch's working directory: the process directory in
// the root context, the private one in a subshell context.
func (ctx *ExecuteContext) Chdir(dir string) error {
	if ctx.env == nil {
		return os.Chdir(dir)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(ctx.dir, dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "chdir", Path: dir, Err: syscall.ENOTDIR}
	}
	ctx.dir = dir
	return nil
}

// ResolvePath resolves a relative filesystem path against the branch's
// working directory. In the root context the process working directory
// already applies.
func (ctx *ExecuteContext) ResolvePath(path string) string {
	if ctx.env == nil || ctx.dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(ctx.dir, path)
}

// Environ returns the environment for a child process, or nil when the
// child should inherit this process's environment unchanged.
func (ctx *ExecuteContext) Environ() []string {
	if ctx.env == nil {
		return nil
	}
	env := make([]string, 0, len(ctx.env))
	for k, v := range ctx.env {
		env = append(env, k+"="+v)
	}
	return env
}

// Evaluate walks the command tree and reduces it to a single result.
// A nil tree (empty input line) is success.
func Evaluate(c *CommandNode, ctx *ExecuteContext) EvalResult {
	if c == nil {
		return SimpleSuccess()
	}
	if c.Malformed() {
		return StatusResult(InternalError)
	}
	if c.IsLeaf() {
		return ExecuteSimple(c.Scmd, ctx)
	}

	switch c.Op {
	case OP_SEQUENTIAL:
		left := Evaluate(c.Left, ctx)
		if left.ExitShell {
			return left
		}
		return Evaluate(c.Right, ctx)

	case OP_COND_NZERO:
		left := Evaluate(c.Left, ctx)
		if left.ExitShell {
			return left
		}
		if left.Status != 0 {
			return Evaluate(c.Right, ctx)
		}
		return left

	case OP_COND_ZERO:
		left := Evaluate(c.Left, ctx)
		if left.ExitShell {
			return left
		}
		if left.Status == 0 {
			return Evaluate(c.Right, ctx)
		}
		return left

	case OP_PARALLEL:
		return runInParallel(c.Left, c.Right, ctx)

	case OP_PIPE:
		return runOnPipe(c.Left, c.Right, ctx)
	}

	// OP_NONE on an internal node is unreachable for well-formed trees
	return StatusResult(InternalError)
}

// runInParallel evaluates both subtrees concurrently in cloned contexts
// and waits for both unconditionally. The combined status collapses to
// success/failure: the node fails only if a branch's process died to a
// signal, since two independent numeric statuses have no meaningful
// merge.
func runInParallel(left *CommandNode, right *CommandNode, ctx *ExecuteContext) EvalResult {
	leftCtx := ctx.Clone()
	rightCtx := ctx.Clone()

	var wg sync.WaitGroup
	var leftRes, rightRes EvalResult

	wg.Add(2)
	go func() {
		defer wg.Done()
		leftRes = Evaluate(left, leftCtx)
	}()
	go func() {
		defer wg.Done()
		rightRes = Evaluate(right, rightCtx)
	}()
	wg.Wait()

	if leftRes.ExitShell || rightRes.ExitShell {
		return ShellExitResult()
	}
	if leftRes.Signaled || rightRes.Signaled {
		return StatusResult(1)
	}
	return SimpleSuccess()
}

// runOnPipe connects the left subtree's standard output to the right
// subtree's standard input through an anonymous pipe and evaluates both
// concurrently. Each pipe end is closed as soon as its branch finishes,
// so the reader sees EOF once the writer is done. The pipe's status is
// the right branch's status, conventional last-stage-wins semantics.
func runOnPipe(left *CommandNode, right *CommandNode, ctx *ExecuteContext) EvalResult {
	pr, pw, err := os.Pipe()
	if err != nil {
		Die("pipe: %v", err)
	}

	leftCtx := ctx.Clone()
	leftCtx.Stdout = pw
	rightCtx := ctx.Clone()
	rightCtx.Stdin = pr

	var wg sync.WaitGroup
	var leftRes, rightRes EvalResult

	wg.Add(2)
	go func() {
		defer wg.Done()
		leftRes = Evaluate(left, leftCtx)
		pw.Close()
	}()
	go func() {
		defer wg.Done()
		rightRes = Evaluate(right, rightCtx)
		pr.Close()
	}()
	wg.Wait()

	if leftRes.ExitShell || rightRes.ExitShell {
		return ShellExitResult()
	}
	return rightRes
}

// ExecuteSimple resolves one simple command to an exit status: booleans
// and builtins run in-process, assignments mutate the current context,
// anything else becomes a child process.
func ExecuteSimple(s *SimpleCommand, ctx *ExecuteContext) EvalResult {
	if s == nil || s.Verb.Empty() {
		return StatusResult(InternalError)
	}

	verb := s.Verb.Resolve(ctx.Getenv)

	switch verb {
	case "true":
		return SimpleSuccess()
	case "false":
		return StatusResult(1)
	case "cd":
		return runCd(s, ctx)
	case "exit", "quit":
		return ShellExitResult()
	}

	if name, valueParts, ok := s.Verb.IsAssignment(); ok {
		value := (&Word{Parts: valueParts}).Resolve(ctx.Getenv)
		if err := ctx.Setenv(name, value); err != nil {
			Diagnose(ctx, "%s: %v", name, err)
			return StatusResult(1)
		}
		return SimpleSuccess()
	}

	return runExternal(s, ctx, verb)
}

// runExternal launches the named executable as a child process with the
// command's redirections and the context's streams, environment, and
// working directory, then waits for it and reports its status. An
// image that cannot be loaded is the child's failure, not the shell's.
func runExternal(s *SimpleCommand, ctx *ExecuteContext, verb string) EvalResult {
	rf, err := s.OpenRedirects(ctx)
	if err != nil {
		Diagnose(ctx, "%v", err)
		return StatusResult(1)
	}
	defer rf.Close()

	stderr := ctx.Stderr
	if rf.Err != nil {
		stderr = rf.Err
	}

	path, found := binManager.Lookup(verb)
	if !found {
		fmt.Fprintf(stderr, "Execution failed for '%s'\n", verb)
		return StatusResult(1)
	}

	cmd := &exec.Cmd{Path: path, Args: s.Argv(ctx.Getenv)}
	cmd.Stdin = ctx.Stdin
	cmd.Stdout = ctx.Stdout
	cmd.Stderr = stderr
	if rf.In != nil {
		cmd.Stdin = rf.In
	}
	if rf.Out != nil {
		cmd.Stdout = rf.Out
	}
	cmd.Env = ctx.Environ()
	cmd.Dir = ctx.dir

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			ws := unix.WaitStatus(exitErr.Sys().(syscall.WaitStatus))
			if ws.Signaled() {
				return EvalResult{Status: 128 + int(ws.Signal()), Signaled: true}
			}
			return StatusResult(ws.ExitStatus())
		}
		fmt.Fprintf(stderr, "Execution failed for '%s'\n", verb)
		return StatusResult(1)
	}
	return SimpleSuccess()
}
