package main

import (
	"fmt"
	"os"
)

// runCd executes the cd builtin. Redirections still apply around it even
// though no child process exists: in the root context they are overlaid
// on the live descriptor table and restored afterwards, in a subshell
// context they replace the context's stream targets for the call.
func runCd(s *SimpleCommand, ctx *ExecuteContext) EvalResult {
	rf, err := s.OpenRedirects(ctx)
	if err != nil {
		if ctx.IsSubshell() {
			Diagnose(ctx, "%v", err)
			return StatusResult(1)
		}
		Die("%v", err)
	}

	stderr := ctx.Stderr
	if ctx.IsSubshell() {
		if rf.Err != nil {
			stderr = rf.Err
		}
		defer rf.Close()
	} else {
		scope := EnterRedirScope(rf)
		defer scope.Restore()
		stderr = os.Stderr
	}

	if len(s.Args) != 1 || len(s.Args[0].Parts) != 1 {
		fmt.Fprintln(stderr, "cd: expected one argument")
		return StatusResult(1)
	}

	dir := s.Args[0].Resolve(ctx.Getenv)
	if err := ctx.Chdir(dir); err != nil {
		fmt.Fprintf(stderr, "cd: %v\n", err)
		return StatusResult(1)
	}
	return SimpleSuccess()
}
