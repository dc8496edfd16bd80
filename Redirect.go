package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// RedirFiles holds the files opened for a simple command's declared
// redirections. A nil field means the stream keeps its current target.
// When out and err name the same file the single opened *os.File is
// shared by both fields.
type RedirFiles struct {
	Out    *os.File
	Err    *os.File
	In     *os.File
	merged bool
}

func (rf *RedirFiles) Close() {
	if rf.Out != nil {
		rf.Out.Close()
	}
	if rf.Err != nil && !rf.merged {
		rf.Err.Close()
	}
	if rf.In != nil {
		rf.In.Close()
	}
}

// OpenRedirects opens the files a simple command's redirections name.
//
// Output and error targets open create+write-only; the input target opens
// create+read-only, so redirecting input from a missing file creates it
// empty instead of erroring. The
// command's append flag selects append mode, otherwise truncate; the
// input stream always takes the append branch of that selection.
//
// When the out and err words resolve to the same string the file is
// opened once in append+truncate mode and serves both streams, so the
// two writers cannot truncate each other. The comparison is plain string
// equality of the resolved words, not path equality.
//
// Relative targets resolve against the context's working directory, the
// directory the command itself runs in.
func (s *SimpleCommand) OpenRedirects(ctx *ExecuteContext) (*RedirFiles, error) {
	rf := &RedirFiles{}

	if s.Out != nil && s.Err != nil {
		outText := s.Out.Resolve(ctx.Getenv)
		if outText == s.Err.Resolve(ctx.Getenv) {
			f, err := os.OpenFile(ctx.ResolvePath(outText), os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_TRUNC, 0666)
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", outText, err)
			}
			rf.Out = f
			rf.Err = f
			rf.merged = true
		}
	}

	if s.Out != nil && rf.Out == nil {
		name := s.Out.Resolve(ctx.Getenv)
		f, err := os.OpenFile(ctx.ResolvePath(name), os.O_CREATE|os.O_WRONLY|outFlag(s.Append), 0666)
		if err != nil {
			rf.Close()
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		rf.Out = f
	}

	if s.Err != nil && rf.Err == nil {
		name := s.Err.Resolve(ctx.Getenv)
		f, err := os.OpenFile(ctx.ResolvePath(name), os.O_CREATE|os.O_WRONLY|outFlag(s.Append), 0666)
		if err != nil {
			rf.Close()
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		rf.Err = f
	}

	if s.In != nil {
		name := s.In.Resolve(ctx.Getenv)
		f, err := os.OpenFile(ctx.ResolvePath(name), os.O_CREATE|os.O_RDONLY|os.O_APPEND, 0666)
		if err != nil {
			rf.Close()
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		rf.In = f
	}

	return rf, nil
}

func outFlag(appendMode bool) int {
	if appendMode {
		return os.O_APPEND
	}
	return os.O_TRUNC
}

// RedirScope overlays a command's redirections onto the live standard
// descriptors of this process, remembering the originals. It is the
// in-process form of redirection used around builtins running in the
// root context, where no child process exists to confine the change.
type RedirScope struct {
	saved [3]int
}

var redirStreams = [3]int{unix.Stdout, unix.Stderr, unix.Stdin}

// EnterRedirScope saves all three standard descriptors, declared or not,
// then points each declared stream at its opened file and closes the
// originals held in rf. A duplicate failure here leaves the descriptor
// table in an unknown state, so it aborts the process.
func EnterRedirScope(rf *RedirFiles) *RedirScope {
	scope := &RedirScope{}
	for i, fd := range redirStreams {
		saved, err := unix.Dup(fd)
		if err != nil {
			Die("dup: %v", err)
		}
		scope.saved[i] = saved
	}
	files := [3]*os.File{rf.Out, rf.Err, rf.In}
	for i, f := range files {
		if f == nil {
			continue
		}
		if err := unix.Dup3(int(f.Fd()), redirStreams[i], 0); err != nil {
			Die("dup2: %v", err)
		}
	}
	rf.Close()
	return scope
}

// Restore puts the saved descriptors back on the standard stream slots
// and releases the saves.
func (scope *RedirScope) Restore() {
	for i, fd := range redirStreams {
		if err := unix.Dup3(scope.saved[i], fd, 0); err != nil {
			Die("dup2: %v", err)
		}
		unix.Close(scope.saved[i])
	}
}
