package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputRedirectTruncates(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.WriteFile(out, []byte("old contents\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := RootContext()
	if got := evalString(t, "echo new > "+out, ctx); got.Status != 0 {
		t.Fatalf("Expected 0, got %d", got.Status)
	}
	contents, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(contents) != "new\n" {
		t.Errorf("Expected truncation, got %q", string(contents))
	}
}

func TestOutputRedirectAppends(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.WriteFile(out, []byte("first\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := RootContext()
	if got := evalString(t, "echo second >> "+out, ctx); got.Status != 0 {
		t.Fatalf("Expected 0, got %d", got.Status)
	}
	contents, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(contents) != "first\nsecond\n" {
		t.Errorf("Expected append, got %q", string(contents))
	}
}

func TestStderrRedirect(t *testing.T) {
	dir := t.TempDir()
	errPath := filepath.Join(dir, "err")

	ctx := RootContext()
	if got := evalString(t, "sh -c 'echo oops 1>&2' 2> "+errPath, ctx); got.Status != 0 {
		t.Fatalf("Expected 0, got %d", got.Status)
	}
	contents, err := os.ReadFile(errPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(contents) != "oops\n" {
		t.Errorf("Expected 'oops\\n', got %q", string(contents))
	}
}

func TestMergedRedirectCollectsBothStreams(t *testing.T) {
	dir := t.TempDir()
	both := filepath.Join(dir, "both")

	ctx := RootContext()
	got := evalString(t, "sh -c 'echo to-out; echo to-err 1>&2' &> "+both, ctx)
	if got.Status != 0 {
		t.Fatalf("Expected 0, got %d", got.Status)
	}
	contents, err := os.ReadFile(both)
	if err != nil {
		t.Fatal(err)
	}
	text := string(contents)
	if !strings.Contains(text, "to-out") || !strings.Contains(text, "to-err") {
		t.Errorf("Expected both streams in one file, got %q", text)
	}
}

func TestMergedRedirectSharesOneFile(t *testing.T) {
	dir := t.TempDir()
	target := literalWord(filepath.Join(dir, "f"))
	s := &SimpleCommand{Verb: literalWord("cmd"), Out: &target, Err: &target}

	rf, err := s.OpenRedirects(RootContext())
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()
	if rf.Out != rf.Err {
		t.Errorf("Expected a single shared file for merged out/err")
	}
}

func TestSeparateErrTargetsOpenTwoFiles(t *testing.T) {
	dir := t.TempDir()
	out := literalWord(filepath.Join(dir, "out"))
	errWord := literalWord(filepath.Join(dir, "err"))
	s := &SimpleCommand{Verb: literalWord("cmd"), Out: &out, Err: &errWord}

	rf, err := s.OpenRedirects(RootContext())
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()
	if rf.Out == nil || rf.Err == nil || rf.Out == rf.Err {
		t.Errorf("Expected two distinct files")
	}
}

func TestInputRedirectCreatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "missing")

	ctx := RootContext()
	if got := evalString(t, "cat < "+in, ctx); got.Status != 0 {
		t.Errorf("Expected 0, got %d", got.Status)
	}
	info, err := os.Stat(in)
	if err != nil {
		t.Fatalf("Expected input file to be created: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("Expected empty file, got %d bytes", info.Size())
	}
}

func TestInputRedirectFeedsStdin(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	out := filepath.Join(dir, "out")
	if err := os.WriteFile(in, []byte("payload\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := RootContext()
	if got := evalString(t, "cat < "+in+" > "+out, ctx); got.Status != 0 {
		t.Fatalf("Expected 0, got %d", got.Status)
	}
	contents, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(contents) != "payload\n" {
		t.Errorf("Expected 'payload\\n', got %q", string(contents))
	}
}

func TestRelativeTargetResolvesAgainstContextDir(t *testing.T) {
	dir := t.TempDir()
	clone := RootContext().Clone()
	if err := clone.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	target := literalWord("rel-out")
	s := &SimpleCommand{Verb: literalWord("cmd"), Out: &target}
	rf, err := s.OpenRedirects(clone)
	if err != nil {
		t.Fatal(err)
	}
	rf.Close()

	if _, err := os.Stat(filepath.Join(dir, "rel-out")); err != nil {
		t.Errorf("Expected file under the context directory: %v", err)
	}
}

func TestRedirectTargetSubstitutesVariables(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MINI_SHELL_TEST_REDIR", dir)

	ctx := RootContext()
	if got := evalString(t, "echo hi > $MINI_SHELL_TEST_REDIR/out", ctx); got.Status != 0 {
		t.Fatalf("Expected 0, got %d", got.Status)
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); err != nil {
		t.Errorf("Expected redirect target to substitute variables: %v", err)
	}
}
