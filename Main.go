package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// Exit is a variable so fatal paths can be intercepted.
var Exit = os.Exit

// Die reports an unrecoverable failure and terminates the process.
func Die(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "mini-shell: "+format+"\n", args...)
	Exit(1)
}

func main() {
	input := ""
	inputSet := false
	configPath := ""

	i := 1
	for i < len(os.Args) {
		arg := os.Args[i]
		i++
		if arg == "-h" || arg == "--help" {
			fmt.Println("Usage: mini-shell [OPTION].. [FILE]")
			fmt.Println("Usage: mini-shell [OPTION].. -c INPUT")
			fmt.Println("Options:")
			fmt.Println("  -c INPUT       Execute INPUT and exit")
			fmt.Println("  --config PATH  Read startup config from PATH")
			fmt.Println("  -h, --help     Print this help message")
			Exit(0)
			return
		} else if arg == "--config" {
			if i >= len(os.Args) {
				Die("--config requires an argument")
				return
			}
			configPath = os.Args[i]
			i++
		} else if arg == "-c" {
			if i >= len(os.Args) {
				Die("-c requires an argument")
				return
			}
			input = os.Args[i]
			inputSet = true
			i++
		} else {
			contents, err := os.ReadFile(arg)
			if err != nil {
				Die("%v", err)
				return
			}
			input = string(contents)
			inputSet = true
		}
	}

	config, _, err := LoadConfig(configPath)
	if err != nil {
		Die("%v", err)
		return
	}
	if err := config.Apply(); err != nil {
		Die("%v", err)
		return
	}

	ctx := RootContext()

	if inputSet {
		Exit(runLines(strings.Split(input, "\n"), ctx))
		return
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	scanner := bufio.NewScanner(os.Stdin)
	lastStatus := 0
	for {
		if interactive {
			fmt.Print(prompt(config))
		}
		if !scanner.Scan() {
			break
		}
		result := evalLine(scanner.Text(), ctx)
		if result.ExitShell {
			Exit(lastStatus)
			return
		}
		lastStatus = result.Status
	}
	Exit(lastStatus)
}

// runLines executes a script's lines in order and returns the status the
// shell should exit with.
func runLines(lines []string, ctx *ExecuteContext) int {
	lastStatus := 0
	for _, line := range lines {
		result := evalLine(line, ctx)
		if result.ExitShell {
			return lastStatus
		}
		lastStatus = result.Status
	}
	return lastStatus
}

// evalLine lexes, parses, and evaluates one line of input. Lex and parse
// failures are reported and become an ordinary failure status.
func evalLine(line string, ctx *ExecuteContext) EvalResult {
	tokens, err := NewLexer(line).Tokenize()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mini-shell:", err)
		return StatusResult(1)
	}
	node, err := NewParser(tokens).ParseLine()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mini-shell:", err)
		return StatusResult(1)
	}
	result := Evaluate(node, ctx)
	if result.Status == InternalError {
		fmt.Fprintln(os.Stderr, "mini-shell: malformed command")
		return StatusResult(1)
	}
	return result
}

func prompt(config *ShellConfig) string {
	if config != nil && config.Prompt != "" {
		return config.Prompt
	}
	wd, err := os.Getwd()
	if err != nil {
		return "> "
	}
	return filepath.Base(wd) + "> "
}
