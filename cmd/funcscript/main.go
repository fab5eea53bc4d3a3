// Command funcscript is the line-oriented CLI/REPL front end sketched
// by spec.md §6.5: evaluate a single expression passed on the command
// line, evaluate piped stdin, or open an interactive REPL.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/funcscript/internal/hostenv"
	"github.com/funvibe/funcscript/internal/lexer"
	"github.com/funvibe/funcscript/internal/native"
	"github.com/funvibe/funcscript/internal/vm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	m := newMachine()
	cfg := loadConfig()

	if len(args) > 0 {
		return evalAndPrint(m, cfg, strings.Join(args, " "))
	}

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return repl(m, cfg)
	}
	return evalStdin(m, cfg)
}

func newMachine() *vm.VM {
	m := vm.New()
	m.Host = hostenv.OS{}
	native.Register(m)
	return m
}

func evalAndPrint(m *vm.VM, cfg rcConfig, src string) int {
	v, err := m.Interpret(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error %d: %s\n", err.Code, err.Message)
		return 1
	}
	out, jerr := m.ToJSON(v)
	if jerr != nil {
		fmt.Fprintf(os.Stderr, "error %d: %s\n", jerr.Code, jerr.Message)
		return 1
	}
	fmt.Println(prettyPrint(out, cfg.PrettyWidth))
	return 0
}

// prettyPrint re-indents compact JSON with tab-stops of width spaces when
// the REPL config requests it (spec.md §10.4); width <= 0 leaves it compact.
func prettyPrint(compact string, width int) string {
	if width <= 0 {
		return compact
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(compact), "", strings.Repeat(" ", width)); err != nil {
		return compact
	}
	return buf.String()
}

func evalStdin(m *vm.VM, cfg rcConfig) int {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return evalAndPrint(m, cfg, string(src))
}

// repl buffers lines until brackets balance and no string/template is
// unterminated (spec.md §6.5), then evaluates the buffered source.
func repl(m *vm.VM, cfg rcConfig) int {
	hist := openHistory(cfg.HistoryFile)
	if hist != nil {
		defer hist.Close()
	}

	scanner := bufio.NewScanner(os.Stdin)
	var buf strings.Builder
	fmt.Print(cfg.Prompt)
	for scanner.Scan() {
		buf.WriteString(scanner.Text())
		buf.WriteByte('\n')

		src := buf.String()
		if strings.TrimSpace(src) == "" {
			buf.Reset()
			fmt.Print(cfg.Prompt)
			continue
		}
		if lexer.Incomplete(src) {
			fmt.Print("... ")
			continue
		}

		appendHistory(hist, src)
		evalAndPrint(m, cfg, src)
		buf.Reset()
		fmt.Print(cfg.Prompt)
	}
	fmt.Println()
	return 0
}

func openHistory(path string) *os.File {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil
	}
	return f
}

func appendHistory(f *os.File, src string) {
	if f == nil {
		return
	}
	f.WriteString(strings.TrimRight(src, "\n"))
	f.WriteString("\n")
}
