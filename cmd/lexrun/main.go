/*
Lexrun runs a rule set — a file of regex rules in either the plain
line-based format or the richer TOML format — against an input file or
stdin, printing the resulting tokens.

Usage:

	lexrun [flags]

The flags are:

	-v, --version
		Give the current version of rexlex and then exit.

	-r, --rules FILE
		Use the provided rule file. Defaults to "rules.lx" in the current
		working directory. Files ending in ".toml" are parsed as the
		multi-state TOML format; anything else is parsed as the plain
		line-based format.

	-i, --input FILE
		Read text to tokenize from FILE instead of stdin.

	-I, --interactive
		Start a REPL: each line read is tokenized independently and the
		resulting tokens are printed before the next prompt.

	-d, --direct
		Force reading REPL input directly from stdin instead of going
		through GNU readline, even if launched in a tty.

	-p, --print-program
		Print the compiled bytecode program as a table instead of
		tokenizing anything.

	-s, --stats
		Print a human-readable summary of the program (instruction count,
		rule count, and encoded size) to stderr after tokenizing.

	-c, --cache FILE
		Cache the compiled program at FILE, keyed by rule file content, so
		unchanged rule sets skip reparsing and retranslation on the next run.

Once started in interactive mode, input is tokenized line by line until
end of input or the REPL is closed. In non-interactive mode, the whole
input is read and tokenized in one pass. In both modes, input that no rule
matches is skipped one character at a time without being reported.
*/
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/dekarrin/rexlex/internal/input"
	"github.com/dekarrin/rexlex/internal/lexerr"
	"github.com/dekarrin/rexlex/internal/progcache"
	"github.com/dekarrin/rexlex/internal/reprog"
	"github.com/dekarrin/rexlex/internal/rexlex"
	"github.com/dekarrin/rexlex/internal/ruleset"
	"github.com/dekarrin/rexlex/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitInitError indicates the rule set or cache could not be loaded or
	// compiled.
	ExitInitError

	// ExitRunError indicates an unsuccessful tokenization pass.
	ExitRunError
)

var (
	returnCode      int     = ExitSuccess
	flagVersion     *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	rulesFile       *string = pflag.StringP("rules", "r", "rules.lx", "The rule file defining the lexer's patterns and actions")
	inputFile       *string = pflag.StringP("input", "i", "", "Read text to tokenize from this file instead of stdin")
	interactive     *bool   = pflag.BoolP("interactive", "I", false, "Start a REPL that tokenizes one line at a time")
	forceDirect     *bool   = pflag.BoolP("direct", "d", false, "Force reading REPL input directly from stdin instead of going through GNU readline")
	printProgram    *bool   = pflag.BoolP("print-program", "p", false, "Print the compiled bytecode program instead of tokenizing")
	showStats       *bool   = pflag.BoolP("stats", "s", false, "Print a summary of program size to stderr")
	cacheFile       *string = pflag.StringP("cache", "c", "", "Cache the compiled program at this path, keyed by rule file content")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	tz, prog, initErr := buildTokenizer(*rulesFile, *cacheFile)
	if initErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
		returnCode = ExitInitError
		return
	}

	if *printProgram {
		fmt.Println(formatProgram(prog))
		return
	}

	var runErr error
	if *interactive {
		runErr = runREPL(tz, *forceDirect)
	} else {
		runErr = runOnce(tz, *inputFile)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", runErr.Error())
		returnCode = ExitRunError
		return
	}

	if *showStats {
		printStats(os.Stderr, prog)
	}
}

// buildTokenizer loads path as a rule set, compiles it into a
// rexlex.Tokenizer, and returns the compiled reprog.Program alongside it for
// diagnostics. When cachePath is non-empty, a cached program matching the
// rule file's current content is reused instead of recompiling.
func buildTokenizer(path, cachePath string) (*rexlex.Tokenizer, *reprog.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read rule file: %w", err)
	}

	if cachePath != "" {
		if prog, names, ok := progcache.Load(cachePath, data); ok {
			return rexlex.FromProgram(prog, printActions(names)), prog, nil
		}
	}

	var rs *ruleset.RuleSet
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		rs, err = ruleset.LoadTOML(data)
	} else {
		rs, err = ruleset.LoadLines(data)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("parse rule file: %w", err)
	}

	names := make([]string, 0, len(rs.Rules))
	b := rexlex.NewBuilder()
	for _, r := range rs.Rules {
		name := r.ActionName
		names = append(names, name)
		if _, err := b.AddRule(r.Pattern, func(text string) {
			fmt.Printf("%s: %q\n", name, text)
		}); err != nil {
			return nil, nil, lexerr.New(fmt.Sprintf("rule %q", r.Pattern), err)
		}
	}
	tz, err := b.Finish()
	if err != nil {
		return nil, nil, err
	}

	if cachePath != "" {
		if err := progcache.Save(cachePath, data, tz.Program(), names); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: could not write program cache: %s\n", err.Error())
		}
	}

	return tz, tz.Program(), nil
}

// printActions rebuilds the print-to-stdout actions a cache hit needs,
// since the cached reprog.Program carries no record of the rule names
// buildTokenizer's fresh-compile path closes over.
func printActions(names []string) []rexlex.Action {
	actions := make([]rexlex.Action, len(names))
	for i, name := range names {
		name := name
		actions[i] = func(text string) {
			fmt.Printf("%s: %q\n", name, text)
		}
	}
	return actions
}

func runOnce(tz *rexlex.Tokenizer, inputFile string) error {
	var r io.Reader = os.Stdin
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	text, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	tz.Run(string(text))
	return nil
}

func runREPL(tz *rexlex.Tokenizer, forceDirect bool) error {
	var reader input.CommandReader
	var err error

	useReadline := !forceDirect && input.IsTerminal(os.Stdin) && input.IsTerminal(os.Stdout)
	if useReadline {
		reader, err = input.NewInteractiveReader()
		if err != nil {
			reader = input.NewDirectReader(os.Stdin)
		}
	} else {
		reader = input.NewDirectReader(os.Stdin)
	}
	defer reader.Close()
	reader.AllowBlank(true)

	for {
		line, err := reader.ReadCommand()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read line: %w", err)
		}
		tz.Run(line)
	}
}

func printStats(w io.Writer, prog *reprog.Program) {
	fmt.Fprintf(w, "program: %s instructions, %s rules\n",
		humanize.Comma(int64(prog.Len())), humanize.Comma(int64(prog.NumRules())))
	fmt.Fprintf(w, "encoded size: %s\n", humanize.Bytes(uint64(len(prog.Encode()))))
}
