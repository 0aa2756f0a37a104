package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/xirelogy/go-lox"
	"github.com/xirelogy/go-lox/internal/config"
	"github.com/xirelogy/go-lox/internal/lexer"
	"github.com/xirelogy/go-lox/internal/logging"
	"github.com/xirelogy/go-lox/internal/token"
)

const version = "0.1.0"

// sysexits.h
const (
	exitOK       = 0
	exitUsage    = 64
	exitDataErr  = 65
	exitNoInput  = 66
	exitSoftware = 70
	exitOSErr    = 71
	exitIOErr    = 74
	exitConfig   = 78
)

const helpMessage = `lox evaluates arithmetic expressions.

Usage:
  lox [flags]          start a REPL
  lox [flags] <file>   run a file

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	printCode  bool
	trace      bool
	tokens     bool
	color      bool
	logLevel   string
	logFile    string
	output     string
	version    bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("lox", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.Usage = func() {
		fmt.Fprint(stderr, helpMessage)
		fset.PrintDefaults()
	}

	var opts options
	fset.StringVar(&opts.configPath, "config", "", "path to a lox.toml file")
	fset.BoolVar(&opts.printCode, "print-code", false, "print the bytecode of each compiled chunk")
	fset.BoolVar(&opts.trace, "trace", false, "trace every instruction the VM executes")
	fset.BoolVar(&opts.tokens, "tokens", false, "print the token stream before compiling")
	fset.BoolVar(&opts.color, "color", false, "force coloured output")
	fset.StringVar(&opts.logLevel, "log-level", "", "log level (none, debug, info, warn, error)")
	fset.StringVar(&opts.logFile, "log-file", "", "also write JSON logs to this file")
	fset.StringVar(&opts.output, "o", "", "compile the file to a bytecode image at this path instead of running it")
	fset.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if opts.version {
		fmt.Fprintf(stdout, "lox %s\n", version)
		return exitOK
	}
	if fset.NArg() > 1 || (opts.output != "" && fset.NArg() != 1) {
		fset.Usage()
		return exitUsage
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	applyFlags(cfg, fset, opts)

	logger, closeLog, err := logging.New(logging.Options{Level: cfg.Log.Level, Writer: stderr, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintln(stderr, err)
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return exitOSErr
		}
		return exitConfig
	}
	defer closeLog()
	if cfg.Path != "" {
		logger.Debug("config loaded", "path", cfg.Path)
	}

	s := &session{
		cfg:    cfg,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
		interp: lox.New(
			lox.WithStdout(stdout),
			lox.WithStderr(stderr),
			lox.WithLogger(logger),
			lox.WithPrintCode(cfg.Debug.PrintCode),
			lox.WithTraceExecution(cfg.Debug.TraceExecution),
			lox.WithColor(cfg.Debug.Color),
		),
	}

	if opts.output != "" {
		return s.compileFile(fset.Arg(0), opts.output)
	}
	if fset.NArg() == 1 {
		return s.runFile(fset.Arg(0))
	}
	return s.repl(stdin)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FindAndLoad(".")
}

// applyFlags lets explicitly set flags override the configuration file.
func applyFlags(cfg *config.Config, fset *flag.FlagSet, opts options) {
	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "print-code":
			cfg.Debug.PrintCode = opts.printCode
		case "trace":
			cfg.Debug.TraceExecution = opts.trace
		case "tokens":
			cfg.Debug.Tokens = opts.tokens
		case "color":
			cfg.Debug.Color = opts.color
		case "log-level":
			cfg.Log.Level = opts.logLevel
		case "log-file":
			cfg.Log.File = opts.logFile
		}
	})
}

type session struct {
	cfg    *config.Config
	interp *lox.Interpreter
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func (s *session) readSource(path string) ([]byte, int) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(s.stderr, "could not read file %q: %v\n", path, err)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, exitNoInput
		}
		return nil, exitIOErr
	}
	if len(data) == 0 {
		fmt.Fprintf(s.stderr, "file %q is empty\n", path)
		return nil, exitNoInput
	}
	return data, exitOK
}

func (s *session) runFile(path string) int {
	data, code := s.readSource(path)
	if code != exitOK {
		return code
	}

	s.logger.Debug("run file", "path", path, "bytes", len(data))
	var res lox.Result
	if lox.IsImage(data) {
		res = s.interp.RunImage(data)
	} else {
		res = s.interpret(string(data))
	}
	switch res {
	case lox.ResultCompileError:
		return exitDataErr
	case lox.ResultRuntimeError:
		return exitSoftware
	default:
		return exitOK
	}
}

// compileFile writes the bytecode image of the source at path to out.
func (s *session) compileFile(path, out string) int {
	data, code := s.readSource(path)
	if code != exitOK {
		return code
	}
	if s.cfg.Debug.Tokens {
		dumpTokens(s.stdout, string(data))
	}
	img, err := lox.CompileImage(string(data))
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		var cerr *lox.CompileError
		if errors.As(err, &cerr) {
			return exitDataErr
		}
		return exitSoftware
	}
	if err := os.WriteFile(out, img, 0o644); err != nil {
		fmt.Fprintf(s.stderr, "could not write image %q: %v\n", out, err)
		return exitIOErr
	}
	s.logger.Debug("image written", "path", out, "bytes", len(img))
	return exitOK
}

func (s *session) interpret(source string) lox.Result {
	if s.cfg.Debug.Tokens {
		dumpTokens(s.stdout, source)
	}
	return s.interp.Interpret(source)
}

// dumpTokens lists one token per line with its line number, printing "|"
// when the line repeats.
func dumpTokens(w io.Writer, source string) {
	line := -1
	for _, tok := range lexer.Tokenize(source) {
		if tok.Line != line {
			fmt.Fprintf(w, "%4d ", tok.Line)
			line = tok.Line
		} else {
			fmt.Fprint(w, "   | ")
		}
		if tok.Type == token.EOF {
			fmt.Fprintln(w, tok.Type)
			continue
		}
		fmt.Fprintf(w, "%-13s '%s'\n", tok.Type, tok.Lexeme)
	}
}
