// Command gonec is the Gone compiler's command line front end. It replaces the teacher's hand-rolled
// util.ParseArgs flag parser with cobra subcommands, one per pipeline stage spec.md §6.1 names: tokens, ast,
// ir, llvm and build. Every subcommand shares the same util.Options-driven plumbing the compiler stages
// already consume, so adding a stage here never touches the stages themselves.
package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gone/src/ast"
	"gone/src/check"
	"gone/src/frontend"
	"gone/src/gonerr"
	"gone/src/ircode"
	"gone/src/llvmgen"
	"gone/src/util"
)

var opt util.Options

func main() {
	root := &cobra.Command{
		Use:   "gonec",
		Short: "Compiler front end and mid end for the Gone language",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opt.Verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVarP(&opt.Src, "src", "s", "", "path to source file (defaults to stdin)")
	root.PersistentFlags().StringVarP(&opt.Out, "out", "o", "", "path to output file (defaults to stdout)")
	root.PersistentFlags().IntVarP(&opt.Threads, "threads", "t", 1, "worker count for the parallel checker pass")
	root.PersistentFlags().BoolVarP(&opt.Verbose, "verbose", "v", false, "log compiler statistics to stderr")

	root.AddCommand(tokensCmd(), astCmd(), irCmd(), llvmCmd(), buildCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// startWriter brings up util.Writer's listener goroutine for opt.Out as it stands once cobra has parsed
// flags, then returns a func that waits for the final flush and shuts the listener down.
func startWriter() func() {
	wg := sync.WaitGroup{}
	var f *os.File
	if opt.Out != "" {
		var err error
		f, err = os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			f = nil
		}
	}
	util.ListenWrite(opt, f, &wg)
	return func() {
		util.Close()
		wg.Wait()
		if f != nil {
			f.Close()
		}
	}
}

// checkedProgram reads opt.Src, parses and checks it, and returns the resulting tree. Every diagnostic gonerr
// collects is printed to stderr before an error carrying their count is returned, so a failing run always
// shows the full set of problems rather than just the first.
func checkedProgram() (*ast.Program, error) {
	src, err := util.ReadSource(opt)
	if err != nil {
		return nil, fmt.Errorf("could not read source: %s", err)
	}

	rep := gonerr.NewReporter()
	defer rep.Close()

	prog, err := frontend.Parse(src, rep)
	if err != nil {
		return nil, fmt.Errorf("lexical error: %s", err)
	}

	logrus.WithField("threads", opt.Threads).Debug("running semantic checks")
	check.Check(prog, rep, opt)

	if rep.HasErrors() {
		for _, e := range rep.Errors() {
			fmt.Fprintln(os.Stderr, e)
		}
		return nil, fmt.Errorf("%d semantic error(s)", rep.Count())
	}
	return prog, nil
}

// writeResult sends s to opt.Out if set, else to stdout.
func writeResult(s string) error {
	if opt.Out == "" {
		_, err := fmt.Println(s)
		return err
	}
	return os.WriteFile(opt.Out, []byte(s), 0644)
}

// moduleName derives the LLVM module's identifier from the source path, falling back to "gone" for stdin
// input.
func moduleName() string {
	if opt.Src == "" {
		return "gone"
	}
	return opt.Src
}

func tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "Print the token stream for the source file",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := util.ReadSource(opt)
			if err != nil {
				return err
			}
			stop := startWriter()
			defer stop()
			if err := frontend.TokenStream(src); err != nil {
				return fmt.Errorf("syntax error: %s", err)
			}
			return nil
		},
	}
}

func astCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ast",
		Short: "Print the checked syntax tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := checkedProgram()
			if err != nil {
				return err
			}
			return writeResult(ast.Dump(prog))
		},
	}
}

func irCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ir",
		Short: "Print the generated three-address IR",
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := checkedProgram()
			if err != nil {
				return err
			}
			mod := ircode.Generate(prog)
			return writeResult(ircode.Dump(mod))
		},
	}
}

func llvmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "llvm",
		Short: "Print the emitted LLVM IR text",
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := checkedProgram()
			if err != nil {
				return err
			}
			mod := ircode.Generate(prog)
			return writeResult(llvmgen.Emit(mod, moduleName()))
		},
	}
}

func buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <source>",
		Short: "Run every stage on the given source file and print the resulting LLVM IR text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt.Src = args[0]
			return llvmCmd().RunE(cmd, args)
		},
	}
}
