// Command vulkyn is the assembler and interpreter front end for the
// vulkyn stack-and-register virtual machine.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/WillemNicolas/vulkyn/config"
	"github.com/WillemNicolas/vulkyn/loader"
	"github.com/WillemNicolas/vulkyn/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "-version", "--version":
		printVersion()
		return
	case "-help", "--help":
		printUsage()
		return
	case "assemble":
		runAssemble(os.Args[2:])
	case "disassemble":
		runDisassemble(os.Args[2:])
	case "run":
		runRun(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown subcommand %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("vulkyn %s\n", Version)
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
}

func printUsage() {
	fmt.Print(`vulkyn - assembler and interpreter for the vulkyn virtual machine

Usage:
  vulkyn assemble [-o out.vimg] <in.vsm>
  vulkyn disassemble <in.vimg>
  vulkyn run [-max-cycles N] [-stack-cap N] [-debug] <in.vimg>
  vulkyn -version
  vulkyn -help
`)
}

func runAssemble(args []string) {
	fs := flag.NewFlagSet("assemble", flag.ExitOnError)
	out := fs.String("o", "", "output image path (default: input path with .vimg extension)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: assemble requires exactly one input file")
		os.Exit(1)
	}
	in := fs.Arg(0)

	prog, err := loader.LoadSource(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	outPath := *out
	if outPath == "" {
		outPath = replaceExt(in, ".vimg")
	}
	if err := loader.SaveImage(outPath, prog); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Assembled %d instructions into %s\n", len(prog.Instructions), outPath)
}

func runDisassemble(args []string) {
	fs := flag.NewFlagSet("disassemble", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: disassemble requires exactly one input file")
		os.Exit(1)
	}

	prog, err := loader.LoadImage(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for i, instr := range prog.Instructions {
		fmt.Printf("%4d  %s\n", i, formatInstruction(instr))
	}
}

func runRun(args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	maxCycles := fs.Uint64("max-cycles", cfg.Execution.MaxCycles, "maximum cycles before halting")
	stackCap := fs.Int("stack-cap", cfg.Execution.StackCap, "maximum stack depth (0 = unbounded)")
	debugMode := fs.Bool("debug", cfg.CLI.Debug, "enable step-by-step execution trace on stderr")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: run requires exactly one input file")
		os.Exit(1)
	}

	prog, err := loader.LoadImage(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	it := vm.NewInterpreter(prog, *stackCap, *maxCycles, os.Stdout)
	it.Memory.HeapBlockWordsMax = cfg.Execution.HeapBlockWordsMax
	if *debugMode {
		it.Trace = os.Stderr
	}

	if err := it.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, line := range it.FlagSummary() {
		fmt.Println(line)
	}
	if it.FinalState() == vm.StateOK {
		os.Exit(0)
	}
	os.Exit(1)
}

func formatInstruction(instr vm.Instruction) string {
	var sb strings.Builder
	sb.WriteString(string(instr.Op))

	switch instr.Op {
	case vm.OpPush, vm.OpRDmp:
		sb.WriteByte(' ')
		sb.WriteString(formatEither(instr.Either1))
	case vm.OpGo, vm.OpGoif, vm.OpCall:
		fmt.Fprintf(&sb, " ->%d", instr.Target)
	case vm.OpRGoif:
		fmt.Fprintf(&sb, " %s ->%d", instr.Reg, instr.Target)
	case vm.OpCallp:
		fmt.Fprintf(&sb, " ->%d %d", instr.Target, instr.Size)
	case vm.OpAlloc, vm.OpRet:
		fmt.Fprintf(&sb, " %d", instr.Size)
	case vm.OpWrite:
		fmt.Fprintf(&sb, " %s [%s|%d]", instr.Literal, instr.Addr.Reg, instr.Addr.Offset)
	}
	return sb.String()
}

func formatEither(e vm.Either) string {
	if e.IsReg {
		return e.Reg.String()
	}
	return e.Word.String()
}

func replaceExt(path, newExt string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[:i] + newExt
	}
	return path + newExt
}
