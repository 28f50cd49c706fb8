// Command bessy compiles and runs bessy source files, or drives an
// interactive REPL when given none. On an interactive terminal the REPL
// shows a prompt and, on exit, prints a summary line showing how long the
// session ran and how much source it processed.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/veera-sivarajan/bessy/internal/compiler"
	"github.com/veera-sivarajan/bessy/internal/config"
	"github.com/veera-sivarajan/bessy/internal/history"
	"github.com/veera-sivarajan/bessy/internal/vm"
)

const version = "v0.1.0"

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "Recovered from panic:", r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	showDisassemble := flag.Bool("disassemble", false, "print bytecode disassembly before running")
	showVersion := flag.Bool("version", false, "show version information")
	configPath := flag.String("config", ".bessyrc.yaml", "path to a .bessyrc.yaml configuration file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bessy [options] [file]\n\nOptions:\n")
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  --%s\n\t%s\n", f.Name, f.Usage)
		})
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("bessy %s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("bessy: reading %s: %s", *configPath, err)
	}
	if *showDisassemble {
		cfg.Disassemble = true
	}

	args := flag.Args()
	if len(args) < 1 {
		runREPL(cfg)
		return
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "bessy: %s\n", err)
		os.Exit(1)
	}

	if !runSource(string(content), cfg, vm.New(), os.Stdout) {
		os.Exit(1)
	}
}

// runSource compiles and runs one piece of source against a VM, printing
// any diagnostic to stderr. It reports whether the run succeeded.
func runSource(source string, cfg config.Config, machine *vm.VM, out *os.File) bool {
	ch, err := compiler.Compile(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	if cfg.Disassemble {
		ch.Disassemble(os.Stderr, "chunk")
	}
	if err := machine.Run(ch, out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	return true
}

func runREPL(cfg config.Config) {
	sessionID := uuid.New()
	log.SetPrefix(fmt.Sprintf("bessy[%s] ", sessionID))
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	var hist *history.History
	if cfg.HistoryFile != "" {
		h, err := history.Open(cfg.HistoryFile)
		if err != nil {
			log.Printf("opening history file: %s", err)
		} else {
			hist = h
			defer hist.Close()
		}
	}

	if interactive {
		fmt.Printf("bessy %s (session %s)\n", version, sessionID)
		fmt.Println("Type 'exit' to quit.")
	}

	machine := vm.New()
	scanner := bufio.NewScanner(os.Stdin)

	var linesRun, bytesRun int
	start := time.Now()

	for {
		if interactive {
			fmt.Print(cfg.Prompt)
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		if hist != nil {
			if err := hist.Append(line); err != nil {
				log.Printf("recording history: %s", err)
			}
		}

		runSource(line, cfg, machine, os.Stdout)
		linesRun++
		bytesRun += len(line)
	}

	if interactive {
		fmt.Printf("Session started %s; ran %s lines (%s).\n",
			humanize.RelTime(start, time.Now(), "ago", "from now"),
			humanize.Comma(int64(linesRun)),
			humanize.Bytes(uint64(bytesRun)))
	}
}
