package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/sunholo/checkercore/internal/cerrors"
	"github.com/sunholo/checkercore/internal/check"
	"github.com/sunholo/checkercore/internal/ir"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		fixturePath = flag.String("fixture", "", "path to a YAML declaration fixture")
		maxErrors   = flag.Int("max-errors", cerrors.CatastrophicThreshold, "abort the run once more than this many errors have accumulated")
		verbose     = flag.Bool("verbose", false, "enable per-declaration debug logging")
		jsonOut     = flag.Bool("json", false, "print reports as JSON instead of formatted text")
	)
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintf(os.Stderr, "%s: missing -fixture\n", red("Error"))
		printUsage()
		os.Exit(1)
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	asm, decls, err := ir.LoadFixtureFile(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	errs := cerrors.NewChannel()
	ok := true
	for _, d := range decls {
		emit := ir.NewEmitter()
		irasm := ir.NewIRAssembly()
		c := check.New(asm, emit, irasm, errs, log.WithField("decl", d.Namespace+"."+d.Name))

		fmt.Printf("%s checking %s\n", cyan("→"), bold(d.Namespace+"."+d.Name))
		if cerr := c.CheckFunctionDecl(d); cerr != nil {
			ok = false
			fmt.Printf("  %s %v\n", red("✗"), cerr)
		} else {
			fmt.Printf("  %s %d opcodes emitted\n", green("✓"), emit.GetBody().OpcodeCount())
		}

		if errs.Count() > *maxErrors {
			fmt.Fprintf(os.Stderr, "%s: too many errors (%d), aborting\n", red("Error"), errs.Count())
			ok = false
			break
		}
	}

	if errs.Count() > 0 {
		fmt.Println()
		fmt.Printf("%s %d diagnostic(s):\n", yellow("!"), errs.Count())
		for _, r := range errs.Reports() {
			if *jsonOut {
				j, _ := r.ToJSON(false)
				fmt.Println(j)
				continue
			}
			fmt.Println("  " + r.String())
		}
	}

	if !ok {
		os.Exit(1)
	}
	fmt.Printf("\n%s all declarations check out\n", green("✓"))
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  typecheck -fixture <path.yaml> [-verbose] [-json] [-max-errors N]")
}
