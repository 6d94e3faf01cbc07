package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/a11ylab/scorecard/internal/config"
	"github.com/a11ylab/scorecard/internal/inspect"
)

func runInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	templatePath := fs.String("template", "", "template .docx to inspect (required)")
	configPath := fs.String("config", "", "optional scorecard.yml")
	fs.Parse(args)

	if *templatePath == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("%v", err)
	}

	outline, err := inspect.File(*templatePath, cfg.TablesPerProduct)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Print(outline.Format())
}
