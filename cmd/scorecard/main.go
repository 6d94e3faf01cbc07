// Command scorecard scores accessibility checklist templates from automated
// scan results.
//
//	scorecard score   -template audit.docx -results scan.json -out scored.docx
//	scorecard inspect -template audit.docx
//	scorecard serve   -config scorecard.yml
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "score":
		runScore(os.Args[2:])
	case "inspect":
		runInspect(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: scorecard <command> [flags]

commands:
  score    score a template from scan results and write the scored copy
  inspect  print a template's heading outline and table layout
  serve    run the HTTP scoring service
`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}
