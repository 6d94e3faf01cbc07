package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/a11ylab/scorecard/internal/config"
	"github.com/a11ylab/scorecard/internal/container"
	"github.com/a11ylab/scorecard/internal/mapping"
	"github.com/a11ylab/scorecard/internal/oxml"
	"github.com/a11ylab/scorecard/internal/report"
	"github.com/a11ylab/scorecard/internal/scoring"
	"github.com/a11ylab/scorecard/internal/template"
	"github.com/a11ylab/scorecard/internal/verdict"
)

func runScore(args []string) {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	templatePath := fs.String("template", "", "template .docx to score (required)")
	resultsPath := fs.String("results", "", "scan results JSON (optional; without it only manual and carried scores apply)")
	outPath := fs.String("out", "", "output .docx path (required)")
	configPath := fs.String("config", "", "optional scorecard.yml")
	mappingPath := fs.String("mapping", "", "override the mapping file path")
	carryPath := fs.String("carry", "", "override the carry-forward file path")
	productIdx := fs.Int("product", -1, "score only this product index (default: all)")
	reportPath := fs.String("report", "", "also write a report (.md or .html by extension)")
	fs.Parse(args)

	if *templatePath == "" || *outPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("%v", err)
	}
	if *mappingPath != "" {
		cfg.MappingPath = *mappingPath
	}
	if *carryPath != "" {
		cfg.CarryForwardPath = *carryPath
	}

	m, err := mapping.Load(cfg.MappingPath)
	if err != nil {
		if errors.Is(err, mapping.ErrMappingNotFound) {
			fatal("%v\nGenerate the mapping file or point -mapping at an existing one.", err)
		}
		fatal("%v", err)
	}

	var carry mapping.CarryForward
	if cfg.CarryForwardPath != "" {
		if carry, err = mapping.LoadCarryForward(cfg.CarryForwardPath); err != nil {
			fatal("%v", err)
		}
	}

	var results []verdict.ResourceResult
	if *resultsPath != "" {
		data, err := os.ReadFile(*resultsPath)
		if err != nil {
			fatal("read scan results: %v", err)
		}
		if err := json.Unmarshal(data, &results); err != nil {
			fatal("parse scan results %s: %v", *resultsPath, err)
		}
	}

	doc, err := container.Open(*templatePath)
	if err != nil {
		fatal("%v", err)
	}
	tree, err := oxml.Parse(doc.Body())
	if err != nil {
		fatal("parse template body: %v", err)
	}
	layout := cfg.Layout()
	model, err := template.Extract(tree, layout)
	if err != nil {
		fatal("%v", err)
	}

	products := model.Products
	if *productIdx >= 0 {
		p, err := model.Product(*productIdx)
		if err != nil {
			fatal("%v", err)
		}
		products = []*template.Product{p}
	}

	verdicts := verdict.Aggregate(results)
	scorer := scoring.New(m, verdicts, carry, scoring.Config{MatchThreshold: cfg.MatchThreshold})

	var prodResults []report.ProductResult
	for _, p := range products {
		scores := scorer.ScoreProduct(p)
		for tableIndex, updates := range scoring.Updates(scores) {
			tbl := tableByIndex(model, tableIndex)
			if tbl == nil {
				fatal("internal: no table %d", tableIndex)
			}
			if err := template.ApplyScores(tbl, updates, layout); err != nil {
				fatal("%v", err)
			}
		}
		prodResults = append(prodResults, report.ProductResult{Product: p, Scores: scores})
	}

	if err := doc.Save(*outPath, oxml.Serialize(tree)); err != nil {
		fatal("%v", err)
	}

	if *reportPath != "" {
		if err := writeReport(*reportPath, prodResults); err != nil {
			fatal("%v", err)
		}
	}

	var all []scoring.Score
	for _, pr := range prodResults {
		all = append(all, pr.Scores...)
	}
	summary := scoring.Summarize(all)
	fmt.Printf("scored %d product(s), %d question(s): %d passing, %d failing, %d needing review\n",
		len(products), summary.Total, summary.Passing, summary.Failing, summary.NotApplicable)
}

func tableByIndex(model *template.Model, tableIndex int) *template.Table {
	for _, tbl := range model.Tables {
		if tbl.TableIndex == tableIndex {
			return tbl
		}
	}
	return nil
}

func writeReport(path string, results []report.ProductResult) error {
	md := report.Markdown(results)
	if strings.HasSuffix(path, ".html") {
		html, err := report.HTML(md)
		if err != nil {
			return err
		}
		return os.WriteFile(path, html, 0o644)
	}
	return os.WriteFile(path, []byte(md), 0o644)
}
