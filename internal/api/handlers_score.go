package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/a11ylab/scorecard/internal/container"
	"github.com/a11ylab/scorecard/internal/mapping"
	"github.com/a11ylab/scorecard/internal/oxml"
	"github.com/a11ylab/scorecard/internal/report"
	"github.com/a11ylab/scorecard/internal/scoring"
	"github.com/a11ylab/scorecard/internal/template"
	"github.com/a11ylab/scorecard/internal/verdict"
)

// scoreResponse is the JSON body returned for format=json.
type scoreResponse struct {
	Products []productScores `json:"products"`
	Summary  scoring.Summary `json:"summary"`
}

type productScores struct {
	Name    string          `json:"name"`
	Scores  []scoring.Score `json:"scores"`
	Summary scoring.Summary `json:"summary"`
}

// handleScore runs a full scoring pass over an uploaded template: multipart
// fields "template" (the docx) and "results" (scan results JSON), optional
// "carry" (prior scores JSON), "product" (index, default all), and "format"
// (docx, json, or html; default docx).
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	templateData, ok := s.formFileBytes(w, r, "template")
	if !ok {
		return
	}
	resultsData, ok := s.formFileBytes(w, r, "results")
	if !ok {
		return
	}

	var results []verdict.ResourceResult
	if err := json.Unmarshal(resultsData, &results); err != nil {
		jsonError(w, "invalid scan results: "+err.Error(), http.StatusBadRequest)
		return
	}

	var carry mapping.CarryForward
	if file, _, err := r.FormFile("carry"); err == nil {
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			jsonError(w, "failed to read carry-forward", http.StatusInternalServerError)
			return
		}
		if err := json.Unmarshal(data, &carry); err != nil {
			jsonError(w, "invalid carry-forward: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	doc, err := container.OpenBytes(templateData)
	if err != nil {
		jsonError(w, "invalid template: "+err.Error(), http.StatusBadRequest)
		return
	}
	tree, err := oxml.Parse(doc.Body())
	if err != nil {
		jsonError(w, "invalid template markup: "+err.Error(), http.StatusBadRequest)
		return
	}
	layout := s.cfg.Layout()
	model, err := template.Extract(tree, layout)
	if err != nil {
		s.layoutError(w, err)
		return
	}

	products := model.Products
	if v := r.FormValue("product"); v != "" {
		idx, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, "invalid product index: "+v, http.StatusBadRequest)
			return
		}
		p, perr := model.Product(idx)
		if perr != nil {
			s.layoutError(w, perr)
			return
		}
		products = []*template.Product{p}
	}

	verdicts := verdict.Aggregate(results)
	scorer := scoring.New(s.mapping.Load(), verdicts, carry, scoring.Config{MatchThreshold: s.cfg.MatchThreshold})

	var (
		resp        scoreResponse
		prodResults []report.ProductResult
	)
	for _, p := range products {
		scores := scorer.ScoreProduct(p)
		for tableIndex, updates := range scoring.Updates(scores) {
			if err := applyToTable(model, tableIndex, updates, layout); err != nil {
				s.layoutError(w, err)
				return
			}
		}
		resp.Products = append(resp.Products, productScores{
			Name:    p.Name,
			Scores:  scores,
			Summary: scoring.Summarize(scores),
		})
		prodResults = append(prodResults, report.ProductResult{Product: p, Scores: scores})
	}
	var all []scoring.Score
	for _, pr := range prodResults {
		all = append(all, pr.Scores...)
	}
	resp.Summary = scoring.Summarize(all)

	switch r.FormValue("format") {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	case "html":
		html, err := report.HTML(report.Markdown(prodResults))
		if err != nil {
			jsonError(w, "render report: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(html)
	default:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		w.Header().Set("Content-Disposition", `attachment; filename="scored.docx"`)
		if err := doc.WriteTo(w, oxml.Serialize(tree)); err != nil {
			s.log.Error("write scored container", "error", err)
		}
	}
}

func applyToTable(model *template.Model, tableIndex int, updates map[int]template.ScoreUpdate, layout template.Layout) error {
	for _, tbl := range model.Tables {
		if tbl.TableIndex == tableIndex {
			return template.ApplyScores(tbl, updates, layout)
		}
	}
	return &template.LayoutError{Reason: "no table " + strconv.Itoa(tableIndex)}
}

// formFileBytes reads one multipart file field, enforcing the upload limit.
func (s *Server) formFileBytes(w http.ResponseWriter, r *http.Request, field string) ([]byte, bool) {
	file, _, err := r.FormFile(field)
	if err != nil {
		jsonError(w, field+" is required: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read "+field, http.StatusInternalServerError)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, field+" exceeds max size", http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return data, true
}

// layoutError maps structural template errors to 422 and everything else to
// 500.
func (s *Server) layoutError(w http.ResponseWriter, err error) {
	var le *template.LayoutError
	if errors.As(err, &le) {
		jsonError(w, le.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.log.Error("scoring failed", "error", err)
	jsonError(w, "internal error", http.StatusInternalServerError)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
