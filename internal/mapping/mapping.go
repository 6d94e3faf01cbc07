// Package mapping loads the curated criterion-to-question mapping and the
// optional carry-forward scores from a prior run. A loaded mapping is
// immutable; concurrent scoring passes share it read-only.
package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrMappingNotFound reports a missing mapping file. It is distinct from
// structural template errors so a caller can suggest regenerating the file.
var ErrMappingNotFound = errors.New("mapping file not found")

// Question is one curated question definition under a section.
type Question struct {
	Text        string   `json:"questionText"`
	Automatable bool     `json:"automatable"`
	Weight      int      `json:"weight,omitempty"`
	RuleIDs     []string `json:"ruleIds"`
}

// Section associates a criterion-section prefix ("1.1") with its questions.
type Section struct {
	Prefix    string     `json:"criterionPrefix"`
	Name      string     `json:"sectionName"`
	Questions []Question `json:"questions"`
}

// Mapping is the full ordered mapping table.
type Mapping struct {
	Sections []Section
}

// Section returns the entry for a criterion-section prefix, or nil.
func (m *Mapping) Section(prefix string) *Section {
	if m == nil || prefix == "" {
		return nil
	}
	for i := range m.Sections {
		if m.Sections[i].Prefix == prefix {
			return &m.Sections[i]
		}
	}
	return nil
}

// Load reads the mapping JSON from disk. A missing file wraps
// ErrMappingNotFound.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMappingNotFound, path)
		}
		return nil, fmt.Errorf("read mapping %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes mapping JSON: an ordered list of section entries.
func Parse(data []byte) (*Mapping, error) {
	var sections []Section
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	return &Mapping{Sections: sections}, nil
}

// CarriedScore is a previously computed score reused for non-automatable
// questions lacking a fresh manual value.
type CarriedScore struct {
	Score   *int   `json:"score"`
	Comment string `json:"comment"`
}

// CarryForward maps Key(tableIndex, rowIndex) to a prior score.
type CarryForward map[string]CarriedScore

// Key builds the composite carry-forward key for a question position.
func Key(tableIndex, rowIndex int) string {
	return fmt.Sprintf("%d:%d", tableIndex, rowIndex)
}

// LoadCarryForward reads prior scores from disk. The file is optional: a
// missing path yields a nil map and no error.
func LoadCarryForward(path string) (CarryForward, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read carry-forward %s: %w", path, err)
	}
	var cf CarryForward
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse carry-forward %s: %w", path, err)
	}
	return cf, nil
}
