/*
Package factory converts amount master files into Go values.

PURPOSE:
  Administrators keep the amount master in a YAML (or JSON) file under
  version control and import it with `stipend master import`. The factory
  parses and validates the file; the caller persists the result.

FILE SCHEMA:
  allowance_types:
    - code: A
      name: "A: Holiday club (full day)"
      base_amount: 2400
      requires_holiday: true
    - code: Disaster
      base_amount: 6000

  JSON documents with the same keys are accepted, since JSON parses as YAML.

RULES:
  - code is required and must be unique in the file
  - base_amount must not be negative (zero means "use the built-in default")
  - name defaults to the catalog label for known codes
  - requires_holiday defaults to the catalog flag for known codes

USAGE:
  f := factory.NewMasterFactory()
  defs, err := f.ParseMaster(data)
  table := factory.Table(defs)

SEE ALSO:
  - allowance/master.go: MasterTable consumed by the calculators
  - store/sqlite/sqlite.go: allowance_types table
*/
package factory

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/warp/stipend-engine/allowance"
	"github.com/warp/stipend-engine/generic"
)

// =============================================================================
// FILE SCHEMA TYPES
// =============================================================================

// MasterFile is the document root.
type MasterFile struct {
	AllowanceTypes []MasterDefinition `yaml:"allowance_types" json:"allowance_types"`
}

// MasterDefinition is one master row as written in the file.
type MasterDefinition struct {
	Code            string `yaml:"code" json:"code"`
	Name            string `yaml:"name,omitempty" json:"name,omitempty"`
	BaseAmount      int    `yaml:"base_amount" json:"base_amount"`
	RequiresHoliday *bool  `yaml:"requires_holiday,omitempty" json:"requires_holiday,omitempty"`
}

// Holiday reports the resolved requires_holiday flag.
func (d MasterDefinition) Holiday() bool {
	return d.RequiresHoliday != nil && *d.RequiresHoliday
}

// =============================================================================
// MASTER FACTORY
// =============================================================================

// MasterFactory parses amount master files.
type MasterFactory struct{}

// NewMasterFactory creates a new master factory.
func NewMasterFactory() *MasterFactory {
	return &MasterFactory{}
}

// ParseMaster parses and validates a YAML or JSON master document.
func (f *MasterFactory) ParseMaster(data []byte) ([]MasterDefinition, error) {
	var mf MasterFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse master file: %w", err)
	}
	if len(mf.AllowanceTypes) == 0 {
		return nil, &generic.ValidationError{Field: "allowance_types", Message: "no entries"}
	}
	return f.Normalize(mf.AllowanceTypes)
}

// Normalize validates defs and fills catalog defaults.
func (f *MasterFactory) Normalize(defs []MasterDefinition) ([]MasterDefinition, error) {
	seen := make(map[string]bool, len(defs))
	out := make([]MasterDefinition, 0, len(defs))
	for i, d := range defs {
		d.Code = strings.TrimSpace(d.Code)
		if d.Code == "" {
			return nil, &generic.ValidationError{
				Field:   fmt.Sprintf("allowance_types[%d].code", i),
				Message: "code is required",
			}
		}
		if seen[d.Code] {
			return nil, &generic.ValidationError{
				Field:   fmt.Sprintf("allowance_types[%d].code", i),
				Message: fmt.Sprintf("duplicate code %q", d.Code),
			}
		}
		seen[d.Code] = true

		if d.BaseAmount < 0 {
			return nil, &generic.ValidationError{
				Field:   fmt.Sprintf("allowance_types[%d].base_amount", i),
				Message: "must not be negative",
			}
		}

		if a, ok := allowance.LookupActivity(allowance.ActivityID(d.Code)); ok {
			if d.Name == "" {
				d.Name = a.Label
			}
			if d.RequiresHoliday == nil {
				holiday := a.RequiresHoliday
				d.RequiresHoliday = &holiday
			}
		}
		if d.Name == "" {
			d.Name = d.Code
		}
		out = append(out, d)
	}
	return out, nil
}

// Table converts definitions to the calculator's view.
func Table(defs []MasterDefinition) allowance.MasterTable {
	t := make(allowance.MasterTable, 0, len(defs))
	for _, d := range defs {
		t = append(t, allowance.MasterEntry{Code: d.Code, BaseAmount: d.BaseAmount})
	}
	return t
}

// =============================================================================
// PRESETS
// =============================================================================

// DefaultDefinitions returns the built-in master with catalog names.
func DefaultDefinitions() []MasterDefinition {
	defs := make([]MasterDefinition, 0, len(allowance.DefaultMaster()))
	for _, e := range allowance.DefaultMaster() {
		defs = append(defs, MasterDefinition{Code: e.Code, BaseAmount: e.BaseAmount})
	}
	// Cannot fail: the built-in codes are unique and non-negative.
	out, _ := NewMasterFactory().Normalize(defs)
	return out
}

// DefaultMasterYAML renders the built-in master as a file that ParseMaster
// accepts, as a starting point for administrators.
func DefaultMasterYAML() (string, error) {
	b, err := yaml.Marshal(MasterFile{AllowanceTypes: DefaultDefinitions()})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
