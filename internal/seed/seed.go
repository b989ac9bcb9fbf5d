// Package seed loads sample cases from a YAML file for demo and batch
// runs.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mmirzaei/mizan/internal/model"
)

type seedFile struct {
	Cases []model.SampleCase `yaml:"cases"`
}

// Load reads sample cases from path. Cases without an ID get a
// positional one so batch output stays addressable.
func Load(path string) ([]model.SampleCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(f.Cases) == 0 {
		return nil, fmt.Errorf("seed file %s contains no cases", path)
	}

	for i := range f.Cases {
		if f.Cases[i].CaseID == "" {
			f.Cases[i].CaseID = fmt.Sprintf("CASE-%03d", i+1)
		}
	}
	return f.Cases, nil
}
