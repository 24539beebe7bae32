package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/siherrmann/fishpass/model"
	"github.com/zclconf/go-cty/cty"
)

// runFileRoot is the top level of a run file.
type runFileRoot struct {
	Watersheds []*watershedBlock `hcl:"watershed,block"`
}

// watershedBlock is one `watershed "<id>" { ... }` block.
type watershedBlock struct {
	ID          string   `hcl:"id,label"`
	Name        *string  `hcl:"name,optional"`
	Species     []string `hcl:"species"`
	UnitDivisor *float64 `hcl:"unit_divisor,optional"`
}

// LoadRunConfigs parses the HCL run file at path and returns one validated
// RunConfig per watershed block, in file order.
func LoadRunConfigs(path string) ([]*model.RunConfig, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError("read run file", err)
	}
	return ParseRunConfigs(src, path)
}

// ParseRunConfigs decodes run file source. filename is only used in diagnostics.
// Attribute expressions may reference environment variables as env.NAME.
func ParseRunConfigs(src []byte, filename string) ([]*model.RunConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, NewError("parse run file", fmt.Errorf("%s: %w", filename, diags))
	}

	var root runFileRoot
	diags = gohcl.DecodeBody(file.Body, envEvalContext(), &root)
	if diags.HasErrors() {
		return nil, NewError("decode run file", fmt.Errorf("%s: %w", filename, diags))
	}

	configs := make([]*model.RunConfig, 0, len(root.Watersheds))
	seen := make(map[string]bool, len(root.Watersheds))
	for _, block := range root.Watersheds {
		if seen[block.ID] {
			return nil, NewError("decode run file", fmt.Errorf("%s: duplicate watershed %q", filename, block.ID))
		}
		seen[block.ID] = true

		config := model.DefaultRunConfig()
		config.WatershedID = block.ID
		config.Name = block.ID
		if block.Name != nil {
			config.Name = *block.Name
		}
		for _, code := range block.Species {
			config.Species = append(config.Species, strings.TrimSpace(code))
		}
		if block.UnitDivisor != nil {
			config.UnitDivisor = *block.UnitDivisor
		}

		if err := config.Validate(); err != nil {
			return nil, NewError(fmt.Sprintf("watershed %s", block.ID), err)
		}
		configs = append(configs, &config)
	}

	return configs, nil
}

// FindRunConfig returns the config for watershedID.
func FindRunConfig(configs []*model.RunConfig, watershedID string) (*model.RunConfig, error) {
	for _, c := range configs {
		if c.WatershedID == watershedID {
			return c, nil
		}
	}
	return nil, NewError("find run config", fmt.Errorf("watershed %q not defined", watershedID))
}

func envEvalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}
