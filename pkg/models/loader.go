package models

import (
	"fmt"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// modelFile is the on-disk layout of an extra GPU model table:
//
//	[[gpus]]
//	model = "NVIDIA-L40S-48GB"
//	memory_mib = 49152
//	...
type modelFile struct {
	GPUs []GPUSpec `toml:"gpus" yaml:"gpus"`
}

// LoadModelTable returns the built-in models extended by the specs in path. Entries in the
// file override built-ins with the same model id. An empty path returns the built-ins.
func LoadModelTable(fs afero.Fs, path string) (*ModelTable, error) {
	if path == "" {
		return DefaultModelTable(), nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gpu model file %s: %w", path, err)
	}

	file := modelFile{}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &file)
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(data, &file)
	default:
		return nil, fmt.Errorf("unsupported gpu model file extension %q", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse gpu model file %s: %w", path, err)
	}

	specs := append(BuiltinSpecs(), file.GPUs...)

	table, err := NewModelTable(specs...)
	if err != nil {
		return nil, fmt.Errorf("loading gpu model file %s: %w", path, err)
	}

	return table, nil
}
