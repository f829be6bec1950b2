package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// VaultConfigFile is an optional config file at the vault root. Its keys
// override the user config for that vault only.
const VaultConfigFile = ".taskroll.yaml"

// ApplyVaultOverlay merges the vault config file over c when the vault has
// one, and reports whether it did. The root and data directory cannot be
// changed from inside the vault.
func (c *Config) ApplyVaultOverlay() (bool, error) {
	root, err := c.RootDir()
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(filepath.Join(root, VaultConfigFile)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat vault config: %w", err)
	}

	overlay, err := loadYAMLFiles(root, []string{VaultConfigFile})
	if err != nil {
		return false, err
	}

	base, err := toMap(c)
	if err != nil {
		return false, err
	}
	mergeMaps(base, overlay)

	data, err := yaml.Marshal(base)
	if err != nil {
		return false, fmt.Errorf("encode merged config: %w", err)
	}

	next := *c
	if err := yaml.Unmarshal(data, &next); err != nil {
		return false, fmt.Errorf("parse merged config: %w", err)
	}
	next.Root = c.Root
	next.DataDir = c.DataDir
	next.applyDefaults()

	if err := next.Validate(); err != nil {
		return false, fmt.Errorf("invalid vault config: %w", err)
	}

	*c = next
	return true, nil
}

// loadYAMLFiles reads YAML files and merges them in declaration order.
// Later files override earlier files for the same keys.
func loadYAMLFiles(dir string, files []string) (map[string]any, error) {
	merged := make(map[string]any)

	for _, file := range files {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %q: %w", file, err)
		}

		var values map[string]any
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", file, err)
		}

		mergeMaps(merged, values)
	}

	return merged, nil
}

func toMap(v any) (map[string]any, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	m := make(map[string]any)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return m, nil
}

// mergeMaps recursively merges src into dst.
// Nested maps are merged, while scalar and non-map values are replaced.
func mergeMaps(dst, src map[string]any) {
	if src == nil {
		return
	}

	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		if !srcIsMap {
			dst[key] = srcVal
			continue
		}

		dstMap, dstIsMap := dst[key].(map[string]any)
		if !dstIsMap {
			dst[key] = srcMap
			continue
		}

		mergeMaps(dstMap, srcMap)
	}
}
