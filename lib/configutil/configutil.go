// Package configutil reads layered json5 configuration. A file named
// "collector.json5" may sit next to a "collector.local.json5" holding
// machine-local overrides; values from the local file win.
package configutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// decodeFile unmarshals path into out. A missing file is not an
// error, it just reports false.
func decodeFile[T any](path string, out *T) (bool, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = json5.Unmarshal(raw, out)
	if err != nil {
		return false, err
	}
	return true, nil
}

func localName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// ReadConfig reads <name> and merges <name>.local.<ext> over it.
// When neither file exists it returns os.ErrNotExist so the caller
// can fall back to compiled defaults.
func ReadConfig[T any](name string) (T, error) {
	var out T

	foundBase, err := decodeFile(name, &out)
	if err != nil {
		return out, err
	}

	var override T
	foundLocal, err := decodeFile(localName(name), &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localName(name))
	}

	if !foundBase && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively looks for the named config in the working directory,
// then in each parent up to the filesystem root.
func ReadRecursively[T any](name string) (T, error) {
	var none T

	dir, err := os.Getwd()
	if err != nil {
		return none, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return none, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return none, os.ErrNotExist
		}
		dir = parent
	}
}
