package envutil

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFileType is returned when the file extension is not recognized.
var ErrUnknownFileType = errors.New("env file doesn't have a known file suffix")

// ReadFile reads variables from a dotenv file (.env, parsed by godotenv) or
// from the "env" object of a YAML file (.yml, .yaml).
//
//	# wizard.env
//	LOG_LEVEL=debug
//	WIZARD_UI=cli
func ReadFile(path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".env":
		return godotenv.Read(path)
	case ".yml", ".yaml":
		return readYAML(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFileType, filepath.Base(path))
	}
}

// LoadFile reads path and sets every variable that is not already in the
// environment, so real environment variables win over the file.
func LoadFile(path string) error {
	vars, err := ReadFile(path)
	if err != nil {
		return err
	}

	for _, key := range slices.Sorted(maps.Keys(vars)) {
		if _, set := os.LookupEnv(key); set {
			continue
		}

		if err := os.Setenv(key, vars[key]); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}

	return nil
}

func readYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path chosen by the user
	if err != nil {
		return nil, err
	}

	var file struct {
		Env map[string]string `yaml:"env"`
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if file.Env == nil {
		return map[string]string{}, nil
	}

	return file.Env, nil
}
