package cfgfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// manifStack is for two reasons ->
// * detect circular deps (not an error, but we need to know to avoid them)
// * avoid infinite recursion (allow up to MaxManifestRecursionDepth levels)
//
// Returns ErrManifestEmpty if and only if the first manifest in the stack is
// empty, otherwise it is not an error.
func recursiveUnmarshalResource(path string, manifStack []string) (data topLevelGrammar, err error) {
	path = filepath.Clean(path)

	fileData, loadErr := os.ReadFile(path)
	if loadErr != nil {
		return topLevelGrammar{}, fmt.Errorf("%q: reading from disk: %w", path, loadErr)
	}

	fileInfo, err := ScanFileInfo(fileData)
	if err != nil {
		return topLevelGrammar{}, fmt.Errorf("%q: detecting file type: %w", path, err)
	}

	if strings.ToUpper(fileInfo.Format) != FormatName {
		return topLevelGrammar{}, fmt.Errorf("%q: file does not have a 'format = \"%s\"' entry", path, FormatName)
	}

	switch strings.ToUpper(fileInfo.Type) {
	case TypeGrammar:
		unmarshaled, err := unmarshalGrammar(fileData)
		if err != nil {
			return unmarshaled, fmt.Errorf("grammar file %q: %w", path, err)
		}
		return unmarshaled, nil
	case TypeManifest:
		// check the stack to be sure we havent recursed too far and to be sure
		// we aren't about to re-scan a circular-ref'd manifest file we've
		// already brought in.
		if len(manifStack) >= MaxManifestRecursionDepth {
			return topLevelGrammar{}, fmt.Errorf("manifest file %q: %w", path, ErrManifestStackOverflow)
		}
		for i := range manifStack {
			if manifStack[i] == path {
				return topLevelGrammar{}, fmt.Errorf("manifest file %q: %w", path, ErrManifestCircularRef)
			}
		}

		manif, err := unmarshalManifest(fileData)
		if err != nil {
			return topLevelGrammar{}, fmt.Errorf("manifest file %q: %w", path, err)
		}

		if len(manif.Files) < 1 && len(manifStack) == 0 {
			return topLevelGrammar{}, fmt.Errorf("manifest file %q: %w", path, ErrManifestEmpty)
		}

		// copy the manif stack into a new value and add self to it for recursive calls
		manifSubStack := make([]string, len(manifStack)+1)
		copy(manifSubStack, manifStack)
		manifSubStack[len(manifSubStack)-1] = path

		manifDir := filepath.Dir(path)

		merged := topLevelGrammar{}
		processedFiles := 0
		for _, manifRelPath := range manif.Files {
			includedFilePath := filepath.Join(manifDir, manifRelPath)

			included, err := recursiveUnmarshalResource(includedFilePath, manifSubStack)
			if err != nil {
				// circular references are skipped, not failed on.
				if errors.Is(err, ErrManifestCircularRef) {
					continue
				}

				return topLevelGrammar{}, fmt.Errorf("in file referred to by manifest file:\n    %q\n%w", path, err)
			}

			if err := mergeGrammar(&merged, included); err != nil {
				return topLevelGrammar{}, fmt.Errorf("grammar file %q: %w", includedFilePath, err)
			}
			processedFiles++
		}

		if len(manifStack) == 0 && processedFiles == 0 {
			// the first file is a manifest that gave no usable definitions
			return merged, fmt.Errorf("manifest file %q: %w", path, ErrManifestEmpty)
		}
		return merged, nil

	default:
		return topLevelGrammar{}, fmt.Errorf("%q: file does not have 'type = ' entry set to either %q or %q", path, TypeGrammar, TypeManifest)
	}
}

// mergeGrammar adds everything in src to dest. Name and start may each be
// given by only one of the merged files.
func mergeGrammar(dest *topLevelGrammar, src topLevelGrammar) error {
	if src.Name != "" {
		if dest.Name != "" {
			return fmt.Errorf("duplicate name; name has already been defined as %q", dest.Name)
		}
		dest.Name = src.Name
	}
	if src.Start != "" {
		if dest.Start != "" {
			return fmt.Errorf("duplicate start; start has already been defined as %q", dest.Start)
		}
		dest.Start = src.Start
	}

	dest.Terminals = append(dest.Terminals, src.Terminals...)
	dest.Rules = append(dest.Rules, src.Rules...)
	return nil
}

// unmarshalGrammar unmarshals a grammar file from the given bytes. It does not
// parse or check the grammar.
func unmarshalGrammar(tomlData []byte) (topLevelGrammar, error) {
	var cfg topLevelGrammar
	if tomlErr := toml.Unmarshal(tomlData, &cfg); tomlErr != nil {
		return cfg, tomlErr
	}

	if strings.ToUpper(cfg.Format) != FormatName {
		return cfg, fmt.Errorf("in header: 'format' key must exist and be set to '%s'", FormatName)
	}
	if strings.ToUpper(cfg.Type) != TypeGrammar {
		return cfg, fmt.Errorf("in header: 'type' must exist and be set to '%s'", TypeGrammar)
	}

	return cfg, nil
}

// unmarshalManifest unmarshals a manifest from the given bytes.
func unmarshalManifest(tomlData []byte) (topLevelManifest, error) {
	var cfg topLevelManifest
	if tomlErr := toml.Unmarshal(tomlData, &cfg); tomlErr != nil {
		return cfg, tomlErr
	}

	if strings.ToUpper(cfg.Format) != FormatName {
		return cfg, fmt.Errorf("in header: 'format' key must exist and be set to '%s'", FormatName)
	}
	if strings.ToUpper(cfg.Type) != TypeManifest {
		return cfg, fmt.Errorf("in header: 'type' must exist and be set to '%s'", TypeManifest)
	}

	return cfg, nil
}

// marshalGrammar encodes a grammar file as TOML.
func marshalGrammar(cfg topLevelGrammar) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = "    "
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
