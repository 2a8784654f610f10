// Package cfgfile loads grammar definitions from CFG files, a TOML-based
// format for writing context-free grammars by hand.
//
// Every CFG file starts with a header giving its format and type:
//
//	format = "CFG"
//	type = "GRAMMAR"
//
// A GRAMMAR file then gives the grammar's name and start symbol, a
// [[terminal]] table for every terminal, and its rules in "A -> x B | ε"
// notation:
//
//	name = "balanced"
//	start = "S"
//	rules = [
//	    "S -> a S b | ε",
//	]
//
//	[[terminal]]
//	symbol = "a"
//
//	[[terminal]]
//	symbol = "b"
//	class = "close"
//
// A MANIFEST file instead lists other CFG files, relative to itself, whose
// contents are merged in order:
//
//	format = "CFG"
//	type = "MANIFEST"
//	files = ["terminals.toml", "rules.toml"]
package cfgfile

import (
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/BurntSushi/toml"
)

const (
	// FormatName is the value of the 'format' key every CFG file has.
	FormatName = "CFG"

	TypeGrammar  = "GRAMMAR"
	TypeManifest = "MANIFEST"
)

const MaxManifestRecursionDepth = 32

var (
	// ErrManifestEmpty is the error returned when a manifest file is read
	// successfully but specifies no additional files to load.
	ErrManifestEmpty = errors.New("does not list any valid files to include")

	// ErrManifestStackOverflow is the error returned when the recursion level
	// of MaxManifestRecursionDepth is reached and an additional Manifest is
	// then specified, which would cause recursion to go deeper.
	ErrManifestStackOverflow = errors.New("too many manifests deep")

	// ErrManifestCircularRef is the error returned when a manifest specifies
	// any series of files that with their own manifests refer back to the
	// original manifest, and therefore cannot be followed.
	ErrManifestCircularRef = errors.New("manifest inclusion chain refers back to itself")

	// ErrInvalidDefinition is wrapped by every error caused by the contents of
	// a grammar definition rather than by reading or decoding it.
	ErrInvalidDefinition = errors.New("invalid grammar definition")
)

// Manifest contains data loaded from a CFG manifest file.
type Manifest struct {
	Files []string
}

// FileInfo contains the essential information all CFG files must contain. It
// can be obtained from a file by reading it into memory and calling
// ScanFileInfo on the bytes.
type FileInfo struct {
	Format string `toml:"format"`
	Type   string `toml:"type"`
}

// LoadFile loads a grammar definition from the given CFG file. The file's
// type is auto-detected; if it is a MANIFEST, the files listed in it relative
// to it are loaded as well, recursively, and everything is merged into one
// definition before it is checked.
func LoadFile(path string) (Definition, error) {
	unmarshaled, err := recursiveUnmarshalResource(path, nil)
	if err != nil {
		return Definition{}, err
	}

	return parseDefinition(unmarshaled)
}

// LoadManifestFile loads manifest data from a CFG file.
func LoadManifestFile(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	unmarshaled, err := unmarshalManifest(data)
	if err != nil {
		return Manifest{}, err
	}
	return Manifest{Files: unmarshaled.Files}, nil
}

// Parse reads a grammar definition from the bytes of a single GRAMMAR type
// CFG file.
func Parse(data []byte) (Definition, error) {
	unmarshaled, err := unmarshalGrammar(data)
	if err != nil {
		return Definition{}, err
	}
	return parseDefinition(unmarshaled)
}

// ScanFileInfo takes the given data bytes and attempts to read the CFG format
// common header info from it. The bytes are read up to the first instance of
// a table definition header and those bytes are parsed for the info. If there
// is an error reading the info, returns a non-nil error.
func ScanFileInfo(data []byte) (FileInfo, error) {
	// only run the toml parser up to the end of the top-lev table
	var topLevelEnd int = -1
	var onNewLine = true
	for b := range data {
		if onNewLine {
			if data[b] == '[' {
				topLevelEnd = b
				break
			}
		}

		if data[b] == '\n' {
			onNewLine = true
		} else if !unicode.IsSpace(rune(data[b])) {
			onNewLine = false
		}
	}

	scanData := data
	if topLevelEnd != -1 {
		scanData = data[:topLevelEnd]
	}

	var info FileInfo
	err := toml.Unmarshal(scanData, &info)
	return info, err
}

func invalidf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, fmt.Sprintf(format, a...))
}
