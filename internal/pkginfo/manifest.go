package pkginfo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/conn-castle/core-installer/internal/messages"
)

// LoadManifest reads a package manifest file. The format is chosen by extension:
// .toml, or .yaml/.yml.
func LoadManifest(path string) (Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Package{}, fmt.Errorf(messages.PackageManifestReadFmt, path, err)
	}
	return ParseManifest(data, path)
}

// ParseManifest decodes and validates manifest data; source names the input for errors and format detection.
func ParseManifest(data []byte, source string) (Package, error) {
	var pkg Package
	switch strings.ToLower(filepath.Ext(source)) {
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&pkg); err != nil {
			return Package{}, fmt.Errorf(messages.PackageManifestInvalidFmt, source, err)
		}
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&pkg); err != nil {
			return Package{}, fmt.Errorf(messages.PackageManifestInvalidFmt, source, err)
		}
	default:
		return Package{}, fmt.Errorf(messages.PackageManifestFormatFmt, source)
	}
	if err := pkg.Validate(); err != nil {
		return Package{}, fmt.Errorf(messages.PackageManifestInvalidFmt, source, err)
	}
	return pkg, nil
}
