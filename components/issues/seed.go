package issues

import (
	"embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seeds/catalog.yaml
var seedFS embed.FS

// DefaultCatalog returns the embedded seed catalog: a handful of audited
// projects and a WCAG violation set sufficient to run the component without
// external data.
func DefaultCatalog() (Catalog, error) {
	raw, err := seedFS.ReadFile("seeds/catalog.yaml")
	if err != nil {
		return Catalog{}, fmt.Errorf("issues: read embedded catalog: %w", err)
	}
	return parseCatalog(raw)
}

// LoadCatalog parses a YAML catalog from r.
func LoadCatalog(r io.Reader) (Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Catalog{}, fmt.Errorf("issues: read catalog: %w", err)
	}
	return parseCatalog(raw)
}

// LoadCatalogFile parses a YAML catalog from path.
func LoadCatalogFile(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("issues: read catalog file: %w", err)
	}
	return parseCatalog(raw)
}

func parseCatalog(raw []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return Catalog{}, fmt.Errorf("issues: parse catalog: %w", err)
	}
	for i, p := range cat.Projects {
		if p.ID == "" {
			return Catalog{}, fmt.Errorf("issues: catalog project %d is missing an id", i)
		}
	}
	for i, v := range cat.Violations {
		if v.ID == "" {
			return Catalog{}, fmt.Errorf("issues: catalog violation %d is missing an id", i)
		}
	}
	return cat, nil
}
