package validation

import (
	_ "embed"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed provinces.yaml
var provincesYAML []byte

type ProvinceEntry struct {
	Code    string   `yaml:"code"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

type provinceFile struct {
	Version   int        `yaml:"version"`
	Provinces []ProvinceEntry `yaml:"provinces"`
}

// ProvinceCatalog resolves free-form province input to a canonical name.
type ProvinceCatalog struct {
	provinces []ProvinceEntry
	index     map[string]ProvinceEntry
}

// ParseProvincesYAML loads a catalog. Codes and names are matched ignoring
// case and accents.
func ParseProvincesYAML(b []byte) (*ProvinceCatalog, error) {
	var f provinceFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if f.Version != 1 {
		return nil, errors.New("provinces: unsupported version")
	}
	if len(f.Provinces) == 0 {
		return nil, errors.New("provinces: empty catalog")
	}
	c := &ProvinceCatalog{provinces: f.Provinces, index: make(map[string]ProvinceEntry)}
	for _, p := range f.Provinces {
		if p.Code == "" || p.Name == "" {
			return nil, errors.New("provinces: entry missing code or name")
		}
		c.index[fold(p.Code)] = p
		c.index[fold(p.Name)] = p
		for _, a := range p.Aliases {
			c.index[fold(a)] = p
		}
	}
	return c, nil
}

var defaultProvinces = func() *ProvinceCatalog {
	c, err := ParseProvincesYAML(provincesYAML)
	if err != nil {
		panic("embedded provinces.yaml: " + err.Error())
	}
	return c
}()

// Provinces returns the embedded catalog.
func Provinces() *ProvinceCatalog { return defaultProvinces }

// Canonical returns the catalog name for value, accepting codes, names and aliases.
func (c *ProvinceCatalog) Canonical(value string) (string, bool) {
	p, ok := c.index[fold(value)]
	if !ok {
		return "", false
	}
	return p.Name, true
}

func (c *ProvinceCatalog) All() []ProvinceEntry {
	out := make([]ProvinceEntry, len(c.provinces))
	copy(out, c.provinces)
	return out
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}
