// Package catalog holds the ordered lists of regions and indicators shown on
// the dashboard. Iteration and rendering order always follow the catalog.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Region is a municipality tracked by the dashboard.
type Region struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"` // StatFin area code, e.g. KU091
}

// Indicator is a statistic category. Documents in the store may key values
// by either Code or Label.
type Indicator struct {
	Code  string `yaml:"code"`
	Label string `yaml:"label"`
}

// Catalog is the ordered set of regions and indicators.
type Catalog struct {
	Regions    []Region    `yaml:"regions"`
	Indicators []Indicator `yaml:"indicators"`
}

// Default returns the built-in Helsinki metropolitan area catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns the default when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects empty lists, blank entries and duplicates.
func (c *Catalog) Validate() error {
	var errs []error
	if len(c.Regions) == 0 {
		errs = append(errs, errors.New("no regions"))
	}
	if len(c.Indicators) == 0 {
		errs = append(errs, errors.New("no indicators"))
	}
	seen := map[string]struct{}{}
	for i, r := range c.Regions {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("region %d: empty name", i))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("region %q listed twice", name))
		}
		seen[name] = struct{}{}
	}
	seen = map[string]struct{}{}
	for i, ind := range c.Indicators {
		code := strings.TrimSpace(ind.Code)
		if code == "" {
			errs = append(errs, fmt.Errorf("indicator %d: empty code", i))
			continue
		}
		if _, dup := seen[code]; dup {
			errs = append(errs, fmt.Errorf("indicator %q listed twice", code))
		}
		seen[code] = struct{}{}
	}
	return errors.Join(errs...)
}

// RegionNames returns region names in catalog order.
func (c *Catalog) RegionNames() []string {
	out := make([]string, len(c.Regions))
	for i, r := range c.Regions {
		out[i] = r.Name
	}
	return out
}

// IndicatorCodes returns indicator codes in catalog order.
func (c *Catalog) IndicatorCodes() []string {
	out := make([]string, len(c.Indicators))
	for i, ind := range c.Indicators {
		out[i] = ind.Code
	}
	return out
}

// Indicator looks up an indicator by code.
func (c *Catalog) Indicator(code string) (Indicator, bool) {
	for _, ind := range c.Indicators {
		if ind.Code == code {
			return ind, true
		}
	}
	return Indicator{}, false
}

// Label returns the display label for code, falling back to the code itself.
func (c *Catalog) Label(code string) string {
	if ind, ok := c.Indicator(code); ok && ind.Label != "" {
		return ind.Label
	}
	return code
}

// Pairs returns every region/indicator combination in catalog order.
func (c *Catalog) Pairs() [][2]string {
	out := make([][2]string, 0, len(c.Regions)*len(c.Indicators))
	for _, r := range c.Regions {
		for _, ind := range c.Indicators {
			out = append(out, [2]string{r.Name, ind.Code})
		}
	}
	return out
}
