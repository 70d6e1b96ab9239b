// Package catalog holds the category tables: damage and part labels, damage severities and
// risk tier labels. A Catalog is built once and only read afterwards, so one value can be
// shared by every request.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"autodamage/models"
)

const (
	MinSeverity = 1
	MaxSeverity = 5

	// DefaultSeverity applies to damage categories missing from the table.
	DefaultSeverity = 3
)

//go:embed default.yaml
var defaultYAML []byte

var defaultCatalog = mustParse(defaultYAML)

type damageEntry struct {
	Label    string `yaml:"label"`
	Severity *int   `yaml:"severity"`
}

type file struct {
	DefaultSeverity *int                   `yaml:"default_severity"`
	Damages         map[string]damageEntry `yaml:"damages"`
	Parts           map[string]string      `yaml:"parts"`
	RiskLevels      map[string]string      `yaml:"risk_levels"`
}

type Catalog struct {
	defaultSeverity int
	damageLabels    map[string]string
	severities      map[string]int
	partLabels      map[string]string
	riskLabels      map[models.RiskLevel]string
}

// Default returns the built-in tables.
func Default() *Catalog {
	return defaultCatalog
}

// Load reads tables from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	return c, nil
}

// Parse builds a Catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		defaultSeverity: DefaultSeverity,
		damageLabels:    make(map[string]string, len(f.Damages)),
		severities:      make(map[string]int, len(f.Damages)),
		partLabels:      make(map[string]string, len(f.Parts)),
		riskLabels:      make(map[models.RiskLevel]string, len(f.RiskLevels)),
	}

	if f.DefaultSeverity != nil {
		if !validSeverity(*f.DefaultSeverity) {
			return nil, fmt.Errorf("default_severity %d outside [%d,%d]", *f.DefaultSeverity, MinSeverity, MaxSeverity)
		}
		c.defaultSeverity = *f.DefaultSeverity
	}

	for category, entry := range f.Damages {
		if entry.Label != "" {
			c.damageLabels[category] = entry.Label
		}
		if entry.Severity == nil {
			continue
		}
		if !validSeverity(*entry.Severity) {
			return nil, fmt.Errorf("damage %q: severity %d outside [%d,%d]", category, *entry.Severity, MinSeverity, MaxSeverity)
		}
		c.severities[category] = *entry.Severity
	}

	for category, label := range f.Parts {
		c.partLabels[category] = label
	}

	for level, label := range f.RiskLevels {
		switch rl := models.RiskLevel(level); rl {
		case models.RiskLow, models.RiskMedium, models.RiskHigh:
			c.riskLabels[rl] = label
		default:
			return nil, fmt.Errorf("unknown risk level %q", level)
		}
	}

	return c, nil
}

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

func validSeverity(s int) bool {
	return s >= MinSeverity && s <= MaxSeverity
}

// DamageLabel returns the display label, or the category itself when none is known.
func (c *Catalog) DamageLabel(category string) string {
	if label, ok := c.damageLabels[category]; ok {
		return label
	}
	return category
}

// Severity returns the severity of a damage category, or the default severity.
func (c *Catalog) Severity(category string) int {
	if s, ok := c.severities[category]; ok {
		return s
	}
	return c.defaultSeverity
}

// PartLabel returns the display label, or the category itself when none is known.
func (c *Catalog) PartLabel(category string) string {
	if label, ok := c.partLabels[category]; ok {
		return label
	}
	return category
}

func (c *Catalog) RiskLabel(level models.RiskLevel) string {
	if label, ok := c.riskLabels[level]; ok {
		return label
	}
	return string(level)
}

func (c *Catalog) DefaultSeverity() int {
	return c.defaultSeverity
}
