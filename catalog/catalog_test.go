package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autodamage/models"
)

func TestDefault_Tables(t *testing.T) {
	c := Default()

	assert.Equal(t, "Çizik", c.DamageLabel("scratch"))
	assert.Equal(t, 2, c.Severity("scratch"))
	assert.Equal(t, 5, c.Severity("glass_shatter"))
	assert.Equal(t, 4, c.Severity("lamp_broken"))
	assert.Equal(t, "Ön Tampon", c.PartLabel("front_bumper"))
	assert.Equal(t, "Yüksek", c.RiskLabel(models.RiskHigh))
	assert.Equal(t, DefaultSeverity, c.DefaultSeverity())
}

func TestDefault_Fallbacks(t *testing.T) {
	c := Default()

	assert.Equal(t, "rust", c.DamageLabel("rust"))
	assert.Equal(t, 3, c.Severity("rust"))
	assert.Equal(t, "spoiler", c.PartLabel("spoiler"))
	assert.Equal(t, "Extreme", c.RiskLabel(models.RiskLevel("Extreme")))
}

func TestParse_Custom(t *testing.T) {
	c, err := Parse([]byte(`
default_severity: 1
damages:
  scratch: {label: Scratch, severity: 2}
  rust: {label: Rust}
parts:
  hood: Bonnet
risk_levels:
  High: Severe
`))
	require.NoError(t, err)

	assert.Equal(t, "Scratch", c.DamageLabel("scratch"))
	assert.Equal(t, "Rust", c.DamageLabel("rust"))
	assert.Equal(t, 1, c.Severity("rust"), "entries without severity use the default")
	assert.Equal(t, 1, c.Severity("dent"))
	assert.Equal(t, "Bonnet", c.PartLabel("hood"))
	assert.Equal(t, "Severe", c.RiskLabel(models.RiskHigh))
	assert.Equal(t, "Low", c.RiskLabel(models.RiskLow))
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"severity too high":  "damages:\n  dent: {severity: 6}\n",
		"severity negative":  "damages:\n  dent: {severity: -1}\n",
		"severity zero":      "damages:\n  dent: {label: Dent, severity: 0}\n",
		"bad default":        "default_severity: 0\n",
		"unknown risk level": "risk_levels:\n  Critical: x\n",
		"not yaml":           "damages: [",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parts:\n  wheel: Wheel\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Wheel", c.PartLabel("wheel"))
	assert.Equal(t, "scratch", c.DamageLabel("scratch"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
