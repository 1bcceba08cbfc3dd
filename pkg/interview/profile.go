package interview

import (
	_ "embed"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	MaxNameLength     = 40
	MaxFreeTextLength = 200
)

// Profile is the candidate and target-role configuration gathered during
// setup. It is immutable once the interview starts.
type Profile struct {
	Name       string `yaml:"name"`
	Experience string `yaml:"experience"`
	Skills     string `yaml:"skills"`
	Level      string `yaml:"level"`
	Position   string `yaml:"position"`
	Company    string `yaml:"company"`
}

// Catalog holds the fixed enumerated sets offered in the setup form, plus
// the default model names. Loaded from the embedded defaults; a config
// file can override it.
type Catalog struct {
	Levels    []string `yaml:"levels"`
	Positions []string `yaml:"positions"`
	Companies []string `yaml:"companies"`
	Models    struct {
		Chat     string `yaml:"chat"`
		Feedback string `yaml:"feedback"`
	} `yaml:"models"`
}

//go:embed catalog.yaml
var defaultCatalog []byte

func LoadDefaultCatalog() (*Catalog, error) {
	return LoadCatalog(defaultCatalog)
}

func LoadCatalog(b []byte) (*Catalog, error) {
	ret := &Catalog{}
	if err := yaml.Unmarshal(b, ret); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog")
	}

	if len(ret.Levels) == 0 || len(ret.Positions) == 0 || len(ret.Companies) == 0 {
		return nil, errors.New("catalog needs at least one level, position and company")
	}

	return ret, nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// Validate checks the length and membership constraints enforced at the
// presentation boundary.
func (p Profile) Validate(catalog *Catalog) error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if len(p.Name) > MaxNameLength {
		return errors.Errorf("name is longer than %d characters", MaxNameLength)
	}
	if len(p.Experience) > MaxFreeTextLength {
		return errors.Errorf("experience is longer than %d characters", MaxFreeTextLength)
	}
	if len(p.Skills) > MaxFreeTextLength {
		return errors.Errorf("skills is longer than %d characters", MaxFreeTextLength)
	}
	if !contains(catalog.Levels, p.Level) {
		return errors.Errorf("unknown level %q", p.Level)
	}
	if !contains(catalog.Positions, p.Position) {
		return errors.Errorf("unknown position %q", p.Position)
	}
	if !contains(catalog.Companies, p.Company) {
		return errors.Errorf("unknown company %q", p.Company)
	}
	return nil
}
