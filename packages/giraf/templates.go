package giraf

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

type Ref struct {
	ID int64 `json:"id" yaml:"id"`
}

type Activity struct {
	Pictogram Ref    `json:"pictogram" yaml:"pictogram"`
	Order     int    `json:"order" yaml:"order"`
	State     string `json:"state" yaml:"state"`
}

type Day struct {
	Day        string     `json:"day" yaml:"day"`
	Activities []Activity `json:"activities" yaml:"activities"`
}

// WeekTemplate is the create/update body of /WeekTemplate
type WeekTemplate struct {
	Name      string `json:"name" yaml:"name"`
	Thumbnail Ref    `json:"thumbnail" yaml:"thumbnail"`
	Days      []Day  `json:"days" yaml:"days"`
}

// LoadTemplates parses the embedded payloads. There are always at least two.
func LoadTemplates() ([]WeekTemplate, error) {
	return ParseTemplates(templatesYAML)
}

func ParseTemplates(data []byte) ([]WeekTemplate, error) {
	var out []WeekTemplate
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing week templates: %w", err)
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("need two week templates, got %d", len(out))
	}
	return out, nil
}
