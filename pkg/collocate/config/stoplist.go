package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/collocate/pkg/collocate/internalerr"
)

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, internalerr.NewInputError(path, err)
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, internalerr.NewInputError(path, err)
	}

	return &sl, nil
}
