package evaluate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultNoClaimPhrases are reasoning fragments that indicate the model
// found no verifiable claim even though it skipped the sentinel. The list is
// heuristic and language-specific (Swedish plus English); deployments can
// replace it with a YAML file instead of a code change.
var DefaultNoClaimPhrases = []string{
	"inga verifierbara påståenden",
	"inget verifierbart påstående",
	"innehåller inga faktapåståenden",
	"innehåller inget faktapåstående",
	"är en åsikt",
	"är en fråga",
	"no verifiable claim",
	"no verifiable claims",
	"does not contain a verifiable",
	"contains no factual claim",
	"is an opinion",
	"is a question",
}

// phrasesFile supports either a bare YAML list or a document with a
// "phrases" key.
type phrasesFile struct {
	Phrases []string `yaml:"phrases"`
}

// LoadPhrases reads a no-claim phrase list from a YAML file.
func LoadPhrases(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phrases file: %w", err)
	}

	var list []string
	if err := yaml.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return list, nil
	}

	var doc phrasesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse phrases file %s: %w", path, err)
	}
	if len(doc.Phrases) == 0 {
		return nil, fmt.Errorf("phrases file %s contains no phrases", path)
	}
	return doc.Phrases, nil
}
