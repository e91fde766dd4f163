package querier

import (
	"encoding/json"
	"io"

	"github.com/darkclainer/wordmeaning/pkg/meaning"
)

// JSONParser parses meanings from JSON format. Use it for testing
type JSONParser struct{}

func (p *JSONParser) ParseMeanings(page io.Reader) ([]meaning.Meaning, error) {
	var meanings []meaning.Meaning
	if err := json.NewDecoder(page).Decode(&meanings); err != nil {
		return nil, err
	}
	return meanings, nil
}
