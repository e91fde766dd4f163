package querier

import (
	"io"

	"github.com/darkclainer/wordmeaning/pkg/meaning"
	"github.com/darkclainer/wordmeaning/pkg/parser"
)

type Parser interface {
	ParseMeanings(page io.Reader) ([]meaning.Meaning, error)
}

type HTMLParser struct{}

func (p *HTMLParser) ParseMeanings(page io.Reader) ([]meaning.Meaning, error) {
	return parser.ParseMeaningsHTML(page)
}
