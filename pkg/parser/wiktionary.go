package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/darkclainer/wordmeaning/pkg/meaning"
)

// Language is the only section of a page that is parsed
const Language = "English"

// partsOfSpeech lists section titles that introduce definitions
var partsOfSpeech = map[string]bool{
	"noun":                  true,
	"proper noun":           true,
	"verb":                  true,
	"adjective":             true,
	"adverb":                true,
	"pronoun":               true,
	"preposition":           true,
	"prepositional phrase":  true,
	"conjunction":           true,
	"interjection":          true,
	"determiner":            true,
	"article":               true,
	"numeral":               true,
	"particle":              true,
	"participle":            true,
	"predicative":           true,
	"postposition":          true,
	"phrase":                true,
	"proverb":               true,
	"idiom":                 true,
	"prefix":                true,
	"suffix":                true,
	"infix":                 true,
	"affix":                 true,
	"symbol":                true,
	"letter":                true,
	"character":             true,
	"syllable":              true,
	"abbreviation":          true,
	"initialism":            true,
	"acronym":               true,
	"contraction":           true,
	"classifier":            true,
	"definitions":           true,
	"adjectival noun":       true,
	"determinative":         true,
	"interjectional phrase": true,
}

var parserOutputMatcher = cascadia.MustCompile(`div.mw-parser-output`)
var entryMatcher = cascadia.MustCompile(`h2, h3, h4, h5, h6, ol`)
var headlineMatcher = cascadia.MustCompile(`span.mw-headline`)
var listItemMatcher = cascadia.MustCompile(`li`)

var headingNumberRegexp = regexp.MustCompile(`\s+\d+$`)

// sectionState tracks position of walker in the page
type sectionState struct {
	inLanguage   bool
	partOfSpeech string
	meanings     []meaning.Meaning
}

// ParseMeaningsHTML extracts meanings of English section of Wiktionary page.
// It supports both legacy (span.mw-headline) and current (div.mw-heading) markup.
func ParseMeaningsHTML(page io.Reader) ([]meaning.Meaning, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, fmt.Errorf("can not parse page: %w", err)
	}

	root := doc.FindMatcher(parserOutputMatcher).First()
	if root.Length() == 0 {
		root = doc.Selection
	}
	state := new(sectionState)
	root.FindMatcher(entryMatcher).Each(func(i int, sel *goquery.Selection) {
		if goquery.NodeName(sel) == "ol" {
			state.list(sel)
			return
		}
		state.heading(sel)
	})
	return state.meanings, nil
}

func (s *sectionState) heading(heading *goquery.Selection) {
	id, title := headingTitle(heading)
	if goquery.NodeName(heading) == "h2" {
		s.inLanguage = id == Language || title == Language
		s.partOfSpeech = ""
		return
	}
	if !s.inLanguage {
		return
	}
	pos := strings.ToLower(headingNumberRegexp.ReplaceAllString(title, ""))
	if partsOfSpeech[pos] {
		s.partOfSpeech = pos
		return
	}
	s.partOfSpeech = ""
}

// list collects definitions from the first list that follows part of speech heading
func (s *sectionState) list(ol *goquery.Selection) {
	if !s.inLanguage || s.partOfSpeech == "" {
		return
	}
	if ol.ParentsMatcher(listItemMatcher).Length() > 0 {
		return
	}
	definitions := getDefinitions(ol)
	if len(definitions) > 0 {
		s.meanings = append(s.meanings, meaning.Meaning{
			PartOfSpeech: s.partOfSpeech,
			Definitions:  definitions,
		})
	}
	s.partOfSpeech = ""
}

func getDefinitions(ol *goquery.Selection) []string {
	var definitions []string
	ol.ChildrenMatcher(listItemMatcher).Each(func(i int, li *goquery.Selection) {
		if li.HasClass("mw-empty-elt") {
			return
		}
		if text := definitionText(li.Nodes[0]); text != "" {
			definitions = append(definitions, text)
		}
	})
	return definitions
}

// headingTitle returns id and text of heading in both legacy and current markup
func headingTitle(heading *goquery.Selection) (string, string) {
	if headline := heading.ChildrenMatcher(headlineMatcher).First(); headline.Length() > 0 {
		return headline.AttrOr("id", ""), strings.TrimSpace(headline.Text())
	}
	return heading.AttrOr("id", ""), strings.TrimSpace(definitionText(heading.Nodes[0]))
}
