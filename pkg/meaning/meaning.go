package meaning

const (
	// DefaultMaxWords is the default upper bound on words per request
	DefaultMaxWords = 100
	// MaxWordLength is the longest word accepted for lookup
	MaxWordLength = 64
)

type Request struct {
	Words    []string `json:"words" validate:"required,min=1,dive,alpha,max=64"`
	Password *string  `json:"password" validate:"required"`
}

type Meaning struct {
	PartOfSpeech string   `json:"part_of_speech" validate:"required"`
	Definitions  []string `json:"definitions" validate:"required,min=1,dive,required"`
}

type WordResult struct {
	Meanings []Meaning `json:"meanings" validate:"dive"`
	Source   []string  `json:"source" validate:"dive,url"`
}

// Response holds one WordResult per requested word, in request order
type Response []WordResult

// Empty reports whether no meaning was found for the word
func (r *WordResult) Empty() bool {
	return r == nil || len(r.Meanings) == 0
}

// normalize replaces nil slices with empty ones, so they are encoded as []
func (r *WordResult) normalize() {
	if r.Meanings == nil {
		r.Meanings = []Meaning{}
	}
	if r.Source == nil {
		r.Source = []string{}
	}
}

// AddSource appends source if it is not already present
func (r *WordResult) AddSource(source string) {
	for _, s := range r.Source {
		if s == source {
			return
		}
	}
	r.Source = append(r.Source, source)
}
