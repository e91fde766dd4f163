package meaning

import "fmt"

// Assemble builds response from lookup results. results[i] must belong to words[i].
// Nil result means that nothing was found for the word.
func Assemble(words []string, results []*WordResult) (Response, error) {
	if len(words) != len(results) {
		return nil, &ShapeError{Errors: []FieldError{{
			Field:   "response",
			Message: fmt.Sprintf("got %d results for %d words", len(results), len(words)),
		}}}
	}
	response := make(Response, 0, len(results))
	for _, result := range results {
		var wr WordResult
		if result != nil {
			wr = *result
		}
		wr.normalize()
		response = append(response, wr)
	}
	return response, nil
}
