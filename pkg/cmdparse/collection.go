package cmdparse

import (
	"fmt"
	"regexp"
)

// matchCandidates treats token as a raw pattern. Candidate values are not escaped, so
// metacharacters in the token (for example '.' or '|') keep their regex meaning.
func (f *Field) matchCandidates(token string) ([]any, error) {
	re, err := regexp.Compile("^" + token + "$")
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid pattern: %w", token, err)
	}
	matches := make([]any, 0, len(f.candidates))
	for _, c := range f.candidates {
		if re.MatchString(fmt.Sprint(c)) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}
