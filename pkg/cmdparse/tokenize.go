package cmdparse

import (
	shlex "github.com/anmitsu/go-shlex"
)

// tokenize splits a command line in non-POSIX mode: single and double quotes group words
// and stay part of the token, backslashes are kept literally.
func tokenize(text string) ([]string, error) {
	return shlex.Split(text, false)
}
