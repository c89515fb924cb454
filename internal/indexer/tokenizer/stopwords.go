package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// StopWords is a set of normalized terms excluded from indexing and queries.
// The zero value is an empty set.
type StopWords map[string]struct{}

func (s StopWords) Contains(term string) bool {
	_, ok := s[term]
	return ok
}

// LoadStopWords reads the word list at path. An unreadable file yields an
// empty set so that indexing proceeds without filtering.
func LoadStopWords(path string) StopWords {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("stop word list unavailable, indexing every term", "path", path, "error", err)
		return StopWords{}
	}
	defer f.Close()

	stop, err := ReadStopWords(f)
	if err != nil {
		slog.Error("stop word list truncated", "path", path, "error", err, "loaded", len(stop))
	}
	return stop
}

// ReadStopWords collects the normalized words of r. On a read error the
// words seen so far are returned alongside it.
func ReadStopWords(r io.Reader) (StopWords, error) {
	stop := StopWords{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		for word := range Tokenize(sc.Text()) {
			stop[Normalize(word)] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return stop, fmt.Errorf("reading stop words: %w", err)
	}
	return stop, nil
}
