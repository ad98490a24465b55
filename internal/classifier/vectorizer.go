package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// Vectorizer is a pre-fit TF-IDF text vectorizer
type Vectorizer struct {
	Vocabulary  map[string]int `json:"vocabulary"`   // Term to feature index
	IDF         []float64      `json:"idf"`          // Inverse document frequency per feature, empty to disable
	Lowercase   *bool          `json:"lowercase"`    // Defaults to true
	NgramRange  [2]int         `json:"ngram_range"`  // Word n-gram sizes, defaults to [1, 1]
	SublinearTF bool           `json:"sublinear_tf"` // Replace tf with 1 + log(tf)
	Norm        string         `json:"norm"`         // "l2" (default), "l1" or "none"
	StopWords   []string       `json:"stop_words"`

	stopWords map[string]struct{}
	features  int
}

// LoadVectorizer reads a vectorizer artifact from a JSON file
func LoadVectorizer(path string) (*Vectorizer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vectorizer file: %w", err)
	}
	defer file.Close()

	var v Vectorizer
	if err := json.NewDecoder(file).Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode vectorizer %s: %w", path, err)
	}
	if err := v.init(); err != nil {
		return nil, fmt.Errorf("invalid vectorizer %s: %w", path, err)
	}
	return &v, nil
}

// init validates the artifact and fills in defaults
func (v *Vectorizer) init() error {
	if len(v.Vocabulary) == 0 {
		return fmt.Errorf("empty vocabulary")
	}

	maxIndex := -1
	for term, idx := range v.Vocabulary {
		if idx < 0 {
			return fmt.Errorf("negative index for term %q", term)
		}
		if idx > maxIndex {
			maxIndex = idx
		}
	}
	v.features = maxIndex + 1
	if len(v.IDF) > 0 {
		if maxIndex >= len(v.IDF) {
			return fmt.Errorf("vocabulary index %d out of range for %d idf weights", maxIndex, len(v.IDF))
		}
		v.features = len(v.IDF)
	}

	if v.NgramRange == [2]int{} {
		v.NgramRange = [2]int{1, 1}
	}
	if v.NgramRange[0] < 1 || v.NgramRange[1] < v.NgramRange[0] {
		return fmt.Errorf("invalid ngram range %v", v.NgramRange)
	}

	switch v.Norm {
	case "":
		v.Norm = "l2"
	case "l1", "l2", "none":
	default:
		return fmt.Errorf("unsupported norm %q", v.Norm)
	}

	v.stopWords = make(map[string]struct{}, len(v.StopWords))
	for _, w := range v.StopWords {
		v.stopWords[w] = struct{}{}
	}
	return nil
}

// Features returns the dimension of the vectors produced by Transform
func (v *Vectorizer) Features() int {
	return v.features
}

// Transform turns raw text into a dense TF-IDF feature vector
func (v *Vectorizer) Transform(text string) []float64 {
	out := make([]float64, v.features)

	for _, term := range v.terms(text) {
		if idx, ok := v.Vocabulary[term]; ok {
			out[idx]++
		}
	}

	for i, tf := range out {
		if tf == 0 {
			continue
		}
		if v.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		if len(v.IDF) > 0 {
			tf *= v.IDF[i]
		}
		out[i] = tf
	}

	normalize(out, v.Norm)
	return out
}

// terms splits text into the word n-grams looked up in the vocabulary
func (v *Vectorizer) terms(text string) []string {
	if v.Lowercase == nil || *v.Lowercase {
		text = strings.ToLower(text)
	}

	words := tokenize(text)
	if len(v.stopWords) > 0 {
		kept := words[:0]
		for _, w := range words {
			if _, stop := v.stopWords[w]; !stop {
				kept = append(kept, w)
			}
		}
		words = kept
	}

	minN, maxN := v.NgramRange[0], v.NgramRange[1]
	if maxN == 1 {
		return words
	}

	var terms []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(words); i++ {
			terms = append(terms, strings.Join(words[i:i+n], " "))
		}
	}
	return terms
}

// tokenize returns every run of two or more word characters (letters, digits, underscore)
func tokenize(text string) []string {
	var tokens []string
	start := -1
	runes := 0

	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if start < 0 {
				start = i
				runes = 0
			}
			runes++
			continue
		}
		if start >= 0 && runes >= 2 {
			tokens = append(tokens, text[start:i])
		}
		start = -1
	}
	if start >= 0 && runes >= 2 {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

// normalize scales vec to unit length under the given norm
func normalize(vec []float64, norm string) {
	var length float64
	switch norm {
	case "l2":
		length = floats.Norm(vec, 2)
	case "l1":
		length = floats.Norm(vec, 1)
	default:
		return
	}
	if length == 0 {
		return
	}
	floats.Scale(1/length, vec)
}
