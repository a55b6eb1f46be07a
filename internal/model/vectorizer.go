package model

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// sklearnTokenPattern is the default token pattern of the training-side
// vectorizer. Go's \w and \b are ASCII-only, so it is translated to an
// equivalent Unicode class: maximal runs of two or more word characters.
const sklearnTokenPattern = `(?u)\b\w\w+\b`

var defaultTokenRegexp = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectorizer is a fitted TF-IDF text vectorizer. Only the transform half is
// implemented; the vocabulary and idf weights come from the training run.
type Vectorizer struct {
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf"`
	NGramRange   [2]int         `json:"ngram_range"`
	Lowercase    *bool          `json:"lowercase,omitempty"`
	StopWords    []string       `json:"stop_words,omitempty"`
	TokenPattern string         `json:"token_pattern,omitempty"`
	Norm         string         `json:"norm,omitempty"`
	SublinearTF  bool           `json:"sublinear_tf,omitempty"`
	Binary       bool           `json:"binary,omitempty"`
	UseIDF       *bool          `json:"use_idf,omitempty"`

	tokenRe   *regexp.Regexp
	stopWords map[string]struct{}
}

// NewVectorizer builds a vectorizer with the training-side defaults: unigrams,
// lowercase, l2 norm. A nil idf disables idf weighting.
func NewVectorizer(vocabulary map[string]int, idf []float64) (*Vectorizer, error) {
	v := &Vectorizer{Vocabulary: vocabulary, IDF: idf}
	if idf == nil {
		off := false
		v.UseIDF = &off
	}
	if err := v.init(); err != nil {
		return nil, err
	}
	return v, nil
}

// ParseVectorizer decodes a vectorizer artifact and prepares it for use.
func ParseVectorizer(data []byte) (*Vectorizer, error) {
	var v Vectorizer
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse vectorizer: %w", err)
	}
	if err := v.init(); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *Vectorizer) init() error {
	if len(v.Vocabulary) == 0 {
		return fmt.Errorf("vectorizer vocabulary is empty")
	}
	width := len(v.Vocabulary)
	for term, col := range v.Vocabulary {
		if col < 0 || col >= width {
			return fmt.Errorf("vocabulary term %q has column %d outside [0,%d)", term, col, width)
		}
	}
	if v.useIDF() && len(v.IDF) != width {
		return fmt.Errorf("idf length %d does not match vocabulary size %d", len(v.IDF), width)
	}

	if v.NGramRange[0] == 0 && v.NGramRange[1] == 0 {
		v.NGramRange = [2]int{1, 1}
	}
	if v.NGramRange[0] < 1 || v.NGramRange[1] < v.NGramRange[0] {
		return fmt.Errorf("invalid ngram_range %v", v.NGramRange)
	}

	switch v.Norm {
	case "", "l2", "l1", "none":
	default:
		return fmt.Errorf("unsupported norm %q", v.Norm)
	}
	if v.Norm == "" {
		v.Norm = "l2"
	}

	if v.TokenPattern == "" || v.TokenPattern == sklearnTokenPattern {
		v.tokenRe = defaultTokenRegexp
	} else {
		re, err := regexp.Compile(strings.TrimPrefix(v.TokenPattern, "(?u)"))
		if err != nil {
			return fmt.Errorf("invalid token_pattern: %w", err)
		}
		v.tokenRe = re
	}

	v.stopWords = make(map[string]struct{}, len(v.StopWords))
	for _, w := range v.StopWords {
		v.stopWords[w] = struct{}{}
	}
	return nil
}

// Width is the length of every vector produced by Transform.
func (v *Vectorizer) Width() int {
	return len(v.Vocabulary)
}

// Transform turns one document into its dense tf-idf vector.
func (v *Vectorizer) Transform(doc string) []float64 {
	out := make([]float64, v.Width())
	counts := make(map[int]float64)
	for _, term := range v.terms(doc) {
		if col, ok := v.Vocabulary[term]; ok {
			counts[col]++
		}
	}

	for col, tf := range counts {
		switch {
		case v.Binary:
			tf = 1
		case v.SublinearTF:
			tf = 1 + math.Log(tf)
		}
		if v.useIDF() {
			tf *= v.IDF[col]
		}
		out[col] = tf
	}

	normalize(out, v.Norm)
	return out
}

// terms produces the analyzed n-grams of doc in document order.
func (v *Vectorizer) terms(doc string) []string {
	if v.lowercase() {
		doc = strings.ToLower(doc)
	}
	raw := v.tokenRe.FindAllString(doc, -1)
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := v.stopWords[t]; !stop {
			tokens = append(tokens, t)
		}
	}

	minN, maxN := v.NGramRange[0], v.NGramRange[1]
	var out []string
	for n := minN; n <= maxN; n++ {
		if n == 1 {
			out = append(out, tokens...)
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func (v *Vectorizer) lowercase() bool {
	return v.Lowercase == nil || *v.Lowercase
}

func (v *Vectorizer) useIDF() bool {
	return v.UseIDF == nil || *v.UseIDF
}

func normalize(vec []float64, norm string) {
	var total float64
	switch norm {
	case "l2":
		for _, x := range vec {
			total += x * x
		}
		total = math.Sqrt(total)
	case "l1":
		for _, x := range vec {
			total += math.Abs(x)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range vec {
		vec[i] /= total
	}
}
