// Package search embeds documents with an external embeddings API and
// ranks them by cosine similarity.
package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDisabled is returned when no embeddings endpoint is configured.
var ErrDisabled = errors.New("search is disabled")

// Document is an indexed item.
type Document struct {
	Kind    string    `json:"kind"`
	RefID   int64     `json:"refId"`
	Content string    `json:"content"`
	Vector  []float32 `json:"-"`
}

// Match is a ranked Document.
type Match struct {
	Document
	Score float64 `json:"score"`
}

// Cosine returns the cosine similarity of a and b. Vectors of different
// length or zero magnitude have similarity 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Rank returns the limit documents most similar to query, best first.
// Documents scoring at or below minScore are dropped.
func Rank(query []float32, docs []Document, limit int, minScore float64) []Match {
	matches := make([]Match, 0, len(docs))
	for _, d := range docs {
		s := Cosine(query, d.Vector)
		if s <= minScore {
			continue
		}
		matches = append(matches, Match{Document: d, Score: s})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// EncodeVector returns the stored form of v.
func EncodeVector(v []float32) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode vector: %w", err)
	}
	return string(b), nil
}

// DecodeVector parses a stored vector.
func DecodeVector(s string) ([]float32, error) {
	var v []float32
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	return v, nil
}
