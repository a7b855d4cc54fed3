// Package similar recommends artists whose descriptor sets resemble a given
// artist's, using cosine similarity over binary genre and timbre vectors.
package similar

import (
	"fmt"
	"math"
	"sort"

	"github.com/sydlexius/headliner/internal/classify"
	"github.com/sydlexius/headliner/internal/name"
	"github.com/sydlexius/headliner/internal/store"
)

// Match is one recommended artist with its similarity to the query artist.
type Match struct {
	Name       string   `json:"name"`
	Similarity float64  `json:"similarity"`
	Genres     []string `json:"genres"`
}

// Recommender computes descriptor-space similarity over a knowledge base
// snapshot.
type Recommender struct {
	kb *store.KnowledgeBase
}

// New creates a Recommender over the given knowledge base.
func New(kb *store.KnowledgeBase) *Recommender {
	return &Recommender{kb: kb}
}

// Recommend returns up to limit artists most similar to the named artist,
// ordered by descending similarity. Vectors span every genre and timbre
// descriptor in the knowledge base. Artists whose genres are the unknown
// sentinel are excluded from the candidate pool; zero-similarity artists are
// kept, so a short knowledge base still fills the requested count. Ties
// break alphabetically by store key, keeping the ranking deterministic.
func (r *Recommender) Recommend(artistName string, limit int) ([]Match, error) {
	key := name.Key(artistName)
	target, ok := r.kb.Artists[key]
	if !ok {
		return nil, fmt.Errorf("artist %q not in knowledge base", artistName)
	}

	vocab := r.vocabulary()
	index := make(map[string]int, len(vocab))
	for i, g := range vocab {
		index[g] = i
	}

	targetVec := vectorize(target, index)
	if magnitude(targetVec) == 0 {
		return nil, fmt.Errorf("artist %q has no usable descriptors", artistName)
	}

	keys := make([]string, 0, len(r.kb.Artists))
	for k := range r.kb.Artists {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var matches []Match
	for _, k := range keys {
		if k == key {
			continue
		}
		a := r.kb.Artists[k]
		if len(a.Genres) == 1 && a.Genres[0] == classify.UnknownLabel {
			continue
		}
		matches = append(matches, Match{
			Name:       a.Name,
			Similarity: cosine(targetVec, vectorize(a, index)),
			Genres:     a.Genres,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// vocabulary collects every genre and timbre descriptor in the knowledge
// base except the unknown sentinel, in sorted order so vector positions are
// stable.
func (r *Recommender) vocabulary() []string {
	seen := make(map[string]struct{})
	for _, a := range r.kb.Artists {
		for _, g := range a.Genres {
			seen[g] = struct{}{}
		}
		for _, t := range a.Timbre {
			seen[t] = struct{}{}
		}
	}
	delete(seen, classify.UnknownLabel)
	vocab := make([]string, 0, len(seen))
	for g := range seen {
		vocab = append(vocab, g)
	}
	sort.Strings(vocab)
	return vocab
}

func vectorize(a *store.Artist, index map[string]int) []float64 {
	vec := make([]float64, len(index))
	for _, g := range a.Genres {
		if i, ok := index[g]; ok {
			vec[i] = 1
		}
	}
	for _, t := range a.Timbre {
		if i, ok := index[t]; ok {
			vec[i] = 1
		}
	}
	return vec
}

func magnitude(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	magA, magB := magnitude(a), magnitude(b)
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (magA * magB)
}
