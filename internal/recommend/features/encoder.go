// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package features

import (
	"github.com/tomtom215/endless/internal/cache"
	"github.com/tomtom215/endless/internal/catalog"
)

// Encoder encodes records against one catalog's dictionary and caches the
// result per record id. Build a new Encoder when the catalog changes.
type Encoder struct {
	dict   *Dictionary
	maxima map[string]float64
	cache  *cache.Memo[int, SparseVector]
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithNormalization scales every feature by its catalog-wide maximum.
func WithNormalization(maxima map[string]float64) EncoderOption {
	return func(e *Encoder) {
		e.maxima = maxima
	}
}

// NewEncoder creates an encoder for dict.
func NewEncoder(dict *Dictionary, opts ...EncoderOption) *Encoder {
	e := &Encoder{
		dict:  dict,
		cache: cache.NewMemo[int, SparseVector](0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewCatalogEncoder builds the dictionary for records and an encoder over it.
// When normalize is set, weights are divided by per-feature catalog maxima.
func NewCatalogEncoder(records []catalog.Record, normalize bool) *Encoder {
	dict := BuildDictionary(records)
	if normalize {
		return NewEncoder(dict, WithNormalization(FeatureMaxima(records)))
	}
	return NewEncoder(dict)
}

// Dictionary returns the dictionary the encoder maps onto.
func (e *Encoder) Dictionary() *Dictionary {
	return e.dict
}

// Normalized reports whether per-feature normalization is applied.
func (e *Encoder) Normalized() bool {
	return e.maxima != nil
}

// Encode returns the cached vector for r, encoding it on first use.
func (e *Encoder) Encode(r *catalog.Record) SparseVector {
	return e.cache.GetOrCompute(r.ID, func() SparseVector {
		return e.EncodeTags(r.Tags)
	})
}

// EncodeTags encodes an arbitrary tag map without caching.
func (e *Encoder) EncodeTags(tags map[string]float64) SparseVector {
	if e.maxima != nil {
		tags = Normalize(tags, e.maxima)
	}
	return Encode(tags, e.dict)
}

// Invalidate drops every cached encoding.
func (e *Encoder) Invalidate() {
	e.cache.Clear()
}

// CacheStats exposes the encoding cache counters.
func (e *Encoder) CacheStats() cache.MemoStats {
	return e.cache.Stats()
}
