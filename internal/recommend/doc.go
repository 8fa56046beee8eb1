// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Package recommend learns a user's game taste from pairwise comparisons.
//
// # Architecture
//
// An Engine owns one learning session and wires four parts together:
//
//   - features: the tag dictionary and sparse record vectors
//   - preference: a linear logistic model trained by SGD on each answer
//   - rarity: per-tag importance that scales updates for rare tags
//   - selection: the pair selector (bootstrap, guided, refinement)
//
// Each answer is one of first, second, both liked, both disliked or skip.
// Preferences move the winner's features up and the loser's down; shared
// likes or dislikes move both records the same way; skips only advance the
// counter. Weights decay slightly before every decision so early answers
// fade as the session goes on.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger,
//	    recommend.WithReranker(reranking.NewMMR(0.7)))
//	if err != nil {
//	    return err
//	}
//	if err := engine.Load(records); err != nil {
//	    return err
//	}
//
//	for {
//	    view, ok, err := engine.NextPair()
//	    if err != nil || !ok {
//	        break
//	    }
//	    _ = engine.RecordChoice(view.Pair, selection.OutcomeFirst)
//	}
//
//	ranked, err := engine.RankDiverse(ctx, 20)
//
// # Determinism
//
// Pair selection draws from a seeded random source (Config.Seed or
// WithRandomSource). The same catalog, seed and answers produce the same
// pairs and the same weights.
//
// # Thread Safety
//
// The engine is safe for concurrent use. All operations take the engine's
// mutex; the packages it wires are not safe for concurrent use on their own.
package recommend
