// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Package preference implements the online linear preference model.
//
// # Model
//
// A record's score is the dot product of its sparse tag vector with a dense
// weight vector, one weight per dictionary feature. Each pairwise decision is
// a logistic SGD step on the score difference:
//
//	p = sigmoid(score(winner) - score(loser))
//	g = 1 - p
//	w[f] += g * lr * winner[f] * importance(f)
//	w[f] -= g * lr * loser[f]  * importance(f)
//
// Surprising outcomes (p near 0) move the weights most, confirmed beliefs
// barely move them.
//
// # Recency Decay
//
// Before every weight-changing decision except the very first, all weights
// are multiplied by a decay factor chosen from the number of decisions
// already made: 0.98 up to 5, 0.96 up to 20, 0.94 beyond. Older evidence
// fades faster as the session grows. Skips never decay.
//
// # Confidence
//
// Confidence blends four signals into [0, 1]: agreement of the current
// weights with the last ten decisions (40%), weight magnitude (25%),
// decision volume (20%) and how concentrated the weight mass is in the top
// ten features (15%).
//
// # Thread Safety
//
// Model is not safe for concurrent use. One model belongs to one learner
// session; callers that share a session across goroutines must serialize.
package preference
