// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Package reranking reorders a preference ranking for objectives beyond raw
// score.
//
// Rerankers run after the engine has scored the catalog:
//
//	Model scores -> Rank -> Reranker -> Final top k
//
// # Available Rerankers
//
// Maximal Marginal Relevance (MMR):
//   - Balances score with diversity
//   - Penalizes records whose tags overlap already-selected records
//   - Lambda controls the score/diversity tradeoff
//
// Calibration:
//   - Matches the tag mix of the top k to a target distribution
//   - The target is usually the liked side of the preference summary
//
// Scores are min-max scaled over the input list before they are combined
// with the secondary objective, since preference scores are unbounded.
//
// # Usage
//
//	engine, _ := recommend.NewEngine(cfg, logger,
//	    recommend.WithReranker(reranking.NewMMR(cfg.Diversity.MMRLambda)))
//	diverse, _ := engine.RankDiverse(ctx, 20)
//
//	summary, _ := engine.Summary()
//	cal := reranking.NewCalibration(reranking.CalibrationConfig{
//	    Lambda: 0.7,
//	    Target: reranking.TargetFromSummary(summary),
//	})
//	calibrated, _ := engine.RankWith(ctx, cal, 20)
package reranking
