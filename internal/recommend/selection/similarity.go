// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package selection

import (
	"regexp"
	"strings"
)

var (
	symbolReplacer = strings.NewReplacer("™", " ", "®", " ", "©", " ", "’", "'")

	// Edition and re-release markers.
	editionPattern = regexp.MustCompile(`\b(game of the year|goty|digital deluxe|deluxe|definitive|complete|ultimate|` +
		`gold|premium|enhanced|special|collector'?s|anniversary|legendary|standard|remastered|remaster|` +
		`director'?s cut|hd|edition)\b`)

	// Add-on content markers.
	addonPattern = regexp.MustCompile(`\b(dlc|soundtrack|ost|season pass|expansion pack|expansion|art ?book|` +
		`bonus content|upgrade|bundle)\b`)

	// Episodic numbering, e.g. "Episode 2", "Chapter IV", "Part 1".
	episodePattern = regexp.MustCompile(`\b(episode|chapter|part|season|vol\.?|volume)\s*([0-9]+|[ivx]+)\b`)

	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// NameKey is a record name reduced for near-duplicate detection.
type NameKey struct {
	// Full is the normalized name with every edition, add-on and episode
	// marker removed. Real subtitles stay, so "Star Wars: Battlefront" and
	// "Star Wars: Knights of the Old Republic" remain distinct.
	Full string
}

// NormalizeName lowercases name and strips trademark symbols, edition, add-on
// and episode markers and punctuation. A subtitle made only of markers
// ("Skyrim - Special Edition") disappears entirely.
func NormalizeName(name string) NameKey {
	return NameKey{Full: cleanTitle(strings.ToLower(symbolReplacer.Replace(name)))}
}

func cleanTitle(s string) string {
	s = episodePattern.ReplaceAllString(s, " ")
	s = editionPattern.ReplaceAllString(s, " ")
	s = addonPattern.ReplaceAllString(s, " ")
	s = punctuation.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// SimilarNames reports whether two normalized names look like the same game:
// identical once markers are stripped.
func SimilarNames(a, b NameKey) bool {
	return a.Full != "" && a.Full == b.Full
}
