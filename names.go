package main

import (
	"math/rand/v2"
	"strings"

	"github.com/Seednode/codenames/games/deck"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const slugWords = 3

// displayName picks a pool word and title-cases it, e.g. "Otter".
func displayName(rng *rand.Rand, pool *deck.Pool) string {
	words, err := deck.SampleWords(rng, pool.Words, 1)
	if err != nil {
		return "Player"
	}

	return cases.Title(language.Make(pool.Lang)).String(words[0])
}

// newSlug joins three distinct pool words in lower case, e.g. "apple-river-moon".
// Spaces inside multi-word entries become hyphens.
func newSlug(rng *rand.Rand, pool *deck.Pool) (string, error) {
	words, err := deck.SampleWords(rng, pool.Words, slugWords)
	if err != nil {
		return "", err
	}

	lower := cases.Lower(language.Make(pool.Lang))
	for i, word := range words {
		words[i] = strings.Join(strings.Fields(lower.String(word)), "-")
	}

	return strings.Join(words, "-"), nil
}
