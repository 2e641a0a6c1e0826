package deck

import (
	"bufio"
	crand "crypto/rand"
	_ "embed"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed words/en.txt
var englishWords string

// DefaultLang is the language of the embedded word list.
const DefaultLang = "en"

// Pool is a de-duplicated list of candidate card words.
type Pool struct {
	Lang  string
	Words []string
}

// Default returns the embedded English pool.
func Default() *Pool {
	pool, err := Load(DefaultLang, strings.NewReader(englishWords))
	if err != nil {
		panic(err)
	}

	return pool
}

// Load reads one word per line. Blank lines and lines starting with '#' are
// skipped, and words are upper-cased for display.
func Load(lang string, r io.Reader) (*Pool, error) {
	upper := cases.Upper(language.Make(lang))

	seen := make(map[string]bool)
	pool := &Pool{Lang: lang}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word := upper.String(line)
		if seen[word] {
			continue
		}
		seen[word] = true

		pool.Words = append(pool.Words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}

	if len(pool.Words) == 0 {
		return nil, fmt.Errorf("word list %q is empty", lang)
	}

	return pool, nil
}

// NewRand returns a generator seeded from crypto/rand.
func NewRand() *rand.Rand {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
}
