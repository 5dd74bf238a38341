// Package refdata loads the static coin, sentiment and stopword dictionaries
// embedded in the binary. The store is built once at startup and read-only
// afterwards.
package refdata

import (
	"embed"
	"encoding/json"
	"strings"

	"hermes/pkg/errors"
)

//go:embed data/coins.json data/sentiment.json data/stopwords.json
var dataFS embed.FS

// Coin is one dictionary entry: a canonical ticker plus the spelled-out
// aliases it is known by in channel chatter.
type Coin struct {
	Symbol  string   `json:"symbol"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

type coinFile struct {
	Coins     []Coin   `json:"coins"`
	Blacklist []string `json:"blacklist"`
}

// SentimentSide holds the markers for one polarity
type SentimentSide struct {
	Keywords []string `json:"keywords"`
	Emojis   []string `json:"emojis"`
}

type sentimentFile struct {
	Positive SentimentSide `json:"positive"`
	Negative SentimentSide `json:"negative"`
}

// Store is the immutable reference data set
type Store struct {
	coins     []Coin
	symbols   map[string]struct{}
	blacklist map[string]struct{}

	positiveMarkers []string // keywords + emojis, matched against uppercased text
	negativeMarkers []string
	sentimentWords  map[string]struct{} // keyword tokens only, for bare-token exclusion

	stopwords map[string]struct{} // union of all categories
}

// Load parses the embedded dictionaries into a Store
func Load() (*Store, error) {
	s := &Store{
		symbols:        make(map[string]struct{}),
		blacklist:      make(map[string]struct{}),
		sentimentWords: make(map[string]struct{}),
		stopwords:      make(map[string]struct{}),
	}

	var cf coinFile
	if err := readJSON("data/coins.json", &cf); err != nil {
		return nil, err
	}
	s.coins = cf.Coins
	for _, c := range cf.Coins {
		s.symbols[strings.ToUpper(c.Symbol)] = struct{}{}
	}
	for _, b := range cf.Blacklist {
		s.blacklist[strings.ToUpper(b)] = struct{}{}
	}

	var sf sentimentFile
	if err := readJSON("data/sentiment.json", &sf); err != nil {
		return nil, err
	}
	s.positiveMarkers = append(upperAll(sf.Positive.Keywords), sf.Positive.Emojis...)
	s.negativeMarkers = append(upperAll(sf.Negative.Keywords), sf.Negative.Emojis...)
	for _, kw := range sf.Positive.Keywords {
		s.sentimentWords[strings.ToUpper(kw)] = struct{}{}
	}
	for _, kw := range sf.Negative.Keywords {
		s.sentimentWords[strings.ToUpper(kw)] = struct{}{}
	}

	var wf map[string][]string
	if err := readJSON("data/stopwords.json", &wf); err != nil {
		return nil, err
	}
	for _, words := range wf {
		for _, w := range words {
			s.stopwords[strings.ToUpper(w)] = struct{}{}
		}
	}

	return s, nil
}

func readJSON(path string, dest interface{}) error {
	data, err := dataFS.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read embedded %s", path)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}

func upperAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToUpper(w)
	}
	return out
}

// Coins returns the coin dictionary
func (s *Store) Coins() []Coin {
	return s.coins
}

// KnownSymbol reports whether sym is a canonical ticker in the dictionary
func (s *Store) KnownSymbol(sym string) bool {
	_, ok := s.symbols[sym]
	return ok
}

// Symbols returns the set of canonical tickers
func (s *Store) Symbols() map[string]struct{} {
	return s.symbols
}

// IsBlacklisted reports whether token must never count as a coin mention
func (s *Store) IsBlacklisted(token string) bool {
	_, ok := s.blacklist[token]
	return ok
}

// Blacklist returns the blacklisted token set
func (s *Store) Blacklist() map[string]struct{} {
	return s.blacklist
}

// PositiveMarkers returns positive keywords and emojis, keywords uppercased
func (s *Store) PositiveMarkers() []string {
	return s.positiveMarkers
}

// NegativeMarkers returns negative keywords and emojis, keywords uppercased
func (s *Store) NegativeMarkers() []string {
	return s.negativeMarkers
}

// IsSentimentKeyword reports whether token is itself a sentiment keyword,
// which disqualifies it as a bare-token coin candidate ("UP" is not a coin)
func (s *Store) IsSentimentKeyword(token string) bool {
	_, ok := s.sentimentWords[token]
	return ok
}

// IsStopword reports whether token belongs to any stopword category
func (s *Store) IsStopword(token string) bool {
	_, ok := s.stopwords[token]
	return ok
}

// Stopwords returns the combined stopword set
func (s *Store) Stopwords() map[string]struct{} {
	return s.stopwords
}
