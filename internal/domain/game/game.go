// Package game implements the vocabulary and grammar mini-games and the
// per-user progress they feed.
//
// Every game follows the same shape: Start issues the first question, each
// answer is evaluated against the current question only, and after the
// final answer the score is folded into Progress and the game is removed.
package game

// Kind names a game variant.
type Kind string

// Game kinds.
const (
	KindVocabulary Kind = "vocab"
	KindGrammar    Kind = "grammar"
	KindMatching   Kind = "word_match"
	KindFillBlank  Kind = "fill_blank"
)

// Question totals and matching size.
const (
	VocabularyQuestions = 5
	GrammarQuestions    = 3
	FillBlankQuestions  = 3
	MatchingPairs       = 4
	vocabularyOptions   = 4
)

// Game is one running game. The set of variants is closed.
type Game interface {
	Kind() Kind
	game()
}

// VocabQuiz asks for the definition of a word.
type VocabQuiz struct {
	Word     Word
	Options  []string
	Correct  int
	Question int
	Total    int
	Score    int
}

// GrammarQuiz asks multiple-choice grammar questions.
type GrammarQuiz struct {
	Current  GrammarQuestion
	Question int
	Total    int
	Score    int
}

// FillBlank asks for the missing word of a sentence.
type FillBlank struct {
	Current  Sentence
	Question int
	Total    int
	Score    int
}

// Side tells which half of a pair a tile shows.
type Side int

// Tile sides.
const (
	SideEnglish Side = iota
	SideSynonym
)

// Tile is one selectable word of a matching board.
type Tile struct {
	Text string
	Side Side
	Pair int // index into WordMatch.Pairs
}

// WordMatch is a board of shuffled tiles; the player pairs each word with
// its synonym.
type WordMatch struct {
	Pairs    []Pair
	Tiles    []Tile
	Selected []int
	Matched  []bool
	Score    int
}

// Kind implements Game.
func (*VocabQuiz) Kind() Kind { return KindVocabulary }

// Kind implements Game.
func (*GrammarQuiz) Kind() Kind { return KindGrammar }

// Kind implements Game.
func (*FillBlank) Kind() Kind { return KindFillBlank }

// Kind implements Game.
func (*WordMatch) Kind() Kind { return KindMatching }

func (*VocabQuiz) game()   {}
func (*GrammarQuiz) game() {}
func (*FillBlank) game()   {}
func (*WordMatch) game()   {}

// MatchedTiles returns how many tiles are matched.
func (w *WordMatch) MatchedTiles() int {
	n := 0
	for _, m := range w.Matched {
		if m {
			n++
		}
	}
	return n
}

// IsSelected reports whether tile i is in the selection buffer.
func (w *WordMatch) IsSelected(i int) bool {
	for _, s := range w.Selected {
		if s == i {
			return true
		}
	}
	return false
}

// Player is the per-user state the engine mutates: lifetime progress and
// at most one running game.
type Player struct {
	Progress Progress
	Active   Game
}
