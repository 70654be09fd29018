package game

import (
	"fmt"
	"strings"
)

// Selection describes what a word-matching tap did.
type Selection int

// Selection results.
const (
	SelectionNone Selection = iota
	SelectionPicked
	SelectionDeselected
	SelectionMatched
	SelectionMismatched
)

// Outcome reports one evaluated answer or tile selection.
type Outcome struct {
	Kind      Kind
	Correct   bool
	Answer    string // text of the correct option
	Feedback  string // example sentence, explanation or completed sentence
	Question  int    // question just answered
	Total     int
	Score     int
	Completed bool
	LevelUp   bool
	Level     Level // level after the outcome

	Selection Selection // word matching only
	Matches   int       // pairs matched so far
}

// Engine starts games and evaluates answers. It holds no per-user state;
// callers pass the Player under their own per-user lock.
type Engine struct {
	content     Content
	definitions []string
	sampler     *Sampler
}

// NewEngine returns an engine drawing from content with sampler.
func NewEngine(content Content, sampler *Sampler) *Engine {
	return &Engine{content: content, definitions: content.definitions(), sampler: sampler}
}

// StartVocabulary replaces any running game with a five-question
// vocabulary quiz at the player's level.
func (e *Engine) StartVocabulary(p *Player) (*VocabQuiz, error) {
	q := &VocabQuiz{Question: 1, Total: VocabularyQuestions}
	if err := e.drawWord(q, p.Progress.CurrentLevel()); err != nil {
		return nil, err
	}
	p.Active = q
	return q, nil
}

// StartGrammar replaces any running game with a three-question grammar quiz.
func (e *Engine) StartGrammar(p *Player) (*GrammarQuiz, error) {
	if len(e.content.Grammar) == 0 {
		return nil, fmt.Errorf("%w: grammar", ErrNoContent)
	}
	q := &GrammarQuiz{
		Current:  e.content.Grammar[e.sampler.Intn(len(e.content.Grammar))],
		Question: 1,
		Total:    GrammarQuestions,
	}
	p.Active = q
	return q, nil
}

// StartFillBlank replaces any running game with a three-sentence
// fill-in-the-blank game.
func (e *Engine) StartFillBlank(p *Player) (*FillBlank, error) {
	if len(e.content.Sentences) == 0 {
		return nil, fmt.Errorf("%w: sentences", ErrNoContent)
	}
	q := &FillBlank{
		Current:  e.content.Sentences[e.sampler.Intn(len(e.content.Sentences))],
		Question: 1,
		Total:    FillBlankQuestions,
	}
	p.Active = q
	return q, nil
}

// StartMatching replaces any running game with a board of four distinct
// pairs shuffled into eight tiles.
func (e *Engine) StartMatching(p *Player) (*WordMatch, error) {
	if len(e.content.Pairs) < MatchingPairs {
		return nil, fmt.Errorf("%w: need %d pairs, have %d", ErrNoContent, MatchingPairs, len(e.content.Pairs))
	}
	w := &WordMatch{}
	for i, idx := range e.sampler.Sample(len(e.content.Pairs), MatchingPairs) {
		pair := e.content.Pairs[idx]
		w.Pairs = append(w.Pairs, pair)
		w.Tiles = append(w.Tiles, Tile{Text: pair.English, Side: SideEnglish, Pair: i})
	}
	for i, pair := range w.Pairs {
		w.Tiles = append(w.Tiles, Tile{Text: pair.Synonym, Side: SideSynonym, Pair: i})
	}
	e.sampler.Shuffle(len(w.Tiles), func(i, j int) { w.Tiles[i], w.Tiles[j] = w.Tiles[j], w.Tiles[i] })
	w.Matched = make([]bool, len(w.Tiles))
	p.Active = w
	return w, nil
}

// drawWord puts a fresh word and option set on q.
func (e *Engine) drawWord(q *VocabQuiz, level Level) error {
	words := e.content.Vocabulary[level]
	if len(words) == 0 {
		words = e.content.Vocabulary[LevelBeginner]
	}
	if len(words) == 0 {
		return fmt.Errorf("%w: vocabulary", ErrNoContent)
	}
	word := words[e.sampler.Intn(len(words))]

	distractors := make([]string, 0, len(e.definitions))
	for _, d := range e.definitions {
		if d != word.Definition {
			distractors = append(distractors, d)
		}
	}
	options := []string{word.Definition}
	for _, i := range e.sampler.Sample(len(distractors), vocabularyOptions-1) {
		options = append(options, distractors[i])
	}
	e.sampler.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	q.Word = word
	q.Options = options
	for i, o := range options {
		if o == word.Definition {
			q.Correct = i
		}
	}
	return nil
}

// AnswerVocabulary evaluates choice against the current vocabulary question.
func (e *Engine) AnswerVocabulary(p *Player, choice int) (Outcome, error) {
	q, ok := p.Active.(*VocabQuiz)
	if !ok {
		return Outcome{}, ErrGameExpired
	}
	if choice < 0 || choice >= len(q.Options) {
		return Outcome{}, ErrInvalidSelection
	}

	out := Outcome{
		Kind:     KindVocabulary,
		Correct:  choice == q.Correct,
		Answer:   q.Options[q.Correct],
		Feedback: q.Word.Example,
		Question: q.Question,
		Total:    q.Total,
	}
	if out.Correct {
		q.Score++
	}
	out.Score = q.Score

	if q.Question < q.Total {
		next := *q
		if err := e.drawWord(&next, p.Progress.CurrentLevel()); err != nil {
			return Outcome{}, err
		}
		next.Question++
		*q = next
		out.Level = p.Progress.CurrentLevel()
		return out, nil
	}
	return e.finish(p, out), nil
}

// AnswerGrammar evaluates choice against the current grammar question.
func (e *Engine) AnswerGrammar(p *Player, choice int) (Outcome, error) {
	q, ok := p.Active.(*GrammarQuiz)
	if !ok {
		return Outcome{}, ErrGameExpired
	}
	if choice < 0 || choice >= len(q.Current.Options) {
		return Outcome{}, ErrInvalidSelection
	}

	out := Outcome{
		Kind:     KindGrammar,
		Correct:  choice == q.Current.Correct,
		Answer:   q.Current.Options[q.Current.Correct],
		Feedback: q.Current.Explanation,
		Question: q.Question,
		Total:    q.Total,
	}
	if out.Correct {
		q.Score++
	}
	out.Score = q.Score

	if q.Question < q.Total {
		q.Current = e.content.Grammar[e.sampler.Intn(len(e.content.Grammar))]
		q.Question++
		out.Level = p.Progress.CurrentLevel()
		return out, nil
	}
	return e.finish(p, out), nil
}

// AnswerFillBlank evaluates choice against the current sentence.
func (e *Engine) AnswerFillBlank(p *Player, choice int) (Outcome, error) {
	q, ok := p.Active.(*FillBlank)
	if !ok {
		return Outcome{}, ErrGameExpired
	}
	if choice < 0 || choice >= len(q.Current.Options) {
		return Outcome{}, ErrInvalidSelection
	}

	answer := q.Current.Options[q.Current.Correct]
	out := Outcome{
		Kind:     KindFillBlank,
		Correct:  choice == q.Current.Correct,
		Answer:   answer,
		Feedback: strings.Replace(q.Current.Text, "___", answer, 1),
		Question: q.Question,
		Total:    q.Total,
	}
	if out.Correct {
		q.Score++
	}
	out.Score = q.Score

	if q.Question < q.Total {
		q.Current = e.content.Sentences[e.sampler.Intn(len(e.content.Sentences))]
		q.Question++
		out.Level = p.Progress.CurrentLevel()
		return out, nil
	}
	return e.finish(p, out), nil
}

// SelectWord taps tile index on the running matching board. Tapping the
// selected tile again deselects it; a second distinct tile evaluates the
// pair and clears the selection either way.
func (e *Engine) SelectWord(p *Player, index int) (Outcome, error) {
	w, ok := p.Active.(*WordMatch)
	if !ok {
		return Outcome{}, ErrGameExpired
	}
	if index < 0 || index >= len(w.Tiles) || w.Matched[index] {
		return Outcome{}, ErrInvalidSelection
	}

	out := Outcome{Kind: KindMatching, Total: len(w.Pairs), Level: p.Progress.CurrentLevel()}

	if w.IsSelected(index) {
		kept := w.Selected[:0]
		for _, s := range w.Selected {
			if s != index {
				kept = append(kept, s)
			}
		}
		w.Selected = kept
		out.Selection = SelectionDeselected
		out.Score, out.Matches = w.Score, w.MatchedTiles()/2
		return out, nil
	}

	w.Selected = append(w.Selected, index)
	if len(w.Selected) < 2 {
		out.Selection = SelectionPicked
		out.Score, out.Matches = w.Score, w.MatchedTiles()/2
		return out, nil
	}

	a, b := w.Tiles[w.Selected[0]], w.Tiles[w.Selected[1]]
	if a.Pair == b.Pair && a.Side != b.Side {
		w.Matched[w.Selected[0]] = true
		w.Matched[w.Selected[1]] = true
		w.Score++
		out.Selection = SelectionMatched
		out.Correct = true
	} else {
		out.Selection = SelectionMismatched
	}
	w.Selected = w.Selected[:0]
	out.Score, out.Matches = w.Score, w.MatchedTiles()/2

	if w.MatchedTiles() == len(w.Tiles) {
		return e.finish(p, out), nil
	}
	return out, nil
}

// finish folds the final score into progress and removes the game.
func (e *Engine) finish(p *Player, out Outcome) Outcome {
	out.Completed = true
	out.LevelUp = p.Progress.Complete(out.Kind, out.Score)
	out.Level = p.Progress.CurrentLevel()
	p.Active = nil
	return out
}

// Challenge is the daily challenge card. The reward is informational.
type Challenge struct {
	Kind   Kind
	Title  string
	Goal   string
	Reward int
}

var challenges = []Challenge{
	{KindVocabulary, "Vocabulary Master", "Score 4/5 on a vocabulary quiz to earn bonus points!", 5},
	{KindGrammar, "Grammar Expert", "Get a perfect score on a grammar quiz to earn bonus points!", 3},
	{KindMatching, "Matching Master", "Complete the word matching game without mistakes!", 4},
}

// DailyChallenge picks one of the challenge cards.
func (e *Engine) DailyChallenge() Challenge {
	return challenges[e.sampler.Intn(len(challenges))]
}
