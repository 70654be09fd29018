package game

// Level is a proficiency level.
type Level string

// Proficiency levels in ascending order.
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Vocabulary score needed for each promotion.
const (
	IntermediateThreshold = 20
	AdvancedThreshold     = 50
)

// Levels returns the levels in ascending order.
func Levels() []Level {
	return []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

func (l Level) rank() int {
	switch l {
	case LevelIntermediate:
		return 1
	case LevelAdvanced:
		return 2
	default:
		return 0
	}
}

// Progress is a user's lifetime learning record. Scores only grow and the
// level never goes down.
type Progress struct {
	VocabScore   int
	GrammarScore int
	GamesPlayed  int
	StreakDays   int
	Level        Level
}

// NewProgress returns a zeroed record at beginner level.
func NewProgress() Progress {
	return Progress{Level: LevelBeginner}
}

// CurrentLevel returns the level, treating unset as beginner.
func (p Progress) CurrentLevel() Level {
	if p.Level == "" {
		return LevelBeginner
	}
	return p.Level
}

// TotalScore is the sum of vocabulary and grammar scores.
func (p Progress) TotalScore() int {
	return p.VocabScore + p.GrammarScore
}

// Complete folds the final score of a game of kind into the record and
// re-evaluates the level. It reports whether the level went up.
func (p *Progress) Complete(kind Kind, score int) bool {
	switch kind {
	case KindVocabulary, KindMatching:
		p.VocabScore += score
	case KindGrammar, KindFillBlank:
		p.GrammarScore += score
	}
	p.GamesPlayed++

	target := LevelBeginner
	switch {
	case p.VocabScore >= AdvancedThreshold:
		target = LevelAdvanced
	case p.VocabScore >= IntermediateThreshold:
		target = LevelIntermediate
	}
	current := p.CurrentLevel()
	if target.rank() > current.rank() {
		p.Level = target
		return true
	}
	p.Level = current
	return false
}

// Achievement thresholds.
const (
	gameMasterGames     = 10
	vocabularyExpertMin = 25
	grammarGuruMin      = 15
)

// Achievements lists the badges the record has earned.
func (p Progress) Achievements() []string {
	var out []string
	if p.GamesPlayed >= gameMasterGames {
		out = append(out, "Game Master (10+ games)")
	}
	if p.VocabScore >= vocabularyExpertMin {
		out = append(out, "Vocabulary Expert (25+ vocab points)")
	}
	if p.GrammarScore >= grammarGuruMin {
		out = append(out, "Grammar Guru (15+ grammar points)")
	}
	if p.CurrentLevel() == LevelAdvanced {
		out = append(out, "Advanced Learner")
	}
	if len(out) == 0 {
		out = append(out, "Just Getting Started!")
	}
	return out
}
