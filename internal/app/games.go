package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/tutorbot/internal/adapters/repository"
	"github.com/okian/tutorbot/internal/domain/game"
	"github.com/okian/tutorbot/internal/domain/library"
	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/pkg/logger"
	"github.com/okian/tutorbot/pkg/metrics"
)

// play runs fn on the user's player under the session lock. fn must not do
// I/O; it only mutates game state and renders the next screen.
func (s *Service) play(ctx context.Context, user model.UserID, fn func(p *game.Player) (answer, error)) (answer, error) {
	var a answer
	err := s.sessions.Update(ctx, user, func(sess *repository.Session) error {
		var err error
		a, err = fn(&sess.Player)
		return err
	})
	return a, err
}

func (s *Service) startGame(ctx context.Context, user model.UserID, kind game.Kind, start func(p *game.Player) (answer, error)) (answer, error) {
	a, err := s.play(ctx, user, start)
	if err != nil {
		return answer{}, err
	}
	metrics.RecordGameStarted(string(kind))
	s.logger.Debug(ctx, "game started", logger.Int64("user", int64(user)), logger.String("game", string(kind)))
	return a, nil
}

// finished records metrics for an outcome once the session lock is released.
func (s *Service) finished(ctx context.Context, user model.UserID, out game.Outcome) {
	if !out.Completed {
		return
	}
	metrics.RecordGameCompleted(string(out.Kind))
	if out.LevelUp {
		metrics.RecordLevelUp(string(out.Level))
		s.logger.Info(ctx, "level up", logger.Int64("user", int64(user)), logger.String("level", string(out.Level)))
	}
}

func (s *Service) startVocabulary(ctx context.Context, user model.UserID) (answer, error) {
	return s.startGame(ctx, user, game.KindVocabulary, func(p *game.Player) (answer, error) {
		q, err := s.engine.StartVocabulary(p)
		if err != nil {
			return answer{}, err
		}
		return vocabQuestion(q, ""), nil
	})
}

func (s *Service) answerVocabulary(ctx context.Context, user model.UserID, choice int) (answer, error) {
	var out game.Outcome
	a, err := s.play(ctx, user, func(p *game.Player) (answer, error) {
		var err error
		if out, err = s.engine.AnswerVocabulary(p, choice); err != nil {
			return answer{}, err
		}
		result := resultLine(out, "✅ Correct!", "❌ Wrong! The correct answer was: ") + "\n💡 Example: " + out.Feedback
		if out.Completed {
			return answer{
				text: fmt.Sprintf("🎯 Quiz Complete!\n\n%s\n\nFinal Score: %d/%d\nTotal Vocabulary Score: %d%s\n\nGreat job! Keep practicing to improve your vocabulary! 📚✨",
					result, out.Score, out.Total, p.Progress.VocabScore, levelUpLine(out)),
				menu: replayMenu("🔄 Play Again", actionVocabQuiz),
			}, nil
		}
		q, ok := p.Active.(*game.VocabQuiz)
		if !ok {
			return answer{}, ErrGameExpired
		}
		next := vocabQuestion(q, result)
		next.toast = resultLine(out, "✅ Correct!", "❌ Wrong! The correct answer was: ")
		return next, nil
	})
	if err == nil {
		s.finished(ctx, user, out)
	}
	return a, err
}

func vocabQuestion(q *game.VocabQuiz, result string) answer {
	var b strings.Builder
	fmt.Fprintf(&b, "📚 Vocabulary Quiz (Question %d/%d)\n\n", q.Question, q.Total)
	if result != "" {
		b.WriteString(result + "\n\n")
	}
	fmt.Fprintf(&b, "Word: %s\n\nChoose the correct definition:", strings.ToUpper(q.Word.Word))
	return answer{text: b.String(), menu: optionsMenu(prefixVocabAnswer, q.Options)}
}

func (s *Service) startGrammar(ctx context.Context, user model.UserID) (answer, error) {
	return s.startGame(ctx, user, game.KindGrammar, func(p *game.Player) (answer, error) {
		q, err := s.engine.StartGrammar(p)
		if err != nil {
			return answer{}, err
		}
		return grammarQuestion(q, ""), nil
	})
}

func (s *Service) answerGrammar(ctx context.Context, user model.UserID, choice int) (answer, error) {
	var out game.Outcome
	a, err := s.play(ctx, user, func(p *game.Player) (answer, error) {
		var err error
		if out, err = s.engine.AnswerGrammar(p, choice); err != nil {
			return answer{}, err
		}
		verdict := resultLine(out, "✅ Correct!", "❌ Wrong! The correct answer was: ")
		result := verdict + "\n💡 Explanation: " + out.Feedback
		if out.Completed {
			return answer{
				text: fmt.Sprintf("🎯 Grammar Challenge Complete!\n\n%s\n\nFinal Score: %d/%d\nTotal Grammar Score: %d%s\n\nExcellent work! Grammar is the foundation of good English! 📝✨",
					result, out.Score, out.Total, p.Progress.GrammarScore, levelUpLine(out)),
				menu: replayMenu("🔄 Try Again", actionGrammarQuiz),
			}, nil
		}
		q, ok := p.Active.(*game.GrammarQuiz)
		if !ok {
			return answer{}, ErrGameExpired
		}
		next := grammarQuestion(q, result)
		next.toast = verdict
		return next, nil
	})
	if err == nil {
		s.finished(ctx, user, out)
	}
	return a, err
}

func grammarQuestion(q *game.GrammarQuiz, result string) answer {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 Grammar Challenge (Question %d/%d)\n\n", q.Question, q.Total)
	if result != "" {
		b.WriteString(result + "\n\n")
	}
	b.WriteString(q.Current.Prompt)
	return answer{text: b.String(), menu: optionsMenu(prefixGrammar, q.Current.Options)}
}

func (s *Service) startFillBlank(ctx context.Context, user model.UserID) (answer, error) {
	return s.startGame(ctx, user, game.KindFillBlank, func(p *game.Player) (answer, error) {
		q, err := s.engine.StartFillBlank(p)
		if err != nil {
			return answer{}, err
		}
		return fillBlankQuestion(q, ""), nil
	})
}

func (s *Service) answerFillBlank(ctx context.Context, user model.UserID, choice int) (answer, error) {
	var out game.Outcome
	a, err := s.play(ctx, user, func(p *game.Player) (answer, error) {
		var err error
		if out, err = s.engine.AnswerFillBlank(p, choice); err != nil {
			return answer{}, err
		}
		verdict := resultLine(out, "✅ Perfect!", "❌ Not quite! The correct answer was: ")
		result := fmt.Sprintf("%s\nComplete sentence: %q", verdict, out.Feedback)
		if out.Completed {
			return answer{
				text: fmt.Sprintf("🎯 Fill in the Blanks Complete!\n\n%s\n\nFinal Score: %d/%d\nTotal Grammar Score: %d%s\n\nGreat job completing the sentences! 📝✨",
					result, out.Score, out.Total, p.Progress.GrammarScore, levelUpLine(out)),
				menu: replayMenu("🔄 Play Again", actionFillBlankStart),
			}, nil
		}
		q, ok := p.Active.(*game.FillBlank)
		if !ok {
			return answer{}, ErrGameExpired
		}
		next := fillBlankQuestion(q, result)
		next.toast = verdict
		return next, nil
	})
	if err == nil {
		s.finished(ctx, user, out)
	}
	return a, err
}

func fillBlankQuestion(q *game.FillBlank, result string) answer {
	var b strings.Builder
	fmt.Fprintf(&b, "✏️ Fill in the Blanks (Question %d/%d)\n\n", q.Question, q.Total)
	if result != "" {
		b.WriteString(result + "\n\nNew sentence:\n")
	} else {
		b.WriteString("Complete the sentence by choosing the correct word:\n\n")
	}
	fmt.Fprintf(&b, "%q\n\n💡 Hint: %s", q.Current.Text, q.Current.Hint)
	return answer{text: b.String(), menu: optionsMenu(prefixFillBlank, q.Current.Options)}
}

func (s *Service) startMatching(ctx context.Context, user model.UserID) (answer, error) {
	return s.startGame(ctx, user, game.KindMatching, func(p *game.Player) (answer, error) {
		w, err := s.engine.StartMatching(p)
		if err != nil {
			return answer{}, err
		}
		return matchingBoard(w), nil
	})
}

func (s *Service) selectWord(ctx context.Context, user model.UserID, index int) (answer, error) {
	var out game.Outcome
	a, err := s.play(ctx, user, func(p *game.Player) (answer, error) {
		var err error
		if out, err = s.engine.SelectWord(p, index); err != nil {
			return answer{}, err
		}
		toast := selectionToasts[out.Selection]
		if out.Completed {
			return answer{
				text: fmt.Sprintf("🎉 Congratulations!\n\nYou matched all pairs correctly!\n\nScore: %d/%d\nTotal Games Played: %d%s\n\nYour vocabulary skills are improving! 🌟",
					out.Score, out.Total, p.Progress.GamesPlayed, levelUpLine(out)),
				menu:  replayMenu("🔄 Play Again", actionMatchStart),
				toast: toast,
			}, nil
		}
		w, ok := p.Active.(*game.WordMatch)
		if !ok {
			return answer{}, ErrGameExpired
		}
		board := matchingBoard(w)
		board.toast = toast
		return board, nil
	})
	if err == nil {
		s.finished(ctx, user, out)
	}
	return a, err
}

var selectionToasts = map[game.Selection]string{
	game.SelectionDeselected: "Word deselected",
	game.SelectionMatched:    "✅ Great match!",
	game.SelectionMismatched: "❌ Not a match, try again!",
}

// matchingBoard renders the tiles two per row, marking matched and
// selected ones.
func matchingBoard(w *game.WordMatch) answer {
	selected := "None"
	if len(w.Selected) > 0 {
		words := make([]string, 0, len(w.Selected))
		for _, i := range w.Selected {
			words = append(words, w.Tiles[i].Text)
		}
		selected = strings.Join(words, ", ")
	}
	text := fmt.Sprintf(`🎯 Word Matching Game

Match the synonyms! Select two words that have similar meanings.

Selected: %s
Matches Found: %d/%d

Words to match:`, selected, w.MatchedTiles()/2, len(w.Pairs))

	m := &model.Menu{}
	var row []model.Button
	for i, t := range w.Tiles {
		label := t.Text
		switch {
		case w.Matched[i]:
			label = "✅ " + label
		case w.IsSelected(i):
			label = "🔸 " + label
		}
		row = append(row, model.Button{Text: label, Data: fmt.Sprintf("%s%d", prefixMatchSelect, i)})
		if len(row) == 2 {
			m.Row(row...)
			row = nil
		}
	}
	if len(row) > 0 {
		m.Row(row...)
	}
	m.Row(backToMiniApp)
	return answer{text: text, menu: m}
}

func resultLine(out game.Outcome, correct, wrong string) string {
	if out.Correct {
		return correct
	}
	return wrong + out.Answer
}

func levelUpLine(out game.Outcome) string {
	if !out.LevelUp {
		return ""
	}
	return fmt.Sprintf("\n\n🎉 LEVEL UP! You're now at %s level!", library.Title(string(out.Level)))
}

func (s *Service) miniApp(ctx context.Context, user model.UserID) (answer, error) {
	p, err := s.sessions.Progress(ctx, user)
	if err != nil {
		return answer{}, err
	}
	text := fmt.Sprintf(`🎮 Learning Mini App

Welcome to your interactive English learning playground! Choose an activity to boost your skills:

🎯 Your Progress:
• Vocabulary Score: %d
• Grammar Score: %d
• Games Played: %d
• Current Level: %s

🚀 Ready to learn and have fun?`, p.VocabScore, p.GrammarScore, p.GamesPlayed, library.Title(string(p.CurrentLevel())))
	return answer{text: text, menu: miniAppMenu()}, nil
}

var challengeActions = map[game.Kind]string{
	game.KindVocabulary: actionVocabQuiz,
	game.KindGrammar:    actionGrammarQuiz,
	game.KindMatching:   actionMatchStart,
	game.KindFillBlank:  actionFillBlankStart,
}

func (s *Service) dailyChallenge(ctx context.Context, user model.UserID) (answer, error) {
	p, err := s.sessions.Progress(ctx, user)
	if err != nil {
		return answer{}, err
	}
	c := s.engine.DailyChallenge()
	text := fmt.Sprintf("🏆 Daily Challenge - %s\n\nToday's challenge: %s\n\nReward: +%d bonus points\nCurrent streak: %d days",
		c.Title, c.Goal, c.Reward, p.StreakDays)
	m := &model.Menu{}
	m.Row(model.Button{Text: "🎯 Accept Challenge", Data: challengeActions[c.Kind]}).Row(backToMiniApp)
	return answer{text: text, menu: m}, nil
}

func (s *Service) progressStats(ctx context.Context, user model.UserID) (answer, error) {
	p, err := s.sessions.Progress(ctx, user)
	if err != nil {
		return answer{}, err
	}
	text := fmt.Sprintf(`📊 Your Learning Progress

🎯 Scores:
• Vocabulary: %d points
• Grammar: %d points
• Total Score: %d points

🎮 Activity:
• Games Played: %d
• Current Level: %s
• Streak: %d days

🏆 Achievements:
• %s

Keep learning and improving! 🌟`, p.VocabScore, p.GrammarScore, p.TotalScore(), p.GamesPlayed,
		library.Title(string(p.CurrentLevel())), p.StreakDays, strings.Join(p.Achievements(), "\n• "))
	m := &model.Menu{}
	m.Row(model.Button{Text: "🎮 Play More Games", Data: actionBackToMiniApp}).Row(backToMain)
	return answer{text: text, menu: m}, nil
}
