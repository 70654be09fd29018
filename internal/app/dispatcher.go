package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/okian/tutorbot/internal/domain/game"
	"github.com/okian/tutorbot/internal/domain/library"
	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/internal/domain/ratelimit"
	"github.com/okian/tutorbot/pkg/logger"
	"github.com/okian/tutorbot/pkg/metrics"
)

// answer is the screen a button press leads to. The button's message is
// edited to show text and menu; toast is shown as the callback answer.
type answer struct {
	text  string
	menu  *model.Menu
	toast string
	book  *delivery
}

// delivery is a book sent as a document after the screen was edited.
type delivery struct {
	shelf library.Shelf
	book  library.Book
}

// Handle processes one event. Only transport failures are returned; every
// other error is answered to the user.
func (s *Service) Handle(ctx context.Context, e model.Event) error { //nolint:gocritic // hugeParam: Event is passed by value like the queue
	switch e.Kind {
	case model.KindCommand:
		return s.onCommand(ctx, e)
	case model.KindButton:
		return s.onButton(ctx, e)
	case model.KindText:
		return s.onText(ctx, e)
	case model.KindMedia:
		return s.onMedia(ctx, e)
	default:
		metrics.RecordEventDropped("unknown_kind")
		s.logger.Warn(ctx, "unknown event kind", logger.String("kind", string(e.Kind)))
		return nil
	}
}

func (s *Service) send(ctx context.Context, chatID int64, r model.Reply) error {
	if err := s.transport.Send(ctx, chatID, r); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func (s *Service) onCommand(ctx context.Context, e model.Event) error { //nolint:gocritic // hugeParam
	switch e.Payload {
	case "/start":
		if err := s.sessions.Reset(ctx, e.UserID); err != nil {
			s.logger.Error(ctx, "reset session failed", logger.Int64("user", int64(e.UserID)), logger.Error(err))
		}
		return s.send(ctx, e.ChatID, model.Reply{Text: s.welcomeText(), Menu: mainMenu()})
	case "/help":
		return s.send(ctx, e.ChatID, model.Reply{Text: s.helpText(), Menu: single(backToMain)})
	case "/status":
		a, err := s.status(ctx, e.UserID)
		if err != nil {
			return s.send(ctx, e.ChatID, model.Reply{Text: s.userMessage(ctx, err)})
		}
		return s.send(ctx, e.ChatID, model.Reply{Text: a.text})
	default:
		return s.send(ctx, e.ChatID, model.Reply{Text: unknownCommandText})
	}
}

func (s *Service) onButton(ctx context.Context, e model.Event) error { //nolint:gocritic // hugeParam
	a, err := s.route(ctx, e.UserID, e.Payload)
	if err != nil {
		a = answer{toast: s.userMessage(ctx, err)}
	}

	// Every callback is answered exactly once, even without a toast, so the
	// client stops showing the button as pending.
	if err := s.transport.Notify(ctx, e.CallbackID, a.toast); err != nil {
		s.logger.Warn(ctx, "answer callback failed", logger.Error(err))
	}
	if a.text == "" {
		return nil
	}
	if err := s.send(ctx, e.ChatID, model.Reply{Text: a.text, Menu: a.menu, Edit: true, MessageID: e.MessageID}); err != nil {
		return err
	}
	if a.book != nil {
		return s.deliver(ctx, e.ChatID, a.book)
	}
	return nil
}

// route maps button data to the screen it leads to.
func (s *Service) route(ctx context.Context, user model.UserID, data string) (answer, error) {
	switch data {
	case actionWriting, actionSpeaking, actionReading, actionListening, actionMiniApp:
		m, _ := model.ParseMode(data)
		if err := s.sessions.SetMode(ctx, user, m); err != nil {
			return answer{}, err
		}
		return s.modeScreen(ctx, user, m)
	case actionBackToMain:
		if err := s.sessions.SetMode(ctx, user, model.ModeGeneral); err != nil {
			return answer{}, err
		}
		return answer{text: s.welcomeText(), menu: mainMenu()}, nil
	case actionHelp:
		return answer{text: s.helpText(), menu: single(backToMain)}, nil
	case actionStatus:
		return s.status(ctx, user)
	case actionLibrary, actionBackToLibrary:
		return answer{text: libraryText(s.catalog.Shelves), menu: libraryMenu(s.catalog.Shelves)}, nil
	case actionBackToReading:
		return s.modeScreen(ctx, user, model.ModeReading)
	case actionBackToListen:
		return s.modeScreen(ctx, user, model.ModeListening)
	case actionBackToMiniApp:
		return s.miniApp(ctx, user)
	case actionVocabQuiz:
		return s.startVocabulary(ctx, user)
	case actionGrammarQuiz:
		return s.startGrammar(ctx, user)
	case actionMatchStart:
		return s.startMatching(ctx, user)
	case actionFillBlankStart:
		return s.startFillBlank(ctx, user)
	case actionDaily:
		return s.dailyChallenge(ctx, user)
	case actionProgress:
		return s.progressStats(ctx, user)
	}

	if t, ok := listeningTopicFor(data); ok {
		return answer{text: t.text, menu: single(backToListen)}, nil
	}

	switch {
	case strings.HasPrefix(data, prefixLevel):
		sh, err := s.catalog.Shelf(strings.TrimPrefix(data, prefixLevel))
		if err != nil {
			return answer{}, err
		}
		return answer{text: shelfText(sh), menu: shelfMenu(sh)}, nil
	case strings.HasPrefix(data, prefixBook):
		return s.bookScreen(strings.TrimPrefix(data, prefixBook))
	case strings.HasPrefix(data, prefixVocabAnswer):
		return quizAnswer(withIndex(data, prefixVocabAnswer, func(i int) (answer, error) { return s.answerVocabulary(ctx, user, i) }))
	case strings.HasPrefix(data, prefixGrammar):
		return quizAnswer(withIndex(data, prefixGrammar, func(i int) (answer, error) { return s.answerGrammar(ctx, user, i) }))
	case strings.HasPrefix(data, prefixMatchSelect):
		return withIndex(data, prefixMatchSelect, func(i int) (answer, error) { return s.selectWord(ctx, user, i) })
	case strings.HasPrefix(data, prefixFillBlank):
		return quizAnswer(withIndex(data, prefixFillBlank, func(i int) (answer, error) { return s.answerFillBlank(ctx, user, i) }))
	}
	return answer{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}

func withIndex(data, prefix string, fn func(i int) (answer, error)) (answer, error) {
	i, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil {
		return answer{}, fmt.Errorf("%w: %q", ErrInvalidSelection, data)
	}
	return fn(i)
}

// quizAnswer reports an answer the running quiz cannot take as an expired
// game, so the user is told to start over. Tile selections keep their own
// wording.
func quizAnswer(a answer, err error) (answer, error) {
	if errors.Is(err, ErrInvalidSelection) && !errors.Is(err, ErrGameExpired) {
		return a, fmt.Errorf("%w: %w", ErrGameExpired, err)
	}
	return a, err
}

func (s *Service) modeScreen(ctx context.Context, user model.UserID, m model.Mode) (answer, error) {
	switch m {
	case model.ModeWriting:
		return answer{text: writingText, menu: single(backToMain)}, nil
	case model.ModeSpeaking:
		return answer{text: speakingText, menu: single(backToMain)}, nil
	case model.ModeReading:
		return answer{text: readingText, menu: readingMenu()}, nil
	case model.ModeListening:
		return answer{text: listeningText, menu: listeningMenu()}, nil
	case model.ModeMiniApp:
		return s.miniApp(ctx, user)
	default:
		return answer{text: s.welcomeText(), menu: mainMenu()}, nil
	}
}

func (s *Service) status(ctx context.Context, user model.UserID) (answer, error) {
	remaining, err := s.limiter.Remaining(ctx, user)
	if err != nil {
		return answer{}, err
	}
	reset, err := s.limiter.TimeUntilReset(ctx, user)
	if err != nil {
		return answer{}, err
	}
	return answer{text: statusText(remaining, s.limiter.Cap(), reset), menu: single(backToMain)}, nil
}

// bookScreen handles "<level>_<index>". Level ids contain underscores, so
// the index follows the last one.
func (s *Service) bookScreen(ref string) (answer, error) {
	cut := strings.LastIndexByte(ref, '_')
	if cut < 0 {
		return answer{}, fmt.Errorf("%w: %q", library.ErrBookNotFound, ref)
	}
	index, err := strconv.Atoi(ref[cut+1:])
	if err != nil {
		return answer{}, fmt.Errorf("%w: %q", library.ErrBookNotFound, ref)
	}
	sh, err := s.catalog.Shelf(ref[:cut])
	if err != nil {
		return answer{}, err
	}
	b, err := s.catalog.Book(sh.ID, index)
	if err != nil {
		return answer{}, err
	}
	return answer{text: bookText(sh, b), menu: single(backToLibrary), book: &delivery{shelf: sh, book: b}}, nil
}

// deliver uploads the book file, or explains why it cannot.
func (s *Service) deliver(ctx context.Context, chatID int64, d *delivery) error {
	path := s.catalog.Path(d.book)
	if _, err := os.Stat(path); err != nil || d.book.File == "" {
		s.logger.Warn(ctx, "book file missing", logger.String("title", d.book.Title), logger.String("path", path))
		return s.send(ctx, chatID, model.Reply{Text: fmt.Sprintf(
			"📖 %s by %s\n📚 Level: %s\n\n📄 PDF Status: File not found\n\nFor now, you can find this book online or in your local library! 📚",
			d.book.Title, d.book.Author, d.shelf.Name)})
	}

	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".pdf"
	}
	filename := strings.ReplaceAll(d.book.Title, " ", "_") + ext
	caption := fmt.Sprintf("📖 %s by %s\n📚 Level: %s", d.book.Title, d.book.Author, d.shelf.Name)
	if err := s.transport.SendDocument(ctx, chatID, path, filename, caption); err != nil {
		s.logger.Error(ctx, "send book failed", logger.String("title", d.book.Title), logger.Error(err))
		return s.send(ctx, chatID, model.Reply{Text: fmt.Sprintf(
			"❌ Sorry, there was an error sending the PDF for '%s'. Please try again later.", d.book.Title)})
	}
	return nil
}

// admit runs the rate limiter for e. It reports false when the event must
// not be processed further; the user has then been told why.
func (s *Service) admit(ctx context.Context, e model.Event) (bool, error) { //nolint:gocritic // hugeParam
	d, err := s.limiter.Admit(ctx, e.UserID)
	if err != nil {
		metrics.RecordErrorByComponent("ratelimit", "unavailable")
		return false, s.send(ctx, e.ChatID, model.Reply{Text: s.userMessage(ctx, err)})
	}
	metrics.RecordAdmission(d.Allowed)
	if d.Allowed {
		return true, nil
	}
	s.logger.Debug(ctx, "rate limited",
		logger.Int64("user", int64(e.UserID)),
		logger.Duration("retryAfter", d.RetryAfter),
	)
	limited := &ratelimit.LimitedError{RetryAfter: d.RetryAfter}
	return false, s.send(ctx, e.ChatID, model.Reply{Text: s.userMessage(ctx, limited)})
}

func (s *Service) typing(ctx context.Context, chatID int64) {
	if err := s.transport.Typing(ctx, chatID); err != nil {
		s.logger.Warn(ctx, "typing indicator failed", logger.Error(err))
	}
}

func (s *Service) onText(ctx context.Context, e model.Event) error { //nolint:gocritic // hugeParam
	if ok, err := s.admit(ctx, e); !ok {
		return err
	}
	s.typing(ctx, e.ChatID)

	mode := s.mode(ctx, e.UserID)

	text, err := s.provider.Generate(ctx, e.Payload, mode)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrGeneration
	}
	if err != nil {
		if !errors.Is(err, ErrGeneration) {
			err = fmt.Errorf("%w: %w", ErrGeneration, err)
		}
		return s.send(ctx, e.ChatID, model.Reply{Text: s.userMessage(ctx, err)})
	}

	return s.send(ctx, e.ChatID, model.Reply{Text: truncate(text, s.maxMessageLength), Menu: single(backToMain)})
}

// mode returns the user's mode, general when the store fails.
func (s *Service) mode(ctx context.Context, user model.UserID) model.Mode {
	m, err := s.sessions.Mode(ctx, user)
	if err != nil {
		s.logger.Warn(ctx, "session lookup failed", logger.Int64("user", int64(user)), logger.Error(err))
		return model.ModeGeneral
	}
	return m
}

func (s *Service) onMedia(ctx context.Context, e model.Event) error { //nolint:gocritic // hugeParam
	if !strings.HasPrefix(e.MediaMIME, "audio/") {
		return s.send(ctx, e.ChatID, model.Reply{Text: documentNotAudioText})
	}
	if ok, err := s.admit(ctx, e); !ok {
		return err
	}
	s.typing(ctx, e.ChatID)
	s.mode(ctx, e.UserID)
	return s.send(ctx, e.ChatID, model.Reply{Text: audioReceivedText, Menu: single(backToMain)})
}

// userMessage converts a handler error into the text shown to the user.
func (s *Service) userMessage(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, ErrGameExpired):
		return "Game session expired. Please start a new quiz."
	case errors.Is(err, ErrInvalidSelection):
		return "Word already matched or game not found!"
	case errors.Is(err, ErrGeneration):
		s.logger.Error(ctx, "completion failed", logger.Error(err))
		return "❌ Sorry, I encountered an error processing your message. Please try again later."
	case errors.Is(err, ErrRateLimited):
		if d, ok := ratelimit.RetryAfter(err); ok {
			return fmt.Sprintf("⚠️ Rate limit exceeded! Please wait %d seconds before sending another message.", int((d+time.Second-1)/time.Second))
		}
		return "⚠️ Rate limit exceeded! Please wait before sending another message."
	case errors.Is(err, library.ErrBookNotFound):
		return "Book not found!"
	case errors.Is(err, library.ErrLevelNotFound):
		return "Reading level not found!"
	case errors.Is(err, game.ErrNoContent):
		s.logger.Error(ctx, "game content missing", logger.Error(err))
		return "This game is not available right now."
	case errors.Is(err, ErrUnknownAction):
		s.logger.Debug(ctx, "unknown button", logger.Error(err))
		return "This button is no longer available."
	default:
		s.logger.Error(ctx, "handler failed", logger.Error(err))
		return "❌ An unexpected error occurred. Please try again later."
	}
}
