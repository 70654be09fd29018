package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/tutorbot/internal/adapters/completion"
	"github.com/okian/tutorbot/internal/adapters/repository"
	"github.com/okian/tutorbot/internal/adapters/transport/telegram"
	service "github.com/okian/tutorbot/internal/app"
	"github.com/okian/tutorbot/internal/domain/game"
	"github.com/okian/tutorbot/internal/domain/library"
	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/internal/domain/ratelimit"
)

type sent struct {
	chatID int64
	reply  model.Reply
}

type document struct {
	path, filename, caption string
}

type fakeTransport struct {
	mu       sync.Mutex
	sent     []sent
	toasts   []string
	typing   int
	docs     []document
	failSend error
}

func (f *fakeTransport) Send(_ context.Context, chatID int64, r model.Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		return f.failSend
	}
	f.sent = append(f.sent, sent{chatID: chatID, reply: r})
	return nil
}

func (f *fakeTransport) Notify(_ context.Context, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = append(f.toasts, text)
	return nil
}

func (f *fakeTransport) Typing(context.Context, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing++
	return nil
}

func (f *fakeTransport) SendDocument(_ context.Context, _ int64, path, filename, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, document{path, filename, caption})
	return nil
}

func (f *fakeTransport) last() model.Reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return model.Reply{}
	}
	return f.sent[len(f.sent)-1].reply
}

func (f *fakeTransport) lastToast() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.toasts) == 0 {
		return ""
	}
	return f.toasts[len(f.toasts)-1]
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeProvider struct {
	mu     sync.Mutex
	reply  string
	err    error
	prompt []string
	modes  []model.Mode
}

func (p *fakeProvider) Generate(_ context.Context, prompt string, mode model.Mode) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompt = append(p.prompt, prompt)
	p.modes = append(p.modes, mode)
	return p.reply, p.err
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompt)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

const (
	user = model.UserID(42)
	chat = int64(4242)
)

func command(name string) model.Event {
	return model.Event{Kind: model.KindCommand, UserID: user, ChatID: chat, Payload: name}
}

func text(msg string) model.Event {
	return model.Event{Kind: model.KindText, UserID: user, ChatID: chat, Payload: msg}
}

func button(data string) model.Event {
	return model.Event{Kind: model.KindButton, UserID: user, ChatID: chat, MessageID: 9, CallbackID: "cb", Payload: data}
}

func menuData(m *model.Menu) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, row := range m.Rows {
		for _, b := range row {
			out = append(out, b.Data)
		}
	}
	return out
}

type fixture struct {
	svc      *service.Service
	tr       *fakeTransport
	provider *fakeProvider
	sessions *repository.Sessions
	clk      *clock
}

func newFixture(opts ...service.Option) *fixture {
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	f := &fixture{
		tr:       &fakeTransport{},
		provider: &fakeProvider{reply: "Here is some help."},
		sessions: repository.NewSessions(repository.WithClock(clk.Now)),
		clk:      clk,
	}
	base := []service.Option{
		service.WithTransport(f.tr),
		service.WithCompletion(f.provider),
		service.WithSessions(f.sessions),
		service.WithLimiter(ratelimit.NewMemory(ratelimit.WithCap(3), ratelimit.WithClock(f.clk.Now))),
		service.WithEngine(game.NewEngine(game.DefaultContent(), game.NewSampler(7))),
	}
	f.svc = service.New(append(base, opts...)...)
	return f
}

func (f *fixture) handle(e model.Event) {
	So(f.svc.Handle(context.Background(), e), ShouldBeNil)
}

// active returns the running game of the test user.
func (f *fixture) active() game.Game {
	var g game.Game
	_ = f.sessions.Update(context.Background(), user, func(s *repository.Session) error {
		g = s.Player.Active
		return nil
	})
	return g
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service without a transport", t, func() {
		svc := service.New(service.WithCompletion(&fakeProvider{}))

		Convey("Start refuses to run", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, service.ErrMissingDependency), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Submit drops events", func() {
			So(svc.Submit(context.Background(), text("hi")), ShouldBeFalse)
		})
	})

	Convey("Given a started service", t, func() {
		f := newFixture(service.WithWorkerCount(2), service.WithQueueSize(16), service.WithSweepInterval(0))
		ctx := context.Background()
		So(f.svc.Start(ctx), ShouldBeNil)
		So(f.svc.Start(ctx), ShouldBeNil)

		Convey("Duplicate deliveries are handled once", func() {
			e := command("/start")
			e.ID = "upd-1"
			So(f.svc.Submit(ctx, e), ShouldBeTrue)
			So(f.svc.Submit(ctx, e), ShouldBeFalse)

			So(f.svc.Stop(ctx), ShouldBeNil)
			So(f.tr.count(), ShouldEqual, 1)
			So(f.tr.last().Text, ShouldContainSubstring, "Welcome")
		})

		Convey("Stats report the running components", func() {
			stats := f.svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["rateLimit"], ShouldEqual, 3)
			So(stats, ShouldContainKey, "queueLength")
			So(f.svc.Stop(ctx), ShouldBeNil)
			So(f.svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a service started on a context that is later cancelled", t, func() {
		f := newFixture(service.WithWorkerCount(1), service.WithQueueSize(64), service.WithSweepInterval(0))
		runCtx, cancel := context.WithCancel(context.Background())
		So(f.svc.Start(runCtx), ShouldBeNil)

		for i := range 20 {
			e := command("/help")
			e.ID = "upd-" + strconv.Itoa(i)
			So(f.svc.Submit(runCtx, e), ShouldBeTrue)
		}
		cancel()

		Convey("Stop still drains every queued event", func() {
			So(f.svc.Stop(context.Background()), ShouldBeNil)
			So(f.tr.count(), ShouldEqual, 20)
		})
	})
}

func TestService_Commands(t *testing.T) {
	Convey("Given a user in writing mode", t, func() {
		f := newFixture()
		ctx := context.Background()
		So(f.sessions.SetMode(ctx, user, model.ModeWriting), ShouldBeNil)

		Convey("/start resets to general and shows the main menu", func() {
			f.handle(command("/start"))
			mode, _ := f.sessions.Mode(ctx, user)
			So(mode, ShouldEqual, model.ModeGeneral)

			r := f.tr.last()
			So(r.Edit, ShouldBeFalse)
			So(r.Text, ShouldContainSubstring, "Rate limit: 3 messages per minute")
			So(menuData(r.Menu), ShouldResemble, []string{"writing", "speaking", "reading", "listening", "mini_app", "help", "status"})
		})

		Convey("/status reports the remaining quota", func() {
			f.handle(text("one"))
			f.clk.Advance(15 * time.Second)
			f.handle(command("/status"))
			So(f.tr.last().Text, ShouldContainSubstring, "Remaining requests: 2/3")
			So(f.tr.last().Text, ShouldContainSubstring, "Time until reset: 45 seconds")
		})

		Convey("/help lists the commands", func() {
			f.handle(command("/help"))
			So(f.tr.last().Text, ShouldContainSubstring, "/status")
			So(menuData(f.tr.last().Menu), ShouldResemble, []string{"back_to_main"})
		})

		Convey("Unknown commands get a hint", func() {
			f.handle(command("/karaoke"))
			So(f.tr.last().Text, ShouldContainSubstring, "/start")
		})
	})
}

func TestService_Text(t *testing.T) {
	Convey("Given a rate limit of three messages", t, func() {
		f := newFixture(service.WithMaxMessageLength(10))
		ctx := context.Background()

		Convey("Replies are generated with the session mode and truncated", func() {
			f.handle(button("speaking"))
			f.handle(text("how do I say this?"))

			So(f.provider.modes, ShouldResemble, []model.Mode{model.ModeSpeaking})
			r := f.tr.last()
			So(r.Text, ShouldEqual, "Here is...")
			So(menuData(r.Menu), ShouldResemble, []string{"back_to_main"})
			So(f.tr.typing, ShouldEqual, 1)
		})

		Convey("The fourth message inside the window is rejected", func() {
			for range 3 {
				f.handle(text("hi"))
			}
			f.clk.Advance(10 * time.Second)
			f.handle(text("one more"))

			So(f.provider.calls(), ShouldEqual, 3)
			So(f.tr.last().Text, ShouldEqual, "⚠️ Rate limit exceeded! Please wait 50 seconds before sending another message.")

			Convey("And admitted again once the window passed", func() {
				f.clk.Advance(50 * time.Second)
				f.handle(text("back again"))
				So(f.provider.calls(), ShouldEqual, 4)
			})
		})

		Convey("Completion failures become an apology", func() {
			f.provider.err = errors.New("upstream 500")
			f.handle(text("hi"))
			So(f.tr.last().Text, ShouldContainSubstring, "error processing your message")
		})

		Convey("Empty completions count as failures", func() {
			f.provider.reply = "   "
			f.handle(text("hi"))
			So(f.tr.last().Text, ShouldContainSubstring, "error processing your message")
		})

		Convey("Transport failures are returned to the worker", func() {
			f.tr.failSend = errors.New("telegram down")
			So(f.svc.Handle(ctx, text("hi")), ShouldNotBeNil)
		})
	})
}

func TestService_Media(t *testing.T) {
	Convey("Given media messages", t, func() {
		f := newFixture()

		Convey("Voice notes are admitted and acknowledged", func() {
			f.handle(model.Event{Kind: model.KindMedia, UserID: user, ChatID: chat, MediaMIME: "audio/ogg"})
			So(f.tr.last().Text, ShouldContainSubstring, "received your audio")
			So(f.tr.typing, ShouldEqual, 1)
		})

		Convey("Other documents are refused without using quota", func() {
			for range 5 {
				f.handle(model.Event{Kind: model.KindMedia, UserID: user, ChatID: chat, MediaMIME: "application/pdf"})
			}
			So(f.tr.last().Text, ShouldContainSubstring, "only process audio")

			for range 3 {
				f.handle(text("still here"))
			}
			So(f.provider.calls(), ShouldEqual, 3)
		})

		Convey("Audio tracks without a mime type are acknowledged", func() {
			e, ok := telegram.ToEvent(telegram.Update{UpdateID: 1, Message: &telegram.Message{
				From:  &telegram.User{ID: int64(user)},
				Chat:  telegram.Chat{ID: chat},
				Audio: &telegram.File{FileID: "abc"},
			}})
			So(ok, ShouldBeTrue)
			f.handle(e)
			So(f.tr.last().Text, ShouldContainSubstring, "received your audio")
			So(f.tr.typing, ShouldEqual, 1)
		})
	})
}

func TestService_Navigation(t *testing.T) {
	Convey("Given the menu buttons", t, func() {
		f := newFixture()
		ctx := context.Background()

		Convey("Mode buttons set the mode and edit the menu message", func() {
			f.handle(button("reading"))
			mode, _ := f.sessions.Mode(ctx, user)
			So(mode, ShouldEqual, model.ModeReading)

			r := f.tr.last()
			So(r.Edit, ShouldBeTrue)
			So(r.MessageID, ShouldEqual, 9)
			So(menuData(r.Menu), ShouldResemble, []string{"library", "back_to_main"})
			So(f.tr.toasts, ShouldResemble, []string{""})

			Convey("Back to main returns to general", func() {
				f.handle(button("back_to_main"))
				mode, _ := f.sessions.Mode(ctx, user)
				So(mode, ShouldEqual, model.ModeGeneral)
			})
		})

		Convey("Listening topics lead back to listening", func() {
			f.handle(button("listening"))
			So(menuData(f.tr.last().Menu), ShouldContain, "listening_podcasts")
			f.handle(button("listening_podcasts"))
			So(f.tr.last().Text, ShouldContainSubstring, "Podcasts")
			So(menuData(f.tr.last().Menu), ShouldResemble, []string{"back_to_listening"})
		})

		Convey("Unknown buttons only toast", func() {
			f.handle(button("self_destruct"))
			So(f.tr.count(), ShouldEqual, 0)
			So(f.tr.lastToast(), ShouldContainSubstring, "no longer available")
		})

		Convey("The status button shows the full quota for a new user", func() {
			f.handle(button("status"))
			So(f.tr.last().Text, ShouldContainSubstring, "Remaining requests: 3/3")
			So(f.tr.last().Text, ShouldContainSubstring, "Time until reset: 0 seconds")
		})
	})
}

func TestService_Library(t *testing.T) {
	Convey("Given a catalog with one present and one missing book", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, "fox.pdf"), []byte("%PDF-1.4"), 0o600), ShouldBeNil)
		catalog := &library.Catalog{Root: dir, Shelves: []library.Shelf{
			{ID: "beginner", Name: "Beginner"},
			{ID: "pre_intermediate", Name: "Pre-intermediate", Books: []library.Book{
				{Title: "The Quick Fox", Author: "A. Writer", File: "fox.pdf"},
				{Title: "Lost Book", Author: "Nobody", File: "lost.pdf"},
			}},
		}}
		f := newFixture(service.WithCatalog(catalog))

		Convey("The library lists every level", func() {
			f.handle(button("library"))
			So(menuData(f.tr.last().Menu), ShouldResemble, []string{"level_beginner", "level_pre_intermediate", "back_to_reading"})
		})

		Convey("Empty levels say so", func() {
			f.handle(button("level_beginner"))
			So(f.tr.last().Text, ShouldContainSubstring, "No books available")
		})

		Convey("A level lists its books", func() {
			f.handle(button("level_pre_intermediate"))
			So(menuData(f.tr.last().Menu), ShouldResemble, []string{"book_pre_intermediate_0", "book_pre_intermediate_1", "back_to_library"})
		})

		Convey("Selecting a book sends the file", func() {
			f.handle(button("book_pre_intermediate_0"))
			So(f.tr.docs, ShouldHaveLength, 1)
			So(f.tr.docs[0].filename, ShouldEqual, "The_Quick_Fox.pdf")
			So(f.tr.docs[0].path, ShouldEqual, filepath.Join(dir, "fox.pdf"))
			So(f.tr.docs[0].caption, ShouldContainSubstring, "Level: Pre-intermediate")
		})

		Convey("A missing file is reported instead", func() {
			f.handle(button("book_pre_intermediate_1"))
			So(f.tr.docs, ShouldBeEmpty)
			So(f.tr.last().Text, ShouldContainSubstring, "File not found")
		})

		Convey("Out of range books only toast", func() {
			f.handle(button("book_pre_intermediate_7"))
			So(f.tr.lastToast(), ShouldEqual, "Book not found!")
			So(f.tr.count(), ShouldEqual, 0)
		})
	})
}

func TestService_VocabularyQuiz(t *testing.T) {
	Convey("Given a started vocabulary quiz", t, func() {
		f := newFixture()
		f.handle(button("vocab_quiz"))
		So(f.tr.last().Text, ShouldContainSubstring, "Question 1/5")

		Convey("Five answers complete it and a sixth is expired", func() {
			for i := 1; i <= game.VocabularyQuestions; i++ {
				q, ok := f.active().(*game.VocabQuiz)
				So(ok, ShouldBeTrue)
				So(q.Question, ShouldEqual, i)
				f.handle(button("vocab_answer_" + strconv.Itoa(q.Correct)))
			}

			So(f.tr.last().Text, ShouldContainSubstring, "Quiz Complete!")
			So(f.tr.last().Text, ShouldContainSubstring, "Final Score: 5/5")
			So(f.active(), ShouldBeNil)

			p, _ := f.sessions.Progress(context.Background(), user)
			So(p.VocabScore, ShouldEqual, 5)
			So(p.GamesPlayed, ShouldEqual, 1)

			before := f.tr.count()
			f.handle(button("vocab_answer_0"))
			So(f.tr.lastToast(), ShouldEqual, "Game session expired. Please start a new quiz.")
			So(f.tr.count(), ShouldEqual, before)
		})

		Convey("Intermediate answers toast the verdict", func() {
			q := f.active().(*game.VocabQuiz)
			wrong := (q.Correct + 1) % len(q.Options)
			f.handle(button("vocab_answer_" + strconv.Itoa(wrong)))
			So(f.tr.lastToast(), ShouldStartWith, "❌ Wrong!")
			So(f.tr.last().Text, ShouldContainSubstring, "Question 2/5")
		})

		Convey("Out of range choices leave the quiz alone", func() {
			f.handle(button("vocab_answer_9"))
			So(f.tr.lastToast(), ShouldEqual, "Game session expired. Please start a new quiz.")
			So(f.active().(*game.VocabQuiz).Question, ShouldEqual, 1)
		})

		Convey("Malformed choices read as an expired quiz", func() {
			f.handle(button("vocab_answer_x"))
			So(f.tr.lastToast(), ShouldEqual, "Game session expired. Please start a new quiz.")
		})

		Convey("Reaching twenty vocabulary points levels up", func() {
			So(f.sessions.Update(context.Background(), user, func(s *repository.Session) error {
				s.Player.Progress.VocabScore = 15
				return nil
			}), ShouldBeNil)
			for range game.VocabularyQuestions {
				q := f.active().(*game.VocabQuiz)
				f.handle(button("vocab_answer_" + strconv.Itoa(q.Correct)))
			}
			So(f.tr.last().Text, ShouldContainSubstring, "LEVEL UP! You're now at Intermediate level!")
		})
	})
}

func TestService_WordMatching(t *testing.T) {
	Convey("Given a started matching board", t, func() {
		f := newFixture()
		f.handle(button("word_match_start"))
		w := f.active().(*game.WordMatch)
		So(w.Tiles, ShouldHaveLength, 8)

		partner := func(i int) int {
			for j, t := range w.Tiles {
				if j != i && t.Pair == w.Tiles[i].Pair {
					return j
				}
			}
			return -1
		}
		tap := func(i int) { f.handle(button("word_match_select_" + strconv.Itoa(i))) }

		Convey("Tapping a tile twice deselects it", func() {
			tap(0)
			So(f.tr.last().Text, ShouldContainSubstring, "Selected: "+w.Tiles[0].Text)
			tap(0)
			So(f.tr.lastToast(), ShouldEqual, "Word deselected")
			So(f.tr.last().Text, ShouldContainSubstring, "Selected: None")
		})

		Convey("Tiles off the board keep the matching wording", func() {
			tap(len(w.Tiles))
			So(f.tr.lastToast(), ShouldEqual, "Word already matched or game not found!")
		})

		Convey("A wrong pair is cleared without penalty", func() {
			other := 1
			for other == partner(0) {
				other++
			}
			tap(0)
			tap(other)
			So(f.tr.lastToast(), ShouldEqual, "❌ Not a match, try again!")
			So(f.active().(*game.WordMatch).Score, ShouldEqual, 0)
		})

		Convey("Matching every pair completes the game", func() {
			done := map[int]bool{}
			for i := range w.Tiles {
				if done[i] {
					continue
				}
				j := partner(i)
				tap(i)
				tap(j)
				done[i], done[j] = true, true
			}
			So(f.tr.last().Text, ShouldContainSubstring, "Congratulations!")
			So(f.tr.last().Text, ShouldContainSubstring, "Score: 4/4")
			So(f.active(), ShouldBeNil)

			p, _ := f.sessions.Progress(context.Background(), user)
			So(p.VocabScore, ShouldEqual, 4)
		})

		Convey("Matched tiles cannot be tapped again", func() {
			j := partner(0)
			tap(0)
			tap(j)
			tap(0)
			So(f.tr.lastToast(), ShouldEqual, "Word already matched or game not found!")
		})
	})
}

func TestService_GrammarAndFillBlank(t *testing.T) {
	Convey("Given the three-question games", t, func() {
		f := newFixture()

		Convey("Grammar completes after three answers into the grammar score", func() {
			f.handle(button("grammar_quiz"))
			for range game.GrammarQuestions {
				q := f.active().(*game.GrammarQuiz)
				f.handle(button("grammar_answer_" + strconv.Itoa(q.Current.Correct)))
			}
			So(f.tr.last().Text, ShouldContainSubstring, "Final Score: 3/3")
			So(menuData(f.tr.last().Menu), ShouldContain, "grammar_quiz")
			p, _ := f.sessions.Progress(context.Background(), user)
			So(p.GrammarScore, ShouldEqual, 3)
		})

		Convey("Fill in the blanks shows the completed sentence", func() {
			f.handle(button("fill_blank_start"))
			sentence := f.active().(*game.FillBlank).Current
			answer := sentence.Options[sentence.Correct]
			f.handle(button("fill_blank_answer_" + strconv.Itoa(sentence.Correct)))
			So(f.tr.lastToast(), ShouldEqual, "✅ Perfect!")
			So(f.tr.last().Text, ShouldContainSubstring, strings.Replace(sentence.Text, "___", answer, 1))
		})

		Convey("Answering the wrong game is expired", func() {
			f.handle(button("grammar_quiz"))
			f.handle(button("fill_blank_answer_0"))
			So(f.tr.lastToast(), ShouldEqual, "Game session expired. Please start a new quiz.")
			_, ok := f.active().(*game.GrammarQuiz)
			So(ok, ShouldBeTrue)
		})
	})
}

func TestService_MiniAppScreens(t *testing.T) {
	Convey("Given the mini app", t, func() {
		f := newFixture()

		Convey("Entering it sets the mode and shows progress", func() {
			f.handle(button("mini_app"))
			mode, _ := f.sessions.Mode(context.Background(), user)
			So(mode, ShouldEqual, model.ModeMiniApp)
			So(f.tr.last().Text, ShouldContainSubstring, "Current Level: Beginner")
		})

		Convey("The daily challenge links to a game", func() {
			f.handle(button("daily_challenge"))
			So(f.tr.last().Text, ShouldContainSubstring, "Daily Challenge")
			So(menuData(f.tr.last().Menu)[0], ShouldBeIn, []string{"vocab_quiz", "grammar_quiz", "word_match_start", "fill_blank_start"})
		})

		Convey("Progress stats list achievements", func() {
			f.handle(button("progress_stats"))
			So(f.tr.last().Text, ShouldContainSubstring, "Just Getting Started!")
		})
	})
}

func TestService_Sweep(t *testing.T) {
	Convey("Given idle users", t, func() {
		f := newFixture(service.WithSessionIdleTTL(time.Hour))
		ctx := context.Background()
		f.handle(text("hi"))
		So(f.sessions.Count(ctx), ShouldEqual, 1)

		Convey("Nothing is swept while the window is live", func() {
			records, sessions := f.svc.Sweep(ctx)
			So(records, ShouldEqual, 0)
			So(sessions, ShouldEqual, 0)
		})

		Convey("Expired records are swept after the window", func() {
			f.clk.Advance(time.Minute)
			records, sessions := f.svc.Sweep(ctx)
			So(records, ShouldEqual, 1)
			So(sessions, ShouldEqual, 0)
		})

		Convey("Sessions idle past the TTL are swept", func() {
			f.clk.Advance(time.Hour)
			records, sessions := f.svc.Sweep(ctx)
			So(records, ShouldEqual, 1)
			So(sessions, ShouldEqual, 1)
			So(f.sessions.Count(ctx), ShouldEqual, 0)
		})
	})
}

var _ completion.Provider = (*fakeProvider)(nil)
