package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okian/tutorbot/internal/domain/library"
	"github.com/okian/tutorbot/internal/domain/model"
)

// Button data understood by the dispatcher.
const (
	actionWriting        = "writing"
	actionSpeaking       = "speaking"
	actionReading        = "reading"
	actionListening      = "listening"
	actionMiniApp        = "mini_app"
	actionHelp           = "help"
	actionStatus         = "status"
	actionBackToMain     = "back_to_main"
	actionLibrary        = "library"
	actionBackToReading  = "back_to_reading"
	actionBackToLibrary  = "back_to_library"
	actionBackToListen   = "back_to_listening"
	actionBackToMiniApp  = "back_to_miniapp"
	actionVocabQuiz      = "vocab_quiz"
	actionGrammarQuiz    = "grammar_quiz"
	actionMatchStart     = "word_match_start"
	actionFillBlankStart = "fill_blank_start"
	actionDaily          = "daily_challenge"
	actionProgress       = "progress_stats"

	prefixLevel       = "level_"
	prefixBook        = "book_"
	prefixVocabAnswer = "vocab_answer_"
	prefixGrammar     = "grammar_answer_"
	prefixMatchSelect = "word_match_select_"
	prefixFillBlank   = "fill_blank_answer_"
)

const (
	ellipsis       = "..."
	optionLetters  = "ABCDEFGHIJ"
	maxOptionLabel = 50
)

var (
	backToMain    = model.Button{Text: "🔙 Back to Menu", Data: actionBackToMain}
	backToMiniApp = model.Button{Text: "🔙 Back to Mini App", Data: actionBackToMiniApp}
	backToLibrary = model.Button{Text: "🔙 Back to Library", Data: actionBackToLibrary}
	backToListen  = model.Button{Text: "🔙 Back to Listening", Data: actionBackToListen}
	backToReading = model.Button{Text: "🔙 Back to Reading", Data: actionBackToReading}
	shelfMarkers  = []string{"🟢", "🟡", "🟠", "🔵", "🟣", "🔴"}
)

func mainMenu() *model.Menu {
	m := &model.Menu{}
	return m.
		Row(model.Button{Text: "✍️ Writing", Data: actionWriting}, model.Button{Text: "🗣️ Speaking", Data: actionSpeaking}).
		Row(model.Button{Text: "📖 Reading", Data: actionReading}, model.Button{Text: "👂 Listening", Data: actionListening}).
		Row(model.Button{Text: "🎮 Mini App", Data: actionMiniApp}, model.Button{Text: "ℹ️ Help", Data: actionHelp}).
		Row(model.Button{Text: "📊 Status", Data: actionStatus})
}

func single(b model.Button) *model.Menu {
	m := &model.Menu{}
	return m.Row(b)
}

func readingMenu() *model.Menu {
	m := &model.Menu{}
	return m.Row(model.Button{Text: "📚 Digital Library", Data: actionLibrary}).Row(backToMain)
}

func listeningMenu() *model.Menu {
	m := &model.Menu{}
	for _, t := range listeningTopics {
		m.Row(model.Button{Text: t.label, Data: t.action})
	}
	return m.Row(backToMain)
}

func miniAppMenu() *model.Menu {
	m := &model.Menu{}
	return m.
		Row(model.Button{Text: "📚 Vocabulary Quiz", Data: actionVocabQuiz}, model.Button{Text: "📝 Grammar Challenge", Data: actionGrammarQuiz}).
		Row(model.Button{Text: "🎯 Word Matching", Data: actionMatchStart}, model.Button{Text: "✏️ Fill the Blanks", Data: actionFillBlankStart}).
		Row(model.Button{Text: "🏆 Daily Challenge", Data: actionDaily}, model.Button{Text: "📊 Progress Stats", Data: actionProgress}).
		Row(backToMain)
}

// libraryMenu lays the reading levels out two per row.
func libraryMenu(shelves []library.Shelf) *model.Menu {
	m := &model.Menu{}
	var row []model.Button
	for i, sh := range shelves {
		row = append(row, model.Button{
			Text: shelfMarkers[i%len(shelfMarkers)] + " " + sh.Name,
			Data: prefixLevel + sh.ID,
		})
		if len(row) == 2 {
			m.Row(row...)
			row = nil
		}
	}
	if len(row) > 0 {
		m.Row(row...)
	}
	return m.Row(backToReading)
}

func shelfMenu(sh library.Shelf) *model.Menu {
	m := &model.Menu{}
	for i, b := range sh.Books {
		m.Row(model.Button{
			Text: fmt.Sprintf("📖 %s - %s", b.Title, b.Author),
			Data: fmt.Sprintf("%s%s_%d", prefixBook, sh.ID, i),
		})
	}
	return m.Row(backToLibrary)
}

// optionsMenu renders one button per option, labelled A, B, C...
func optionsMenu(prefix string, options []string) *model.Menu {
	m := &model.Menu{}
	for i, o := range options {
		m.Row(model.Button{
			Text: fmt.Sprintf("%c. %s", optionLetters[i%len(optionLetters)], truncate(o, maxOptionLabel)),
			Data: fmt.Sprintf("%s%d", prefix, i),
		})
	}
	return m.Row(backToMiniApp)
}

func replayMenu(label, action string) *model.Menu {
	m := &model.Menu{}
	return m.Row(model.Button{Text: label, Data: action}).Row(backToMiniApp)
}

type listeningTopic struct {
	action string
	label  string
	text   string
}

var listeningTopics = []listeningTopic{
	{
		action: "listening_podcasts",
		label:  "🎧 Podcasts",
		text: `🎧 Podcasts for English Learning

Recommended podcasts to improve your listening skills:

🎙️ Lex Fridman Podcast
https://www.youtube.com/@lexfridman

🎙️ BBC Learning English
https://www.youtube.com/@bbclearningenglish

🎙️ A.J. Hoge - Effortless English
https://www.youtube.com/@AJHogeEffortlessEnglish

🎙️ Silicon Valley Girl
https://www.youtube.com/@SiliconValleyGirl

These podcasts help you:
• Improve listening comprehension
• Learn natural conversation patterns
• Expand vocabulary
• Practice different accents`,
	},
	{
		action: "listening_movies",
		label:  "🎬 Movies & TV Shows",
		text: `🎬 Movies & TV Shows for English Learning

📺 TV Series:
• Friends
• The Office
• Suits
• Stranger Things
• Breaking Bad
• Gravity Falls

🎬 Movies:
• Forrest Gump
• Interstellar
• The Green Mile
• Moneyball
• The Founder
• Back to the Future

These help you:
• Learn conversational English
• Understand cultural references
• Improve pronunciation`,
	},
	{
		action: "listening_news",
		label:  "📺 News Videos / TED Talks / YouTube Channels",
		text: `📺 News Videos / TED Talks / YouTube Channels

🎥 Platform: YouTube
https://www.youtube.com/

Recommended content:
• 🗞️ News channels (BBC, CNN)
• 🎯 TED Talks
• 📚 Educational channels
• 🌍 Documentaries

Tips:
• Use subtitles first, then try without
• Note new vocabulary
• Pause and replay difficult sections`,
	},
	{
		action: "listening_audiomate",
		label:  "👂 AudioMate",
		text: `👂 AudioMate

Send me audio files or ask about listening skills and I'll help you with:
• Listening comprehension
• Note-taking from audio
• Podcast discussions`,
	},
}

func listeningTopicFor(action string) (listeningTopic, bool) {
	for _, t := range listeningTopics {
		if t.action == action {
			return t, true
		}
	}
	return listeningTopic{}, false
}

const (
	writingText = `✍️ Writing Mode

Send me any text and I'll help you with:
• Grammar corrections
• Writing suggestions
• Essay structure
• Creative writing ideas
• Academic writing tips

Just type your message below!`

	speakingText = `🗣️ Speaking Mode

Send me voice messages and I'll help you with:
• Pronunciation feedback
• Speaking practice
• Conversation starters
• Public speaking tips

Send a voice message or type your text!`

	readingText = `📖 Reading Mode

Choose what you'd like to do:

• Send me text for reading comprehension help
• Open the digital library with books for all levels
• Get vocabulary and analysis assistance
• Discuss literature and reading strategies`

	listeningText = "👂 Listening Mode\n\nChoose your listening practice:"

	unknownCommandText = "I don't know that command. Use /start to open the menu or /help to see what I can do."

	audioReceivedText = "🎧 I received your audio. I can't transcribe it yet, so please type what you'd like help with and I'll answer in your current mode."

	documentNotAudioText = "📄 I received a document, but I can only process audio files. Please send a voice message or audio file."
)

// per renders a window as "minute" or "30s".
func per(window time.Duration) string {
	switch window {
	case time.Minute:
		return "minute"
	case time.Hour:
		return "hour"
	}
	return window.String()
}

func (s *Service) welcomeText() string {
	return fmt.Sprintf(`🤖 Welcome to the Education Bot!

I'm your AI-powered learning assistant. Choose a learning mode below:

Rate limit: %d messages per %s`, s.limiter.Cap(), per(s.limiter.Window()))
}

func (s *Service) helpText() string {
	return fmt.Sprintf(`📚 Education Bot Help

Learning Modes:
• ✍️ Writing: grammar, essays, creative writing
• 🗣️ Speaking: pronunciation, conversation practice
• 📖 Reading: comprehension, vocabulary and the digital library
• 👂 Listening: comprehension and recommended material
• 🎮 Mini App: vocabulary and grammar games

Digital Library:
• %d reading levels
• PDF downloads

How to Use:
1. Choose a learning mode
2. Send text, voice or audio messages
3. Get AI-powered feedback

Rate Limits:
• %d messages per %s per user
• Use /status to check your limit

Commands:
• /start - Show main menu
• /help - Show this help
• /status - Check rate limit status`, len(s.catalog.Shelves), s.limiter.Cap(), per(s.limiter.Window()))
}

func statusText(remaining, limit int, reset time.Duration) string {
	return fmt.Sprintf(`📊 Rate Limit Status

Remaining requests: %d/%d
Time until reset: %d seconds

You can send %d more messages in this time window.`, remaining, limit, int(reset/time.Second), remaining)
}

func libraryText(shelves []library.Shelf) string {
	var b strings.Builder
	b.WriteString("📚 Digital Library\n\nChoose your reading level:\n")
	for _, sh := range shelves {
		fmt.Fprintf(&b, "\n• %s (%d books)", sh.Name, len(sh.Books))
	}
	return b.String()
}

func shelfText(sh library.Shelf) string {
	if len(sh.Books) == 0 {
		return fmt.Sprintf("📚 %s Books\n\nNo books available for this level yet. Please check back later!", sh.Name)
	}
	return fmt.Sprintf("📚 %s Books\n\nChoose a book to download:", sh.Name)
}

func bookText(sh library.Shelf, b library.Book) string {
	return fmt.Sprintf("📖 %s\n👤 Author: %s\n📚 Level: %s\n\nHere's your book! Enjoy reading! 📖✨", b.Title, b.Author, sh.Name)
}

// truncate shortens text to at most limit characters, ending in "...".
func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	keep := limit - len(ellipsis)
	for i := range text {
		if keep == 0 {
			return text[:i] + ellipsis
		}
		keep--
	}
	return text
}
