package game

// Word is a vocabulary entry.
type Word struct {
	Word       string
	Definition string
	Example    string
}

// GrammarQuestion is a multiple-choice grammar item.
type GrammarQuestion struct {
	Prompt      string
	Options     []string
	Correct     int
	Explanation string
}

// Sentence is a fill-in-the-blank item; Text contains "___" where the
// answer goes.
type Sentence struct {
	Text    string
	Options []string
	Correct int
	Hint    string
}

// Pair is an english word and its synonym.
type Pair struct {
	English string
	Synonym string
}

// Content holds the fixed item pools every game draws from.
type Content struct {
	Vocabulary map[Level][]Word
	Grammar    []GrammarQuestion
	Pairs      []Pair
	Sentences  []Sentence
}

// definitions returns every distinct vocabulary definition in level order.
func (c Content) definitions() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, lvl := range Levels() {
		for _, w := range c.Vocabulary[lvl] {
			if _, ok := seen[w.Definition]; ok {
				continue
			}
			seen[w.Definition] = struct{}{}
			out = append(out, w.Definition)
		}
	}
	return out
}

// DefaultContent returns the built-in item pools.
func DefaultContent() Content {
	return Content{
		Vocabulary: map[Level][]Word{
			LevelBeginner: {
				{"cat", "A small domesticated carnivorous mammal", "The cat is sleeping on the sofa."},
				{"house", "A building for human habitation", "I live in a big house."},
				{"book", "A written or printed work consisting of pages", "I am reading a good book."},
				{"water", "A colorless, transparent, odorless liquid", "I drink water every day."},
				{"happy", "Feeling or showing pleasure or contentment", "She looks very happy today."},
			},
			LevelIntermediate: {
				{"perseverance", "Persistence in doing something despite difficulty", "Her perseverance helped her achieve success."},
				{"magnificent", "Impressively beautiful, elaborate, or extravagant", "The view from the mountain was magnificent."},
				{"collaborate", "Work jointly on an activity", "We need to collaborate to finish this project."},
				{"ambitious", "Having a strong desire for success or achievement", "He is an ambitious young entrepreneur."},
				{"inevitable", "Certain to happen; unavoidable", "Change is inevitable in life."},
			},
			LevelAdvanced: {
				{"serendipity", "The occurrence of events by chance in a happy way", "Meeting my mentor was pure serendipity."},
				{"ubiquitous", "Present, appearing, or found everywhere", "Smartphones are ubiquitous in modern society."},
				{"ephemeral", "Lasting for a very short time", "The beauty of cherry blossoms is ephemeral."},
				{"quintessential", "Representing the most perfect example of a quality", "He is the quintessential gentleman."},
				{"perspicacious", "Having keen insight; shrewd", "Her perspicacious analysis impressed everyone."},
			},
		},
		Grammar: []GrammarQuestion{
			{`Choose the correct form: "She ___ to the store yesterday."`, []string{"go", "goes", "went", "going"}, 2,
				`"Went" is the past tense of "go" and matches with "yesterday".`},
			{`Which is correct: "I have ___ this movie before."`, []string{"see", "saw", "seen", "seeing"}, 2,
				`"Seen" is used with "have" in present perfect tense.`},
			{`Complete: "If it ___ tomorrow, we will stay home."`, []string{"rain", "rains", "rained", "raining"}, 1,
				"First conditional uses present simple in the if-clause."},
			{`Choose correct: "She is good ___ mathematics."`, []string{"in", "at", "on", "with"}, 1,
				`We use "good at" for skills and abilities.`},
			{`Which is right: "There ___ many people at the party."`, []string{"was", "were", "is", "are"}, 1,
				`"Were" is used with plural subjects in past tense.`},
		},
		Pairs: []Pair{
			{"Happy", "Joyful"},
			{"Big", "Large"},
			{"Smart", "Intelligent"},
			{"Fast", "Quick"},
			{"Beautiful", "Gorgeous"},
			{"Difficult", "Challenging"},
			{"Important", "Significant"},
			{"Angry", "Furious"},
		},
		Sentences: []Sentence{
			{"The weather is very ___ today.", []string{"nice", "book", "run", "water"}, 0, "Think about describing weather positively."},
			{"I need to ___ my homework before dinner.", []string{"eat", "finish", "sleep", "walk"}, 1, "What do you do with homework?"},
			{"She ___ a beautiful song at the concert.", []string{"danced", "painted", "sang", "wrote"}, 2, "What do you do with songs at concerts?"},
			{"The ___ is shining brightly in the sky.", []string{"moon", "sun", "star", "cloud"}, 1, "What gives us light during the day?"},
		},
	}
}
