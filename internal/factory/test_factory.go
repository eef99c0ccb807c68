package factory

import (
	"time"

	"github.com/mcoot/crosswordduel/internal/dependencies/mocks"
	"github.com/mcoot/crosswordduel/internal/services/turnclock"
	"github.com/mcoot/crosswordduel/internal/storage/memory"
	"github.com/mcoot/crosswordduel/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, turnclock.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestDictionary loads a small dictionary for testing
func (t *TestApp) LoadTestDictionary() error {
	words := []string{
		// 2-letter words
		"at", "be", "do", "go", "he", "if", "in", "is", "it", "me",
		"my", "no", "of", "on", "or", "so", "to", "up", "us", "we",
		"ax", "ex", "ox", "xi", "za",
		// 3-letter words
		"ace", "act", "add", "age", "ago", "aid", "aim", "air", "all", "and",
		"ant", "any", "ape", "arc", "are", "ark", "arm", "art", "ash", "ask",
		"ate", "bad", "bag", "ban", "bar", "bat", "bed", "bee", "bet", "big",
		"cab", "can", "cap", "car", "cat", "cow", "cry", "cup", "cut", "day",
		"dog", "dot", "dry", "ear", "eat", "egg", "end", "fan", "far", "fat",
		"hat", "hot", "ice", "jam", "jar", "jet", "job", "joy", "key", "lap",
		"man", "map", "mat", "net", "new", "not", "now", "oak", "odd", "old",
		"pan", "pat", "pen", "pet", "pig", "pin", "pot", "rat", "red", "run",
		"sat", "saw", "sea", "set", "sit", "six", "sky", "sun", "tan", "tap",
		"tax", "tea", "ten", "the", "tie", "tin", "top", "toy", "try", "two",
		"van", "wax", "way", "web", "wet", "who", "why", "win", "wow", "yes",
		"yet", "you", "zap", "zen", "zip", "zoo",
		// 4-letter words
		"able", "also", "area", "back", "ball", "bank", "base", "bear", "beat", "been",
		"card", "care", "case", "city", "come", "cost", "dark", "date", "deal", "deep",
		"easy", "edge", "face", "fact", "fall", "farm", "fast", "fear", "game", "gave",
		"hand", "hard", "have", "head", "jazz", "quiz", "word", "work", "yard", "year",
		"zero", "zone",
		// 5-letter words
		"about", "above", "board", "bound", "quart", "quiet", "table", "taken", "words",
		"world", "would", "write", "wrong", "young",
	}
	return t.DictionaryService.LoadWords(words)
}
