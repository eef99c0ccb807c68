package dictionary

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/storage"
)

// WordChecker is the word-membership oracle used by move validation
type WordChecker interface {
	IsValidWord(word string) bool
}

// CheckerFunc adapts a function to WordChecker
type CheckerFunc func(word string) bool

// IsValidWord calls f
func (f CheckerFunc) IsValidWord(word string) bool {
	return f(word)
}

// AcceptAll is a WordChecker that accepts every word
var AcceptAll WordChecker = CheckerFunc(func(string) bool { return true })

// Service provides dictionary/word validation functionality
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu     sync.RWMutex
	words  map[string]struct{}
	loaded bool
}

// New creates a new DictionaryService
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "dictionary")),
		words:   make(map[string]struct{}),
	}
}

// LoadFromStorage loads dictionary words from storage
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetDictionaryWords(ctx)
	if err != nil {
		return err
	}
	return s.loadWords(words)
}

// LoadFromFile loads dictionary words from a file (one word per line)
// and saves them to storage for future use
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening dictionary: %w", err)
	}
	defer file.Close()

	words, err := ReadWords(file)
	if err != nil {
		return err
	}

	if err := s.storage.SaveDictionaryWords(ctx, words); err != nil {
		return err
	}

	return s.loadWords(words)
}

// ReadWords reads one word per line, skipping blanks and '#' comments
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" && !strings.HasPrefix(word, "#") {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	return words, nil
}

// LoadWords directly loads a slice of words (useful for testing)
func (s *Service) LoadWords(words []string) error {
	return s.loadWords(words)
}

func (s *Service) loadWords(words []string) error {
	if len(words) == 0 {
		return model.ErrDictionaryNotLoaded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.words = make(map[string]struct{}, len(words))
	for _, word := range words {
		// Store uppercase to match board faces
		s.words[strings.ToUpper(word)] = struct{}{}
	}
	s.loaded = true
	s.logger.Info("dictionary loaded", slog.Int("words", len(s.words)))
	return nil
}

// IsValidWord checks if a word exists in the dictionary
// Words must be at least 2 characters
func (s *Service) IsValidWord(word string) bool {
	if len(word) < 2 {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return false
	}

	_, ok := s.words[strings.ToUpper(word)]
	return ok
}

// IsLoaded returns whether the dictionary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of words in the dictionary
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// Interface check
type ServiceInterface interface {
	WordChecker
	IsLoaded() bool
	WordCount() int
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	LoadWords(words []string) error
}

var _ ServiceInterface = (*Service)(nil)

// ErrDictionaryNotLoaded is returned when operations are attempted before loading
var ErrDictionaryNotLoaded = model.ErrDictionaryNotLoaded
