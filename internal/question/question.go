// Package question loads the question bank and deals shuffled questions for a session.
package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/valyala/fastrand"
	"gopkg.in/yaml.v3"
)

// MaxWrongAnswers keeps every answer inside the nine-box grid.
const MaxWrongAnswers = 8

var (
	// ErrInsufficient is returned when the bank holds fewer questions than a session needs.
	ErrInsufficient = errors.New("supplier insufficient")
	// ErrMalformed is returned for unreadable files and invalid records.
	ErrMalformed = errors.New("malformed question")
)

// Record is one entry of the question bank as stored on disk.
type Record struct {
	Question      string   `json:"question" yaml:"question"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
	WrongAnswers  []string `json:"wrongAnswers" yaml:"wrongAnswers"`
}

// Question is a record prepared for play.
// Correct indexes Answers; boxes beyond len(Answers) stay empty.
type Question struct {
	Text    string   `json:"text"`
	Answers []string `json:"answers"`
	Correct int      `json:"-"`
}

// Validate checks a single record.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("%w: empty question text", ErrMalformed)
	}
	if strings.TrimSpace(r.CorrectAnswer) == "" {
		return fmt.Errorf("%w: %q has no correct answer", ErrMalformed, r.Question)
	}
	if len(r.WrongAnswers) > MaxWrongAnswers {
		return fmt.Errorf("%w: %q has %d wrong answers, max %d", ErrMalformed, r.Question, len(r.WrongAnswers), MaxWrongAnswers)
	}
	seen := make(map[string]bool, len(r.WrongAnswers))
	for _, w := range r.WrongAnswers {
		if w == r.CorrectAnswer {
			return fmt.Errorf("%w: %q lists the correct answer as wrong", ErrMalformed, r.Question)
		}
		if seen[w] {
			return fmt.Errorf("%w: %q lists %q twice", ErrMalformed, r.Question, w)
		}
		seen[w] = true
	}
	return nil
}

// Validate checks every record and that at least n are available.
func Validate(records []Record, n int) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	if len(records) < n {
		return fmt.Errorf("%w: have %d questions, need %d", ErrInsufficient, len(records), n)
	}
	return nil
}

// Load reads a question bank from a .json, .yaml or .yml file.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("%w: unsupported file extension %q", ErrMalformed, ext)
	}
}

// ParseJSON decodes a JSON array of records.
func ParseJSON(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return records, nil
}

// ParseYAML decodes a YAML sequence of records.
func ParseYAML(data []byte) ([]Record, error) {
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return records, nil
}

// Shuffler permutes n elements through swap.
type Shuffler func(n int, swap func(i, j int))

// FastShuffle is a Fisher-Yates shuffle driven by fastrand.
func FastShuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(fastrand.Uint32n(uint32(i + 1)))
		swap(i, j)
	}
}

// Build shuffles the answers of a record and locates the correct one.
func (r Record) Build(shuffle Shuffler) Question {
	answers := make([]string, 0, len(r.WrongAnswers)+1)
	answers = append(answers, r.CorrectAnswer)
	answers = append(answers, r.WrongAnswers...)

	shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})

	correct := -1
	for i, a := range answers {
		if a == r.CorrectAnswer {
			correct = i
			break
		}
	}

	return Question{Text: r.Question, Answers: answers, Correct: correct}
}

// Select picks n records without replacement and builds each one.
// The input slice is left untouched.
func Select(records []Record, n int, shuffle Shuffler) ([]Question, error) {
	if err := Validate(records, n); err != nil {
		return nil, err
	}
	if shuffle == nil {
		shuffle = FastShuffle
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	questions := make([]Question, 0, n)
	for _, idx := range order[:n] {
		questions = append(questions, records[idx].Build(shuffle))
	}
	return questions, nil
}
