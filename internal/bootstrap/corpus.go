package bootstrap

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/yanosDev/awqat/internal/models"
)

//go:embed corpus/*.txt
var corpusFS embed.FS

// topicSeed binds one topic tree node to its optional question corpus file.
type topicSeed struct {
	id      int
	title   string
	ordinal int
	parent  *int
	corpus  string
}

func intPtr(v int) *int { return &v }

// topicSeeds is the topic tree written at first run. Nodes without a parent
// and with a corpus file are main topics, parentless nodes without one are
// groups, the rest are sub topics.
var topicSeeds = []topicSeed{
	{id: 1, title: "İtikat", ordinal: 0, corpus: "corpus/itikat.txt"},
	{id: 2, title: "İbadet", ordinal: 1},
	{id: 3, title: "Namaz", ordinal: 0, parent: intPtr(2), corpus: "corpus/namaz.txt"},
	{id: 4, title: "Oruç", ordinal: 1, parent: intPtr(2), corpus: "corpus/oruc.txt"},
	{id: 5, title: "Siyer", ordinal: 2, corpus: "corpus/siyer.txt"},
}

func (t topicSeed) model() models.Topic {
	kind := models.TopicTypeSub
	if t.parent == nil {
		if t.corpus != "" {
			kind = models.TopicTypeMain
		} else {
			kind = models.TopicTypeGroup
		}
	}
	return models.Topic{ID: t.id, Title: t.title, Ordinal: t.ordinal, ParentID: t.parent, Type: kind}
}

var answerRuns = regexp.MustCompile(`\d+|\D+`)

// ParseCorpus reads a question corpus. Each entry starts with a line
// prefixed '*'; unprefixed lines continue the entry. The first '?' splits
// question from answer. Entries without a '?' are skipped. Lines are merged
// with a bounded loop, never recursion, so corpus size cannot grow the
// stack.
func ParseCorpus(r io.Reader, topicID int) ([]models.Quiz, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var quizzes []models.Quiz
	var entry strings.Builder

	flush := func() {
		if entry.Len() == 0 {
			return
		}
		if quiz, ok := parseEntry(entry.String(), topicID); ok {
			quizzes = append(quizzes, quiz)
		}
		entry.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "*") {
			flush()
			entry.WriteString(line)
			continue
		}
		if entry.Len() > 0 {
			entry.WriteString(" ")
			entry.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	flush()

	return quizzes, nil
}

func parseEntry(raw string, topicID int) (models.Quiz, bool) {
	text := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(raw, "*", ""), "  ", " "))
	question, answer, found := strings.Cut(text, "?")
	if !found {
		return models.Quiz{}, false
	}

	return models.Quiz{
		Question: strings.TrimSpace(question),
		Answer:   formatAnswer(answer),
		TopicID:  topicID,
	}, true
}

// formatAnswer breaks numbered enumerations in an answer onto their own
// lines: a digit run that follows other text starts a new line.
func formatAnswer(answer string) string {
	var b strings.Builder
	for _, run := range answerRuns.FindAllString(answer, -1) {
		text := strings.TrimSpace(run)
		if text == "" {
			continue
		}
		switch {
		case !isDigits(text) || b.Len() == 0:
			b.WriteString(" ")
			b.WriteString(text)
		default:
			b.WriteString("\n")
			b.WriteString(text)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(strings.ReplaceAll(b.String(), "  ", " "))
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
