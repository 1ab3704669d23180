package bootstrap

import (
	"strings"
	"testing"
)

func TestParseCorpus(t *testing.T) {
	input := strings.Join([]string{
		"başlık satırı, girdi değil",
		"*İman nedir? Kalp ile tasdik etmektir.",
		"*İmanın şartı kaçtır? Altıdır 1 Allah'a inanmak 2 Meleklere inanmak.",
		"*Uzun soru nedir? Cevabı birden fazla",
		"satıra yayılan sorudur.",
	}, "\n")

	quizzes, err := ParseCorpus(strings.NewReader(input), 7)
	if err != nil {
		t.Fatalf("ParseCorpus(): %v", err)
	}
	if len(quizzes) != 3 {
		t.Fatalf("parsed %d entries, want 3", len(quizzes))
	}

	if quizzes[0].Question != "İman nedir" {
		t.Errorf("question = %q", quizzes[0].Question)
	}
	if quizzes[0].Answer != "Kalp ile tasdik etmektir." {
		t.Errorf("answer = %q", quizzes[0].Answer)
	}
	if quizzes[0].TopicID != 7 {
		t.Errorf("topic id = %d, want 7", quizzes[0].TopicID)
	}

	// Numbered enumerations break onto their own lines.
	if !strings.Contains(quizzes[1].Answer, "\n1 Allah'a inanmak") {
		t.Errorf("enumeration not split: %q", quizzes[1].Answer)
	}
	if !strings.Contains(quizzes[1].Answer, "\n2 Meleklere inanmak") {
		t.Errorf("enumeration not split: %q", quizzes[1].Answer)
	}

	// Continuation lines merge into the entry.
	if quizzes[2].Answer != "Cevabı birden fazla satıra yayılan sorudur." {
		t.Errorf("merged answer = %q", quizzes[2].Answer)
	}
}

func TestParseCorpus_SkipsEntriesWithoutQuestionMark(t *testing.T) {
	quizzes, err := ParseCorpus(strings.NewReader("*sadece metin, soru yok\n"), 1)
	if err != nil {
		t.Fatalf("ParseCorpus(): %v", err)
	}
	if len(quizzes) != 0 {
		t.Errorf("parsed %d entries, want 0", len(quizzes))
	}
}

func TestParseCorpus_LargeCorpusIsFlat(t *testing.T) {
	// Thousands of continuation lines in one entry must not be a problem
	// for the line merger.
	var b strings.Builder
	b.WriteString("*Soru? Cevap")
	for i := 0; i < 20000; i++ {
		b.WriteString("\ndevam")
	}

	quizzes, err := ParseCorpus(strings.NewReader(b.String()), 1)
	if err != nil {
		t.Fatalf("ParseCorpus(): %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("parsed %d entries, want 1", len(quizzes))
	}
}

func TestEmbeddedCorpusFiles(t *testing.T) {
	for _, seed := range topicSeeds {
		if seed.corpus == "" {
			continue
		}
		f, err := corpusFS.Open(seed.corpus)
		if err != nil {
			t.Fatalf("open %s: %v", seed.corpus, err)
		}
		quizzes, err := ParseCorpus(f, seed.id)
		f.Close()
		if err != nil {
			t.Fatalf("parse %s: %v", seed.corpus, err)
		}
		if len(quizzes) == 0 {
			t.Errorf("%s parsed to zero questions", seed.corpus)
		}
		for _, quiz := range quizzes {
			if quiz.Question == "" || quiz.Answer == "" {
				t.Errorf("%s: empty question or answer: %+v", seed.corpus, quiz)
			}
		}
	}
}
