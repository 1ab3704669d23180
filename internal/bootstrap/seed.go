package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yanosDev/awqat/internal/models"
)

// SeedStore is the subset of the local store the seeder writes to.
type SeedStore interface {
	IsInitialized(ctx context.Context) (bool, error)
	MarkInitialized(ctx context.Context) error
	SeedSchedules(ctx context.Context, schedules []models.Schedule) error
	InsertTopic(ctx context.Context, topic models.Topic) error
	InsertQuizzes(ctx context.Context, quizzes []models.Quiz) error
	CountQuizzesByTopic(ctx context.Context, topicID int) (int, error)
}

// Seeder writes the first-run defaults: the six schedule rows, the topic
// tree and the question corpus. Seeding happens at most once per data
// directory; the guard flag is only set after every write succeeded.
type Seeder struct {
	store  SeedStore
	logger zerolog.Logger
}

// NewSeeder creates a seeder over the given store.
func NewSeeder(store SeedStore, logger zerolog.Logger) *Seeder {
	return &Seeder{
		store:  store,
		logger: logger.With().Str("component", "seeder").Logger(),
	}
}

// Run seeds the store unless it is already initialized.
func (s *Seeder) Run(ctx context.Context) error {
	done, err := s.store.IsInitialized(ctx)
	if err != nil {
		return fmt.Errorf("read init flag: %w", err)
	}
	if done {
		return nil
	}

	seeded := 0
	for _, seed := range topicSeeds {
		if err := s.store.InsertTopic(ctx, seed.model()); err != nil {
			return err
		}
		if seed.corpus == "" {
			continue
		}

		// A retried pass skips topics whose corpus already landed; the
		// per-topic batch is transactional, so presence means complete.
		existing, err := s.store.CountQuizzesByTopic(ctx, seed.id)
		if err != nil {
			return fmt.Errorf("count corpus %s: %w", seed.corpus, err)
		}
		if existing > 0 {
			continue
		}

		f, err := corpusFS.Open(seed.corpus)
		if err != nil {
			return fmt.Errorf("open corpus %s: %w", seed.corpus, err)
		}
		quizzes, err := ParseCorpus(f, seed.id)
		f.Close()
		if err != nil {
			return fmt.Errorf("parse corpus %s: %w", seed.corpus, err)
		}
		if err := s.store.InsertQuizzes(ctx, quizzes); err != nil {
			return err
		}
		seeded += len(quizzes)
	}

	if err := s.store.SeedSchedules(ctx, models.DefaultSchedules()); err != nil {
		return fmt.Errorf("seed schedules: %w", err)
	}
	if err := s.store.MarkInitialized(ctx); err != nil {
		return fmt.Errorf("mark initialized: %w", err)
	}

	s.logger.Info().
		Int("topics", len(topicSeeds)).
		Int("questions", seeded).
		Msg("first-run seed complete")
	return nil
}
