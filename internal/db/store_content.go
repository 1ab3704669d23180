package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yanosDev/awqat/internal/models"
)

// UpsertDailyContent replaces the cached daily reading.
func (s *Store) UpsertDailyContent(ctx context.Context, content models.DailyContent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_content (id, day_of_year, verse, verse_source, hadith, hadith_source, prayer, prayer_source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			day_of_year = excluded.day_of_year,
			verse = excluded.verse,
			verse_source = excluded.verse_source,
			hadith = excluded.hadith,
			hadith_source = excluded.hadith_source,
			prayer = excluded.prayer,
			prayer_source = excluded.prayer_source
	`,
		content.ID, content.DayOfYear,
		content.Verse, content.VerseSource,
		content.Hadith, content.HadithSource,
		content.Prayer, content.PrayerSource,
	)
	if err != nil {
		return fmt.Errorf("upsert daily content %d: %w", content.ID, err)
	}
	return nil
}

// DailyContent returns the cached daily reading for the given day of year.
func (s *Store) DailyContent(ctx context.Context, dayOfYear int) (models.DailyContent, error) {
	var content models.DailyContent
	err := s.db.QueryRowContext(ctx, `
		SELECT id, day_of_year, verse, verse_source, hadith, hadith_source, prayer, prayer_source
		FROM daily_content
		WHERE day_of_year = ?
	`, dayOfYear).Scan(
		&content.ID, &content.DayOfYear,
		&content.Verse, &content.VerseSource,
		&content.Hadith, &content.HadithSource,
		&content.Prayer, &content.PrayerSource,
	)
	if err == sql.ErrNoRows {
		return models.DailyContent{}, ErrNotFound
	}
	if err != nil {
		return models.DailyContent{}, fmt.Errorf("get daily content: %w", err)
	}
	return content, nil
}

// InsertQuranVerses bulk-replaces the reference text corpus.
func (s *Store) InsertQuranVerses(ctx context.Context, verses []models.QuranVerse) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quran_verses (id, surah, ayah, text)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET surah = excluded.surah, ayah = excluded.ayah, text = excluded.text
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range verses {
		if _, err := stmt.ExecContext(ctx, v.ID, v.Surah, v.Ayah, v.Text); err != nil {
			return fmt.Errorf("insert verse %d: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit verses: %w", err)
	}
	return nil
}

// CountQuranVerses returns the number of cached verses.
func (s *Store) CountQuranVerses(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quran_verses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count verses: %w", err)
	}
	return count, nil
}

// InsertTopic inserts a quiz topic if it does not exist yet.
func (s *Store) InsertTopic(ctx context.Context, topic models.Topic) error {
	var parent sql.NullInt64
	if topic.ParentID != nil {
		parent = sql.NullInt64{Int64: int64(*topic.ParentID), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topics (id, title, ordinal, parent_id, type)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, topic.ID, topic.Title, topic.Ordinal, parent, string(topic.Type))
	if err != nil {
		return fmt.Errorf("insert topic %d: %w", topic.ID, err)
	}
	return nil
}

// CountTopics returns the number of seeded topics.
func (s *Store) CountTopics(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM topics`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count topics: %w", err)
	}
	return count, nil
}

// InsertQuizzes appends a topic's parsed questions in one transaction, so a
// failed batch leaves no partial corpus behind.
func (s *Store) InsertQuizzes(ctx context.Context, quizzes []models.Quiz) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quizzes (question, answer, topic_id, difficulty)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, quiz := range quizzes {
		if _, err := stmt.ExecContext(ctx, quiz.Question, quiz.Answer, quiz.TopicID, quiz.Difficulty); err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit quizzes: %w", err)
	}
	return nil
}

// CountQuizzesByTopic returns the number of questions stored for one topic.
func (s *Store) CountQuizzesByTopic(ctx context.Context, topicID int) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes WHERE topic_id = ?`, topicID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count quizzes for topic %d: %w", topicID, err)
	}
	return count, nil
}

// CountQuizzes returns the number of seeded quiz questions.
func (s *Store) CountQuizzes(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count quizzes: %w", err)
	}
	return count, nil
}
