package models

// DailyContent is the location-independent daily reading (verse, hadith and
// prayer of the day) fetched once per day.
type DailyContent struct {
	ID           int    `json:"id"`
	DayOfYear    int    `json:"day_of_year"`
	Verse        string `json:"verse"`
	VerseSource  string `json:"verse_source"`
	Hadith       string `json:"hadith"`
	HadithSource string `json:"hadith_source"`
	Prayer       string `json:"prayer"`
	PrayerSource string `json:"prayer_source"`
}

// QuranVerse is one verse of the reference text corpus.
type QuranVerse struct {
	ID    int    `json:"id"`
	Surah int    `json:"surah"`
	Ayah  int    `json:"ayah"`
	Text  string `json:"text"`
}

// TopicType classifies a quiz topic node.
type TopicType string

const (
	// TopicTypeMain is a root topic with its own question corpus.
	TopicTypeMain TopicType = "main"
	// TopicTypeGroup is a root topic grouping sub topics.
	TopicTypeGroup TopicType = "group"
	// TopicTypeSub is a child topic.
	TopicTypeSub TopicType = "sub"
)

// Topic is one node of the quiz topic tree seeded at first run.
type Topic struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Ordinal  int       `json:"ordinal"`
	ParentID *int      `json:"parent_id,omitempty"`
	Type     TopicType `json:"type"`
}

// Quiz is one question/answer pair parsed from the seed corpus.
type Quiz struct {
	ID         int64  `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	TopicID    int    `json:"topic_id"`
	Difficulty int    `json:"difficulty"`
}
