package turingprobe

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Confusion is a 2x2 confusion matrix with human as the positive class.
// Rows are the actual source, columns the judge's guess.
type Confusion struct {
	TrueAI     int `json:"true_ai"`     // actual AI, guessed AI
	FalseHuman int `json:"false_human"` // actual AI, guessed human
	FalseAI    int `json:"false_ai"`    // actual human, guessed AI
	TrueHuman  int `json:"true_human"`  // actual human, guessed human
}

// Total is the number of judged rows.
func (c Confusion) Total() int {
	return c.TrueAI + c.FalseHuman + c.FalseAI + c.TrueHuman
}

// Metrics are binary classification scores. Undefined ratios are 0.
type Metrics struct {
	Rows      int       `json:"rows"`
	Accuracy  float64   `json:"accuracy"`
	Precision float64   `json:"precision"`
	Recall    float64   `json:"recall"`
	F1        float64   `json:"f1"`
	Confusion Confusion `json:"confusion"`
}

// TopicMetrics are the scores for one topic bucket.
type TopicMetrics struct {
	Topic string `json:"topic"`
	Metrics
}

// ClassScore is one line of a per-class report.
type ClassScore struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// TopicSources counts rows per source within one topic.
type TopicSources struct {
	Topic  string         `json:"topic"`
	Counts map[string]int `json:"counts"`
}

// Report is everything the report stage prints and saves.
type Report struct {
	Overall      Metrics        `json:"overall"`
	Classes      []ClassScore   `json:"classes"`
	Topics       []TopicMetrics `json:"topics"`
	Sources      []string       `json:"sources"`
	Distribution []TopicSources `json:"distribution"`
}

// ScoreConfusion derives accuracy, precision, recall and F1 for the human class.
func ScoreConfusion(c Confusion) Metrics {
	m := Metrics{Rows: c.Total(), Confusion: c}
	m.Accuracy = ratio(c.TrueHuman+c.TrueAI, m.Rows)
	m.Precision = ratio(c.TrueHuman, c.TrueHuman+c.FalseHuman)
	m.Recall = ratio(c.TrueHuman, c.TrueHuman+c.FalseAI)
	m.F1 = ratio(2*c.TrueHuman, 2*c.TrueHuman+c.FalseHuman+c.FalseAI)
	return m
}

// classScores reports both classes, AI first.
func classScores(c Confusion) []ClassScore {
	return []ClassScore{
		{
			Class:     "AI",
			Precision: ratio(c.TrueAI, c.TrueAI+c.FalseAI),
			Recall:    ratio(c.TrueAI, c.TrueAI+c.FalseHuman),
			F1:        ratio(2*c.TrueAI, 2*c.TrueAI+c.FalseAI+c.FalseHuman),
			Support:   c.TrueAI + c.FalseHuman,
		},
		{
			Class:     "Human",
			Precision: ratio(c.TrueHuman, c.TrueHuman+c.FalseHuman),
			Recall:    ratio(c.TrueHuman, c.TrueHuman+c.FalseAI),
			F1:        ratio(2*c.TrueHuman, 2*c.TrueHuman+c.FalseHuman+c.FalseAI),
			Support:   c.TrueHuman + c.FalseAI,
		},
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// BuildReport scores judged rows overall and per topic. A row's true label is
// human iff its source is "human"; its predicted label is human iff the guess
// is exactly "human". Topics are listed in order of first appearance.
func BuildReport(ctx context.Context, rows []JudgmentRecord, topics TopicMap) (Report, error) {
	db, err := openMetricsDB(ctx)
	if err != nil {
		return Report{}, err
	}
	defer db.Close()

	if err := db.load(ctx, rows, topics); err != nil {
		return Report{}, err
	}

	var r Report
	overall, err := db.confusion(ctx)
	if err != nil {
		return Report{}, err
	}
	r.Overall = ScoreConfusion(overall)
	r.Classes = classScores(overall)

	if r.Topics, err = db.topicMetrics(ctx); err != nil {
		return Report{}, err
	}
	if r.Sources, r.Distribution, err = db.distribution(ctx); err != nil {
		return Report{}, err
	}
	return r, nil
}

// metricsDB is a throwaway in-memory SQLite database used to aggregate
// judgments with GROUP BY queries.
type metricsDB struct {
	db *sql.DB
}

func openMetricsDB(ctx context.Context) (*metricsDB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("turingprobe: open metrics db: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	m := &metricsDB{db: db}
	if err := m.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("turingprobe: migrate metrics db: %w", err)
	}
	return m, nil
}

func (m *metricsDB) Close() error {
	return m.db.Close()
}

func (m *metricsDB) migrate(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE judgments (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			question   TEXT    NOT NULL,
			source     TEXT    NOT NULL,
			guess      TEXT    NOT NULL,
			topic      TEXT    NOT NULL,
			true_label INTEGER NOT NULL,
			pred_label INTEGER NOT NULL
		);
		CREATE INDEX idx_judgments_topic ON judgments(topic);
	`)
	return err
}

func (m *metricsDB) load(ctx context.Context, rows []JudgmentRecord, topics TopicMap) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("turingprobe: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO judgments (question, source, guess, topic, true_label, pred_label)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("turingprobe: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.Question, r.Source, r.Guess, topics.Lookup(r.Question),
			boolInt(r.Source == SourceHuman), boolInt(r.Guess == GuessHuman),
		); err != nil {
			return fmt.Errorf("turingprobe: insert judgment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("turingprobe: commit: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const confusionColumns = `
	COALESCE(SUM(CASE WHEN true_label = 0 AND pred_label = 0 THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN true_label = 0 AND pred_label = 1 THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN true_label = 1 AND pred_label = 0 THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN true_label = 1 AND pred_label = 1 THEN 1 ELSE 0 END), 0)`

func (m *metricsDB) confusion(ctx context.Context) (Confusion, error) {
	var c Confusion
	err := m.db.QueryRowContext(ctx, `SELECT `+confusionColumns+` FROM judgments`).
		Scan(&c.TrueAI, &c.FalseHuman, &c.FalseAI, &c.TrueHuman)
	if err != nil {
		return Confusion{}, fmt.Errorf("turingprobe: overall confusion: %w", err)
	}
	return c, nil
}

func (m *metricsDB) topicMetrics(ctx context.Context) ([]TopicMetrics, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT topic, `+confusionColumns+`
		FROM judgments
		GROUP BY topic
		ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("turingprobe: topic metrics: %w", err)
	}
	defer rows.Close()

	var out []TopicMetrics
	for rows.Next() {
		var topic string
		var c Confusion
		if err := rows.Scan(&topic, &c.TrueAI, &c.FalseHuman, &c.FalseAI, &c.TrueHuman); err != nil {
			return nil, fmt.Errorf("turingprobe: scan topic metrics: %w", err)
		}
		out = append(out, TopicMetrics{Topic: topic, Metrics: ScoreConfusion(c)})
	}
	return out, rows.Err()
}

// distribution counts rows per (topic, source), both sorted by name.
func (m *metricsDB) distribution(ctx context.Context) ([]string, []TopicSources, error) {
	var sources []string
	srcRows, err := m.db.QueryContext(ctx, `SELECT DISTINCT source FROM judgments ORDER BY source`)
	if err != nil {
		return nil, nil, fmt.Errorf("turingprobe: list sources: %w", err)
	}
	for srcRows.Next() {
		var s string
		if err := srcRows.Scan(&s); err != nil {
			srcRows.Close()
			return nil, nil, fmt.Errorf("turingprobe: scan source: %w", err)
		}
		sources = append(sources, s)
	}
	srcRows.Close()
	if err := srcRows.Err(); err != nil {
		return nil, nil, err
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT topic, source, COUNT(*)
		FROM judgments
		GROUP BY topic, source
		ORDER BY topic, source`)
	if err != nil {
		return nil, nil, fmt.Errorf("turingprobe: source distribution: %w", err)
	}
	defer rows.Close()

	var out []TopicSources
	for rows.Next() {
		var topic, source string
		var n int
		if err := rows.Scan(&topic, &source, &n); err != nil {
			return nil, nil, fmt.Errorf("turingprobe: scan distribution: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].Topic != topic {
			counts := make(map[string]int, len(sources))
			for _, s := range sources {
				counts[s] = 0
			}
			out = append(out, TopicSources{Topic: topic, Counts: counts})
		}
		out[len(out)-1].Counts[source] = n
	}
	return sources, out, rows.Err()
}
