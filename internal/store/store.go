package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtapang/tosforge/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	// Points columns are TEXT: decimal values round-trip through their
	// string form to avoid REAL drift.
	schema := `
	CREATE TABLE IF NOT EXISTS courses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		total_items INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id INTEGER NOT NULL,
		outcome_no INTEGER NOT NULL,
		text TEXT NOT NULL,
		hours REAL NOT NULL DEFAULT 0,
		UNIQUE (course_id, outcome_no),
		FOREIGN KEY (course_id) REFERENCES courses(id)
	);

	CREATE TABLE IF NOT EXISTS blueprints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (course_id) REFERENCES courses(id)
	);

	CREATE TABLE IF NOT EXISTS format_configs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		blueprint_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		item_count INTEGER NOT NULL,
		points_per_item TEXT NOT NULL,
		FOREIGN KEY (blueprint_id) REFERENCES blueprints(id)
	);

	CREATE TABLE IF NOT EXISTS assigned_slots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		blueprint_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		outcome_id INTEGER NOT NULL,
		outcome_text TEXT NOT NULL,
		level TEXT NOT NULL,
		format TEXT NOT NULL,
		points TEXT NOT NULL,
		FOREIGN KEY (blueprint_id) REFERENCES blueprints(id)
	);

	CREATE TABLE IF NOT EXISTS generated_questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		blueprint_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		outcome_id INTEGER NOT NULL,
		level TEXT NOT NULL,
		format TEXT NOT NULL,
		points TEXT NOT NULL,
		text TEXT NOT NULL,
		answer_key TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		FOREIGN KEY (blueprint_id) REFERENCES blueprints(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateCourse stores a course and its outcomes in one transaction.
func (s *Store) CreateCourse(c model.Course, outcomes []model.Outcome) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO courses (code, title, total_items) VALUES (?, ?, ?)`,
		c.Code, c.Title, c.TotalItems,
	)
	if err != nil {
		return 0, err
	}
	courseID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, o := range outcomes {
		if _, err := tx.Exec(
			`INSERT INTO outcomes (course_id, outcome_no, text, hours) VALUES (?, ?, ?, ?)`,
			courseID, o.ID, o.Text, o.Hours,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return courseID, nil
}

// GetCourse returns a course by id.
func (s *Store) GetCourse(id int64) (model.Course, error) {
	var c model.Course
	err := s.db.QueryRow(
		`SELECT id, code, title, total_items FROM courses WHERE id = ?`, id,
	).Scan(&c.ID, &c.Code, &c.Title, &c.TotalItems)
	return c, err
}

// GetCourseByCode returns a course by its unique code.
func (s *Store) GetCourseByCode(code string) (model.Course, error) {
	var c model.Course
	err := s.db.QueryRow(
		`SELECT id, code, title, total_items FROM courses WHERE code = ?`, code,
	).Scan(&c.ID, &c.Code, &c.Title, &c.TotalItems)
	return c, err
}

// ListOutcomes returns a course's outcomes ordered by outcome number.
func (s *Store) ListOutcomes(courseID int64) ([]model.Outcome, error) {
	rows, err := s.db.Query(
		`SELECT outcome_no, text, hours FROM outcomes WHERE course_id = ? ORDER BY outcome_no`,
		courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []model.Outcome
	for rows.Next() {
		var o model.Outcome
		if err := rows.Scan(&o.ID, &o.Text, &o.Hours); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// SaveBlueprint stores a blueprint together with its format configuration
// and assigned slot sequence in one transaction. Slot order is preserved.
func (s *Store) SaveBlueprint(courseID int64, name string, configs []model.FormatConfig, slots []model.AssignedSlot) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO blueprints (course_id, name, created_at) VALUES (?, ?, ?)`,
		courseID, name, time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	blueprintID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, c := range configs {
		if _, err := tx.Exec(
			`INSERT INTO format_configs (blueprint_id, position, name, item_count, points_per_item)
			 VALUES (?, ?, ?, ?, ?)`,
			blueprintID, i, c.Name, c.ItemCount, c.PointsPerItem.String(),
		); err != nil {
			return 0, err
		}
	}

	for i, slot := range slots {
		if _, err := tx.Exec(
			`INSERT INTO assigned_slots (blueprint_id, position, outcome_id, outcome_text, level, format, points)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			blueprintID, i, slot.OutcomeID, slot.OutcomeText, string(slot.Level), slot.Format, slot.Points.String(),
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return blueprintID, nil
}

// GetBlueprint returns a blueprint by id.
func (s *Store) GetBlueprint(id int64) (model.Blueprint, error) {
	var b model.Blueprint
	err := s.db.QueryRow(
		`SELECT id, course_id, name, created_at FROM blueprints WHERE id = ?`, id,
	).Scan(&b.ID, &b.CourseID, &b.Name, &b.CreatedAt)
	return b, err
}

// ListBlueprints returns all blueprints, newest first.
func (s *Store) ListBlueprints() ([]model.Blueprint, error) {
	rows, err := s.db.Query(
		`SELECT id, course_id, name, created_at FROM blueprints ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blueprints []model.Blueprint
	for rows.Next() {
		var b model.Blueprint
		if err := rows.Scan(&b.ID, &b.CourseID, &b.Name, &b.CreatedAt); err != nil {
			return nil, err
		}
		blueprints = append(blueprints, b)
	}
	return blueprints, rows.Err()
}

// ListFormatConfigs returns a blueprint's format configuration in its
// original order.
func (s *Store) ListFormatConfigs(blueprintID int64) ([]model.FormatConfig, error) {
	rows, err := s.db.Query(
		`SELECT name, item_count, points_per_item FROM format_configs
		 WHERE blueprint_id = ? ORDER BY position`,
		blueprintID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []model.FormatConfig
	for rows.Next() {
		var (
			c      model.FormatConfig
			points string
		)
		if err := rows.Scan(&c.Name, &c.ItemCount, &points); err != nil {
			return nil, err
		}
		c.PointsPerItem, err = decimal.NewFromString(points)
		if err != nil {
			return nil, fmt.Errorf("format %q: stored points %q: %w", c.Name, points, err)
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// ListAssignedSlots returns a blueprint's slots in stored order.
func (s *Store) ListAssignedSlots(blueprintID int64) ([]model.AssignedSlot, error) {
	rows, err := s.db.Query(
		`SELECT outcome_id, outcome_text, level, format, points FROM assigned_slots
		 WHERE blueprint_id = ? ORDER BY position`,
		blueprintID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.AssignedSlot
	for rows.Next() {
		var (
			slot   model.AssignedSlot
			level  string
			points string
		)
		if err := rows.Scan(&slot.OutcomeID, &slot.OutcomeText, &level, &slot.Format, &points); err != nil {
			return nil, err
		}
		slot.Level = model.CognitiveLevel(level)
		slot.Points, err = decimal.NewFromString(points)
		if err != nil {
			return nil, fmt.Errorf("slot for outcome %d: stored points %q: %w", slot.OutcomeID, points, err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// InsertGeneratedQuestion stores one LLM-produced question.
func (s *Store) InsertGeneratedQuestion(q model.GeneratedQuestion) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO generated_questions (blueprint_id, position, outcome_id, level, format, points, text, answer_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.BlueprintID, q.Position, q.OutcomeID, string(q.Level), q.Format, q.Points.String(), q.Text, q.AnswerKey, time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListGeneratedQuestions returns a blueprint's generated questions in slot
// order.
func (s *Store) ListGeneratedQuestions(blueprintID int64) ([]model.GeneratedQuestion, error) {
	rows, err := s.db.Query(
		`SELECT id, blueprint_id, position, outcome_id, level, format, points, text, answer_key, created_at
		 FROM generated_questions WHERE blueprint_id = ? ORDER BY position`,
		blueprintID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.GeneratedQuestion
	for rows.Next() {
		var (
			q      model.GeneratedQuestion
			level  string
			points string
		)
		if err := rows.Scan(&q.ID, &q.BlueprintID, &q.Position, &q.OutcomeID, &level, &q.Format, &points, &q.Text, &q.AnswerKey, &q.CreatedAt); err != nil {
			return nil, err
		}
		q.Level = model.CognitiveLevel(level)
		q.Points, err = decimal.NewFromString(points)
		if err != nil {
			return nil, fmt.Errorf("question %d: stored points %q: %w", q.ID, points, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// BlueprintCount returns the number of stored blueprints.
func (s *Store) BlueprintCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM blueprints`).Scan(&count)
	return count, err
}
