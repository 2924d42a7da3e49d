package runstore

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/signlab/pjmsign/internal/model"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("not found")

// Run represents one training run.
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     sql.NullTime
	Epochs         int
	BatchSize      int
	LearningRate   float64
	BestAccuracy   float64
	CheckpointPath string
}

// RunRepository provides CRUD operations for training runs.
type RunRepository struct {
	db *sql.DB
}

// Runs returns the run repository for this store.
func (s *Store) Runs() *RunRepository {
	return &RunRepository{db: s.db}
}

// Create inserts a new run. An ID is assigned when the run does not carry one.
func (r *RunRepository) Create(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO runs (id, started_at, epochs, batch_size, learning_rate, best_accuracy, checkpoint_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Epochs, run.BatchSize, run.LearningRate, run.BestAccuracy, run.CheckpointPath,
	)
	return err
}

// Finish marks a run as completed and records its final best metrics.
func (r *RunRepository) Finish(id string, bestAccuracy float64, checkpointPath string) error {
	res, err := r.db.Exec(
		`UPDATE runs SET finished_at = ?, best_accuracy = ?, checkpoint_path = ? WHERE id = ?`,
		time.Now(), bestAccuracy, checkpointPath, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(id string) (*Run, error) {
	run := &Run{}
	err := r.db.QueryRow(
		`SELECT id, started_at, finished_at, epochs, batch_size, learning_rate, best_accuracy, checkpoint_path
		 FROM runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Epochs, &run.BatchSize,
		&run.LearningRate, &run.BestAccuracy, &run.CheckpointPath)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

// List returns all runs, most recent first.
func (r *RunRepository) List() ([]*Run, error) {
	rows, err := r.db.Query(
		`SELECT id, started_at, finished_at, epochs, batch_size, learning_rate, best_accuracy, checkpoint_path
		 FROM runs ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Epochs, &run.BatchSize,
			&run.LearningRate, &run.BestAccuracy, &run.CheckpointPath); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// AddEpoch records the metrics of one epoch for a run.
func (r *RunRepository) AddEpoch(runID string, m model.EpochMetrics) error {
	_, err := r.db.Exec(
		`INSERT INTO run_epochs (run_id, epoch, loss, val_accuracy, val_precision, val_recall)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, m.Epoch, m.Loss, m.ValAccuracy, m.ValPrecision, m.ValRecall,
	)
	return err
}

// EpochsByRun returns a run's per-epoch metrics in epoch order.
func (r *RunRepository) EpochsByRun(runID string) ([]model.EpochMetrics, error) {
	rows, err := r.db.Query(
		`SELECT epoch, loss, val_accuracy, val_precision, val_recall
		 FROM run_epochs WHERE run_id = ? ORDER BY epoch`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var epochs []model.EpochMetrics
	for rows.Next() {
		var m model.EpochMetrics
		if err := rows.Scan(&m.Epoch, &m.Loss, &m.ValAccuracy, &m.ValPrecision, &m.ValRecall); err != nil {
			return nil, err
		}
		epochs = append(epochs, m)
	}
	return epochs, rows.Err()
}
