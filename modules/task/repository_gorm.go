package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// taskRecord is the GORM model backing GormRepository.
type taskRecord struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Title       string     `gorm:"not null"`
	Description string     `gorm:"not null"`
	Completed   bool       `gorm:"not null"`
	Priority    string     `gorm:"size:20;not null"`
	CreatedAt   time.Time  `gorm:"not null"`
	DueDate     *time.Time `gorm:"index"`
}

// TableName returns the table name for taskRecord.
func (taskRecord) TableName() string {
	return "tasks"
}

func toRecord(t domain.Task) taskRecord {
	rec := taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt,
	}
	if t.DueDate != nil {
		due := t.DueDate.Time
		rec.DueDate = &due
	}
	return rec
}

func (rec taskRecord) toDomain() domain.Task {
	t := domain.Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Completed:   rec.Completed,
		Priority:    domain.Priority(rec.Priority),
		CreatedAt:   rec.CreatedAt.UTC(),
	}
	if rec.DueDate != nil {
		due := rec.DueDate.UTC()
		d := domain.NewDate(due.Year(), due.Month(), due.Day())
		t.DueDate = &d
	}
	return t
}

// GormRepository stores tasks through GORM on SQLite.
type GormRepository struct {
	db *gorm.DB
}

var _ Repository = (*GormRepository)(nil)

// OpenGormRepository opens a SQLite database at dsn and migrates the schema.
// The ":memory:" dsn keeps data for the lifetime of the process only.
func OpenGormRepository(dsn string) (*GormRepository, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every new connection to :memory: is a fresh database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return NewGormRepository(db)
}

// NewGormRepository wraps an open GORM handle and runs migrations.
func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &GormRepository{db: db}, nil
}

func (r *GormRepository) List(ctx context.Context) ([]domain.Task, error) {
	var records []taskRecord
	if err := r.db.WithContext(ctx).Order("id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, rec.toDomain())
	}
	return tasks, nil
}

func (r *GormRepository) Create(ctx context.Context, t *domain.Task) error {
	rec := toRecord(*t)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	t.ID = rec.ID
	return nil
}

func (r *GormRepository) Update(ctx context.Context, id int64, fn func(*domain.Task) error) (domain.Task, error) {
	var updated domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec taskRecord
		if err := tx.First(&rec, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound(id)
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		working := rec.toDomain()
		if err := fn(&working); err != nil {
			return err
		}
		working.ID = id

		next := toRecord(working)
		if err := tx.Save(&next).Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		updated = working
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

func (r *GormRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id)
	if err := result.Error; err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return result.RowsAffected > 0, nil
}

// Ping checks the underlying connection.
func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
