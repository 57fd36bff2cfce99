package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/arencloud/sitedeploy/internal/deploy"
	"github.com/arencloud/sitedeploy/internal/models"
)

var ErrNotFound = errors.New("deployment not found")

// History stores deployment results. It satisfies deploy.Recorder.
type History struct{ db *gorm.DB }

var _ deploy.Recorder = (*History)(nil)

func NewHistory(db *gorm.DB) *History { return &History{db: db} }

// Record persists res together with its uploaded objects.
func (h *History) Record(ctx context.Context, res *deploy.Result) error {
	row := models.Deployment{
		Bucket:     res.Bucket,
		Region:     res.Region,
		URL:        res.URL,
		Status:     models.StatusSucceeded,
		Stage:      string(res.Stage),
		Files:      len(res.Objects),
		Bytes:      res.Bytes,
		StartedAt:  res.Started,
		EndedAt:    res.Ended,
		DurationNs: int64(res.Ended.Sub(res.Started)),
	}
	if res.Err != nil {
		row.Status = models.StatusFailed
		row.Error = res.Err.Error()
		var se *deploy.StageError
		if errors.As(res.Err, &se) {
			row.Stage = string(se.Stage)
		}
	}
	for _, it := range res.Objects {
		row.Objects = append(row.Objects, models.DeployedObject{Key: it.Key, ContentType: it.ContentType, Size: it.Size})
	}
	return h.db.WithContext(ctx).Create(&row).Error
}

// List returns up to limit deployments, newest first, without their objects.
func (h *History) List(ctx context.Context, limit int) ([]models.Deployment, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.Deployment
	err := h.db.WithContext(ctx).Order("started_at desc").Order("id desc").Limit(limit).Find(&rows).Error
	return rows, err
}

// Get loads one deployment with its objects.
func (h *History) Get(ctx context.Context, id uint) (*models.Deployment, error) {
	var row models.Deployment
	err := h.db.WithContext(ctx).Preload("Objects", func(tx *gorm.DB) *gorm.DB { return tx.Order("object_key asc") }).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
