package models

import (
	"time"
)

// Deployment is one run of the deploy pipeline, successful or not.
type Deployment struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Bucket     string           `gorm:"index;not null" json:"bucket"`
	Region     string           `json:"region"`
	URL        string           `json:"url"`
	Status     string           `gorm:"index" json:"status"` // succeeded|failed
	Stage      string           `json:"stage"`               // last stage reached
	Error      string           `json:"error,omitempty"`
	Files      int              `json:"files"`
	Bytes      int64            `json:"bytes"`
	StartedAt  time.Time        `gorm:"index" json:"startedAt"`
	EndedAt    time.Time        `json:"endedAt"`
	DurationNs int64            `json:"durationNs"`
	Objects    []DeployedObject `gorm:"constraint:OnDelete:CASCADE" json:"objects,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// DeployedObject is a single uploaded key of a Deployment.
type DeployedObject struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	DeploymentID uint   `gorm:"index;not null" json:"deploymentId"`
	Key          string `gorm:"column:object_key" json:"key"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
}

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)
