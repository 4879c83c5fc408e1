package domain

import (
	"time"

	"gorm.io/datatypes"
)

type DecisionMode string

const (
	ModeExplore DecisionMode = "explore"
	ModeExploit DecisionMode = "exploit"
)

// ScopeStrategies is the performance scope shared by all top-level strategies.
// Experiment variants live under "experiment:<name>".
const ScopeStrategies = "strategies"

// CREATE TABLE public.algorithm_performance (
//     scope       TEXT NOT NULL,
//     algorithm   TEXT NOT NULL,
//     trials      BIGINT NOT NULL DEFAULT 0,
//     successes   BIGINT NOT NULL DEFAULT 0,
//     updated_at  TIMESTAMPTZ DEFAULT NOW(),
//     PRIMARY KEY (scope, algorithm)
// );

type PerformanceRecord struct {
	Scope        string    `gorm:"column:scope;primaryKey" json:"scope"`
	StrategyName string    `gorm:"column:algorithm;primaryKey" json:"strategy"`
	Trials       int64     `gorm:"column:trials;not null;default:0" json:"trials"`
	Successes    int64     `gorm:"column:successes;not null;default:0" json:"successes"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PerformanceRecord) TableName() string {
	return "algorithm_performance"
}

// SuccessRate is successes/trials, or 0 when there were no trials.
func (r PerformanceRecord) SuccessRate() float64 {
	if r.Trials <= 0 {
		return 0
	}
	return float64(r.Successes) / float64(r.Trials)
}

// CREATE TABLE public.decision_logs (
//     id          UUID PRIMARY KEY,
//     subject_id  TEXT NOT NULL,
//     scope       TEXT NOT NULL,
//     algorithm   TEXT NOT NULL,
//     mode        TEXT NOT NULL,
//     details     JSONB,
//     created_at  TIMESTAMPTZ DEFAULT NOW()
// );

type Decision struct {
	ID           string            `gorm:"column:id;primaryKey" json:"id"`
	SubjectID    string            `gorm:"column:subject_id;not null;index" json:"subject_id"`
	Scope        string            `gorm:"column:scope;not null" json:"scope"`
	StrategyName string            `gorm:"column:algorithm;not null" json:"strategy"`
	Mode         DecisionMode      `gorm:"column:mode;not null" json:"mode"`
	Details      datatypes.JSONMap `gorm:"column:details;type:jsonb" json:"details,omitempty"`
	Timestamp    time.Time         `gorm:"column:created_at" json:"timestamp"`
}

func (Decision) TableName() string {
	return "decision_logs"
}

// DecisionHistory is the debug view of how a subject's lists were chosen.
type DecisionHistory struct {
	SubjectID  string     `json:"subject_id"`
	Strategies []string   `json:"strategies"`
	Decisions  []Decision `json:"decisions"`
}
