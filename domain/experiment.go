package domain

// CREATE TABLE public.experiments (
//     id      BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     name    TEXT UNIQUE NOT NULL
// );
//
// CREATE TABLE public.experiment_variants (
//     id                BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     experiment_id     BIGINT NOT NULL REFERENCES experiments(id),
//     key               TEXT NOT NULL,
//     traffic_fraction  NUMERIC DEFAULT 0
// );

// ControlVariant is returned whenever no experiment can be resolved.
const ControlVariant = "control"

type Experiment struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;uniqueIndex;not null" json:"name"`
}

func (Experiment) TableName() string {
	return "experiments"
}

type ExperimentVariant struct {
	ID              uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ExperimentID    uint64  `gorm:"column:experiment_id;not null;index" json:"experiment_id"`
	Key             string  `gorm:"column:key;not null" json:"key"`
	TrafficFraction float64 `gorm:"column:traffic_fraction;type:numeric" json:"traffic_fraction"`
}

func (ExperimentVariant) TableName() string {
	return "experiment_variants"
}

type VariantAssignment struct {
	Experiment   string       `json:"experiment"`
	ExperimentID *uint64      `json:"experiment_id"`
	Variant      string       `json:"variant"`
	Mode         DecisionMode `json:"mode,omitempty"`
}

// ExperimentScope is the performance/decision scope of an experiment's variants.
func ExperimentScope(name string) string {
	return "experiment:" + name
}
