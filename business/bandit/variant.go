package bandit

import (
	"context"
	"fmt"

	"recoEngine/domain"
	"recoEngine/pkg/logger"
)

type ExperimentRepository interface {
	FindByName(ctx context.Context, name string) (domain.Experiment, bool, error)
	Variants(ctx context.Context, experimentID uint64) ([]domain.ExperimentVariant, error)
}

// VariantPolicy runs the same epsilon-greedy selection over the variants of
// a named experiment, scoped to experiment:<name>.
type VariantPolicy struct {
	policy      *Policy
	experiments ExperimentRepository
}

func NewVariantPolicy(policy *Policy, experiments ExperimentRepository) *VariantPolicy {
	return &VariantPolicy{policy: policy, experiments: experiments}
}

func control(name string) domain.VariantAssignment {
	return domain.VariantAssignment{Experiment: name, Variant: domain.ControlVariant}
}

// Choose assigns subjectID to a variant. Experiments that cannot be resolved
// (unknown, without variants, or unreadable) yield the control variant.
func (v *VariantPolicy) Choose(ctx context.Context, experimentName, subjectID string) (domain.VariantAssignment, error) {
	if err := ctx.Err(); err != nil {
		return domain.VariantAssignment{}, fmt.Errorf("context error: %w", err)
	}
	if experimentName == "" {
		return control(experimentName), nil
	}

	tid := TraceIDFromContext(ctx)

	exp, ok, err := v.experiments.FindByName(ctx, experimentName)
	if err != nil {
		logger.Warn("experiment_lookup_failed", "trace_id", tid, "experiment", experimentName, "error", err)
		return control(experimentName), nil
	}
	if !ok {
		return control(experimentName), nil
	}

	variants, err := v.experiments.Variants(ctx, exp.ID)
	if err != nil {
		logger.Warn("experiment_variants_failed", "trace_id", tid, "experiment", experimentName, "error", err)
		return control(experimentName), nil
	}

	keys := make([]string, 0, len(variants))
	for _, vr := range variants {
		if vr.Key != "" {
			keys = append(keys, vr.Key)
		}
	}
	if len(keys) == 0 {
		return control(experimentName), nil
	}

	sel, err := v.policy.SelectInScope(ctx, domain.ExperimentScope(experimentName), subjectID, keys)
	if err != nil {
		return domain.VariantAssignment{}, err
	}

	id := exp.ID
	return domain.VariantAssignment{
		Experiment:   experimentName,
		ExperimentID: &id,
		Variant:      sel.Strategy,
		Mode:         sel.Mode,
	}, nil
}

func (v *VariantPolicy) RecordVariantOutcome(ctx context.Context, experimentName, variant string, success bool) error {
	if experimentName == "" || variant == "" {
		return fmt.Errorf("%w: experiment and variant are required", domain.ErrInvalidArgument)
	}
	return v.policy.RecordOutcomeInScope(ctx, domain.ExperimentScope(experimentName), variant, success)
}
