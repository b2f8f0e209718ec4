package assoc

import (
	"fmt"
	"strings"

	"github.com/cognicore/collocate/pkg/collocate/internalerr"
)

// Method names accepted by Lookup.
const (
	MethodFrequency        = "frequency"
	MethodPMI              = "pmi"
	MethodTTest            = "t_test"
	MethodDiffMeanVar      = "diff_mean_var"
	MethodHypothesisDiff   = "hypothesis_testing_diff"
	MethodChiSquare        = "chi_square"
	MethodLikelihoodRatios = "likelihood_ratios"
)

var methods = []Scorer{
	Frequency{},
	PMI{},
	TTest{},
	DiffMeanVariance{},
	HypothesisDiff{},
	ChiSquare{},
	LikelihoodRatio{},
}

// Methods returns every method name in a fixed order.
func Methods() []string {
	names := make([]string, len(methods))
	for i, s := range methods {
		names[i] = s.Name()
	}
	return names
}

// DefaultMethods returns the methods run when none are selected. The
// hypothesis-testing difference is opt-in because of its cost.
func DefaultMethods(withHypothesisDiff bool) []string {
	var names []string
	for _, s := range methods {
		if s.Name() == MethodHypothesisDiff && !withHypothesisDiff {
			continue
		}
		names = append(names, s.Name())
	}
	return names
}

// Lookup returns the scorer for a method name. An unknown name is a
// configuration error, never a silent no-op.
func Lookup(name string) (Scorer, error) {
	for _, s := range methods {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w %q (valid: %s): %w", internalerr.ErrUnknownMethod, name,
		strings.Join(Methods(), ", "), internalerr.ErrInvalidConfig)
}
