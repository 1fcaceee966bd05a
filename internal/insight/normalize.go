package insight

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrUnusableResult marks provider output that cannot be displayed.
var ErrUnusableResult = errors.New("unusable insight result")

// Soft cardinality bounds the provider is asked to honour.
const (
	MinVectors = 6
	MaxVectors = 8
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Normalize validates r and repairs what can be repaired in place: text is
// trimmed, weights are clamped into [0,1] and blank or duplicate ids are
// replaced with fresh ones. A result with no vectors, a vector without a
// keyword, or no first principle is rejected with ErrUnusableResult.
// Cardinality outside MinVectors..MaxVectors is reported as a warning only.
func Normalize(r *Result) (warnings []string, err error) {
	if r == nil {
		return nil, fmt.Errorf("%w: empty result", ErrUnusableResult)
	}

	r.FirstPrinciple = strings.TrimSpace(r.FirstPrinciple)
	r.OldPattern = strings.TrimSpace(r.OldPattern)
	r.NewMetaphor = strings.TrimSpace(r.NewMetaphor)
	for i := range r.Vectors {
		v := &r.Vectors[i]
		v.ID = strings.TrimSpace(v.ID)
		v.Keyword = strings.TrimSpace(v.Keyword)
		v.Description = strings.TrimSpace(v.Description)
	}

	if err := validatorInstance().Struct(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusableResult, err)
	}

	seen := make(map[string]bool, len(r.Vectors))
	for i := range r.Vectors {
		v := &r.Vectors[i]
		if v.ID == "" || v.ID == "center" || seen[v.ID] {
			old := v.ID
			v.ID = uuid.NewString()
			warnings = append(warnings, fmt.Sprintf("vector %d: replaced id %q with %s", i, old, v.ID))
		}
		seen[v.ID] = true

		switch {
		case math.IsNaN(v.Weight):
			v.Weight = 0
			warnings = append(warnings, fmt.Sprintf("vector %d: NaN weight set to 0", i))
		case v.Weight < 0:
			v.Weight = 0
			warnings = append(warnings, fmt.Sprintf("vector %d: weight clamped to 0", i))
		case v.Weight > 1:
			v.Weight = 1
			warnings = append(warnings, fmt.Sprintf("vector %d: weight clamped to 1", i))
		}
	}

	if n := len(r.Vectors); n < MinVectors || n > MaxVectors {
		warnings = append(warnings, fmt.Sprintf("got %d vectors, expected %d-%d", n, MinVectors, MaxVectors))
	}
	return warnings, nil
}
