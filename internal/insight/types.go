// Package insight holds the decomposition data model and the per-session
// exploration state: the write-once Insight Cache and the Exploration Path.
package insight

// Vector is one facet of a decomposed problem.
type Vector struct {
	ID          string  `json:"id"`
	Keyword     string  `json:"keyword" validate:"required"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// Result is the full decomposition for one explored keyword.
type Result struct {
	Vectors        []Vector `json:"vectors" validate:"required,min=1,dive"`
	FirstPrinciple string   `json:"firstPrinciple" validate:"required"`
	OldPattern     string   `json:"oldPattern"`
	NewMetaphor    string   `json:"newMetaphor"`
}

// Clone returns a deep copy so callers can never alias cached state.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Vectors = append([]Vector(nil), r.Vectors...)
	return &out
}

// VectorByID resolves a leaf id against this result.
func (r *Result) VectorByID(id string) (Vector, bool) {
	if r == nil {
		return Vector{}, false
	}
	for _, v := range r.Vectors {
		if v.ID == id {
			return v, true
		}
	}
	return Vector{}, false
}
