package explore

// Stage is the controller's position in the exploration flow.
type Stage int

const (
	StageInput       Stage = iota // Waiting for a problem
	StageVectorizing              // Fetch in flight
	StageMapping                  // Root star graph on display
	StageCompressing              // Graph collapsing toward the hub
	StagePrinciple                // First principle reveal
	StageMetaphor                 // Tabs revealed; drill-down enabled
)

var stageNames = [...]string{"INPUT", "VECTORIZING", "MAPPING", "COMPRESSING", "PRINCIPLE", "METAPHOR"}

// String returns the display name for each stage
func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "UNKNOWN"
}

// ShowsResult reports whether the stage renders the current result.
func (s Stage) ShowsResult() bool {
	return s >= StageMapping
}

// Tab is one of the result views shown once tabs are revealed.
type Tab string

const (
	TabMap       Tab = "map"
	TabData      Tab = "data"
	TabPrinciple Tab = "principle"
	TabMetaphor  Tab = "metaphor"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabMap, TabData, TabPrinciple, TabMetaphor}

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	for _, known := range Tabs {
		if t == known {
			return true
		}
	}
	return false
}
