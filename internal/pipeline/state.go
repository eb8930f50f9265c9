package pipeline

// State is a step of a workflow run.
type State int

const (
	StateIdle State = iota
	StateDiscovering
	StateProcessing
	StateEmbedding
	StateInsertingVectors
	StateEmbedQuery
	StateSearchVectors
	StateAssembleContext
	StateGenerate
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:             "idle",
	StateDiscovering:      "discovering",
	StateProcessing:       "processing",
	StateEmbedding:        "embedding",
	StateInsertingVectors: "inserting_vectors",
	StateEmbedQuery:       "embed_query",
	StateSearchVectors:    "search_vectors",
	StateAssembleContext:  "assemble_context",
	StateGenerate:         "generate",
	StateDone:             "done",
	StateFailed:           "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition follows.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
