package convai

// ConversationStatus is the remote platform's lifecycle state for a
// conversation. It only ever moves from processing to done or error.
type ConversationStatus string

const (
	StatusProcessing ConversationStatus = "processing"
	StatusDone       ConversationStatus = "done"
	StatusError      ConversationStatus = "error"
)

// Terminal reports whether the status will never change again.
func (s ConversationStatus) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Turn is a single transcript entry.
type Turn struct {
	Role           string `json:"role"` // "user" or "agent"
	Message        string `json:"message"`
	TimeInCallSecs int    `json:"time_in_call_secs"`
}

// Metadata carries call-level accounting for a conversation.
type Metadata struct {
	StartTimeUnixSecs int64   `json:"start_time_unix_secs"`
	CallDurationSecs  int     `json:"call_duration_secs"`
	Cost              float64 `json:"cost"`
	TerminationReason string  `json:"termination_reason"`
}

// DataCollectionResult is the score the remote platform derived for one
// wellbeing topic. Value is nil when the conversation did not yield enough
// signal to score the topic.
type DataCollectionResult struct {
	Value     *float64 `json:"value"`
	Rationale string   `json:"rationale"`
}

// Analysis is the derived output attached to a conversation once processing
// completes. DataCollectionResults is keyed by topic id; keys outside the
// wellbeing catalog are dropped at the client boundary.
type Analysis struct {
	TranscriptSummary     string                          `json:"transcript_summary"`
	DataCollectionResults map[string]DataCollectionResult `json:"data_collection_results"`
}

// ConversationRecord is the remote platform's record of a single voice
// session. It is fetched, never written, by this service.
type ConversationRecord struct {
	AgentID        string             `json:"agent_id"`
	ConversationID string             `json:"conversation_id"`
	Status         ConversationStatus `json:"status"`
	Transcript     []Turn             `json:"transcript"`
	Metadata       Metadata           `json:"metadata"`
	Analysis       *Analysis          `json:"analysis"`
}
