package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID       int
	Sequence int64
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM calls per purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage per model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// GenerationEventData is the outcome of one question generation.
type GenerationEventData struct {
	Timestamp           time.Time
	QuestionID          string
	Topic               string
	Difficulty          string
	Success             bool
	Fallback            bool
	RefinementAttempted bool
	RefinementApplied   bool
	QualityScore        int
	Attempts            int
	DurationMs          int64
	ErrorKind           string
	Stage               string
}

// GenerationEventRecord is a stored generation event.
type GenerationEventRecord struct {
	ID       int
	Sequence int64
	GenerationEventData
}

// TopicSummary aggregates generation events for one topic.
type TopicSummary struct {
	Topic         string
	Total         int
	Successful    int
	Fallbacks     int
	AvgQuality    float64
	AvgDurationMs int64
}

// ErrorEventData is one classified pipeline error.
type ErrorEventData struct {
	Timestamp time.Time
	Kind      string
	Code      string
	Stage     string
	Message   string
}

// ErrorKindCount is the number of stored errors of one kind.
type ErrorKindCount struct {
	Kind  string
	Count int
}

// EventRepo provides append and query access to events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)
	// GetLLMEvent returns nil when no event has id.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)

	AppendGeneration(ctx context.Context, data GenerationEventData) error
	QueryGenerations(ctx context.Context, opts QueryOpts) ([]GenerationEventRecord, error)
	GenerationSummary(ctx context.Context) ([]TopicSummary, error)

	AppendError(ctx context.Context, data ErrorEventData) error
	ErrorCounts(ctx context.Context, since time.Time) ([]ErrorKindCount, error)
}
