package executor

import (
	"time"

	"github.com/n9te9/federation-gateway/federation/plan"
)

// TraceNode mirrors the shape of the plan it was produced from (spec §4.1):
// the Plan Interpreter always returns one of these, whether or not trace
// capture was requested, so callers can walk execution structurally even
// when FTv1 payloads were never collected.
type TraceNode struct {
	Kind        plan.Kind     `json:"kind"`
	Children    []*TraceNode  `json:"children,omitempty"`
	FlattenPath plan.Path     `json:"flattenPath,omitempty"`
	Child       *TraceNode    `json:"child,omitempty"`
	Fetch       *TraceFetch   `json:"fetch,omitempty"`
}

// TraceFetch records one Fetch node's execution, including its FTv1 trace
// payload when capture was requested and the subgraph supplied one.
type TraceFetch struct {
	ServiceName         string    `json:"serviceName"`
	SentTimeOffsetNanos int64     `json:"sentTimeOffsetNanos"`
	SentTime            time.Time `json:"sentTime"`
	ReceivedTime        time.Time `json:"receivedTime"`
	Trace               []byte    `json:"trace,omitempty"`
	TraceParsingFailed  bool      `json:"traceParsingFailed,omitempty"`
}
