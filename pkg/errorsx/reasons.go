package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonLLMGenerate  ReasonCode = "llm_generate"
	ReasonLLMTimeout   ReasonCode = "llm_timeout"
	ReasonLLMRateLimit ReasonCode = "llm_rate_limit"

	ReasonToolNotFound ReasonCode = "tool_not_found"
	ReasonToolInvoke   ReasonCode = "tool_invoke"
	ReasonToolTimeout  ReasonCode = "tool_timeout"

	ReasonProtocolDecode ReasonCode = "protocol_decode"

	ReasonWorkflowPrecondition ReasonCode = "workflow_precondition"
	ReasonWorkflowGraph        ReasonCode = "workflow_graph"
	ReasonRunTimeout           ReasonCode = "run_timeout"
	ReasonRunCanceled          ReasonCode = "run_canceled"

	ReasonTransportSend ReasonCode = "transport_send"
)
