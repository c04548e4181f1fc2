// Package conversation holds the message and intent types shared between
// the orchestrator and the external text-understanding services.
package conversation

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry in the rolling conversation transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Intent is the routing decision for one inbound message.
type Intent string

const (
	IntentOrder          Intent = "ORDER"
	IntentRefillCheck    Intent = "REFILL_CHECK"
	IntentStatusCheck    Intent = "STATUS_CHECK"
	IntentGeneralInquiry Intent = "GENERAL_INQUIRY"
	IntentConfirmOrder   Intent = "CONFIRM_ORDER"
	IntentCancelOrder    Intent = "CANCEL_ORDER"
)

// ParseIntent maps a raw classifier label to a known Intent. Unknown labels
// fall back to IntentGeneralInquiry so a misbehaving classifier can never
// route a message off the map.
func ParseIntent(raw string) Intent {
	switch Intent(raw) {
	case IntentOrder, IntentRefillCheck, IntentStatusCheck,
		IntentConfirmOrder, IntentCancelOrder, IntentGeneralInquiry:
		return Intent(raw)
	default:
		return IntentGeneralInquiry
	}
}

// IntentResult is the structured output of the intent classifier.
type IntentResult struct {
	Intent           Intent  `json:"intent"`
	Confidence       float64 `json:"confidence"`
	ResponseDraft    string  `json:"response_draft"`
	FollowUpNeeded   bool    `json:"follow_up_needed"`
	FollowUpQuestion string  `json:"follow_up_question"`
}

// ExtractedEntity is one structured order entity produced by the extractor.
// Quantity 0 means the user did not specify a count.
type ExtractedEntity struct {
	Medicine   string  `json:"medicine"`
	Dosage     string  `json:"dosage"`
	Frequency  string  `json:"frequency"`
	Quantity   int     `json:"quantity"`
	Confidence float64 `json:"confidence"`
	RawText    string  `json:"raw_text"`
}

// ExtractionResult is the structured output of the entity extractor.
type ExtractionResult struct {
	Entities             []ExtractedEntity `json:"entities"`
	NeedsClarification   bool              `json:"needs_clarification"`
	ClarificationMessage string            `json:"clarification_message"`
}

// PatientContext is the compact patient block sent upstream with each
// classifier and extractor call.
type PatientContext struct {
	PatientID        string
	PatientName      string
	RecentOrderCount int
}
