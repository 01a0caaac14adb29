package entity

import "time"

// Operator message processing statuses
const (
	MessageStatusPending    = "pending"
	MessageStatusProcessing = "processing"
	MessageStatusProcessed  = "processed"
	MessageStatusFailed     = "failed"
	MessageStatusSkipped    = "skipped"
)

// OperatorMessage is one inbound message from an operator's disruption
// mailbox, persisted before processing so a crash never loses a notice.
type OperatorMessage struct {
	ID            string                 `bson:"_id,omitempty"`
	MessageID     string                 `bson:"messageId"`
	From          string                 `bson:"from"`
	Subject       string                 `bson:"subject"`
	Body          string                 `bson:"body"`
	ReceivedAt    time.Time              `bson:"receivedAt"`
	ProcessStatus string                 `bson:"processStatus"`
	ProcessedAt   *time.Time             `bson:"processedAt,omitempty"`
	HandlerType   string                 `bson:"handlerType,omitempty"`
	ErrorDetail   string                 `bson:"errorDetail,omitempty"`
	ExtractedData map[string]interface{} `bson:"extractedData,omitempty"`
}
