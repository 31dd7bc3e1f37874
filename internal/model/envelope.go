package model

// Envelope is one message unit traveling through the queue. It is built at
// ingress validation time and immutable afterwards; the JSON form is the
// wire format for the Redis queue driver.
type Envelope struct {
	ID          string `json:"message_id"`
	Content     string `json:"content"`
	UMO         string `json:"umo"` // delivery target understood by the sink
	Kind        Kind   `json:"type"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// DeliveryResult is produced exactly once per dequeued Envelope. It is also
// the callback payload, so the field set is fixed.
type DeliveryResult struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}
