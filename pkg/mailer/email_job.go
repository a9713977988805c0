package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either set Template (with Data) or a raw Subject with Text and/or HTML.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "universal", or a type such as "gift_received"
	Data     map[string]any `json:"data,omitempty"`
}
