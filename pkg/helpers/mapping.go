package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/karaoke-social-api/pkg/mailer"
	mailtpl "github.com/oksasatya/karaoke-social-api/pkg/mailer/templates"
)

func SubjectForUniversal(data map[string]any) string {
	typeStr := fmt.Sprintf("%v", data["Type"])
	switch strings.ToLower(typeStr) {
	case mailtpl.Welcome:
		return "Welcome to the stage"
	case mailtpl.ForgotPassword:
		return "Reset your password"
	case mailtpl.GiftReceived:
		if name := fmt.Sprintf("%v", data["GiftName"]); name != "" && name != "<nil>" {
			return "You received a " + name
		}
		return "You received a gift"
	case mailtpl.LevelUp:
		return fmt.Sprintf("You reached level %v", data["Level"])
	default:
		return "Notification"
	}
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// MapTypeToUniversal lets producers name the email type directly as the
// template; every type is rendered by the universal template.
func MapTypeToUniversal(job *mailer.EmailJob) {
	switch strings.ToLower(job.Template) {
	case mailtpl.Welcome, mailtpl.ForgotPassword, mailtpl.GiftReceived, mailtpl.LevelUp:
		if job.Data == nil {
			job.Data = map[string]any{}
		}
		if _, ok := job.Data["Type"]; !ok || fmt.Sprintf("%v", job.Data["Type"]) == "" {
			job.Data["Type"] = job.Template
		}
		job.Template = mailtpl.Universal
	}
}
