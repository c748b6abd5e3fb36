package notify

import (
	"fmt"

	"github.com/photoblog/photoflow/internal/model"
)

const (
	subjectRetry = "Image Processing Failed - Automatic Retry Scheduled"
	subjectFinal = "Image Processing Failed - Maximum Retries Reached"
)

// RetryScheduled - письмо владельцу о запланированном повторе обработки
func RetryScheduled(displayName, email, key string, attempt int) *Message {
	body := fmt.Sprintf(`Hello %s,

We encountered an issue processing your image: %s
Attempt: %d of %d

Don't worry - we'll automatically retry the processing shortly.
You'll receive another notification about the status.

Best regards,
Your Photo Blog Team`, displayName, key, attempt, model.MaxAttempts)

	return &Message{
		Subject:    subjectRetry,
		Body:       body,
		Attributes: map[string]string{"email": email},
	}
}

// FinalFailure - письмо владельцу об исчерпании попыток
func FinalFailure(displayName, email, key string, attempt int) *Message {
	body := fmt.Sprintf(`Hello %s,

We're sorry, but we were unable to process your image: %s
after %d attempts.

Please try uploading the image again or contact support if the issue persists.

Best regards,
Your Photo Blog Team`, displayName, key, attempt)

	return &Message{
		Subject:    subjectFinal,
		Body:       body,
		Attributes: map[string]string{"email": email},
	}
}
