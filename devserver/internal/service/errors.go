package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/landingsite-ai/aifeatures-go/go/aifeatures"
)

var (
	ErrFormNotFound       = errors.New("Form not found")
	ErrSubmissionNotFound = errors.New("Submission not found")
	ErrAttachmentNotFound = errors.New("Attachment not found")
	ErrCaptchaRequired    = errors.New("Captcha required")
	ErrInvalidOrgKey      = errors.New("Invalid organization API key")
	ErrEmptySubmission    = errors.New("Submission is empty")
)

// ValidationError is returned for input that fails validation. Its message
// names the offending fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "Invalid " + strings.Join(e.Fields, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("redirect", func(fl validator.FieldLevel) bool {
		return aifeatures.IsRedirectURL(fl.Field().String())
	})
	return v
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, jsonName(fe.Field()))
	}
	return out
}

// jsonName turns a Go field name like EmailRecipients into email_recipients.
func jsonName(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
