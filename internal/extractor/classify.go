package extractor

import (
	"errors"
	"strings"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
)

// KindIncorrectPassword may be reported by the extractor in the "kind" field.
const KindIncorrectPassword = "incorrect_password"

// Failure is an extractor failure as reported on stderr or in an error payload.
type Failure struct {
	Message string
	Kind    string
}

var passwordKeywords = []string{"password", "decrypt", "encrypted"}

// Classify maps a failure to IncorrectPassword or ParseFailure. An explicit
// kind wins. Otherwise the message is searched case-insensitively for
// password related keywords; this is a heuristic over free text, not a
// contract with the extractor.
func Classify(f Failure) error {
	cause := errors.New(strings.TrimSpace(f.Message))

	if f.Kind == KindIncorrectPassword {
		return &domain.Error{Kind: domain.KindIncorrectPassword, Message: domain.ErrIncorrectPassword.Message, Err: cause}
	}

	msg := strings.ToLower(f.Message)
	for _, kw := range passwordKeywords {
		if strings.Contains(msg, kw) {
			return &domain.Error{Kind: domain.KindIncorrectPassword, Message: domain.ErrIncorrectPassword.Message, Err: cause}
		}
	}

	return domain.ParseFailure("PDF parsing failed", cause)
}
