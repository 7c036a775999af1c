package questionnaire

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/myrtlewealth/blueprint/internal/model"
)

// MaxTextLength bounds free-text answers.
const MaxTextLength = 2000

// ValidationError lists every problem found in a submission.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "Validation error: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Validate checks answers against the questionnaire: required questions
// present, single-choice answers given as one known code, multi-choice
// answers given as a non-empty list of known codes.
func Validate(answers model.AnswerSet) error {
	verr := &ValidationError{}

	var missing []string
	for _, q := range catalog {
		if q.Required && answers.Get(q.ID).IsZero() {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		verr.add("Missing answers for %s", strings.Join(missing, ", "))
	}

	for _, q := range catalog {
		a := answers.Get(q.ID)
		if a.IsZero() {
			continue
		}
		switch q.Kind {
		case SingleChoice:
			if a.IsMulti() || !q.HasCode(a.Code()) {
				verr.add("Invalid answer format for %s. Must be one of %s", q.ID, strings.Join(q.Codes(), ", "))
			}
		case MultiChoice:
			codes := a.Codes()
			if !a.IsMulti() || len(codes) == 0 {
				verr.add("%s must be an array with at least one selection", q.ID)
				continue
			}
			for _, c := range codes {
				if !q.HasCode(c) {
					verr.add("Invalid selection %q for %s", c, q.ID)
				}
			}
		case FreeText:
			if a.IsMulti() {
				verr.add("%s must be text", q.ID)
			} else if len(a.Code()) > MaxTextLength {
				verr.add("%s must be at most %d characters", q.ID, MaxTextLength)
			}
		}
	}

	if adv := answers.Get(AdvisorQuestion); !adv.IsZero() {
		if adv.IsMulti() {
			verr.add("%s must be text", AdvisorQuestion)
		} else if len(adv.Code()) > MaxTextLength {
			verr.add("%s must be at most %d characters", AdvisorQuestion, MaxTextLength)
		}
	}

	return verr.orNil()
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// validEmail accepts a bare mailbox only. Display names and angle-bracket
// forms are rejected since the value is used as the delivery address.
func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	_, domain, _ := strings.Cut(addr.Address, "@")
	return strings.Contains(domain, ".")
}

// ValidateClient checks the submitter's personal details.
func ValidateClient(c model.Client) error {
	verr := &ValidationError{}

	if strings.TrimSpace(c.FullName) == "" {
		verr.add("fullName is required")
	}
	if !validEmail(c.Email) {
		verr.add("email must be a valid email address")
	}
	if !phonePattern.MatchString(normalizePhone(c.Phone)) {
		verr.add("phone must be a valid phone number")
	}
	if strings.TrimSpace(c.Gender) == "" {
		verr.add("gender is required")
	}
	if dob, err := time.Parse(time.DateOnly, c.DateOfBirth); err != nil {
		verr.add("dateOfBirth must be a date in YYYY-MM-DD format")
	} else if dob.After(time.Now()) {
		verr.add("dateOfBirth must be in the past")
	}
	if strings.TrimSpace(c.Occupation) == "" {
		verr.add("occupation is required")
	}
	if strings.TrimSpace(c.Address) == "" {
		verr.add("address is required")
	}
	if strings.TrimSpace(c.MaritalStatus) == "" {
		verr.add("maritalStatus is required")
	}
	if c.DependantsCount < 0 {
		verr.add("dependantsCount must not be negative")
	}

	return verr.orNil()
}

func normalizePhone(p string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(p))
}
