package booking

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigitRe = regexp.MustCompile(`[^0-9]`)
)

const contactDigits = 10

// ValidationError collects field-level reasons a booking request was
// rejected before any store access.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, seen := e.Fields[field]; !seen {
		e.Fields[field] = reason
	}
}

func (e *ValidationError) hasErrors() bool {
	return len(e.Fields) > 0
}

// validateIdentity performs the structural checks of the VALIDATING
// state: required requester fields, email shape, contact digit length,
// and delegate identity when booking on behalf of someone else.
func validateIdentity(req Request, vErr *ValidationError) {
	if strings.TrimSpace(req.BookerName) == "" {
		vErr.add("bookerName", "name is required")
	}
	if strings.TrimSpace(req.Designation) == "" {
		vErr.add("designation", "designation is required")
	}
	if strings.TrimSpace(req.Department) == "" {
		vErr.add("department", "department is required")
	}

	if strings.TrimSpace(req.Contact) == "" {
		vErr.add("contact", "contact number is required")
	} else if len(nonDigitRe.ReplaceAllString(req.Contact, "")) != contactDigits {
		vErr.add("contact", fmt.Sprintf("contact number must have %d digits", contactDigits))
	}

	if strings.TrimSpace(req.Email) == "" {
		vErr.add("email", "email is required")
	} else if !emailRe.MatchString(req.Email) {
		vErr.add("email", "email address is malformed")
	}

	if req.ForDelegate {
		if strings.TrimSpace(req.DelegateName) == "" {
			vErr.add("delegateName", "delegate name is required")
		}
		if strings.TrimSpace(req.DelegateEmail) == "" {
			vErr.add("delegateEmail", "delegate email is required")
		} else if !emailRe.MatchString(req.DelegateEmail) {
			vErr.add("delegateEmail", "delegate email address is malformed")
		}
	}
}
