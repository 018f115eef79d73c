// Package validation checks user and post input. Every function reports
// all violated rules, in a stable order, as human readable messages; an
// empty result means the input is valid.
package validation

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLength = 5
	MinNameLength     = 2
	MaxNameLength     = 30
	MinTitleLength    = 5
	MaxTitleLength    = 50
	MinContentLength  = 5
	MaxContentLength  = 5000
	MaxStatusLength   = 150
)

const (
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Invalid Email"
	MsgPasswordRequired = "Password is required"
	MsgPasswordShort    = "Password too short!"
	MsgNameRequired     = "Name is required"
	MsgNameShort        = "Name must be at least 2 characters"
	MsgNameLong         = "Name cannot exceed 30 characters"
	MsgTitleRequired    = "Title is required"
	MsgTitleShort       = "Title must be at least 5 characters"
	MsgTitleLong        = "Title cannot exceed 50 characters"
	MsgContentRequired  = "Content is required"
	MsgContentShort     = "Content must be at least 5 characters"
	MsgContentLong      = "Content cannot exceed 5000 characters"
	MsgImageRequired    = "Image is required"
	MsgStatusLong       = "Status cannot exceed 150 characters"
)

var validate = validator.New()

type rule struct {
	tag string
	msg string
}

func minLen(n int) string { return "min=" + strconv.Itoa(n) }
func maxLen(n int) string { return "max=" + strconv.Itoa(n) }

// check runs rules against value. A failed "required" rule stops the
// remaining length rules for the same field.
func check(value string, rules ...rule) []string {
	var errs []string
	for _, r := range rules {
		if err := validate.Var(value, r.tag); err != nil {
			errs = append(errs, r.msg)
			if r.tag == "required" {
				break
			}
		}
	}
	return errs
}

// Email expects an already trimmed address.
func Email(email string) []string {
	return check(email,
		rule{"required", MsgEmailRequired},
		rule{"email", MsgEmailInvalid},
	)
}

// Password must contain something other than spaces, but its length is
// measured untrimmed.
func Password(password string) []string {
	if errs := check(strings.TrimSpace(password), rule{"required", MsgPasswordRequired}); errs != nil {
		return errs
	}
	return check(password, rule{minLen(MinPasswordLength), MsgPasswordShort})
}

func Name(name string) []string {
	return check(strings.TrimSpace(name),
		rule{"required", MsgNameRequired},
		rule{minLen(MinNameLength), MsgNameShort},
		rule{maxLen(MaxNameLength), MsgNameLong},
	)
}

// PostInput validates title and content. The image reference is checked
// only when requireImage is set, which is the case on create.
func PostInput(title, content string, imageURL *string, requireImage bool) []string {
	var errs []string
	errs = append(errs, check(strings.TrimSpace(title),
		rule{"required", MsgTitleRequired},
		rule{minLen(MinTitleLength), MsgTitleShort},
		rule{maxLen(MaxTitleLength), MsgTitleLong},
	)...)
	errs = append(errs, check(strings.TrimSpace(content),
		rule{"required", MsgContentRequired},
		rule{minLen(MinContentLength), MsgContentShort},
		rule{maxLen(MaxContentLength), MsgContentLong},
	)...)
	if requireImage && (imageURL == nil || strings.TrimSpace(*imageURL) == "") {
		errs = append(errs, MsgImageRequired)
	}
	return errs
}

// Status accepts an empty value, which callers replace with the default.
func Status(status string) []string {
	return check(strings.TrimSpace(status), rule{maxLen(MaxStatusLength), MsgStatusLong})
}
