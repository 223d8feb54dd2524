package domain

import "fmt"

// Title and credential length bounds, enforced in the command layer before
// any entity is touched.
const (
	MinProjectTitleLength = 4
	MaxProjectTitleLength = 64
	MinBoardTitleLength   = 2
	MaxBoardTitleLength   = 32
	MinLaneTitleLength    = 2
	MaxLaneTitleLength    = 32
	MinIssueTitleLength   = 4
	MaxIssueTitleLength   = 32
	MinUsernameLength     = 4
	MaxUsernameLength     = 24
	MinPasswordLength     = 8
	MaxPasswordLength     = 255
)

// FieldErrors accumulates validation messages per request field.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

func (fe FieldErrors) Any() bool { return len(fe) > 0 }

func (fe FieldErrors) checkLength(field, label, value string, min, max int) {
	if len(value) < min {
		fe.Add(field, fmt.Sprintf("The %s must be minimum %d characters long!", label, min))
	}
	if len(value) > max {
		fe.Add(field, fmt.Sprintf("The %s must be maximum %d characters long!", label, max))
	}
}

func (fe FieldErrors) ProjectTitle(title string) {
	fe.checkLength("title", "project title", title, MinProjectTitleLength, MaxProjectTitleLength)
}

func (fe FieldErrors) BoardTitle(title string) {
	fe.checkLength("title", "board title", title, MinBoardTitleLength, MaxBoardTitleLength)
}

func (fe FieldErrors) LaneTitle(title string) {
	fe.checkLength("title", "lane title", title, MinLaneTitleLength, MaxLaneTitleLength)
}

func (fe FieldErrors) IssueTitle(title string) {
	fe.checkLength("title", "issue title", title, MinIssueTitleLength, MaxIssueTitleLength)
}

func (fe FieldErrors) Username(username string) {
	fe.checkLength("username", "username", username, MinUsernameLength, MaxUsernameLength)
}

func (fe FieldErrors) Password(password string) {
	fe.checkLength("password", "password", password, MinPasswordLength, MaxPasswordLength)
}

func (fe FieldErrors) Required(field, label, value string) {
	if value == "" {
		fe.Add(field, fmt.Sprintf("%s must be specified!", label))
	}
}
