package domain

import (
	"strings"
	"testing"
)

func TestFieldErrorsBounds(t *testing.T) {
	testCases := map[string]struct {
		check func(FieldErrors)
		field string
		want  string
	}{
		"project_title_short": {
			check: func(fe FieldErrors) { fe.ProjectTitle("abc") },
			field: "title",
			want:  "The project title must be minimum 4 characters long!",
		},
		"project_title_long": {
			check: func(fe FieldErrors) { fe.ProjectTitle(strings.Repeat("a", 65)) },
			field: "title",
			want:  "The project title must be maximum 64 characters long!",
		},
		"board_title_short": {
			check: func(fe FieldErrors) { fe.BoardTitle("x") },
			field: "title",
			want:  "The board title must be minimum 2 characters long!",
		},
		"lane_title_long": {
			check: func(fe FieldErrors) { fe.LaneTitle(strings.Repeat("a", 33)) },
			field: "title",
			want:  "The lane title must be maximum 32 characters long!",
		},
		"issue_title_short": {
			check: func(fe FieldErrors) { fe.IssueTitle("abc") },
			field: "title",
			want:  "The issue title must be minimum 4 characters long!",
		},
		"username_short": {
			check: func(fe FieldErrors) { fe.Username("abc") },
			field: "username",
			want:  "The username must be minimum 4 characters long!",
		},
		"password_short": {
			check: func(fe FieldErrors) { fe.Password("short") },
			field: "password",
			want:  "The password must be minimum 8 characters long!",
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			fe := FieldErrors{}
			tc.check(fe)
			if !fe.Any() {
				t.Fatal("expected a validation error")
			}
			msgs := fe[tc.field]
			if len(msgs) != 1 || msgs[0] != tc.want {
				t.Fatalf("unexpected messages: %#v", msgs)
			}
		})
	}
}

func TestFieldErrorsAcceptBoundaryLengths(t *testing.T) {
	fe := FieldErrors{}
	fe.ProjectTitle(strings.Repeat("a", MinProjectTitleLength))
	fe.ProjectTitle(strings.Repeat("a", MaxProjectTitleLength))
	fe.BoardTitle(strings.Repeat("a", MinBoardTitleLength))
	fe.BoardTitle(strings.Repeat("a", MaxBoardTitleLength))
	fe.Username(strings.Repeat("a", MinUsernameLength))
	fe.Password(strings.Repeat("a", MinPasswordLength))
	if fe.Any() {
		t.Fatalf("boundary lengths rejected: %#v", fe)
	}
}

func TestFieldErrorsAccumulate(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("title", "first")
	fe.Add("title", "second")
	fe.Add("priority", "third")
	if len(fe) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fe))
	}
	if len(fe["title"]) != 2 {
		t.Fatalf("expected 2 title messages, got %d", len(fe["title"]))
	}
}

func TestRequired(t *testing.T) {
	fe := FieldErrors{}
	fe.Required("username", "Username", "")
	fe.Required("password", "Password", "hunter2")
	if len(fe) != 1 {
		t.Fatalf("expected only the empty field flagged: %#v", fe)
	}
	if fe["username"][0] != "Username must be specified!" {
		t.Fatalf("unexpected message: %q", fe["username"][0])
	}
}
