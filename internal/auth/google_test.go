package auth

import (
	"testing"

	"github.com/anisurarzu/goBeyondServer/internal/user"
)

func TestDecideExternalLogin(t *testing.T) {
	byGoogleID := &user.User{ID: 1, Email: "linked@example.com"}
	byEmail := &user.User{ID: 2, Email: "match@example.com"}

	profile := ExternalProfile{
		ID:          "g-1",
		DisplayName: "Ada Lovelace",
		Emails:      []string{"match@example.com"},
		Photos:      []string{"https://example.com/p.png"},
	}

	tests := []struct {
		name       string
		byGoogleID *user.User
		byEmail    *user.User
		wantType   externalActionType
	}{
		{name: "already linked", byGoogleID: byGoogleID, byEmail: nil, wantType: actionAccept},
		{name: "linked wins over email match", byGoogleID: byGoogleID, byEmail: byEmail, wantType: actionAccept},
		{name: "email match links", byGoogleID: nil, byEmail: byEmail, wantType: actionLink},
		{name: "no match creates", byGoogleID: nil, byEmail: nil, wantType: actionCreate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action := decideExternalLogin(tt.byGoogleID, tt.byEmail, profile)

			if action.typ != tt.wantType {
				t.Fatalf("typ = %d, want %d", action.typ, tt.wantType)
			}

			switch tt.wantType {
			case actionAccept:
				if action.user != byGoogleID {
					t.Error("accept should carry the linked user")
				}
			case actionLink:
				if action.user != byEmail {
					t.Error("link should carry the email-matched user")
				}
			case actionCreate:
				if action.new.Email != "match@example.com" {
					t.Errorf("new.Email = %q", action.new.Email)
				}
				if action.new.PasswordHash != nil {
					t.Error("new external account must have no password hash")
				}
				if action.new.GoogleID == nil || *action.new.GoogleID != "g-1" {
					t.Errorf("new.GoogleID = %v, want g-1", action.new.GoogleID)
				}
			}
		})
	}
}

func TestSplitDisplayName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFirst string
		wantLast  string
	}{
		{name: "empty", input: "", wantFirst: "", wantLast: ""},
		{name: "spaces only", input: "   ", wantFirst: "", wantLast: ""},
		{name: "single name", input: "Ada", wantFirst: "Ada", wantLast: ""},
		{name: "two names", input: "Ada Lovelace", wantFirst: "Ada", wantLast: "Lovelace"},
		{name: "three names keep rest together", input: "Ada Lovelace King", wantFirst: "Ada", wantLast: "Lovelace King"},
		{name: "surrounding whitespace", input: "  Ada Lovelace  ", wantFirst: "Ada", wantLast: "Lovelace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := splitDisplayName(tt.input)

			got := ""
			if first != nil {
				got = *first
			}
			if got != tt.wantFirst {
				t.Errorf("first = %q, want %q", got, tt.wantFirst)
			}

			got = ""
			if last != nil {
				got = *last
			}
			if got != tt.wantLast {
				t.Errorf("last = %q, want %q", got, tt.wantLast)
			}
		})
	}
}

func TestExternalProfileEmail(t *testing.T) {
	if got := (ExternalProfile{}).Email(); got != "" {
		t.Errorf("Email() = %q, want empty", got)
	}

	p := ExternalProfile{Emails: []string{" Ada@Example.COM ", "second@example.com"}}
	if got := p.Email(); got != "ada@example.com" {
		t.Errorf("Email() = %q, want normalized primary", got)
	}
}

func TestExternalProfilePhoto(t *testing.T) {
	if got := (ExternalProfile{}).Photo(); got != nil {
		t.Errorf("Photo() = %v, want nil", *got)
	}
	if got := (ExternalProfile{Photos: []string{""}}).Photo(); got != nil {
		t.Errorf("Photo() = %v, want nil for empty entry", *got)
	}

	p := ExternalProfile{Photos: []string{"https://example.com/a.png"}}
	if got := p.Photo(); got == nil || *got != "https://example.com/a.png" {
		t.Errorf("Photo() = %v, want primary photo", got)
	}
}
