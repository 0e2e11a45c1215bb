package services

import (
	"strings"
	"testing"
)

func TestRenderMailSubmitted(t *testing.T) {
	subject, body, err := renderMail(mailJob{
		kind:   mailPaymentSubmitted,
		to:     "ali@example.com",
		name:   "Ali Khan",
		amount: 2500,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(subject, "Waiting for Admin Approval") {
		t.Errorf("unexpected subject %q", subject)
	}
	if !strings.Contains(body, "Ali Khan") || !strings.Contains(body, "2500") {
		t.Errorf("body missing name or amount: %q", body)
	}
}

func TestRenderMailAcceptedMentionsCredits(t *testing.T) {
	_, body, err := renderMail(mailJob{
		kind:   mailPaymentAccepted,
		to:     "ali@example.com",
		name:   "Ali Khan",
		amount: 5000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body, "3 credit hours") {
		t.Errorf("accepted email should mention the credit grant: %q", body)
	}
}

func TestRenderMailRejectedNotes(t *testing.T) {
	_, body, err := renderMail(mailJob{
		kind:   mailPaymentRejected,
		to:     "ali@example.com",
		name:   "Ali Khan",
		amount: 2500,
		notes:  "Screenshot unreadable",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body, "Screenshot unreadable") {
		t.Errorf("rejection notes missing: %q", body)
	}

	_, body, err = renderMail(mailJob{kind: mailPaymentRejected, to: "ali@example.com", name: "Ali", amount: 2500})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(body, "Admin notes") {
		t.Errorf("notes block should be omitted when empty: %q", body)
	}
}

func TestRenderMailNameFallsBackToAddress(t *testing.T) {
	_, body, err := renderMail(mailJob{
		kind:   mailPaymentSubmitted,
		to:     "noname@example.com",
		amount: 2500,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body, "noname@example.com") {
		t.Errorf("expected fallback to address: %q", body)
	}
}

func TestRenderMailUnknownKind(t *testing.T) {
	if _, _, err := renderMail(mailJob{kind: "nonsense", to: "a@b.c"}); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
