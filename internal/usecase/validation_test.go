package usecase

import "testing"

func TestValidateOrderID(t *testing.T) {
	valid := []string{
		"0b8f6a5e-2c1d-4f3a-9b7e-5d4c3b2a1f00",
		"00000000-0000-0000-0000-000000000000",
	}
	for _, id := range valid {
		if !ValidateOrderID(id) {
			t.Fatalf("expected id %s to be valid", id)
		}
	}

	invalid := []string{"", "123", "0b8f6a5e2c1d4f3a9b7e5d4c3b2a1f00", "{0b8f6a5e-2c1d-4f3a-9b7e-5d4c3b2a1f00}", "not-a-uuid-at-all-but-long-enough-xx"}
	for _, id := range invalid {
		if ValidateOrderID(id) {
			t.Fatalf("expected id %s to be invalid", id)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("anna@example.com") {
		t.Fatal("expected plain address to be valid")
	}
	for _, email := range []string{"", "anna", "Anna <anna@example.com>", "anna@"} {
		if ValidateEmail(email) {
			t.Fatalf("expected %q to be invalid", email)
		}
	}
}

func TestValidatePartnerID(t *testing.T) {
	for _, id := range []string{"blogger-anna", "tg_channel", "p1"} {
		if !ValidatePartnerID(id) {
			t.Fatalf("expected %s to be valid", id)
		}
	}
	for _, id := range []string{"", "a", "Upper", "-dash", "has space", "слаг"} {
		if ValidatePartnerID(id) {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}
