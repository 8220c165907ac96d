package utils

import "testing"

func TestParseDecimal_AcceptsFormattedStrings(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"20000", "20000"},
		{"50,000", "50000"},
		{"Rs. 1,234.50", "1234.5"},
		{"INR -2,000", "-2000"},
		{"  ₹ 900  ", "900"},
	}
	for _, tc := range cases {
		d, err := ParseDecimal(tc.in)
		if err != nil {
			t.Fatalf("ParseDecimal(%q) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("ParseDecimal(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
	if _, err := ParseDecimal("  "); err == nil {
		t.Fatalf("expected error for blank input")
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	if err := ValidatePhoneNumber("9820012345", "IN"); err != nil {
		t.Fatalf("valid mobile rejected: %v", err)
	}
	if err := ValidatePhoneNumber("12345", "IN"); err == nil {
		t.Fatalf("short number accepted")
	}
}

func TestBuildObjectAccessURL(t *testing.T) {
	key := "userProfiles/u1/profile image.png"
	cases := []struct {
		base string
		want string
	}{
		{"", "https://storage.googleapis.com/office-bucket/userProfiles/u1/profile%20image.png"},
		{"https://cdn.example.com/", "https://cdn.example.com/userProfiles/u1/profile%20image.png"},
		{"https://img.example.com/o?key={objectKey}", "https://img.example.com/o?key=userProfiles%2Fu1%2Fprofile%20image.png"},
	}
	for _, tc := range cases {
		if got := BuildObjectAccessURL(tc.base, "office-bucket", key); got != tc.want {
			t.Fatalf("BuildObjectAccessURL(%q) = %s, want %s", tc.base, got, tc.want)
		}
	}
}

func TestJwtRoundTrip(t *testing.T) {
	token, err := JwtGenerate("uid-1", "a@example.com", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "uid-1" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := JwtValidate(token + "x"); err == nil {
		t.Fatalf("tampered token accepted")
	}
}
