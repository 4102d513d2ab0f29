package session

import "testing"

func TestLooksExpired(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty body", "", true},
		{"near empty body", "hi", true},
		{"whitespace only", "   \n\t  ", true},
		{
			"long authenticated text",
			"Welcome back, here are your 12 available jobs today across all regions...",
			false,
		},
		{
			"login phrase",
			"Your session has ended. Please use the login form below to continue with your account.",
			true,
		},
		{
			"sign in phrase uppercase",
			"SIGN IN to your account to view your scheduled appointments and outstanding invoices.",
			true,
		},
		{
			"session expired phrase",
			"Session expired. For your security we have signed you out after a period of inactivity here.",
			true,
		},
		{
			"authentication required phrase",
			"Authentication required before accessing this resource. Contact support if this persists.",
			true,
		},
		{
			"long marketing text without triggers",
			"Browse hundreds of home services professionals in your area. Compare quotes, read reviews and book with confidence.",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksExpired(tt.text); got != tt.want {
				t.Errorf("LooksExpired(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
