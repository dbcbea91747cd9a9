package normalize

import "testing"

func TestEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  John.DOE@Example.COM  ", "john.doe@example.com"},
		{"alice@example.com", "alice@example.com"},
		{"\tBOB@EXAMPLE.COM\n", "bob@example.com"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Email(tc.in); got != tc.want {
			t.Errorf("Email(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
