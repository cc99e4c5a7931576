package normalize

import "testing"

func TestDomain(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "https://myaccount.blob.core.windows.net/container", want: "windows.net"},
		{in: "api.example.com", want: "example.com"},
		{in: "https://www.example.co.uk:8443/path", want: "example.co.uk"},
		{in: "tcp:myserver.database.windows.net,1433", want: "windows.net"},
		{in: "10.0.0.4", want: ""},
		{in: "localhost", want: ""},
		{in: "", want: ""},
		{in: "@pipeline().globalParameters.apiUrl", want: ""},
		{in: "[parameters('serverName')]", want: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			if got := Domain(tc.in); got != tc.want {
				t.Fatalf("Domain(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsExpression(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"@concat('a', 'b')":            true,
		"[parameters('factoryName')]":  true,
		"[[literal]":                   false,
		"plain value":                  false,
		"  @pipeline().parameters.x  ": true,
	}
	for in, want := range cases {
		if got := IsExpression(in); got != want {
			t.Fatalf("IsExpression(%q) = %v, want %v", in, got, want)
		}
	}
}
