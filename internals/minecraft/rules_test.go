package minecraft

import "testing"

func TestRule_matches(t *testing.T) {
	type args struct {
		os   string
		arch string
	}
	tests := []struct {
		name string
		rule Rule
		args args
		want bool
	}{
		{
			name: "empty os",
			rule: Rule{Action: "allow"},
			args: args{os: "linux", arch: "x64"},
			want: true,
		},
		{
			name: "same os",
			rule: Rule{Action: "disallow", OS: OS{Name: "osx"}},
			args: args{os: "osx", arch: "x64"},
			want: true,
		},
		{
			name: "other os",
			rule: Rule{Action: "allow", OS: OS{Name: "windows"}},
			args: args{os: "linux", arch: "x64"},
			want: false,
		},
		{
			name: "arch",
			rule: Rule{Action: "allow", OS: OS{Arch: "x86"}},
			args: args{os: "windows", arch: "x86"},
			want: true,
		},
		{
			name: "other arch",
			rule: Rule{Action: "allow", OS: OS{Name: "windows", Arch: "x86"}},
			args: args{os: "windows", arch: "x64"},
			want: false,
		},
		{
			name: "features never match",
			rule: Rule{Action: "allow", Features: map[string]bool{"is_demo_user": true}},
			args: args{os: "linux", arch: "x64"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.matches(tt.args.os, tt.args.arch); got != tt.want {
				t.Errorf("Rule.matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllowedFor(t *testing.T) {
	allow := func(os string) Rule { return Rule{Action: "allow", OS: OS{Name: os}} }
	disallow := func(os string) Rule { return Rule{Action: "disallow", OS: OS{Name: os}} }

	tests := []struct {
		name  string
		rules []Rule
		os    string
		want  bool
	}{
		{"no rules", nil, "linux", true},
		{"allow all", []Rule{allow("")}, "linux", true},
		{"allow other os only", []Rule{allow("osx")}, "linux", false},
		{"allow then disallow current", []Rule{allow(""), disallow("linux")}, "linux", false},
		{"allow then disallow other", []Rule{allow(""), disallow("osx")}, "linux", true},
		{"disallow all then allow current", []Rule{disallow(""), allow("windows")}, "windows", true},
		{"disallow all then allow other", []Rule{disallow(""), allow("windows")}, "linux", false},
		{"last match wins", []Rule{allow("linux"), disallow("linux"), allow("linux")}, "linux", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := allowedFor(tt.rules, tt.os, "x64"); got != tt.want {
				t.Errorf("allowedFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOSName(t *testing.T) {
	tests := map[string]string{
		"windows": "windows",
		"darwin":  "osx",
		"linux":   "linux",
		"freebsd": "linux",
	}
	for goos, want := range tests {
		if got := osName(goos); got != want {
			t.Errorf("osName(%q) = %q, want %q", goos, got, want)
		}
	}
}
