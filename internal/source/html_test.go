package source

import "testing"

func TestStripHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "grippers ship friday", "grippers ship friday"},
		{"tags removed", "<p>A new <b>gripper</b> design</p>", "A new gripper design"},
		{"entities decoded", "AT&amp;T robots &lt;beta&gt;", "AT&T robots <beta>"},
		{"script dropped", "<p>visible</p><script>var x = 1;</script>", "visible"},
		{"style dropped", "<style>p{color:red}</style><p>visible</p>", "visible"},
		{"whitespace collapsed", "<p>first</p>\n\n<p>second</p>", "first second"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripHTML(tc.in); got != tc.want {
				t.Errorf("stripHTML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
