package utils

import "testing"

func TestSanitizeHeaderFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":         "report.pdf",
		"  spaced.txt ":      "spaced.txt",
		"evil\"\r\nname.txt": "evilname.txt",
		"back\\slash":        "backslash",
		"":                   "download",
		"\"\"":               "download",
	}
	for in, want := range cases {
		if got := SanitizeHeaderFilename(in); got != want {
			t.Errorf("SanitizeHeaderFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestContentDisposition(t *testing.T) {
	if got := ContentDisposition("a.txt"); got != `attachment; filename="a.txt"` {
		t.Fatalf("unexpected header %q", got)
	}
	got := ContentDisposition("résumé.pdf")
	if got == "" || got == `attachment; filename="résumé.pdf"` {
		t.Fatalf("non-ASCII name must be encoded, got %q", got)
	}
}
