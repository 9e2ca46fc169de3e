package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEval(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"eval", "5", "+", "3", "+", "2", "="}, "10\n= 10\n"},
		{[]string{"eval", "200-10%"}, "200-10%\n180\n"},
		{[]string{"eval", "--", "5", "+/-"}, "-5\n-5\n"},
		{[]string{"eval", "12000000000"}, "12000000000\n1.2e+10\n"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args[1:], " "), func(t *testing.T) {
			got, err := execute(t, "", tt.args...)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalUnknownFormat(t *testing.T) {
	if _, err := execute(t, "", "eval", "-f", "xml", "1"); err == nil {
		t.Error("eval -f xml succeeded")
	}
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tip.keys")
	if err := os.WriteFile(path, []byte("# tip\n80 + 15 % =\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := execute(t, "", "run", path)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "92\n= 92\n" {
		t.Errorf("output = %q", got)
	}

	got, err = execute(t, "", "run", "-f", "json", path)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(got, `"result": "= 92"`) {
		t.Errorf("json output = %s", got)
	}
}

func TestRunStdin(t *testing.T) {
	got, err := execute(t, "9 / 0 =", "run", "-")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "0\n= 0\n" {
		t.Errorf("output = %q", got)
	}

	if _, err := execute(t, "# nothing", "run", "-"); err == nil {
		t.Error("run on an empty script succeeded")
	}
}

func TestKeysLineMode(t *testing.T) {
	got, err := execute(t, "5 +\n3\n+ 2 Enter\nC\n", "keys")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := "5\n8\n= 10\n0\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLayout(t *testing.T) {
	got, err := execute(t, "", "layout")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("layout has %d lines, want 5:\n%s", len(lines), got)
	}
	if lines[0] != "(  C)[  <][+/-]  [  /]" {
		t.Errorf("first row = %q", lines[0])
	}
	if lines[4] != "[  %][  0][  .]  (  =)" {
		t.Errorf("last row = %q", lines[4])
	}
}
