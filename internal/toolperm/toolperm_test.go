package toolperm

import (
	"errors"
	"reflect"
	"testing"

	pkerrors "github.com/thoreinstein/pluginkit/internal/errors"
)

func TestPermission_String(t *testing.T) {
	tests := []struct {
		name string
		perm Permission
		want string
	}{
		{"simple tool", Permission{Name: "Read"}, "Read"},
		{"tool with scope", Permission{Name: "Bash", Scope: "git:*"}, "Bash(git:*)"},
		{"scope with space", Permission{Name: "Bash", Scope: "git add:*"}, "Bash(git add:*)"},
		{"mcp tool", Permission{Name: "mcp__github__search"}, "mcp__github__search"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.perm.String(); got != tt.want {
				t.Errorf("Permission.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Permission
		wantErr bool
	}{
		{
			name:  "empty string",
			input: "",
			want:  []Permission{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  []Permission{},
		},
		{
			name:  "space separated",
			input: "Read Write Edit",
			want:  []Permission{{Name: "Read"}, {Name: "Write"}, {Name: "Edit"}},
		},
		{
			name:  "comma separated",
			input: "Read, Grep,Glob",
			want:  []Permission{{Name: "Read"}, {Name: "Grep"}, {Name: "Glob"}},
		},
		{
			name:  "scope containing space and comma",
			input: "Bash(git add:*), Bash(npm run test, lint), Read",
			want: []Permission{
				{Name: "Bash", Scope: "git add:*"},
				{Name: "Bash", Scope: "npm run test, lint"},
				{Name: "Read"},
			},
		},
		{
			name:  "mcp tools",
			input: "mcp__github__create_issue mcp__linear",
			want:  []Permission{{Name: "mcp__github__create_issue"}, {Name: "mcp__linear"}},
		},
		{
			name:  "tabs and newlines",
			input: "Read\t\tWrite\nEdit",
			want:  []Permission{{Name: "Read"}, {Name: "Write"}, {Name: "Edit"}},
		},
		{
			name:  "number in tool name",
			input: "Tool2",
			want:  []Permission{{Name: "Tool2"}},
		},
		{name: "unclosed paren", input: "Bash(", wantErr: true},
		{name: "unclosed scope", input: "Bash(git:* Read", wantErr: true},
		{name: "no tool name", input: "(scope)", wantErr: true},
		{name: "invalid character", input: "Tool@Name", wantErr: true},
		{name: "hyphen", input: "Tool-Name", wantErr: true},
		{name: "nested parens", input: "Bash((git:*))", wantErr: true},
		{name: "empty parens", input: "Bash()", wantErr: true},
		{name: "lowercase", input: "read", wantErr: true},
		{name: "leading digit", input: "2Tool", wantErr: true},
		{name: "bad mcp reference", input: "mcp__bad name!", wantErr: true},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.input, got)
				}
				var permErr *ToolPermError
				if !errors.As(err, &permErr) {
					t.Errorf("Parse(%q) error type = %T, want *ToolPermError", tt.input, err)
				}
				if !errors.Is(err, pkerrors.ErrInvalidToolSyntax) {
					t.Errorf("Parse(%q) error should match ErrInvalidToolSyntax", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParser_ParseList(t *testing.T) {
	p := New()

	got, err := p.ParseList([]string{"Read", " Bash(git add:*) ", "mcp__github"})
	if err != nil {
		t.Fatalf("ParseList() error: %v", err)
	}
	want := []Permission{{Name: "Read"}, {Name: "Bash", Scope: "git add:*"}, {Name: "mcp__github"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseList() = %+v, want %+v", got, want)
	}

	if _, err := p.ParseList([]string{"Read", ""}); err == nil {
		t.Error("ParseList() should reject an empty entry")
	}
}

func TestParser_ParseSingle_Error(t *testing.T) {
	_, err := New().ParseSingle("read")
	if err == nil {
		t.Fatal("expected error")
	}
	want := `invalid tool permission "read": `
	if got := err.Error(); len(got) < len(want) || got[:len(want)] != want {
		t.Errorf("Error() = %q, want prefix %q", got, want)
	}

	_, err = New().ParseSingle("  ")
	if err == nil || err.Error() != "tool permission error: empty tool permission" {
		t.Errorf("ParseSingle(blank) error = %v", err)
	}
}

func TestParser_Format(t *testing.T) {
	p := New()

	if got := p.Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}

	input := "Read Bash(git add:*)  Write"
	perms, err := p.Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	formatted := p.Format(perms)
	if formatted != "Read, Bash(git add:*), Write" {
		t.Errorf("Format() = %q", formatted)
	}

	again, err := p.Parse(formatted)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(again, perms) {
		t.Errorf("Parse(Format()) = %+v, want %+v", again, perms)
	}
}
