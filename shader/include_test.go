package shader

import (
	"errors"
	"testing"
)

func TestResolveIncludes(t *testing.T) {
	includes := map[string]string{
		"common": "uniform mat4 mvp;\n",
		"light":  "#include \"common\"\nuniform vec3 light;",
		"a":      "#include \"b\"\n",
		"b":      "#include \"a\"\n",
	}
	tests := []struct {
		name    string
		src     string
		want    string
		wantErr error
	}{
		{"none", "void main() {}\n", "void main() {}\n", nil},
		{"single", "#include \"common\"\nvoid main() {}\n", "uniform mat4 mvp;\nvoid main() {}\n", nil},
		{"nested", "  #include \"light\"\nvoid main() {}", "uniform mat4 mvp;\nuniform vec3 light;\nvoid main() {}", nil},
		{"missing", "#include \"nope\"\n", "", ErrIncludeNotFound},
		{"cycle", "#include \"a\"\n", "", ErrIncludeCycle},
		{"not a directive", "// #include <common>\n", "// #include <common>\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveIncludes(tt.src, includes)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
