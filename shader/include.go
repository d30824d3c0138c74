package shader

import (
	"fmt"
	"strings"
)

const includeDirective = "#include"

// ResolveIncludes replaces every line of the form
//
//	#include "name"
//
// with includes[name], recursively. Other lines are kept as is.
func ResolveIncludes(src string, includes map[string]string) (string, error) {
	if !strings.Contains(src, includeDirective) {
		return src, nil
	}
	var sb strings.Builder
	sb.Grow(len(src))
	if err := expand(&sb, src, includes, nil); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func expand(sb *strings.Builder, src string, includes map[string]string, stack []string) error {
	lines := strings.SplitAfter(src, "\n")
	for _, line := range lines {
		name, ok := includeName(line)
		if !ok {
			sb.WriteString(line)
			continue
		}
		for _, s := range stack {
			if s == name {
				return fmt.Errorf("%w: %s -> %s", ErrIncludeCycle, strings.Join(stack, " -> "), name)
			}
		}
		body, ok := includes[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrIncludeNotFound, name)
		}
		if err := expand(sb, body, includes, append(stack, name)); err != nil {
			return err
		}
		if !strings.HasSuffix(body, "\n") && strings.HasSuffix(line, "\n") {
			sb.WriteByte('\n')
		}
	}
	return nil
}

// includeName parses `#include "name"`.
func includeName(line string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), includeDirective)
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", false
	}
	return rest[1 : len(rest)-1], true
}
