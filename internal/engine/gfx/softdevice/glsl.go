package softdevice

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Faultbox/pickalpha/internal/engine/gfx"
)

// declaration is a global in/out/uniform declared by a shader.
type declaration struct {
	qualifier string
	typ       string
	name      string
}

var declPattern = regexp.MustCompile(
	`^\s*(?:layout\s*\([^)]*\)\s*)?(in|out|uniform|attribute|varying)\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*;`)

var mainPattern = regexp.MustCompile(`\bvoid\s+main\s*\(\s*(?:void)?\s*\)`)

// checkSource performs the structural checks a GLSL front end would reject
// first. It does not type-check expressions; semantics come from the Go
// program functions registered on the device.
func checkSource(stage gfx.Stage, source string) ([]declaration, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("0:1(1): error: empty %s shader source", stage)
	}

	var decls []declaration
	depth := 0
	for i, line := range strings.Split(source, "\n") {
		lineNo := i + 1
		code := line
		if idx := strings.Index(code, "//"); idx >= 0 {
			code = code[:idx]
		}
		trimmed := strings.TrimSpace(code)

		if strings.HasPrefix(trimmed, "#error") {
			msg := strings.TrimSpace(strings.TrimPrefix(trimmed, "#error"))
			return nil, fmt.Errorf("0:%d(1): error: #error %s", lineNo, msg)
		}

		if depth == 0 {
			if m := declPattern.FindStringSubmatch(code); m != nil {
				q := m[1]
				switch q {
				case "attribute":
					q = "in"
				case "varying":
					if stage == gfx.StageVertex {
						q = "out"
					} else {
						q = "in"
					}
				}
				decls = append(decls, declaration{qualifier: q, typ: m[2], name: m[3]})
			}
		}

		for _, r := range code {
			switch r {
			case '{':
				depth++
			case '}':
				depth--
				if depth < 0 {
					return nil, fmt.Errorf("0:%d(1): error: syntax error, unexpected '}'", lineNo)
				}
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("0:%d(1): error: syntax error, unexpected end of file", strings.Count(source, "\n")+1)
	}
	if !mainPattern.MatchString(source) {
		return nil, fmt.Errorf("0:1(1): error: %s shader lacks `main'", stage)
	}
	return decls, nil
}
