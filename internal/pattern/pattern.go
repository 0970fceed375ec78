package pattern

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParamType enumerates the value types a placeholder can declare.
type ParamType string

const (
	TypeString    ParamType = "string"
	TypeInt       ParamType = "int"
	TypeSnowflake ParamType = "snowflake"
	TypeEnum      ParamType = "enum"
)

// nameRe constrains parameter names to word characters; they become map keys.
var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParamInfo describes one placeholder of a compiled template, in source order.
type ParamInfo struct {
	Name     string
	Type     ParamType
	Optional bool
	Enum     []string
}

// Pattern is a compiled template: the anchored matcher plus ordered
// parameter metadata. A Pattern is immutable and safe for concurrent use;
// matching allocates nothing beyond the extracted value map.
type Pattern struct {
	Source string
	Params []ParamInfo

	re *regexp.Regexp
}

// Compile translates a template into a Pattern. It fails on an unterminated
// or empty placeholder, an unknown parameter type, an empty enum value list,
// or two placeholders sharing one name.
func Compile(template string) (*Pattern, error) {
	var expr strings.Builder
	expr.WriteString("^")

	var params []ParamInfo
	seen := make(map[string]struct{})
	var lit strings.Builder

	i := 0
	for i < len(template) {
		c := template[i]
		switch c {
		case '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("pattern %q: unterminated placeholder", template)
			}
			body := template[i+1 : i+end]
			if strings.ContainsRune(body, '{') {
				return nil, fmt.Errorf("pattern %q: nested '{' in placeholder", template)
			}
			i += end + 1

			info, err := parsePlaceholder(body)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", template, err)
			}
			if _, dup := seen[info.Name]; dup {
				return nil, fmt.Errorf("pattern %q: duplicate parameter %q", template, info.Name)
			}
			seen[info.Name] = struct{}{}

			group := groupFor(info)
			if info.Optional {
				// The preceding literal run (usually the separator) travels
				// inside the optional group, and the capture itself may be
				// empty: "item_42", "item_42_" and "item_42_x" all match
				// "item_{id:int}_{note?}".
				expr.WriteString("(?:")
				expr.WriteString(regexp.QuoteMeta(lit.String()))
				expr.WriteString("(")
				expr.WriteString(group)
				expr.WriteString(")?)?")
			} else {
				expr.WriteString(regexp.QuoteMeta(lit.String()))
				expr.WriteString("(")
				expr.WriteString(group)
				expr.WriteString(")")
			}
			lit.Reset()
			params = append(params, info)

		case '}':
			return nil, fmt.Errorf("pattern %q: unexpected '}' outside placeholder", template)

		default:
			lit.WriteByte(c)
			i++
		}
	}
	expr.WriteString(regexp.QuoteMeta(lit.String()))
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", template, err)
	}

	return &Pattern{Source: template, Params: params, re: re}, nil
}

// MustCompile is Compile for patterns known good at authoring time.
func MustCompile(template string) *Pattern {
	p, err := Compile(template)
	if err != nil {
		panic(err)
	}
	return p
}

// parsePlaceholder splits one brace body into its parameter description.
func parsePlaceholder(body string) (ParamInfo, error) {
	info := ParamInfo{Type: TypeString}

	if strings.HasSuffix(body, "?") {
		info.Optional = true
		body = strings.TrimSuffix(body, "?")
	}

	name, typ := body, ""
	if idx := strings.IndexByte(body, ':'); idx >= 0 {
		name, typ = body[:idx], body[idx+1:]
	}
	if !nameRe.MatchString(name) {
		return info, fmt.Errorf("invalid parameter name %q", name)
	}
	info.Name = name

	switch {
	case typ == "" || typ == "string":
		info.Type = TypeString
	case typ == "int":
		info.Type = TypeInt
	case typ == "snowflake":
		info.Type = TypeSnowflake
	case strings.HasPrefix(typ, "enum(") && strings.HasSuffix(typ, ")"):
		info.Type = TypeEnum
		raw := typ[len("enum(") : len(typ)-1]
		for _, v := range strings.Split(raw, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				return info, fmt.Errorf("parameter %q: empty enum value", name)
			}
			info.Enum = append(info.Enum, v)
		}
		if len(info.Enum) == 0 {
			return info, fmt.Errorf("parameter %q: enum needs at least one value", name)
		}
	default:
		return info, fmt.Errorf("parameter %q: unknown type %q", name, typ)
	}

	return info, nil
}

// groupFor lowers a parameter to its capturing-group body.
func groupFor(info ParamInfo) string {
	switch info.Type {
	case TypeInt:
		return `-?\d+`
	case TypeSnowflake:
		return `\d{17,20}`
	case TypeEnum:
		escaped := make([]string, len(info.Enum))
		for i, v := range info.Enum {
			escaped[i] = regexp.QuoteMeta(v)
		}
		return strings.Join(escaped, "|")
	default:
		// One or more characters up to the next '_' separator.
		return `[^_]+`
	}
}

// Extract matches input against the pattern. A failed match returns
// (nil, false). On success the map carries one entry per matched parameter:
// int parameters as int, everything else as string. Optional parameters
// that did not capture (or captured nothing) are left out of the map
// entirely rather than surfaced as empty strings.
func (p *Pattern) Extract(input string) (map[string]any, bool) {
	m := p.re.FindStringSubmatch(input)
	if m == nil {
		return nil, false
	}

	values := make(map[string]any, len(p.Params))
	for i, info := range p.Params {
		raw := m[i+1]
		if raw == "" {
			continue
		}
		if info.Type == TypeInt {
			n, err := strconv.Atoi(raw)
			if err != nil {
				// Digits beyond int range: shape matched, value did not.
				return nil, false
			}
			values[info.Name] = n
			continue
		}
		values[info.Name] = raw
	}
	return values, true
}

// Matches reports whether input satisfies the pattern without building
// the value map.
func (p *Pattern) Matches(input string) bool {
	return p.re.MatchString(input)
}

// String returns the source template.
func (p *Pattern) String() string {
	return p.Source
}
