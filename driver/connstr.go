package driver

import "strings"

// ParseConnString parses the library's common connection-string grammar:
// semicolon-separated key=value pairs. A value may be single-quoted, with a
// doubled single-quote as the escape for a literal quote inside it.
// Whitespace around "=" and ";" is insignificant outside quotes, significant
// inside them.
//
// Example: `host=10.1.2.3:5432,10.1.2.4;db=mydb;ssl=true`.
func ParseConnString(s string) (map[string]string, error) {
	opts := map[string]string{}

	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == ';') {
			i++
		}
		if i >= len(s) {
			break
		}

		keyStart := i
		for i < len(s) && s[i] != '=' && s[i] != ';' {
			i++
		}
		if i >= len(s) || s[i] != '=' {
			return nil, NewError(ConnParams, "malformed connection string: missing '=' after %q", s[keyStart:i])
		}
		key := strings.TrimSpace(s[keyStart:i])
		if key == "" {
			return nil, NewError(ConnParams, "malformed connection string: empty key")
		}
		i++ // skip '='

		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}

		var value string
		if i < len(s) && s[i] == '\'' {
			i++
			var b strings.Builder
			closed := false
			for i < len(s) {
				if s[i] == '\'' {
					if i+1 < len(s) && s[i+1] == '\'' {
						b.WriteByte('\'')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				b.WriteByte(s[i])
				i++
			}
			if !closed {
				return nil, NewError(ConnParams, "malformed connection string: unterminated quoted value for %q", key)
			}
			value = b.String()
			for i < len(s) && s[i] != ';' {
				i++
			}
		} else {
			valStart := i
			for i < len(s) && s[i] != ';' {
				i++
			}
			value = strings.TrimSpace(s[valStart:i])
		}

		if _, dup := opts[key]; dup {
			return nil, NewError(ConnParams, "malformed connection string: duplicate key %q", key)
		}
		opts[key] = value
	}

	return opts, nil
}
