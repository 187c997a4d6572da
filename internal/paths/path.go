package paths

import (
	"strings"

	"wavebench/internal/payload"
)

// Parse splits a path string into its key tokens. Accepted syntax is a
// sequence of dotted bare identifiers and bracketed quoted-string keys,
// e.g. "data.channels['A']". Errors are *SyntaxError.
func Parse(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, syntaxErr(path, "path is empty")
	}

	var tokens []string
	i, n := 0, len(path)
	for i < n {
		switch path[i] {
		case '.':
			i++
			if i >= n {
				return nil, syntaxErr(path, "path cannot end with '.'")
			}
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, syntaxErr(path, "missing closing bracket")
			}
			end += i
			content := strings.TrimSpace(path[i+1 : end])
			if len(content) < 2 || (content[0] != '\'' && content[0] != '"') || content[len(content)-1] != content[0] {
				return nil, syntaxErr(path, "bracket content must be a quoted string, e.g. ['key']")
			}
			tokens = append(tokens, content[1:len(content)-1])
			i = end + 1
			if i < n && path[i] != '.' && path[i] != '[' {
				return nil, syntaxErr(path, "unexpected characters after bracket expression")
			}
		default:
			start := i
			for i < n && path[i] != '.' && path[i] != '[' {
				i++
			}
			token := path[start:i]
			if token == "" {
				return nil, syntaxErr(path, "empty path segment")
			}
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

// Resolve walks path through root and returns the value it addresses.
// Traversal descends through mappings only; anything else while tokens
// remain is a *ResolutionError.
func Resolve(root payload.Value, path string) (payload.Value, error) {
	tokens, err := Parse(path)
	if err != nil {
		return nil, err
	}
	return ResolveTokens(root, tokens)
}

// ResolveTokens is Resolve for an already-parsed token sequence.
func ResolveTokens(root payload.Value, tokens []string) (payload.Value, error) {
	current := root
	for idx, token := range tokens {
		m, ok := current.(payload.Map)
		if !ok {
			return nil, notMappingErr(token, tokens[:idx], current)
		}
		next, present := m[token]
		if !present {
			return nil, missingKeyErr(token, tokens[:idx])
		}
		current = next
	}
	return current, nil
}

// Set installs value at the token path and returns a new root. Mappings
// along the path are copied, untouched siblings are shared with the input,
// and missing intermediates are created. An existing non-mapping
// intermediate is a *ResolutionError. When the final value is a mapping it
// is shallow-copied so the result never aliases the caller's container.
func Set(root payload.Value, tokens []string, value payload.Value) (payload.Value, error) {
	return setTokens(root, tokens, nil, value)
}

func setTokens(current payload.Value, tokens, traversed []string, value payload.Value) (payload.Value, error) {
	if len(tokens) == 0 {
		if m, ok := value.(payload.Map); ok {
			return m.ShallowClone(), nil
		}
		return value, nil
	}

	token := tokens[0]
	m, ok := current.(payload.Map)
	if !ok {
		return nil, notMappingErr(token, traversed, current)
	}

	copied := make(payload.Map, len(m)+1)
	for k, v := range m {
		copied[k] = v
	}

	if existing, present := m[token]; present {
		child, err := setTokens(existing, tokens[1:], append(traversed, token), value)
		if err != nil {
			return nil, err
		}
		copied[token] = child
		return copied, nil
	}

	if len(tokens) == 1 {
		if vm, isMap := value.(payload.Map); isMap {
			copied[token] = vm.ShallowClone()
		} else {
			copied[token] = value
		}
		return copied, nil
	}

	child, err := setTokens(payload.Map{}, tokens[1:], append(traversed, token), value)
	if err != nil {
		return nil, err
	}
	copied[token] = child
	return copied, nil
}

// SetInPlace installs value at the token path inside root, creating missing
// intermediate mappings. The caller must own root (a fresh clone); inputs
// handed to an operator are never passed here. An existing non-mapping
// intermediate is a *ResolutionError.
func SetInPlace(root payload.Map, tokens []string, value payload.Value) error {
	if len(tokens) == 0 {
		return syntaxErr("", "path is empty")
	}
	current := root
	for idx, token := range tokens[:len(tokens)-1] {
		switch next := current[token].(type) {
		case payload.Map:
			current = next
		case nil:
			created := payload.Map{}
			current[token] = created
			current = created
		default:
			return notMappingErr(token, tokens[:idx], next)
		}
	}
	current[tokens[len(tokens)-1]] = value
	return nil
}
