// File: pattern.go
// Role: §4.3's pattern-shortcut table — expands a pattern string into one
// byte-set per trie position.
package generator

import "github.com/ironautomata/ironautomata/automaton/bitset"

// expandPattern parses a pattern shortcut string into one *bitset.Set per
// trie position: a plain byte becomes a singleton set, a backslash escape
// or bracket class becomes the set of bytes it stands for.
func expandPattern(pattern string) ([]*bitset.Set, error) {
	var positions []*bitset.Set
	i := 0
	for i < len(pattern) {
		var (
			set *bitset.Set
			err error
		)
		switch pattern[i] {
		case '\\':
			set, i, err = parseEscape(pattern, i)
		case '[':
			set, i, err = parseBracket(pattern, i)
		default:
			set = bitset.FromBytes([]byte{pattern[i]})
			i++
		}
		if err != nil {
			return nil, err
		}
		positions = append(positions, set)
	}

	return positions, nil
}

// parseEscape parses a single backslash escape starting at s[i] == '\\'
// and returns the byte set it denotes plus the index just past it.
func parseEscape(s string, i int) (*bitset.Set, int, error) {
	if i+1 >= len(s) {
		return nil, 0, ErrInvalidPattern
	}
	c := s[i+1]
	switch c {
	case '\\', '[', ']':
		return bitset.FromBytes([]byte{c}), i + 2, nil
	case 't':
		return bitset.FromBytes([]byte{0x09}), i + 2, nil
	case 'v':
		return bitset.FromBytes([]byte{0x0B}), i + 2, nil
	case 'n':
		return bitset.FromBytes([]byte{0x0A}), i + 2, nil
	case 'r':
		return bitset.FromBytes([]byte{0x0D}), i + 2, nil
	case 'f':
		return bitset.FromBytes([]byte{0x0C}), i + 2, nil
	case '0':
		return bitset.FromBytes([]byte{0x00}), i + 2, nil
	case 'e':
		return bitset.FromBytes([]byte{0x1B}), i + 2, nil
	case '^':
		if i+2 >= len(s) {
			return nil, 0, ErrInvalidPattern
		}
		x := s[i+2]
		var v byte
		if x == '?' {
			v = 0x7F
		} else {
			v = x - '@'
		}

		return bitset.FromBytes([]byte{v}), i + 3, nil
	case 'x':
		if i+3 >= len(s) {
			return nil, 0, ErrInvalidPattern
		}
		v, ok := parseHexByte(s[i+2], s[i+3])
		if !ok {
			return nil, 0, ErrInvalidPattern
		}

		return bitset.FromBytes([]byte{v}), i + 4, nil
	case 'i':
		if i+2 >= len(s) {
			return nil, 0, ErrInvalidPattern
		}
		x := s[i+2]

		return bitset.FromBytes([]byte{toLower(x), toUpper(x)}), i + 3, nil
	case 'd':
		return rangeSet('0', '9'), i + 2, nil
	case 'D':
		return rangeSet('0', '9').Complement(), i + 2, nil
	case 'h':
		// Upper-case only, so [A-F0-9] matches exactly \h.
		s1 := rangeSet('0', '9')
		s1.Union(rangeSet('A', 'F'))

		return s1, i + 2, nil
	case 'w':
		return alnumSet(), i + 2, nil
	case 'W':
		return alnumSet().Complement(), i + 2, nil
	case 'a':
		s1 := rangeSet('a', 'z')
		s1.Union(rangeSet('A', 'Z'))

		return s1, i + 2, nil
	case 'l':
		return rangeSet('a', 'z'), i + 2, nil
	case 'u':
		return rangeSet('A', 'Z'), i + 2, nil
	case 's':
		return bitset.FromBytes([]byte{' ', '\t', '\n', '\v', '\f', '\r'}), i + 2, nil
	case 'S':
		return bitset.FromBytes([]byte{' ', '\t', '\n', '\v', '\f', '\r'}).Complement(), i + 2, nil
	case '$':
		return bitset.FromBytes([]byte{'\n', '\r'}), i + 2, nil
	case 'p':
		return rangeSet(0x20, 0x7E), i + 2, nil
	case '.':
		return rangeSet(0x00, 0xFF), i + 2, nil
	default:
		return nil, 0, ErrInvalidPattern
	}
}

// parseBracket parses a [...] or [^...] class starting at s[i] == '[',
// including nested backslash escapes, and returns the set plus the index
// just past the closing ']'.
func parseBracket(s string, i int) (*bitset.Set, int, error) {
	j := i + 1
	negate := false
	if j < len(s) && s[j] == '^' {
		negate = true
		j++
	}

	set := bitset.FromBytes(nil)
	for {
		if j >= len(s) {
			return nil, 0, ErrInvalidPattern
		}
		if s[j] == ']' {
			j++

			break
		}
		if s[j] == '\\' {
			part, next, err := parseEscape(s, j)
			if err != nil {
				return nil, 0, err
			}
			set.Union(part)
			j = next

			continue
		}
		// a-b range, neither endpoint a backslash escape or ']'.
		if j+2 < len(s) && s[j+1] == '-' && s[j+2] != ']' {
			lo, hi := s[j], s[j+2]
			if lo > hi {
				return nil, 0, ErrInvalidPattern
			}
			set.Union(rangeSet(lo, hi))
			j += 3

			continue
		}
		set.Set(s[j])
		j++
	}

	if negate {
		set = set.Complement()
	}

	return set, j, nil
}

func rangeSet(lo, hi byte) *bitset.Set {
	s := bitset.FromBytes(nil)
	for v := int(lo); v <= int(hi); v++ {
		s.Set(byte(v))
	}

	return s
}

func alnumSet() *bitset.Set {
	s := rangeSet('0', '9')
	s.Union(rangeSet('a', 'z'))
	s.Union(rangeSet('A', 'Z'))

	return s
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}

	return c
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}

	return c
}

func parseHexByte(hi, lo byte) (byte, bool) {
	h, ok1 := hexDigit(hi)
	l, ok2 := hexDigit(lo)
	if !ok1 || !ok2 {
		return 0, false
	}

	return h<<4 | l, true
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
