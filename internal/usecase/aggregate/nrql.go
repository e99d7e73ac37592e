package aggregate

import "strings"

const whereKeyword = "where"

// HasTopLevelWhere reports whether query contains a WHERE keyword outside
// every matched pair of parentheses. Matching is case-insensitive and needs
// word boundaries on both sides; a parenthesised region counts as a boundary.
// An unmatched parenthesis is treated as an ordinary character.
func HasTopLevelWhere(query string) bool {
	masked := maskParens(query)
	n := len(query)

	wordAt := func(i int) bool {
		return i >= 0 && i < n && !masked[i] && isWordByte(query[i])
	}

	for i := 0; i+len(whereKeyword) <= n; i++ {
		if masked[i] || wordAt(i-1) {
			continue
		}
		end := i + len(whereKeyword)
		if !strings.EqualFold(query[i:end], whereKeyword) {
			continue
		}
		if anyMasked(masked[i:end]) || wordAt(end) {
			continue
		}
		return true
	}
	return false
}

// maskParens marks every byte covered by a matched pair of parentheses,
// including the parentheses themselves. Pairs are matched with a stack and
// the covered ranges are accumulated through a difference array.
func maskParens(query string) []bool {
	n := len(query)
	diff := make([]int, n+1)
	var open []int
	for i := 0; i < n; i++ {
		switch query[i] {
		case '(':
			open = append(open, i)
		case ')':
			if len(open) == 0 {
				continue
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			diff[start]++
			diff[i+1]--
		}
	}

	masked := make([]bool, n)
	depth := 0
	for i := 0; i < n; i++ {
		depth += diff[i]
		masked[i] = depth > 0
	}
	return masked
}

func anyMasked(m []bool) bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}
