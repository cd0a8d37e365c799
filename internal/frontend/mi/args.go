package mi

import (
	"fmt"
	"strconv"
	"strings"
)

// splitArgs splits an MI command line into words. Words are separated by
// blanks; a word starting with '"' is a C string and may contain blanks
// and escapes.
func splitArgs(line string) ([]string, error) {
	var args []string
	i := 0
	for {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= len(line) {
			return args, nil
		}
		if line[i] != '"' {
			j := strings.IndexAny(line[i:], " \t")
			if j < 0 {
				j = len(line) - i
			}
			args = append(args, line[i:i+j])
			i += j
			continue
		}
		j := i + 1
		for ; j < len(line); j++ {
			if line[j] == '\\' {
				j++
				continue
			}
			if line[j] == '"' {
				break
			}
		}
		if j >= len(line) {
			return nil, fmt.Errorf("unterminated string in command: %s", line[i:])
		}
		s, err := strconv.Unquote(line[i : j+1])
		if err != nil {
			return nil, fmt.Errorf("bad string %s: %w", line[i:j+1], err)
		}
		args = append(args, s)
		i = j + 1
	}
}
