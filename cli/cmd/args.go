package cmd

import (
	"errors"
	"strings"
	"unicode"
)

func isNumber(arg string) bool {
	if arg == "" {
		return false
	}

	for _, r := range arg {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}

var ErrMissingCurrencies = errors.New("flag -cur expects at least one currency code")

// isNegativeNumber matches "-1" style day counts that pflag would take for shorthand flags.
func isNegativeNumber(arg string) bool {
	value, ok := strings.CutPrefix(arg, "-")
	return ok && isNumber(value)
}

// normalizeArgs rewrites the single dash "-cur A B" form into repeated --cur flags.
// Values stop at the next flag or at a bare number, which is the day count.
// Negative day counts are moved behind "--" so they stay positional.
func normalizeArgs(args []string) ([]string, error) {
	out := make([]string, 0, len(args)+1)
	positional := make([]string, 0, 1)

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			out = append(out, "--")
			out = append(out, positional...)

			return append(out, args[i+1:]...), nil
		}

		if isNegativeNumber(arg) {
			positional = append(positional, arg)
			continue
		}

		if value, ok := strings.CutPrefix(arg, "-cur="); ok {
			if value == "" {
				return nil, ErrMissingCurrencies
			}

			out = append(out, "--cur="+value)
			continue
		}

		if arg != "-cur" {
			out = append(out, arg)
			continue
		}

		start := i

		for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") && !isNumber(args[i+1]) {
			i++
			out = append(out, "--cur="+args[i])
		}

		if i == start {
			return nil, ErrMissingCurrencies
		}
	}

	if len(positional) > 0 {
		out = append(out, "--")
		out = append(out, positional...)
	}

	return out, nil
}

func upperCodes(codes []string) []string {
	out := make([]string, 0, len(codes))

	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			out = append(out, code)
		}
	}

	return out
}
