package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pothole-report/config"
)

// interactiveAttributes walks every configured category and asks for a
// numbered choice. Enter skips a category; multi-select categories take
// comma-separated numbers.
func (a *App) interactiveAttributes(cfg *config.Config) (map[string][]string, error) {
	attrs := map[string][]string{}

	fmt.Fprintln(a.Out, "Interactive attribute selection")
	fmt.Fprintln(a.Out, faint("Press Enter to skip an attribute."))

	for _, name := range cfg.AttributeNames() {
		choices := cfg.AttributeValues(name)
		multi := cfg.IsMultiSelect(name)

		fmt.Fprintf(a.Out, "\n%s:\n", strings.ToUpper(name[:1])+name[1:])
		for i, key := range choices {
			fmt.Fprintf(a.Out, "  %d. %s: %s\n", i+1, key, cfg.Attributes[name][key])
		}

		hint := fmt.Sprintf("1-%d", len(choices))
		if multi {
			hint += ", comma-separated for several"
		}
		prompt := fmt.Sprintf("Select %s (%s, or Enter to skip): ", name, hint)

		for {
			input, err := a.Prompter.Prompt(prompt)
			if errors.Is(err, io.EOF) {
				return attrs, nil
			}
			if err != nil {
				return nil, err
			}
			if input == "" {
				break
			}

			picked, err := parseChoices(input, len(choices), multi)
			if err != nil {
				fmt.Fprintf(a.Out, "%s\n", yellow(err.Error()))
				continue
			}
			values := make([]string, len(picked))
			for i, idx := range picked {
				values[i] = choices[idx]
			}
			attrs[name] = values
			fmt.Fprintf(a.Out, "%s %s\n", green("Selected:"), strings.Join(values, ", "))
			break
		}
	}
	return attrs, nil
}

// parseChoices converts 1-based numbers into indexes.
func parseChoices(input string, n int, multi bool) ([]int, error) {
	parts := []string{input}
	if multi {
		parts = strings.Split(input, ",")
	}
	var out []int
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		i, err := strconv.Atoi(p)
		if err != nil || i < 1 || i > n {
			if multi {
				return nil, fmt.Errorf("invalid choice %q; enter numbers 1-%d separated by commas", p, n)
			}
			return nil, fmt.Errorf("invalid choice %q; enter a number 1-%d or press Enter to skip", p, n)
		}
		out = append(out, i-1)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no choice entered; enter a number 1-%d", n)
	}
	return out, nil
}
