package cli

import (
	"errors"
	"strings"

	"github.com/chzyer/readline"
)

var ErrInterrupted = errors.New("interrupted")

// Prompter reads one line of user input after showing a prompt.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

type readlinePrompter struct{}

func (readlinePrompter) Prompt(prompt string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return "", err
	}
	defer rl.Close()

	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupted
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
