package admin

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"datajanitor/internal/admin/secrets"
	"datajanitor/internal/platform/config"
)

// Credentials are the inputs needed to create or promote the admin account.
type Credentials struct {
	Username string
	Email    string
	Password string
}

var (
	// ErrPasswordMismatch is returned when the interactive confirmation
	// does not match the first entry.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrIncomplete is returned when some but not all credential values
	// were supplied. Nothing is written in that case.
	ErrIncomplete = errors.New("admin credentials incomplete: provide --username, --email and --password, or set ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD")
)

// Prompter collects values from an interactive terminal.
type Prompter interface {
	ReadLine(label string) (string, error)
	ReadSecret(label string) (string, error)
}

// TerminalPrompter reads from the attached terminal, echoing plain values
// and suppressing echo for secrets. Returns nil when stdin is not a
// terminal, which disables the interactive tier entirely.
func TerminalPrompter() Prompter {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	return &terminalPrompter{}
}

type terminalPrompter struct{}

func (terminalPrompter) ReadLine(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimSpace(line), nil
}

func (terminalPrompter) ReadSecret(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return string(b), nil
}

// ResolveCredentials applies the three-tier rule for every value: explicit
// argument, then environment, then interactive prompt when a terminal is
// attached. Passwords are confirmed twice when prompted and must meet the
// minimum length before anything is written.
//
// Returns (nil, nil) when no value was supplied through any tier; the
// caller treats that as the non-fatal "tables exist, no admin yet" state.
func ResolveCredentials(explicit Credentials, getenv config.Getenv, prompt Prompter) (*Credentials, error) {
	var (
		linePrompt   func(label string) func() (string, error)
		secretPrompt func() (string, error)
	)
	if prompt != nil {
		linePrompt = func(label string) func() (string, error) {
			return func() (string, error) { return prompt.ReadLine(label) }
		}
		secretPrompt = func() (string, error) {
			pw, err := prompt.ReadSecret("Enter admin password")
			if err != nil {
				return "", err
			}
			confirm, err := prompt.ReadSecret("Confirm admin password")
			if err != nil {
				return "", err
			}
			if pw != confirm {
				return "", ErrPasswordMismatch
			}
			return pw, nil
		}
	}

	username, err := config.Resolve(explicit.Username, getenv, "ADMIN_USERNAME", lineOrNil(linePrompt, "Enter admin username"))
	if err != nil {
		return nil, err
	}
	email, err := config.Resolve(explicit.Email, getenv, "ADMIN_EMAIL", lineOrNil(linePrompt, "Enter admin email"))
	if err != nil {
		return nil, err
	}
	password, err := config.Resolve(explicit.Password, getenv, "ADMIN_PASSWORD", secretPrompt)
	if err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" && email == "" && password == "" {
		return nil, nil
	}
	if username == "" || email == "" || password == "" {
		return nil, ErrIncomplete
	}
	if len(password) < secrets.MinPasswordLength {
		return nil, secrets.ErrTooShort
	}
	return &Credentials{Username: username, Email: email, Password: password}, nil
}

func lineOrNil(linePrompt func(string) func() (string, error), label string) func() (string, error) {
	if linePrompt == nil {
		return nil
	}
	return linePrompt(label)
}
