package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klabast/wb-services/kalender-grid/internal/app"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newHashPasswordCmd() *cobra.Command {
	var (
		overwrite      bool
		insecureUnmask bool
	)

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Create the auth file with an Argon2id password hash",
		Long: `Creates the edit-mode auth file ("username:hash", mode 0400).

The file is written to AUTH_FILE, or auth.secret next to the binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			path, err := app.AuthFilePath(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			in := bufio.NewReader(cmd.InOrStdin())

			fmt.Fprint(out, "Enter username: ")
			var username string
			if _, err := fmt.Fscanln(in, &username); err != nil {
				return fmt.Errorf("error reading username: %w", err)
			}
			if username == "" {
				return errors.New("username cannot be empty")
			}

			var password, passwordConfirm string
			if insecureUnmask {
				fmt.Fprintln(cmd.ErrOrStderr(), "⚠️  WARNING: Password will be visible on screen!")
				fmt.Fprint(out, "Enter password:   ")
				if _, err := fmt.Fscanln(in, &password); err != nil {
					return fmt.Errorf("error reading password: %w", err)
				}
				fmt.Fprint(out, "Confirm password: ")
				if _, err := fmt.Fscanln(in, &passwordConfirm); err != nil {
					return fmt.Errorf("error reading password confirmation: %w", err)
				}
			} else {
				password = readPasswordWithMask(out, "Enter password:   ")
				passwordConfirm = readPasswordWithMask(out, "Confirm password: ")
			}

			if password == "" {
				return errors.New("password cannot be empty")
			}
			if password != passwordConfirm {
				return errors.New("passwords do not match")
			}

			return app.CreateAuthFile(path, username, password, overwrite, in, out)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing auth file without asking")
	cmd.Flags().BoolVar(&insecureUnmask, "insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	return cmd
}

// readPasswordWithMask reads a password from the terminal echoing asterisks
func readPasswordWithMask(out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		// Not a terminal: fall back to hidden input
		password, _ := term.ReadPassword(fd)
		fmt.Fprintln(out)
		return string(password)
	}
	defer term.Restore(fd, oldState)

	var password []byte
	reader := bufio.NewReader(os.Stdin)

	for {
		char, _, err := reader.ReadRune()
		if err != nil {
			break
		}

		switch char {
		case '\n', '\r':
			fmt.Fprint(out, "\r\n")
			return string(password)
		case 127, 8: // Backspace or Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				fmt.Fprint(out, "\b \b")
			}
		case 3: // Ctrl+C
			term.Restore(fd, oldState)
			fmt.Fprintln(out)
			os.Exit(1)
		default:
			// Only accept printable characters
			if char >= 32 && char <= 126 {
				password = append(password, byte(char))
				fmt.Fprint(out, "*")
			}
		}
	}

	fmt.Fprint(out, "\r\n")
	return string(password)
}
