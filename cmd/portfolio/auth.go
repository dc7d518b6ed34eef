package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperengineering/portfolio/internal/types"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	authEmail    string
	authPassword string
	authName     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the session",
	Long:  "Log in and persist the session. The password is read from stdin when --password is not given.",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account e-mail")
		c.Flags().StringVar(&authPassword, "password", "", "Account password (read from stdin if omitted)")
	}
	registerCmd.Flags().StringVar(&authName, "name", "", "Display name")
}

// readPassword returns --password, a no-echo terminal read, or the first
// line of piped stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr())
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.gate.Login(cmd.Context(), strings.TrimSpace(authEmail), password)
	if err != nil {
		return err
	}
	return printUser(cmd, result.User, "Logged in as")
}

func runRegister(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.gate.Register(cmd.Context(), strings.TrimSpace(authName), strings.TrimSpace(authEmail), password)
	if err != nil {
		return err
	}
	return printUser(cmd, result.User, "Registered and logged in as")
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.gate.Logout(); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{"logged_out": true})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	user := a.gate.User()
	if user == nil {
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{"authenticated": false})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
		return nil
	}
	return printUser(cmd, *user, "Logged in as")
}

func printUser(cmd *cobra.Command, user types.User, prefix string) error {
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"authenticated": true,
			"name":          user.Name,
			"email":         user.Email,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s>\n", prefix, user.Name, user.Email)
	return nil
}
