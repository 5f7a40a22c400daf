package commands

import (
	"os"

	"github.com/spf13/cobra"

	api "github.com/GriffinCanCode/sitecraft/internal/api/http"
	"github.com/GriffinCanCode/sitecraft/internal/client"
)

// PasswordEnv supplies the password when --password is omitted
const PasswordEnv = "SITECRAFT_PASSWORD"

func newLoginCmd(opts *options) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Example: `  blueprintctl login --email user@example.com --password password
  SITECRAFT_PASSWORD=password blueprintctl login --email user@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			if password == "" {
				password = os.Getenv(PasswordEnv)
			}

			c := opts.anonymousClient()
			resp, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return apiFailure(p, "login", err)
			}
			return saveSession(opts, p, c, resp)
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (default $"+PasswordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(opts *options) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			if password == "" {
				password = os.Getenv(PasswordEnv)
			}

			c := opts.anonymousClient()
			resp, err := c.Register(cmd.Context(), name, email, password)
			if err != nil {
				return apiFailure(p, "registration", err)
			}
			return saveSession(opts, p, c, resp)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (default $"+PasswordEnv+")")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func saveSession(opts *options, p printer, c *client.Client, resp *api.SessionResponse) error {
	path, err := opts.sessionFile()
	if err != nil {
		return err
	}
	if err := c.NewSession(resp).Save(path); err != nil {
		return p.failure("could not save session", err.Error())
	}
	p.success("Logged in as %s <%s>", resp.User.Name, resp.User.Email)
	return nil
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and remove it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			path, err := opts.sessionFile()
			if err != nil {
				return err
			}

			if session, err := client.LoadSession(path); err == nil {
				server := opts.server
				if server == "" {
					server = session.Server
				}
				c := client.New(server, session.Token)
				if err := c.Logout(cmd.Context()); err != nil && !client.IsUnauthorized(err) {
					p.warning("Server logout failed: %v", err)
				}
			}

			if err := client.ClearSession(path); err != nil {
				return p.failure("could not remove session", err.Error())
			}
			p.success("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			c, session, err := opts.sessionClient(p)
			if err != nil {
				return err
			}
			if _, err := c.Me(cmd.Context()); err != nil {
				return apiFailure(p, "whoami", err)
			}

			p.printf("%s <%s>\n", session.Name, session.Email)
			faint.Fprintf(p.out, "server:  %s\nexpires: %s\n", c.Server(), session.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
}
