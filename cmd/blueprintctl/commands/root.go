package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/sitecraft/internal/client"
)

// ServerEnv sets the default server URL
const ServerEnv = "SITECRAFT_SERVER"

// options are the global flags shared by every command
type options struct {
	server      string
	sessionPath string
}

// NewRootCommand builds the blueprintctl command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "blueprintctl",
		Short: "blueprintctl - manage sitecraft site blueprints",
		Long: `blueprintctl talks to a sitecraft server to create, inspect, render and
generate site blueprints.

Log in once; the session is kept in a file readable only by you and reused
by every other command until it expires or you log out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors:      true,
		SilenceUsage:       true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
	}

	root.PersistentFlags().StringVarP(&opts.server, "server", "s", os.Getenv(ServerEnv), "Server URL (default from session, then "+client.DefaultServer+")")
	root.PersistentFlags().StringVar(&opts.sessionPath, "session", "", "Session file (default $"+client.SessionEnv+" or the user config dir)")

	root.AddCommand(
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newListCmd(opts),
		newCreateCmd(opts),
		newViewCmd(opts),
		newRenderCmd(opts),
		newPreviewCmd(opts),
		newGenerateCmd(opts),
	)
	return root
}

// Execute runs the command tree
func Execute(version, commit string) error {
	root := NewRootCommand()
	root.Version = fmt.Sprintf("%s (commit: %s)", version, commit)
	return root.Execute()
}

func newPrinter(cmd *cobra.Command) printer {
	return printer{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
}

func (o *options) sessionFile() (string, error) {
	if o.sessionPath != "" {
		return o.sessionPath, nil
	}
	return client.DefaultSessionPath()
}

// anonymousClient is used before a session exists
func (o *options) anonymousClient() *client.Client {
	return client.New(o.server, "")
}

// sessionClient hydrates the saved session and returns a client bound to it
func (o *options) sessionClient(p printer) (*client.Client, *client.Session, error) {
	path, err := o.sessionFile()
	if err != nil {
		return nil, nil, err
	}
	session, err := client.LoadSession(path)
	if errors.Is(err, client.ErrNoSession) {
		return nil, nil, p.failure("not logged in", "", "Log in first:  blueprintctl login --email you@example.com")
	}
	if err != nil {
		return nil, nil, err
	}

	server := o.server
	if server == "" {
		server = session.Server
	}
	return client.New(server, session.Token), session, nil
}

// apiFailure prints a server or transport error
func apiFailure(p printer, action string, err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return p.failure(action+" failed", err.Error(), "Check the server is running, or pass --server")
	}

	var hints []string
	switch {
	case apiErr.Status == 401:
		hints = append(hints, "Your session has ended. Log in again:  blueprintctl login")
	case apiErr.Body.Retryable:
		hints = append(hints, "This may succeed if you try again.")
	}
	return p.failure(action+" failed", apiErr.Error(), hints...)
}

// readDocument reads blueprint text from path, or stdin for "" and "-".
// YAML files are converted to JSON, keeping key order.
func readDocument(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read blueprint: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return "", fmt.Errorf("failed to convert YAML blueprint: %w", err)
		}
	}
	return string(data), nil
}
