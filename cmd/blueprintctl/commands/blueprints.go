package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your blueprints, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			c, _, err := opts.sessionClient(p)
			if err != nil {
				return err
			}

			bps, err := c.ListBlueprints(cmd.Context())
			if err != nil {
				return apiFailure(p, "list", err)
			}
			if len(bps) == 0 {
				p.printf("No blueprints yet. Create one with: blueprintctl create FILE\n")
				return nil
			}

			w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCREATED")
			for _, bp := range bps {
				fmt.Fprintf(w, "%s\t%s\t%s\n", bp.ID, bp.Title, bp.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "create [FILE]",
		Short: "Validate and store a blueprint",
		Long: `Validate and store a blueprint read from FILE (JSON or YAML), or from
stdin when FILE is omitted or "-". Nothing is stored if validation fails.`,
		Example: `  blueprintctl create home.json --title "Home"
  cat page.yaml | blueprintctl create - --title "Landing"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			c, _, err := opts.sessionClient(p)
			if err != nil {
				return err
			}

			text, err := readDocument(firstArg(args), cmd.InOrStdin())
			if err != nil {
				return p.failure("could not read blueprint", err.Error())
			}

			bp, err := c.CreateBlueprint(cmd.Context(), title, text)
			if err != nil {
				return apiFailure(p, "create", err)
			}
			p.success("Created %s %q", bp.ID, bp.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Blueprint title")
	return cmd
}

func newViewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view ID",
		Short: "Print a stored blueprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			c, _, err := opts.sessionClient(p)
			if err != nil {
				return err
			}

			bp, err := c.GetBlueprint(cmd.Context(), args[0])
			if err != nil {
				return apiFailure(p, "view", err)
			}

			root, err := json.MarshalIndent(bp.Root, "", "  ")
			if err != nil {
				return err
			}
			cyan.Fprintf(p.out, "%s\n", bp.Title)
			faint.Fprintf(p.out, "%s  created %s\n", bp.ID, bp.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			p.printf("%s\n", root)
			return nil
		},
	}
}

func newRenderCmd(opts *options) *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "render ID",
		Short: "Render a stored blueprint",
		Long:  "Print the display tree of a stored blueprint, or its sanitised HTML with --html.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			c, _, err := opts.sessionClient(p)
			if err != nil {
				return err
			}

			if asHTML {
				frag, err := c.RenderHTML(cmd.Context(), args[0])
				if err != nil {
					return apiFailure(p, "render", err)
				}
				p.printf("%s\n", frag.HTML)
				warnMalformed(p, frag.Errors)
				return nil
			}

			res, err := c.Render(cmd.Context(), args[0])
			if err != nil {
				return apiFailure(p, "render", err)
			}
			tree, err := indent(res.Tree)
			if err != nil {
				return err
			}
			p.printf("%s\n", tree)
			warnMalformed(p, res.Errors)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Print HTML instead of the display tree")
	return cmd
}

func newPreviewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "preview [FILE]",
		Short: "Render a blueprint without storing it",
		Long: `Render blueprint text from FILE (JSON or YAML), or stdin, to sanitised HTML.
Malformed nodes are shown as error placeholders instead of failing the page.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			c, _, err := opts.sessionClient(p)
			if err != nil {
				return err
			}

			text, err := readDocument(firstArg(args), cmd.InOrStdin())
			if err != nil {
				return p.failure("could not read blueprint", err.Error())
			}

			frag, err := c.Preview(cmd.Context(), text)
			if err != nil {
				return apiFailure(p, "preview", err)
			}
			p.printf("%s\n", frag.HTML)
			warnMalformed(p, frag.Errors)
			return nil
		},
	}
}

func warnMalformed(p printer, n int) {
	if n > 0 {
		p.warning("%d malformed node(s) replaced by error placeholders", n)
	}
}

func indent(raw json.RawMessage) ([]byte, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
