package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		save  bool
		title string
	)

	cmd := &cobra.Command{
		Use:   "generate PROMPT...",
		Short: "Generate a blueprint from a description",
		Long: `Ask the server's generation backend for a blueprint matching PROMPT and
print it as editable JSON. Nothing is stored unless --save is given.`,
		Example: `  blueprintctl generate "a landing page for a neighbourhood bakery"
  blueprintctl generate --save --title Bakery "a bakery landing page"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			c, _, err := opts.sessionClient(p)
			if err != nil {
				return err
			}

			prompt := strings.Join(args, " ")
			p.step("Generating with the server's backend...")
			gen, err := c.Generate(cmd.Context(), prompt)
			if err != nil {
				return apiFailure(p, "generation", err)
			}
			p.printf("%s\n", gen.BlueprintJSON)

			if !save {
				return nil
			}
			bp, err := c.CreateBlueprint(cmd.Context(), title, gen.BlueprintJSON)
			if err != nil {
				return apiFailure(p, "save", err)
			}
			p.success("Saved %s %q", bp.ID, bp.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Store the generated blueprint")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Title used with --save")
	return cmd
}
