package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tsawler/fixedprint/xps"
)

func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.xps>",
		Short: "List the parts and relationships of an XPS package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := xps.Open(args[0])
			if err != nil {
				return err
			}

			c.printTitle("Parts")
			for _, part := range pkg.Parts() {
				c.printKeyValue(fmt.Sprintf("%d B", len(part.Data)), part.Name+"  "+part.ContentType)
			}

			c.printTitle("Relationships")
			for _, r := range pkg.Relationships() {
				kind := "rels"
				if r.Implicit {
					kind = "markup"
				}
				c.printDetail("%s -> %s (%s, %s)", r.Source, r.Target, kind, r.Type)
			}

			defaults, overrides := pkg.ContentTypes()
			c.printTitle("Content types")
			for _, ext := range sortedKeys(defaults) {
				c.printKeyValue("."+ext, defaults[ext])
			}
			for _, name := range sortedKeys(overrides) {
				c.printKeyValue(name, overrides[name])
			}

			c.printKeyValue("pages", fmt.Sprint(len(xps.PageParts(pkg))))
			if err := pkg.Validate(); err != nil {
				c.printWarning("%v", err)
				return nil
			}
			c.printSuccess("Package is valid")
			return nil
		},
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
