package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kata-shadcn/kata-registry/internal/templates"
)

func initCmd(a *app) *cobra.Command {
	var (
		template string
		name     string
		homepage string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new registry project",
		Long: `Write a starter registry.json, lib/category-collapse.json and the
component sources they list into the project directory.

Templates:
  minimal   A single hero block
  blocks    Blocks across several categories with kata-registry.yaml

Examples:
  kata-registry init
  kata-registry init --template=blocks --name=acme-ui
  kata-registry -C ./acme init --homepage=https://acme.dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := templates.Get(template)
			if err != nil {
				return err
			}

			err = tmpl.Create(a.dir, templates.Config{
				RegistryName: name,
				Homepage:     homepage,
				Force:        force,
			})
			if err != nil {
				return err
			}

			for _, p := range tmpl.Paths() {
				a.info("%s %s", green("+"), filepath.FromSlash(p))
			}
			fmt.Fprintln(a.out)
			a.success("Created %s registry in %s", tmpl.Name, a.dir)
			a.info("Next: kata-registry build")
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "minimal", "Project template (minimal, blocks)")
	cmd.Flags().StringVar(&name, "name", "", "Registry name (default kata-shadcn)")
	cmd.Flags().StringVar(&homepage, "homepage", "", "Registry homepage URL")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing registry.json")

	return cmd
}
