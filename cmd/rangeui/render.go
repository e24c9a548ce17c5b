package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rangeui/internal/demo"
	"github.com/vango-dev/rangeui/pkg/memhost"
	"github.com/vango-dev/rangeui/pkg/vdom"
)

func renderCmd(c *cli) *cobra.Command {
	var (
		clicks []string
		ids    bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the demo application and print its markup",
		Long: `Render the demo application into an in-memory document and print
the resulting body markup.

Clicks are dispatched in order after the first render, each one
targeting the element whose data-action matches.

Examples:
  rangeui render
  rangeui render --click increment --click increment
  rangeui render --click add --ids`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.renderDemo(cmd, clicks)
			if err != nil {
				return err
			}
			if ids {
				fmt.Fprintln(cmd.OutOrStdout(), memhost.AnnotatedHTML(doc.Body()))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), memhost.InnerHTML(doc.Body()))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&clicks, "click", nil, "data-action to click after rendering (repeatable)")
	cmd.Flags().BoolVar(&ids, "ids", false, "annotate elements with their node ids")

	return cmd
}

// renderDemo renders the demo app and applies clicks.
func (c *cli) renderDemo(cmd *cobra.Command, clicks []string) (*memhost.Document, error) {
	return c.renderApp(cmd.Context(), demo.App(), clicks)
}

// renderApp renders root and applies clicks. A click whose render pass fails
// stops the run with that failure.
func (c *cli) renderApp(ctx context.Context, root vdom.Node, clicks []string) (*memhost.Document, error) {
	var failed error
	doc, rt := c.newDocument(vdom.WithErrorHandler(func(err error) {
		if failed == nil {
			failed = err
		}
	}))
	if err := rt.Render(ctx, root, doc.Body()); err != nil {
		return nil, err
	}
	for _, action := range clicks {
		if err := demo.Click(doc, action); err != nil {
			return nil, err
		}
		if failed != nil {
			return nil, fmt.Errorf("click %q: %w", action, failed)
		}
	}
	c.logger.Debug("demo rendered", "clicks", len(clicks), "mutations", doc.MutationCount())
	return doc, nil
}
