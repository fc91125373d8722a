package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
)

// newASTCmd dumps the syntax tree of one file. Useful when writing a
// language profile, to see which node kinds a grammar produces.
func newASTCmd() *cobra.Command {
	var language string
	var named bool
	cmd := &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the syntax tree of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			l := lang.Language(language)
			if l == "" {
				var ok bool
				if l, ok = lang.LanguageForExtension(filepath.Ext(path)); !ok {
					return fmt.Errorf("unknown language for %s; pass --language", path)
				}
			}
			source, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			tree, err := parser.Parse(l, source)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			defer tree.Close()
			printAST(cmd.OutOrStdout(), tree.RootNode(), source, 0, named)
			return nil
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "grammar to use instead of the one implied by the extension")
	cmd.Flags().BoolVar(&named, "named", false, "only print named nodes")
	return cmd
}

func printAST(w io.Writer, node *tree_sitter.Node, source []byte, indent int, named bool) {
	if node == nil {
		return
	}
	depth := indent
	if !named || node.IsNamed() {
		text := parser.NodeText(node, source)
		if len(text) > 60 {
			text = text[:60] + "..."
		}
		row, col := parser.Position(node)
		fmt.Fprintf(w, "%s%s [%d:%d] %q\n", strings.Repeat("  ", indent), node.Kind(), row+1, col, text)
		depth++
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		printAST(w, node.Child(i), source, depth, named)
	}
}
