// Command recipes inspects recipe book files. It can:
//   - validate books (structure, base elements, recipe references, board geometry)
//   - show a book's elements and recipes as tables
//   - analyze a book: which elements can be discovered from the four base
//     elements, in how many combination rounds, and which can never be reached
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/alchemy-game/game/engine"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File     string
	Book     *engine.RecipeBook
	Err      error
	Warnings []string
}

// Valid reports whether the file parsed and passed validation
func (r ValidationResult) Valid() bool {
	return r.Err == nil
}

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newApp(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "recipes",
		Usage:  "Validate, show and analyze alchemy recipe books",
		Writer: w,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "recipes",
				Usage:   "directory containing recipe books",
				Sources: cli.EnvVars("RECIPES_DIR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate recipe books (default: every book in --dir)",
				ArgsUsage: "[files...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					files, err := bookFiles(cmd.String("dir"), cmd.Args().Slice())
					if err != nil {
						return err
					}
					return runValidate(w, files)
				},
			},
			{
				Name:      "show",
				Usage:     "Print the elements and recipes of a book",
				ArgsUsage: "<file or config id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("show expects exactly one recipe book")
					}
					path, err := resolveBook(cmd.String("dir"), cmd.Args().First())
					if err != nil {
						return err
					}
					book, err := engine.LoadRecipeBook(path)
					if err != nil {
						return err
					}
					showBook(w, book)
					return nil
				},
			},
			{
				Name:      "analyze",
				Usage:     "Report discovery order, rounds and unreachable elements",
				ArgsUsage: "[files...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					files, err := bookFiles(cmd.String("dir"), cmd.Args().Slice())
					if err != nil {
						return err
					}
					for _, file := range files {
						if err := analyzeFile(w, file); err != nil {
							return err
						}
					}
					return nil
				},
			},
		},
	}
}

// bookFiles returns args resolved against dir, or every book in dir when args is empty
func bookFiles(dir string, args []string) ([]string, error) {
	if len(args) > 0 {
		files := make([]string, 0, len(args))
		for _, arg := range args {
			path, err := resolveBook(dir, arg)
			if err != nil {
				return nil, err
			}
			files = append(files, path)
		}
		return files, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := engine.FormatFromPath(entry.Name()); ok {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no recipe books found in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// resolveBook accepts a path or a config ID looked up in dir
func resolveBook(dir, arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		return arg, nil
	}
	for _, ext := range []string{"", ".yaml", ".yml", ".json"} {
		path := filepath.Join(dir, arg+ext)
		if _, ok := engine.FormatFromPath(path); !ok {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("recipe book not found: %s", arg)
}

// validateFile loads a book and collects playability warnings
func validateFile(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path)}

	book, err := engine.LoadRecipeBook(path)
	if err != nil {
		result.Err = err
		return result
	}
	result.Book = book

	catalog, err := engine.NewCatalog(book)
	if err != nil {
		result.Err = err
		return result
	}

	if missing := engine.Unreachable(catalog); len(missing) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d element(s) can never be discovered: %s", len(missing), elementNames(missing)))
	}
	if len(book.Recipes) == 0 {
		result.Warnings = append(result.Warnings, "book has no recipes")
	}
	return result
}

func runValidate(w io.Writer, files []string) error {
	invalid := 0
	for _, file := range files {
		result := validateFile(file)
		if !result.Valid() {
			invalid++
			fmt.Fprintf(w, "%s %s: %v\n", errStyle.Render("✗"), result.File, result.Err)
			continue
		}

		fmt.Fprintf(w, "%s %s: %s (%d elements, %d recipes)\n", okStyle.Render("✓"), result.File,
			result.Book.Name, len(result.Book.Elements), len(result.Book.Recipes))
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("!"), warning)
		}
	}

	fmt.Fprintf(w, "\n%d of %d recipe book(s) valid\n", len(files)-invalid, len(files))
	if invalid > 0 {
		return fmt.Errorf("%d invalid recipe book(s)", invalid)
	}
	return nil
}

func showBook(w io.Writer, book *engine.RecipeBook) {
	fmt.Fprintln(w, titleStyle.Render(book.Name))
	if book.Description != "" {
		fmt.Fprintln(w, book.Description)
	}
	fmt.Fprintf(w, "Board %gx%g, tokens %gx%g\n\n", book.Board.Width, book.Board.Height, book.Board.TokenWidth, book.Board.TokenHeight)

	elements := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Element", "Image", "Base")
	for _, el := range book.Elements {
		base := ""
		if el.Base {
			base = "yes"
		}
		elements.Row(el.Name, el.Image, base)
	}
	fmt.Fprintln(w, elements.String())

	recipes := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("First", "Second", "Result")
	for _, r := range book.Recipes {
		recipes.Row(r.First, r.Second, r.Result)
	}
	fmt.Fprintln(w, recipes.String())
}

func analyzeFile(w io.Writer, path string) error {
	book, err := engine.LoadRecipeBook(path)
	if err != nil {
		return err
	}
	catalog, err := engine.NewCatalog(book)
	if err != nil {
		return err
	}

	order, rounds := engine.DiscoveryOrder(catalog)
	missing := engine.Unreachable(catalog)

	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", filepath.Base(path))
	fmt.Fprintf(w, "Name: %s\n", book.Name)
	fmt.Fprintf(w, "Elements: %d (base %d)\n", catalog.Len(), engine.BaseElementCount)
	fmt.Fprintf(w, "Recipes: %d\n", len(book.Recipes))
	fmt.Fprintf(w, "Discoverable: %d/%d in %d round(s)\n", len(order), catalog.Len(), rounds)
	fmt.Fprintf(w, "Discovery order: %s\n", elementNames(order))

	if len(missing) > 0 {
		fmt.Fprintf(w, "%s %d element(s) are unreachable from the base elements: %s\n",
			warnStyle.Render("WARNING:"), len(missing), elementNames(missing))
	} else {
		fmt.Fprintf(w, "%s All elements can be discovered\n", okStyle.Render("OK:"))
	}

	if dead := deadEnds(catalog); len(dead) > 0 {
		fmt.Fprintf(w, "Final elements (used in no recipe): %s\n", elementNames(dead))
	}
	return nil
}

// deadEnds returns non-base elements that are never an ingredient
func deadEnds(c *engine.Catalog) []*engine.Element {
	var dead []*engine.Element
	for _, el := range c.All() {
		if !el.IsBase() && len(c.RecipesFor(el)) == 0 {
			dead = append(dead, el)
		}
	}
	return dead
}

func elementNames(elements []*engine.Element) string {
	names := make([]string, 0, len(elements))
	for _, el := range elements {
		names = append(names, el.Name())
	}
	return strings.Join(names, ", ")
}
