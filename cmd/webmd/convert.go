package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/levindixon/WebMD/internal/convert"
	"github.com/levindixon/WebMD/internal/doctree"
	"github.com/levindixon/WebMD/internal/markdown"
	"github.com/levindixon/WebMD/internal/parser"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a document to Markdown",
	Long: `Converts the given file (HTML, Markdown, text, CSV, PDF or DOCX) to
Markdown and writes the result to stdout or --output. With no file
argument, HTML is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelWarn
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logLevel = slog.LevelDebug
		}
		log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

		root, err := readInput(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		opts, err := flagOptions(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if opts.BaseURL == "" {
			opts.BaseURL = root.Attribute(parser.BaseAttr)
		}

		out := os.Stdout
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		conv := convert.New(log)
		ctx := context.Background()

		if stream, _ := cmd.Flags().GetBool("stream"); stream {
			opts.Streaming = true
			fragments, err := conv.Stream(ctx, root, opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			for frag := range fragments {
				io.WriteString(out, frag)
			}
			fmt.Fprintln(out)
			return
		}

		md, err := conv.Convert(ctx, root, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(out, md)
	},
}

func readInput(args []string) (*doctree.Node, error) {
	if len(args) == 0 {
		return (&parser.HTMLParser{}).Parse(os.Stdin, "stdin.html")
	}

	path := args[0]
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f, path)
}

func flagOptions(cmd *cobra.Command) (markdown.Options, error) {
	var opts markdown.Options

	switch v, _ := cmd.Flags().GetString("heading-style"); v {
	case "", "atx":
		opts.HeadingStyle = markdown.HeadingATX
	case "setext":
		opts.HeadingStyle = markdown.HeadingSetext
	default:
		return opts, fmt.Errorf("unknown heading style %q (want atx or setext)", v)
	}

	switch v, _ := cmd.Flags().GetString("code-style"); v {
	case "", "fenced":
		opts.CodeBlockStyle = markdown.CodeFenced
	case "indented":
		opts.CodeBlockStyle = markdown.CodeIndented
	default:
		return opts, fmt.Errorf("unknown code style %q (want fenced or indented)", v)
	}

	switch v, _ := cmd.Flags().GetString("link-style"); v {
	case "", "inline":
		opts.LinkStyle = markdown.LinksInline
	case "reference":
		opts.LinkStyle = markdown.LinksReference
	default:
		return opts, fmt.Errorf("unknown link style %q (want inline or reference)", v)
	}

	if v, _ := cmd.Flags().GetString("bullet"); v != "" {
		if len(v) != 1 {
			return opts, fmt.Errorf("bullet must be a single character, got %q", v)
		}
		opts.BulletMarker = v[0]
	}

	opts.BaseURL, _ = cmd.Flags().GetString("base-url")
	opts.SpanFill, _ = cmd.Flags().GetString("span-fill")
	opts.PreserveWhitespace, _ = cmd.Flags().GetBool("preserve-whitespace")
	opts.ChunkSize, _ = cmd.Flags().GetInt("chunk-size")
	opts.GroupBudget, _ = cmd.Flags().GetInt("group-budget")
	opts.CacheCapacity, _ = cmd.Flags().GetInt("cache-capacity")

	opts = opts.WithDefaults()
	return opts, opts.Validate()
}

func addConvertFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Write Markdown to this file instead of stdout")
	cmd.Flags().String("heading-style", "atx", "Heading style: atx or setext")
	cmd.Flags().String("code-style", "fenced", "Code block style: fenced or indented")
	cmd.Flags().String("link-style", "inline", "Link style: inline or reference")
	cmd.Flags().String("bullet", "-", "Bullet marker for unordered lists")
	cmd.Flags().String("base-url", "", "Base URL for resolving relative links")
	cmd.Flags().String("span-fill", "", "Placeholder text for rowspan continuation cells")
	cmd.Flags().Bool("preserve-whitespace", false, "Keep whitespace outside preformatted blocks")
	cmd.Flags().Int("chunk-size", 0, "Node count above which chunked processing is used")
	cmd.Flags().Int("group-budget", 0, "Per-group content budget in bytes")
	cmd.Flags().Int("cache-capacity", 0, "Fragment cache capacity in entries")
	cmd.Flags().Bool("stream", false, "Write Markdown fragments as they are produced")
}

func init() {
	rootCmd.AddCommand(convertCmd)
	addConvertFlags(convertCmd)

	// Make 'convert' the default if no command is provided. The root
	// command needs the same flags for that to parse.
	addConvertFlags(rootCmd)
	rootCmd.Run = convertCmd.Run
	rootCmd.Args = cobra.MaximumNArgs(1)
}
