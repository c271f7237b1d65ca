package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/ion-engine/raw"
	"github.com/wippyai/ion-engine/stream"
	"github.com/wippyai/ion-engine/text"

	binenc "github.com/wippyai/ion-engine/binary"
)

func main() {
	var (
		inFile      = flag.String("in", "", "Path to input document")
		format      = flag.String("format", "auto", "Input format: text, binary, or auto (by extension)")
		maxDepth    = flag.Int("max-depth", 0, "Macro expansion depth limit (0 = default)")
		verbose     = flag.Bool("v", false, "Enable debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *inFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: ionview -in <file> [-format text|binary]")
		fmt.Fprintln(os.Stderr, "       ionview -in <file> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*inFile, *format, *maxDepth); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*inFile, *format, *maxDepth, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inFile, format string, maxDepth int, verbose bool) error {
	opts := []stream.Option{}
	if maxDepth > 0 {
		opts = append(opts, stream.WithMaxDepth(maxDepth))
	}
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		opts = append(opts, stream.WithLogger(logger))
	}
	r, err := openReader(inFile, format, opts)
	if err != nil {
		return err
	}

	count := 0
	for {
		v, ok, err := r.Next()
		if err != nil {
			return fmt.Errorf("value %d: %w", count+1, err)
		}
		if !ok {
			break
		}
		count++
		node, err := renderValue(v)
		if err != nil {
			return fmt.Errorf("value %d: %w", count, err)
		}
		var b strings.Builder
		writeTree(&b, node, 0)
		fmt.Print(b.String())
	}
	fmt.Printf("\n%d top-level value(s)\n", count)
	return nil
}

func openReader(inFile, format string, opts []stream.Option) (*stream.Reader, error) {
	data, err := os.ReadFile(inFile)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var src raw.StreamReader
	switch resolveFormat(inFile, format) {
	case "binary":
		src = binenc.NewStreamReader(data)
	case "text":
		src = text.NewStreamReader(string(data))
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return stream.NewReader(src, opts...), nil
}

func resolveFormat(inFile, format string) string {
	if format != "auto" && format != "" {
		return format
	}
	if filepath.Ext(inFile) == ".ionb" {
		return "binary"
	}
	return "text"
}
