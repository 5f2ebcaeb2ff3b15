// Command wireforge is the wireforge schema compiler and code generator.
//
// Usage:
//
//	wireforge compile [options] <schema-file>...
//	wireforge validate [options] <schema-file>...
//	wireforge format [options] <schema-file>...
//	wireforge schema [options] <go-package>...
//	wireforge version
//
// Compile Command:
//
//	Run the Schema -> MIR -> PIR pipeline and generate code.
//
//	Options:
//	  -lang string      Target language: go (default "go")
//	  -out string       Output directory (default ".")
//	  -package string   Override package name
//	  -prefix string    Add prefix to all type names
//	  -suffix string    Add suffix to all type names
//	  -marshal          Generate marshal/unmarshal methods (default true)
//	  -json             Generate JSON tags/methods (default true)
//	  -I string         Add import search path (can be repeated)
//
// Validate Command:
//
//	Run ingestion and validation without generating code.
//
// Format Command:
//
//	Format schema files, printing the result to stdout.
//
//	Options:
//	  -w                Write the result back to the source file instead
//
// Schema Command:
//
//	Extract a schema from annotated Go source code.
//
//	Options:
//	  -out string       Output file (default: stdout)
//	  -package string   Override package name
//	  -private          Include unexported types
//	  -include string   Type name pattern to include (glob, can be repeated)
//	  -exclude string   Type name pattern to exclude (glob, can be repeated)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blockberries/wireforge/pkg/codegen"
	"github.com/blockberries/wireforge/pkg/compiler"
	"github.com/blockberries/wireforge/pkg/extract"
	"github.com/blockberries/wireforge/pkg/ir"
	"github.com/blockberries/wireforge/pkg/schema"
)

// version is the CLI's own release version, separate from
// schema.Version (the compiler's semantic version gate).
const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "compile", "c":
		cmdCompile(os.Args[2:])
	case "validate", "val", "v":
		cmdValidate(os.Args[2:])
	case "format", "fmt", "f":
		cmdFormat(os.Args[2:])
	case "schema", "extract", "s":
		cmdSchema(os.Args[2:])
	case "version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`wireforge schema compiler

Usage:
  wireforge <command> [options] <files>...

Commands:
  compile     Run the Schema -> MIR -> PIR pipeline and generate code
  validate    Validate schema files without generating code
  format      Format schema files
  schema      Extract a schema from annotated Go source code
  version     Print version information
  help        Print this help message

Run 'wireforge <command> -h' for command-specific help.`)
}

// stringSliceFlag allows a flag to be passed more than once (e.g. -I).
type stringSliceFlag []string

func (s *stringSliceFlag) String() string { return strings.Join(*s, ",") }
func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func cmdCompile(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)

	lang := fs.String("lang", "go", "Target language: go")
	outDir := fs.String("out", ".", "Output directory")
	pkg := fs.String("package", "", "Override package name")
	prefix := fs.String("prefix", "", "Add prefix to all type names")
	suffix := fs.String("suffix", "", "Add suffix to all type names")
	marshal := fs.Bool("marshal", true, "Generate marshal/unmarshal methods")
	jsonTags := fs.Bool("json", true, "Generate JSON tags/methods")
	namespace := fs.String("namespace", "", "Apply a namespace prefix to every compiled type")
	var searchPaths stringSliceFlag
	fs.Var(&searchPaths, "I", "Add import search path (can be repeated)")

	fs.Usage = func() {
		fmt.Println(`Usage: wireforge compile [options] <schema-file>...

Run the Schema -> MIR -> PIR pipeline against one or more .wfs files and
generate code from the resulting protocol.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	gen, ok := codegen.Get(codegen.Language(*lang))
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unsupported language: %s\n", *lang)
		fmt.Fprintln(os.Stderr, "Supported languages: go")
		os.Exit(1)
	}

	opts := codegen.DefaultOptions()
	opts.Package = *pkg
	opts.OutputPath = *outDir
	opts.TypePrefix = *prefix
	opts.TypeSuffix = *suffix
	opts.GenerateMarshal = *marshal
	opts.GenerateJSON = *jsonTags

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	var ns ir.QName
	if *namespace != "" {
		ns = ir.ParseQName(*namespace)
	}

	loader := schema.NewLoader(searchPaths...)
	var schemas []*ir.ProtocolSchema
	hasErrors := false

	for _, inputFile := range fs.Args() {
		s, errs := loader.LoadFile(inputFile)
		if len(errs) > 0 {
			hasErrors = true
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e)
			}
			continue
		}
		schemas = append(schemas, s)
	}
	if hasErrors {
		os.Exit(1)
	}

	protocols, err := compiler.CompileAll(context.Background(), schemas, ns, compiler.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling: %v\n", err)
		os.Exit(1)
	}

	for i, proto := range protocols {
		inputFile := fs.Args()[i]
		baseName := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
		outputFile := filepath.Join(*outDir, baseName+gen.FileExtension())

		f, err := os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			hasErrors = true
			continue
		}
		if err := gen.Generate(f, proto, opts); err != nil {
			f.Close()
			os.Remove(outputFile)
			fmt.Fprintf(os.Stderr, "Error generating code: %v\n", err)
			hasErrors = true
			continue
		}
		f.Close()
		fmt.Printf("Generated: %s\n", outputFile)
	}

	if hasErrors {
		os.Exit(1)
	}
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var searchPaths stringSliceFlag
	fs.Var(&searchPaths, "I", "Add import search path (can be repeated)")

	fs.Usage = func() {
		fmt.Println(`Usage: wireforge validate [options] <schema-file>...

Parse, lower, and type-check schema files without generating code.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	loader := schema.NewLoader(searchPaths...)
	hasErrors := false

	for _, inputFile := range fs.Args() {
		s, errs := loader.LoadFile(inputFile)
		if len(errs) > 0 {
			hasErrors = true
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e)
			}
			continue
		}

		if _, cerrs := compiler.Compile(s, ir.QName{}, compiler.Options{}); len(cerrs) > 0 {
			hasErrors = true
			fmt.Fprintln(os.Stderr, cerrs)
			continue
		}

		fmt.Printf("Valid: %s\n", inputFile)
	}

	if hasErrors {
		os.Exit(1)
	}
}

func cmdFormat(args []string) {
	fs := flag.NewFlagSet("format", flag.ExitOnError)
	write := fs.Bool("w", false, "Write result to (source) file instead of stdout")

	fs.Usage = func() {
		fmt.Println(`Usage: wireforge format [options] <schema-file>...

Format wireforge schema files.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input files")
		fs.Usage()
		os.Exit(1)
	}

	hasErrors := false
	for _, inputFile := range fs.Args() {
		content, err := os.ReadFile(inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", inputFile, err)
			hasErrors = true
			continue
		}

		file, parseErrors := schema.ParseFile(inputFile, string(content))
		if len(parseErrors) > 0 {
			for _, e := range parseErrors {
				fmt.Fprintln(os.Stderr, e)
			}
			hasErrors = true
			continue
		}

		formatted := schema.FormatFile(file)

		if *write {
			if err := os.WriteFile(inputFile, []byte(formatted), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", inputFile, err)
				hasErrors = true
				continue
			}
			fmt.Printf("Formatted: %s\n", inputFile)
		} else {
			fmt.Print(formatted)
		}
	}

	if hasErrors {
		os.Exit(1)
	}
}

func cmdSchema(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	outFile := fs.String("out", "", "Output file (default: stdout)")
	pkg := fs.String("package", "", "Override package name")
	private := fs.Bool("private", false, "Include unexported types")
	var includePatterns stringSliceFlag
	fs.Var(&includePatterns, "include", "Type name pattern to include (glob, can be repeated)")
	var excludePatterns stringSliceFlag
	fs.Var(&excludePatterns, "exclude", "Type name pattern to exclude (glob, can be repeated)")

	fs.Usage = func() {
		fmt.Println(`Usage: wireforge schema [options] <go-package>...

Extract a wireforge schema from annotated Go source code.

Examples:
  wireforge schema ./...
  wireforge schema -out schema.wfs ./pkg/models
  wireforge schema -include "User*" -exclude "*Internal" ./...

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no Go packages specified")
		fs.Usage()
		os.Exit(1)
	}

	cfg := &extract.ExtractorConfig{
		Config: &extract.Config{
			IncludePrivate:  *private,
			IncludePatterns: includePatterns,
			ExcludePatterns: excludePatterns,
		},
		Patterns:   fs.Args(),
		OutputPath: *outFile,
		Package:    *pkg,
	}

	extractor := extract.NewExtractor()
	if err := extractor.ExtractAndWrite(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *outFile != "" {
		fmt.Printf("Extracted: %s\n", *outFile)
	}
}

func cmdVersion() {
	fmt.Printf("wireforge version %s (schema format %s)\n", version, schema.Version)
}
