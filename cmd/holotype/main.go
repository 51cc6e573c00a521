package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	sj "github.com/santhosh-tekuri/jsonschema/v5"
	yaml "gopkg.in/yaml.v3"

	holotype "github.com/reoring/holotype"
	"github.com/reoring/holotype/i18n"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "validate":
		validateCmd(os.Args[2:])
	case "convert":
		convertCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "holotype CLI\n\nUsage:\n  holotype validate -schema schema.json -doc doc.json|doc.yaml [-lang en|ja]\n  holotype convert -in doc.yaml -to json\n  holotype convert -in doc.json -to yaml")
}

// validateCmd checks a JSON or YAML document against a draft-07 schema file
// and prints one line per issue.
func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var schemaPath, docPath, lang string
	fs.StringVar(&schemaPath, "schema", "", "draft-07 schema file (JSON)")
	fs.StringVar(&docPath, "doc", "", "document to validate (.json or .yaml/.yml)")
	fs.StringVar(&lang, "lang", "en", "message language (en/ja)")
	_ = fs.Parse(args)
	if schemaPath == "" || docPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	i18n.SetLanguage(lang)

	compiled, err := compileSchemaFile(schemaPath)
	if err != nil {
		fatalf("schema: %v", err)
	}
	doc, err := loadDocument(docPath)
	if err != nil {
		fatalf("document: %v", err)
	}

	if err := compiled.Validate(doc); err != nil {
		if iss, ok := holotype.AsIssues(toIssues(err)); ok {
			for _, it := range iss {
				fmt.Fprintf(os.Stderr, "%s at %s: %s\n", it.Code, it.Path, it.LocalizedMessage())
			}
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
	fmt.Println("ok")
}

// convertCmd round-trips a document between JSON and YAML.
func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var in, to string
	fs.StringVar(&in, "in", "", "input document (.json or .yaml/.yml)")
	fs.StringVar(&to, "to", "", "output format: json or yaml")
	_ = fs.Parse(args)
	if in == "" || (to != "json" && to != "yaml") {
		fs.Usage()
		os.Exit(2)
	}
	doc, err := loadDocument(in)
	if err != nil {
		fatalf("document: %v", err)
	}
	var out []byte
	switch to {
	case "json":
		out, err = gojson.MarshalIndent(doc, "", "  ")
	case "yaml":
		out, err = yaml.Marshal(doc)
	}
	if err != nil {
		fatalf("render: %v", err)
	}
	os.Stdout.Write(out)
	if to == "json" {
		fmt.Println()
	}
}

func compileSchemaFile(path string) (*sj.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := sj.NewCompiler()
	c.Draft = sj.Draft7
	if err := c.AddResource(path, strings.NewReader(string(raw))); err != nil {
		return nil, err
	}
	return c.Compile(path)
}

// loadDocument parses by extension and normalizes YAML through a JSON
// round-trip so the validator sees JSON-native values either way.
func loadDocument(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		b, err := gojson.Marshal(doc)
		if err != nil {
			return nil, err
		}
		doc = nil
		if err := gojson.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
	default:
		if err := gojson.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// toIssues flattens a validator error into the Issues shape the library uses
// everywhere else, one issue per leaf cause.
func toIssues(err error) error {
	ve, ok := err.(*sj.ValidationError)
	if !ok {
		return err
	}
	var iss holotype.Issues
	var walk func(v *sj.ValidationError)
	walk = func(v *sj.ValidationError) {
		if len(v.Causes) == 0 {
			path := v.InstanceLocation
			if path == "" {
				path = "/"
			}
			iss = append(iss, holotype.Issue{
				Path:    path,
				Code:    holotype.CodeSchemaViolation,
				Message: v.Message,
			})
			return
		}
		for _, c := range v.Causes {
			walk(c)
		}
	}
	walk(ve)
	return iss
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
