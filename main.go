// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"google.golang.org/protobuf/encoding/protojson"

	"gopkg.microglot.org/formula.go/internal/compiler"
	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/fs"
	"gopkg.microglot.org/formula.go/internal/model"
)

type opts struct {
	Roots            []string
	Files            []string
	Cells            []string
	Names            []string
	Sheet            string
	RefFunctions     []string
	Stdin            bool
	DumpTokens       bool
	DumpTree         bool
	MissingArguments bool
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := &opts{}
	flags := pflag.NewFlagSet("formulac", pflag.ExitOnError)
	flags.StringSliceVar(&op.Roots, "root", []string{"."}, "Root search paths for .formulas and .cells files.")
	flags.StringSliceVarP(&op.Files, "file", "f", nil, ".formulas or .cells file, or a directory of them, to load.")
	flags.StringArrayVarP(&op.Cells, "cell", "c", nil, "Cell assignment such as A1=42 or Sheet2!B1=\"text\". May be repeated.")
	flags.StringArrayVarP(&op.Names, "name", "n", nil, "Defined name such as Total=A1:A3 or Sheet2!Local=B1. May be repeated.")
	flags.StringVar(&op.Sheet, "sheet", compiler.DefaultSheet, "Sheet that unqualified references belong to.")
	flags.StringSliceVar(&op.RefFunctions, "ref-function", nil, "Additional functions that return references, such as OFFSET.")
	flags.BoolVar(&op.Stdin, "stdin", false, "Read formulas from STDIN, one per line.")
	flags.BoolVar(&op.DumpTokens, "dump-tokens", false, "Output the token stream of each formula")
	flags.BoolVar(&op.DumpTree, "dump-tree", false, "Output the parse tree of each formula as JSON")
	flags.BoolVar(&op.MissingArguments, "missing-args", false, "Pass empty argument slots to functions as missing values")
	_ = flags.Parse(os.Args[1:])
	formulas := flags.Args()

	f, err := compiler.NewDefaultFS(os.LookupEnv)
	if err != nil {
		fail(err)
	}
	mf := make(fs.FileSystemMulti, 0, len(op.Roots)+1)
	for _, root := range op.Roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			fail(errAbs)
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			fail(err)
		}
		mf = append(mf, rf)
	}
	mf = append(mf, f)

	c, err := compiler.New(
		compiler.OptionWithLookupEnv(os.LookupEnv),
		compiler.OptionWithFS(mf),
		compiler.OptionWithVocabulary(model.NewVocabulary(model.VocabularyWithRefFunctions(op.RefFunctions...))),
	)
	if err != nil {
		fail(err)
	}

	req := &compiler.Request{
		Files:            op.Files,
		Cells:            append(op.Cells, op.Names...),
		Sheet:            op.Sheet,
		DumpTokens:       op.DumpTokens,
		DumpTree:         op.DumpTree,
		MissingArguments: op.MissingArguments,
	}
	for offset, text := range formulas {
		req.Formulas = append(req.Formulas, compiler.Formula{
			Source: fmt.Sprintf("arg[%d]", offset),
			Text:   text,
		})
	}
	if op.Stdin {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			fail(err)
		}
		req.Sources = append(req.Sources, fs.NewFileString("stdin", string(b), model.FileKindFormulas))
	}

	out, err := c.Compile(ctx, req)
	if out != nil {
		for _, result := range out.Results {
			printResult(result)
		}
	}
	if err != nil {
		fail(err)
	}
}

func printResult(result *compiler.Result) {
	for _, token := range result.Tokens {
		fmt.Printf("%-24s", token.Type)
		if token.Type != model.TokenTypeWhitespace {
			fmt.Printf("'%s'", token.Value)
		}
		fmt.Println()
	}
	if result.Tree != nil {
		b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(result.Tree)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
		} else {
			fmt.Println(string(b))
		}
	}
	if result.Err != nil {
		return
	}
	fmt.Printf("%s\t%s\n", result.Formula.Source, display(result.Value))
}

func display(v model.Value) string {
	if t, ok := v.(model.Text); ok {
		return fmt.Sprintf("%q", string(t))
	}
	return v.String()
}

func fail(err error) {
	var me exc.MultiException
	if errors.As(err, &me) {
		for _, err := range me {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
