// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package compiler loads workbooks and formulas from files and evaluates
// every formula concurrently against the loaded workbook.
package compiler

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"

	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/fs"
	"gopkg.microglot.org/formula.go/internal/grammar"
	"gopkg.microglot.org/formula.go/internal/iter"
	"gopkg.microglot.org/formula.go/internal/lexer"
	"gopkg.microglot.org/formula.go/internal/model"
	"gopkg.microglot.org/formula.go/internal/workbook"
)

const DefaultSheet = "Sheet1"

type Option func(c *Compiler) error

func OptionWithFS(fs model.FileSystem) Option {
	return func(c *Compiler) error {
		c.FS = fs
		return nil
	}
}

func OptionWithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(c *Compiler) error {
		c.LookupENV = lookupEnv
		return nil
	}
}

func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *Compiler) error {
		c.Reporter = reporter
		return nil
	}
}

func OptionWithMaxConcurrency(max int) Option {
	return func(c *Compiler) error {
		if max < 0 {
			return fmt.Errorf("max concurrency must not be negative: %d", max)
		}
		c.MaxConcurrency = max
		return nil
	}
}

// OptionWithVocabulary replaces the default vocabulary, for example to
// declare reference-returning functions.
func OptionWithVocabulary(vocab *model.Vocabulary) Option {
	return func(c *Compiler) error {
		c.Vocabulary = vocab
		return nil
	}
}

// OptionWithWorkbookOptions configures every workbook the compiler creates.
func OptionWithWorkbookOptions(opts ...workbook.Option) Option {
	return func(c *Compiler) error {
		c.WorkbookOptions = append(c.WorkbookOptions, opts...)
		return nil
	}
}

func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.LookupENV == nil {
		c.LookupENV = os.LookupEnv
	}
	if c.FS == nil {
		dfs, err := NewDefaultFS(c.LookupENV)
		if err != nil {
			return nil, err
		}
		c.FS = dfs
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.Semaphore == nil {
		c.Semaphore = newSemaphore(c.MaxConcurrency)
	}
	if c.Reporter == nil {
		c.Reporter = exc.NewReporter(nil)
	}
	if c.Vocabulary == nil {
		c.Vocabulary = model.NewVocabulary()
	}
	if c.SubCompilers == nil {
		c.SubCompilers = DefaultSubCompilers()
	}
	return c, nil
}

type Compiler struct {
	LookupENV       func(string) (string, bool)
	FS              model.FileSystem
	MaxConcurrency  int
	Semaphore       *semaphore
	Reporter        exc.Reporter
	Vocabulary      *model.Vocabulary
	WorkbookOptions []workbook.Option
	SubCompilers    map[model.FileKind]SubCompiler
}

// Formula is one formula to evaluate. Source names it in diagnostics.
type Formula struct {
	Source string
	Sheet  string
	Text   string
}

type Request struct {
	// Files are opened through the file system. Cells files are loaded into
	// the workbook before any formula is evaluated.
	Files []string
	// Sources are files supplied directly rather than opened, such as
	// standard input. They load after Files.
	Sources []model.File
	// Cells are workbook assignments such as A1=42 or Total=A1:A3.
	Cells    []string
	Formulas []Formula
	// Sheet is the sheet that unqualified references and assignments use.
	Sheet            string
	DumpTokens       bool
	DumpTree         bool
	MissingArguments bool
}

type Result struct {
	Formula Formula
	Value   model.Value
	Tokens  []*model.Token
	Tree    *structpb.Struct
	Err     error
}

type Response struct {
	Workbook *workbook.Workbook
	Results  []*Result
}

// Compile loads every input and evaluates every formula. Results come back
// in input order. Any reported diagnostic causes an exc.MultiException to be
// returned alongside the response.
func (self *Compiler) Compile(ctx context.Context, req *Request) (*Response, error) {
	sheet := req.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	book, err := workbook.New(self.WorkbookOptions...)
	if err != nil {
		return nil, err
	}
	for offset, line := range req.Cells {
		if err := book.Assign(sheet, line); err != nil {
			self.report(exc.Location{Source: fmt.Sprintf("--cell[%d]", offset)}, err)
		}
	}

	files := make([]model.File, 0, len(req.Files))
	for _, target := range req.Files {
		in, err := self.FS.Open(ctx, fs.Normalize(target))
		if err != nil {
			self.report(exc.Location{Source: target}, err)
			continue
		}
		for _, inf := range in {
			if inf.Kind(ctx) == model.FileKindNone {
				continue
			}
			files = append(files, inf)
		}
	}
	files = append(files, req.Sources...)

	loaded, err := self.loadFiles(ctx, files, book, sheet)
	if err != nil {
		if caught := self.Reporter.Reported(); len(caught) > 0 {
			return nil, exc.MultiException(caught)
		}
		return nil, err
	}
	formulas := append([]Formula{}, loaded...)
	for _, f := range req.Formulas {
		if f.Sheet == "" {
			f.Sheet = sheet
		}
		formulas = append(formulas, f)
	}

	results, err := self.evaluateAll(ctx, book, formulas, req)
	if err != nil {
		return nil, err
	}
	resp := &Response{Workbook: book, Results: results}
	caught := self.Reporter.Reported()
	if len(caught) > 0 {
		return resp, exc.MultiException(caught)
	}
	return resp, nil
}

type fileResult struct {
	offset   int
	formulas []Formula
	err      error
}

// loadFiles runs every file through its sub-compiler. Cells files fill the
// workbook and formula files contribute formulas in file order.
func (self *Compiler) loadFiles(ctx context.Context, files []model.File, book *workbook.Workbook, sheet string) ([]Formula, error) {
	loaded := &sync.Map{}
	results := make(chan fileResult, len(files))
	for offset, file := range files {
		go func(offset int, file model.File) {
			formulas, err := self.compileFile(ctx, file, loaded, book, sheet)
			results <- fileResult{offset: offset, formulas: formulas, err: err}
		}(offset, file)
	}

	byFile := make([][]Formula, len(files))
	for x := 0; x < len(files); x = x + 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-results:
			if result.err != nil {
				return nil, result.err
			}
			byFile[result.offset] = result.formulas
		}
	}
	var out []Formula
	for _, formulas := range byFile {
		out = append(out, formulas...)
	}
	return out, nil
}

func (self *Compiler) compileFile(ctx context.Context, file model.File, loaded *sync.Map, book *workbook.Workbook, sheet string) ([]Formula, error) {
	self.Semaphore.Lock()
	defer self.Semaphore.Unlock()
	if _, ok := loaded.LoadOrStore(file.Path(ctx), true); ok {
		return nil, nil
	}
	sc := self.SubCompilers[file.Kind(ctx)]
	if sc == nil {
		e := exc.New(exc.Location{Source: file.Path(ctx)}, exc.CodeUnsupportedFileFormat, fmt.Sprintf("unsupported file format %s", file.Kind(ctx)))
		return nil, self.Reporter.Report(e)
	}
	return sc.CompileFile(ctx, self.Reporter, file, book, sheet)
}

type evalResult struct {
	offset int
	result *Result
}

func (self *Compiler) evaluateAll(ctx context.Context, book *workbook.Workbook, formulas []Formula, req *Request) ([]*Result, error) {
	results := make(chan evalResult, len(formulas))
	for offset, f := range formulas {
		go func(offset int, f Formula) {
			self.Semaphore.Lock()
			defer self.Semaphore.Unlock()
			results <- evalResult{offset: offset, result: self.evaluate(ctx, book, f, req)}
		}(offset, f)
	}

	out := make([]*Result, len(formulas))
	for x := 0; x < len(formulas); x = x + 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-results:
			out[r.offset] = r.result
		}
	}
	return out, nil
}

// evaluate runs one formula through its own lexer and parser. Diagnostics go
// to the shared reporter and are also kept on the result.
func (self *Compiler) evaluate(ctx context.Context, book *workbook.Workbook, f Formula, req *Request) *Result {
	result := &Result{Formula: f}
	l, err := lexer.New(self.Vocabulary, lexer.OptionWithReporter(self.Reporter))
	if err != nil {
		result.Err = err
		return result
	}
	tokens, err := iter.Collect(ctx, l.Tokens(ctx, f.Source, strings.NewReader(f.Text)))
	if req.DumpTokens {
		result.Tokens = tokens
	}
	if err != nil {
		result.Err = err
		return result
	}

	resolver := book.Resolver(f.Sheet)
	p, err := grammar.New(
		self.Vocabulary,
		grammar.OptionWithReporter(self.Reporter),
		grammar.OptionWithResolver(resolver),
		grammar.OptionWithOperators(resolver),
		grammar.OptionWithMissingArguments(req.MissingArguments),
	)
	if err != nil {
		result.Err = err
		return result
	}

	if !req.DumpTree {
		v, err := p.Evaluate(ctx, f.Source, iter.NewSlice(tokens))
		if err != nil {
			result.Err = err
			return result
		}
		result.Value = resolver.Result(v)
		return result
	}

	tree, err := p.Build(ctx, f.Source, iter.NewSlice(tokens))
	if err != nil {
		result.Err = err
		return result
	}
	encoded, err := grammar.EncodeTree(tree)
	if err != nil {
		result.Err = self.report(exc.Location{Source: f.Source}, err)
		return result
	}
	result.Tree = encoded
	result.Value = resolver.Result(grammar.Replay(tree, grammar.NewEvaluator(resolver, resolver)))
	return result
}

// report records an error that did not come through a reporter already.
func (self *Compiler) report(location exc.Location, err error) error {
	e, ok := err.(exc.Exception)
	if !ok {
		e = exc.WrapUnknown(location, err)
	}
	if reported := self.Reporter.Report(e); reported != nil {
		return reported
	}
	return nil
}
