// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"gopkg.microglot.org/formula.go/internal/exc"
	"gopkg.microglot.org/formula.go/internal/model"
	"gopkg.microglot.org/formula.go/internal/workbook"
)

// SubCompiler loads one kind of file. It may fill the workbook, return
// formulas to evaluate, or both.
type SubCompiler interface {
	CompileFile(ctx context.Context, r exc.Reporter, file model.File, book *workbook.Workbook, sheet string) ([]Formula, error)
}

func DefaultSubCompilers() map[model.FileKind]SubCompiler {
	return map[model.FileKind]SubCompiler{
		model.FileKindFormulas: &SubCompilerFormulas{},
		model.FileKindCells:    &SubCompilerCells{},
	}
}

// SubCompilerCells reads assignments, one per line. A line such as [Sheet2]
// changes the sheet that the following lines default to. Blank lines and
// lines starting with // are skipped. Bad assignments are reported and the
// rest of the file still loads.
type SubCompilerCells struct{}

func (self *SubCompilerCells) CompileFile(ctx context.Context, r exc.Reporter, file model.File, book *workbook.Workbook, sheet string) ([]Formula, error) {
	err := eachLine(ctx, file, func(number int, line string) error {
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			sheet = strings.TrimSpace(line[1 : len(line)-1])
			return nil
		}
		if err := book.Assign(sheet, line); err != nil {
			_ = r.Report(exc.Wrap(lineLocation(ctx, file, number), exc.CodeInvalidWorkbookInput, err))
		}
		return nil
	})
	return nil, err
}

// SubCompilerFormulas reads one formula per line. Each line may start with
// an = as it would in a spreadsheet.
type SubCompilerFormulas struct{}

func (self *SubCompilerFormulas) CompileFile(ctx context.Context, r exc.Reporter, file model.File, book *workbook.Workbook, sheet string) ([]Formula, error) {
	var formulas []Formula
	err := eachLine(ctx, file, func(number int, line string) error {
		formulas = append(formulas, Formula{
			Source: lineLocation(ctx, file, number).Source,
			Sheet:  sheet,
			Text:   line,
		})
		return nil
	})
	return formulas, err
}

func lineLocation(ctx context.Context, file model.File, number int) exc.Location {
	return exc.Location{Source: fmt.Sprintf("%s:%d", file.Path(ctx), number)}
}

// eachLine calls f for every meaningful line with its one-based number. An
// error from f stops the scan.
func eachLine(ctx context.Context, file model.File, f func(number int, line string) error) error {
	body, err := file.Body(ctx)
	if err != nil {
		return exc.WrapUnknown(exc.Location{Source: file.Path(ctx)}, err)
	}
	defer body.Close()
	scanner := bufio.NewScanner(body)
	number := 0
	for scanner.Scan() {
		number = number + 1
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if err := f(number, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return exc.WrapUnknown(exc.Location{Source: file.Path(ctx)}, err)
	}
	return nil
}
