// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

//go:build aix || darwin || dragonfly || freebsd || (js && wasm) || linux || netbsd || openbsd || solaris

package compiler

import (
	"os"
	"path/filepath"
	"strings"
)

// getDefaultRoots returns FORMULA_PATH entries followed by a formula
// directory under each XDG data directory.
func getDefaultRoots(lookup func(string) (string, bool)) []string {
	var roots []string
	if paths, ok := lookup("FORMULA_PATH"); ok && paths != "" {
		roots = append(roots, filepath.SplitList(paths)...)
	}
	xdgDirs, ok := lookup("XDG_DATA_DIRS")
	if !ok {
		xdgDirs = "/usr/local/share/:/usr/share/"
	}
	dataDirs := strings.Split(xdgDirs, ":")
	for offset, dataDir := range dataDirs {
		p := filepath.Join(dataDir, "formula")
		p = os.Expand(p, func(s string) string {
			v, _ := lookup(s)
			return v
		})
		dataDirs[offset] = p
	}
	return append(roots, dataDirs...)
}
