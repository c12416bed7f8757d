// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package compiler

import (
	"path/filepath"
)

func getDefaultRoots(lookup func(string) (string, bool)) []string {
	userprofile, _ := lookup("USERPROFILE")
	systemdrive, _ := lookup("SystemDrive")

	var dataDirs []string
	if paths, ok := lookup("FORMULA_PATH"); ok && paths != "" {
		dataDirs = append(dataDirs, filepath.SplitList(paths)...)
	}
	dataDirs = append(dataDirs,
		filepath.Join(userprofile, "AppData", "Local", "formula"),
		filepath.Join(systemdrive, "ProgramData", "formula"),
	)

	return dataDirs
}
