// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package testutil

import (
	"os"
	"testing"
)

// PathOfTempFile returns path of a new temporary file
func PathOfTempFile(dirName string) (string, error) {
	tempFile, err := os.CreateTemp(os.TempDir(), dirName)
	if err != nil {
		return "", err
	}
	return tempFile.Name(), tempFile.Close()
}

// CleanupPath detects the existence of test DB file and removes it if found
func CleanupPath(t *testing.T, path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}
	if err := os.RemoveAll(path); err != nil {
		t.Errorf("Fail to remove testDB file %s: %v", path, err)
	}
}
