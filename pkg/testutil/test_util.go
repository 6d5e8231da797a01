// Copyright (c) 2015 Western Digital Corporation or its affiliates. All rights reserved.
// SPDX-License-Identifier: MIT
//
// This contains a few functions to help writing tests. If you want to put
// something in a temporary directory, put them in testutil.TempDir(), or a
// directory within it. Also, put this in a file named main_test.go in your
// package, and temp directories will be cleaned up automatically on successful
// runs:
/*

package mypkg

import (
	"testing"

	"github.com/westerndigitalcorporation/floe/pkg/testutil"
)

func TestMain(m *testing.M) {
	testutil.TestMain(m)
}

*/

package testutil

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var (
	tempDirOnce          sync.Once
	tempDir, createdBase string
)

// TempDir gets a temp directory that's exclusive to this process (but not
// necessarily other tests in the same process). Use NewTempDir to get a
// directory exclusive to a particular test.
func TempDir() string {
	tempDirOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp(getBase(), filepath.Base(os.Args[0]))
		if err != nil {
			log.Fatalf("Couldn't create temp dir: %s", err)
		}
	})
	return tempDir
}

// NewTempDir creates a fresh directory inside TempDir.
func NewTempDir(t testing.TB, prefix string) string {
	dir, err := os.MkdirTemp(TempDir(), prefix)
	if err != nil {
		t.Fatalf("failed to create temp dir: %s", err)
	}
	return dir
}

// Get a base temp dir. Create one if it doesn't exist.
func getBase() string {
	// Try TMPDIR first.
	if tmp := os.Getenv("TMPDIR"); tmp != "" {
		return tmp
	}
	// Otherwise just make one in the current directory.
	wd, err := os.Getwd()
	if nil != err {
		log.Fatalf("could not get the current dir: %s", err)
	}
	// Note that "*.test" is in .gitignore, so this will be ignored by git
	// anywhere in the repo.
	base := time.Now().Format("20060102.150405.test")
	tmp := filepath.Join(wd, base)
	if err := os.Mkdir(tmp, 0755); nil != err && !os.IsExist(err) {
		log.Fatalf("failed to create tmp dir: %s", tmp)
	}
	createdBase = tmp
	return tmp
}

func cleanup() {
	if tempDir != "" {
		os.RemoveAll(tempDir)
	}
	if createdBase != "" {
		os.RemoveAll(createdBase)
	}
}

// TestMain should be called from your package TestMain to ensure that the process
// temp directory is cleaned up on successful runs.
func TestMain(m *testing.M) {
	flag.Parse()
	ret := m.Run()
	if ret == 0 {
		cleanup()
	}
	os.Exit(ret)
}

// WriteFile writes data to dir/name, creating parent directories as needed,
// and returns the full path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %s", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %s", path, err)
	}
	return path
}

// WaitFor polls cond every 10ms until it returns true or timeout passes. It
// reports whether cond became true.
func WaitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
}
