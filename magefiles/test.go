//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, postgres).
type Test mg.Namespace

// All runs every test. Live server tests skip unless WAWI_TEST_PG_HOST is set.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Unit runs all tests with the live server tests forced off.
func (Test) Unit() error {
	return sh.RunWithV(map[string]string{"WAWI_TEST_PG_HOST": ""}, binGo, "test", "./...")
}

// Postgres runs the client/server backend tests against the server named by
// WAWI_TEST_PG_HOST (default localhost).
func (Test) Postgres() error {
	host := os.Getenv("WAWI_TEST_PG_HOST")
	if host == "" {
		host = "localhost"
	}
	fmt.Println("Running client/server tests against", host)
	env := map[string]string{"WAWI_TEST_PG_HOST": host}
	return sh.RunWithV(env, binGo, "test", "-v", "-count=1", "./internal/postgres/...")
}

// Race runs all tests with the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}
