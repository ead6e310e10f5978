// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/alumap/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
