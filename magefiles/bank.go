//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// sampleBankDir is where Bank:Sample writes the built-in item bank.
const sampleBankDir = "banks/sample"

// Bank groups item bank targets.
type Bank mg.Namespace

// Sample writes the built-in sample item bank to banks/sample.
func (Bank) Sample() error {
	return sh.RunV("go", "run", cmdPkg, "bank", "sample", sampleBankDir)
}

// Validate checks the bank in banks/sample.
func (Bank) Validate() error {
	mg.Deps(Bank.Sample)
	return sh.RunV("go", "run", cmdPkg, "bank", "validate", sampleBankDir)
}
