// Package abi provides internal utilities shared by the layout and storage
// packages: alignment arithmetic and overflow-checked size math.
//
// This package is internal to fasttuple.
package abi
