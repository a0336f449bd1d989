// Package abi provides internal utilities shared by the codec packages.
//
// # Contents
//
//   - discriminant.go: union discriminant width and little-endian access
//   - helpers.go: char validation, overflow-safe arithmetic, type names
//
// This package is internal to fixedbin.
package abi
