// Package wasmmem places encoded values in WebAssembly linear memory.
//
// Writer and Reader implement fixedbin.Writer and fixedbin.Reader over a
// bounded region of a wazero api.Memory, so both the static codecs and
// package dynamic can target guest memory directly. Store and Load move a
// single fixed-size value, and Allocator reserves space through the guest's
// cabi_realloc export.
package wasmmem
