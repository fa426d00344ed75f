// Package frame implements the on-disk format of shifted files.
//
// A shifted file starts with a small header followed by the payload:
//
//	offset 0 : 7 bytes  magic "SHIFTED"
//	offset 7 : 1 byte   shift value, 1..255
//	offset 8 : 1 byte   name length, 1..255
//	offset 9 : N bytes  original base name, UTF-8
//	...      : payload, every byte advanced by the shift value (mod 256)
//
// The transform is a bytewise additive shift and provides no confidentiality.
package frame
