// Package shifter drives the shift and restore pipelines over a list of files.
//
// Files are handled one at a time, in order. Each file yields exactly one Result;
// a problem with one file never prevents processing of the next.
package shifter
