// Package wire is the compact binary encoding of host mutation batches.
//
// The preview server sends these frames to WebSocket clients that ask for
// the binary format. A frame is:
//
//	[kind:1] [count:varint] mutation*
//
// and each mutation is:
//
//	[op:1] [target:varint] [parent:varint] [index:varint] [name:string] [value:string]
//
// Strings are a varint length followed by UTF-8 bytes. Varints use the
// protobuf layout: seven data bits per byte, high bit set on every byte but
// the last.
package wire
