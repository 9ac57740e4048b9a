// Package trace reads, writes, generates and replays allocation traces.
//
// A trace is a text file in the classic malloc-lab format: four header lines
// followed by one operation per line.
//
//	20000     suggested heap size (ignored by the replayer)
//	3         number of distinct block ids
//	5         number of operations
//	1         weight
//	a 0 512   allocate 512 bytes as block 0
//	a 1 128
//	r 0 640   resize block 0 to 640 bytes
//	f 1       free block 1
//	f 0
//
// Files ending in ".br" are brotli-compressed.
//
// # Replay
//
// Replay drives an alloc.Allocator through a trace and validates every
// returned block: it must be 8-byte aligned, lie inside the heap and overlap
// no other live block. With ReplayOptions.Verify set each payload is filled
// with a byte derived from its id and checked again when the block is resized
// or freed. ReplayOptions.CheckEach additionally runs the heap checker after
// every operation when the allocator provides one.
//
// RunAll replays many traces concurrently, one allocator per trace.
package trace
