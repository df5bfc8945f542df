// Package zpool packs variable-size blobs into page-size frames.
//
// A pool carves caller-supplied frames into size-class slabs and hands
// out opaque handles. It does not touch the frames' contents except
// through Map windows, and it does not own frame lifetime: frames come
// from and return to the [Ops] callbacks, so the caller's frame
// accounting (and any global ceiling) binds the pool.
//
// The design is deliberately simple: one frame per slab, size classes
// in 64-byte steps, a bitmap of free slots per slab. Blobs never span
// frames, so a blob can be at most [FrameSize] bytes.
//
// All methods are safe for concurrent use.
package zpool
