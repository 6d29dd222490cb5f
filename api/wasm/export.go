//go:build wasm

package wasm

// This file defines the export interface a decoder module must implement
// for the engine to drive it. Modules built from the Draco C++ decoder
// expose these via their toolchain's export mechanism.
//
// NOTE: uint32 is used for pointers and lengths because WebAssembly uses a
// 32-bit linear memory model. All guest memory addresses are represented
// as 32-bit integers.
//
// Required exports:
//
// malloc(size uint32) uint32
//   Reserve size bytes of guest memory; 0 on failure.
//
// free(ptr uint32)
//   Release a region previously returned by malloc.
//
// result_ptr() uint32
//   Address of the scratch buffer holding the output of the most recent
//   decode_point_cloud or compute_mesh_config call.
//
// decode_point_cloud(ptr, length uint32) uint32
//   Decode an encoded point cloud; result is little-endian float32
//   position triples in the scratch buffer. Returns the result length in
//   bytes, 0 on failure.
//
// create_mesh(ptr, length uint32) uint32
//   Parse an encoded mesh; returns an opaque non-zero handle, 0 on
//   failure.
//
// compute_mesh_config(mesh uint32) uint32
//   Serialize the mesh layout into the scratch buffer: a 16-byte header
//   {vertex_count, index_count, buffer_size, attribute_count} followed by
//   16-byte attribute records {dim, data_type, offset, length}, all
//   little-endian uint32. Returns the serialized length, 0 on failure.
//
// decode_mesh_to_buffer(mesh, ptr, length uint32) uint32
//   Decode the mesh into the caller-allocated region; returns the number
//   of bytes written, 0 on failure. May write less than length.
//
// release_mesh(mesh uint32)
//   Release a handle returned by create_mesh.
//
// Optional import (module "env"):
//
// log_message(level, ptr, length uint32)
//   Host logging; level 0=debug, 1=info, 2=warn, 3=error.
