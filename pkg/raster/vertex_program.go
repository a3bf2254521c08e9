package raster

import "unsafe"

// VertexProgram is the user-supplied program invoked once per unique input
// index during assembly. AttribCount reports how many of the up to
// MaxAttribs input pointers are meaningful; Process knows the concrete
// attribute type behind each pointer and produces one ShaderOutput.
type VertexProgram interface {
	AttribCount() int
	Process(in [MaxAttribs]unsafe.Pointer) ShaderOutput
}
