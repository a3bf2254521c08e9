// Package render provides optimized rasterization entry points that force
// the edge-equation fill strategy instead of leaving mode selection to
// Adaptive.
package render

import (
	"github.com/lumenforge/raster/pkg/math3d"
	"github.com/lumenforge/raster/pkg/raster"
)

// DrawTriangleGouraudOpt is DrawTriangleGouraud pinned to edge-equation
// rasterization. pkg/raster's EdgeEquation mode is the same incremental
// edge-function algorithm this method used to hand-roll, generalized to any
// parameter count, so this is now just a mode pin and a call-through.
func (r *Rasterizer) DrawTriangleGouraudOpt(tri Triangle, lightDir math3d.Vec3) {
	prev := r.rr.Mode
	r.rr.Mode = raster.TriRasterModeEdgeEquation
	r.DrawTriangleGouraud(tri, lightDir)
	r.rr.Mode = prev
}

// DrawMeshGouraudOpt renders a mesh with edge-equation-pinned Gouraud shading.
func (r *Rasterizer) DrawMeshGouraudOpt(mesh MeshRenderer, transform math3d.Mat4, color Color, lightDir math3d.Vec3) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}

	prev := r.rr.Mode
	r.rr.Mode = raster.TriRasterModeEdgeEquation
	defer func() { r.rr.Mode = prev }()

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)

		p0, n0, _ := mesh.GetVertex(face[0])
		p1, n1, _ := mesh.GetVertex(face[1])
		p2, n2, _ := mesh.GetVertex(face[2])

		v0 := transform.MulVec3(p0)
		v1 := transform.MulVec3(p1)
		v2 := transform.MulVec3(p2)

		wn0 := transform.MulVec3Dir(n0).Normalize()
		wn1 := transform.MulVec3Dir(n1).Normalize()
		wn2 := transform.MulVec3Dir(n2).Normalize()

		tri := Triangle{
			V: [3]Vertex{
				{Position: v0, Normal: wn0, Color: color},
				{Position: v1, Normal: wn1, Color: color},
				{Position: v2, Normal: wn2, Color: color},
			},
		}

		r.DrawTriangleGouraud(tri, lightDir)
	}
}

// DrawTriangleTexturedOpt is DrawTriangleTexturedGouraud pinned to
// edge-equation rasterization.
func (r *Rasterizer) DrawTriangleTexturedOpt(tri Triangle, tex *Texture, lightDir math3d.Vec3) {
	prev := r.rr.Mode
	r.rr.Mode = raster.TriRasterModeEdgeEquation
	r.DrawTriangleTexturedGouraud(tri, tex, lightDir)
	r.rr.Mode = prev
}

// DrawMeshTexturedOpt renders a textured mesh with edge-equation-pinned
// Gouraud shading.
func (r *Rasterizer) DrawMeshTexturedOpt(mesh MeshRenderer, transform math3d.Mat4, tex *Texture, lightDir math3d.Vec3) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}

	prev := r.rr.Mode
	r.rr.Mode = raster.TriRasterModeEdgeEquation
	defer func() { r.rr.Mode = prev }()

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)

		p0, n0, uv0 := mesh.GetVertex(face[0])
		p1, n1, uv1 := mesh.GetVertex(face[1])
		p2, n2, uv2 := mesh.GetVertex(face[2])

		v0 := transform.MulVec3(p0)
		v1 := transform.MulVec3(p1)
		v2 := transform.MulVec3(p2)

		wn0 := transform.MulVec3Dir(n0).Normalize()
		wn1 := transform.MulVec3Dir(n1).Normalize()
		wn2 := transform.MulVec3Dir(n2).Normalize()

		tri := Triangle{
			V: [3]Vertex{
				{Position: v0, Normal: wn0, UV: uv0, Color: RGB(255, 255, 255)},
				{Position: v1, Normal: wn1, UV: uv1, Color: RGB(255, 255, 255)},
				{Position: v2, Normal: wn2, UV: uv2, Color: RGB(255, 255, 255)},
			},
		}

		r.DrawTriangleTexturedGouraud(tri, tex, lightDir)
	}
}
