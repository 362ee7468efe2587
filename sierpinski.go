package vkframe

import "github.com/go-gl/mathgl/mgl32"

var (
	sierpinskiLeft  = mgl32.Vec2{-0.5, 0.5}
	sierpinskiRight = mgl32.Vec2{0.5, 0.5}
	sierpinskiTop   = mgl32.Vec2{0.0, -0.5}
)

// SierpinskiVertices subdivides the base triangle depth times and returns the
// 3^depth leaf triangles as a triangle list.
func SierpinskiVertices(depth int) []Vertex {
	if depth < 0 {
		depth = 0
	}
	triangles := 1
	for i := 0; i < depth; i++ {
		triangles *= 3
	}
	vertices := make([]Vertex, 0, 3*triangles)
	return sierpinski(vertices, depth, sierpinskiLeft, sierpinskiRight, sierpinskiTop)
}

func sierpinski(dst []Vertex, depth int, top, bottomLeft, bottomRight mgl32.Vec2) []Vertex {
	if depth <= 0 {
		return append(dst,
			Vertex{Position: top, Color: mgl32.Vec3{1, 0, 0}},
			Vertex{Position: bottomRight, Color: mgl32.Vec3{0, 1, 0}},
			Vertex{Position: bottomLeft, Color: mgl32.Vec3{0, 0, 1}},
		)
	}
	leftTop := bottomLeft.Add(top).Mul(0.5)
	rightTop := top.Add(bottomRight).Mul(0.5)
	bottomMiddle := bottomLeft.Add(bottomRight).Mul(0.5)

	dst = sierpinski(dst, depth-1, leftTop, bottomLeft, bottomMiddle)
	dst = sierpinski(dst, depth-1, rightTop, bottomMiddle, bottomRight)
	return sierpinski(dst, depth-1, top, leftTop, rightTop)
}
