package collada

import (
	"strconv"
	"strings"

	"github.com/godotengine/collada-exporter/math"
)

// formatFloat renders a float with the shortest representation that
// round-trips at 32-bit precision.
func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// formatMatrix renders the 16 matrix elements in row-major order, the
// element order the Collada <matrix> element expects.
func formatMatrix(m math.Mat4) string {
	var b strings.Builder
	for i := 0; i < 16; i++ {
		b.WriteByte(' ')
		b.WriteString(formatFloat(m.Data[i]))
	}
	b.WriteByte(' ')
	return b.String()
}

// formatFloats renders the values separated by spaces, each multiplied
// by mult.
func formatFloats(vals []float32, mult float32) string {
	var b strings.Builder
	b.WriteByte(' ')
	for _, v := range vals {
		b.WriteByte(' ')
		b.WriteString(formatFloat(v * mult))
	}
	b.WriteByte(' ')
	return b.String()
}

// formatColourAlpha renders an RGB colour scaled by mult with an
// opaque alpha appended, as Collada colour elements carry RGBA.
func formatColourAlpha(c math.Vec3, mult float32) string {
	var b strings.Builder
	b.WriteByte(' ')
	for _, v := range []float32{c.X, c.Y, c.Z} {
		b.WriteByte(' ')
		b.WriteString(formatFloat(v * mult))
	}
	b.WriteString(" 1.0 ")
	return b.String()
}

// formatColour renders an RGB colour without alpha.
func formatColour(c math.Vec3) string {
	var b strings.Builder
	b.WriteByte(' ')
	for _, v := range []float32{c.X, c.Y, c.Z} {
		b.WriteByte(' ')
		b.WriteString(formatFloat(v))
	}
	b.WriteByte(' ')
	return b.String()
}

// formatInts renders the indices separated by spaces.
func formatInts(vals []int) string {
	var b strings.Builder
	for _, v := range vals {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}
