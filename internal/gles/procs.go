package gles

var procNames = map[string]bool{
	"glVertexPointer":       true,
	"glNormalPointer":       true,
	"glColorPointer":        true,
	"glTexCoordPointer":     true,
	"glPointSizePointerOES": true,
	"glClientActiveTexture": true,
	"glEnableClientState":   true,
	"glDisableClientState":  true,
	"glGenBuffers":          true,
	"glBindBuffer":          true,
	"glBufferData":          true,
	"glBufferSubData":       true,
	"glDeleteBuffers":       true,
	"glDrawArrays":          true,
	"glDrawElements":        true,
	"glGetError":            true,
	"glPointSize":           true,
	"glGetIntegerv":         true,
}

// HasProc reports whether name is a GLES entry point of this package.
func HasProc(name string) bool {
	return procNames[name]
}
