package display

import "unicode"

const (
	glyphWidth  = 3
	glyphHeight = 5
	glyphTop    = 1
)

// 3x5 glyphs for the characters station messages use.
var glyphs = map[rune][glyphHeight]string{
	'0': {"###", "#.#", "#.#", "#.#", "###"},
	'1': {".#.", "##.", ".#.", ".#.", "###"},
	'2': {"###", "..#", "###", "#..", "###"},
	'3': {"###", "..#", ".##", "..#", "###"},
	'4': {"#.#", "#.#", "###", "..#", "..#"},
	'5': {"###", "#..", "###", "..#", "###"},
	'6': {"###", "#..", "###", "#.#", "###"},
	'7': {"###", "..#", ".#.", ".#.", ".#."},
	'8': {"###", "#.#", "###", "#.#", "###"},
	'9': {"###", "#.#", "###", "..#", "###"},
	'.': {"...", "...", "...", "...", ".#."},
	'-': {"...", "...", "###", "...", "..."},
	'%': {"#.#", "..#", ".#.", "#..", "#.#"},
	'F': {"###", "#..", "##.", "#..", "#.."},
	'C': {"###", "#..", "#..", "#..", "###"},
	'I': {"###", ".#.", ".#.", ".#.", "###"},
	'N': {"#.#", "###", "###", "###", "#.#"},
	'T': {"###", ".#.", ".#.", ".#.", ".#."},
	'?': {"###", "..#", ".##", "...", ".#."},
	' ': {"...", "...", "...", "...", "..."},
}

// columns renders text into a strip of glyph columns, one blank column
// after each character. Unknown characters render as '?'.
func columns(text string) [][glyphHeight]bool {
	var cols [][glyphHeight]bool
	for _, r := range text {
		g, ok := glyphs[unicode.ToUpper(r)]
		if !ok {
			g = glyphs['?']
		}
		for x := 0; x < glyphWidth; x++ {
			var col [glyphHeight]bool
			for y := 0; y < glyphHeight; y++ {
				col[y] = g[y][x] == '#'
			}
			cols = append(cols, col)
		}
		cols = append(cols, [glyphHeight]bool{})
	}
	return cols
}

// scrollFrames returns every frame of text scrolling in from the right and
// out to the left.
func scrollFrames(text string, fg, bg Color) []Image {
	cols := columns(text)
	// blank lead-in and lead-out so the text enters and leaves the matrix
	strip := make([][glyphHeight]bool, 0, len(cols)+2*Width)
	strip = append(strip, make([][glyphHeight]bool, Width)...)
	strip = append(strip, cols...)
	strip = append(strip, make([][glyphHeight]bool, Width)...)

	frames := make([]Image, 0, len(strip)-Width+1)
	for off := 0; off+Width <= len(strip); off++ {
		img := Fill(bg)
		for x := 0; x < Width; x++ {
			col := strip[off+x]
			for y := 0; y < glyphHeight; y++ {
				if col[y] {
					img.Set(x, glyphTop+y, fg)
				}
			}
		}
		frames = append(frames, img)
	}
	return frames
}
