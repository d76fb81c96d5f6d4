package display

func icon(rows [Height]string, palette map[byte]Color) Image {
	var img Image
	for y, row := range rows {
		for x := 0; x < Width; x++ {
			img.Set(x, y, palette[row[x]])
		}
	}
	return img
}

var iconPalette = map[byte]Color{
	'.': Off,
	'g': Green,
	'w': White,
	'r': Red,
	'b': Blue,
}

var (
	ArrowUp = icon([Height]string{
		"...gg...",
		"..gggg..",
		".gggggg.",
		"gg.gg.gg",
		"g..gg..g",
		"...gg...",
		"...gg...",
		"...gg...",
	}, iconPalette)

	ArrowDown = icon([Height]string{
		"...gg...",
		"...gg...",
		"...gg...",
		"g..gg..g",
		"gg.gg.gg",
		".gggggg.",
		"..gggg..",
		"...gg...",
	}, iconPalette)

	EqualBars = icon([Height]string{
		"........",
		".wwwwww.",
		".wwwwww.",
		"........",
		".wwwwww.",
		".wwwwww.",
		"........",
		"........",
	}, iconPalette)

	QuestionMark = icon([Height]string{
		"...gg...",
		"..w..w..",
		".....r..",
		"....r...",
		"...g....",
		"...w....",
		"........",
		"...r....",
	}, iconPalette)
)
