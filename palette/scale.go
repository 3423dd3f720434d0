package palette

// Scale is B natural minor; every palette letter is one of its degrees
var Scale = [7]string{"B", "C#", "D", "E", "F#", "G", "A"}

// Degree returns the scale degree (0-6) of a letter
func Degree(letter string) (int, bool) {
	for i, l := range Scale {
		if l == letter {
			return i, true
		}
	}
	return 0, false
}
