package assemble

// romanNumeral converts a positive integer to its subtractive-notation Roman
// form. Section indices are always >= 1, other inputs return an empty string.
func romanNumeral(num int) string {
	type pair struct {
		val int
		sym string
	}
	romanMap := []pair{
		{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
		{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
		{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
	}
	var result []byte
	for _, p := range romanMap {
		for num >= p.val {
			result = append(result, p.sym...)
			num -= p.val
		}
	}
	return string(result)
}

// subsectionLetter maps 1->A, 2->B and so on. Papers never reach past Z.
func subsectionLetter(n int) string {
	if n < 1 || n > 26 {
		return "?"
	}
	return string(rune('A' + n - 1))
}
