package board

// MaskName hides the middle of a display name: "홍길동" becomes "홍*동".
// Names of one rune are returned unchanged.
func MaskName(name string) string {
	r := []rune(name)
	if len(r) <= 1 {
		return name
	}
	return string(r[0]) + "*" + string(r[len(r)-1])
}
