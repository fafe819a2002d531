//go:build gofuzz

package pe

// Fuzz feeds data to the two variable-length, attacker-controlled wire
// formats at the core of this editor: the resource directory tree and
// the VS_VERSIONINFO block. It is discovered by go-fuzz-build's legacy
// convention; no import of the fuzzing package itself is needed.
func Fuzz(data []byte) int {
	score := 0

	if table, err := ParseResourceSection(data, 0); err == nil {
		if _, _, err := SerializeResourceTable(table); err == nil {
			score = 1
		}
	}

	if block, err := ParseVersionInfo(data); err == nil {
		_ = FormatVersionInfo(block)
		score = 1
	}

	return score
}
