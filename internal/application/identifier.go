package application

import "regexp"

// declaredIDPattern matches the first "id": "..." pair in raw artifact text.
var declaredIDPattern = regexp.MustCompile(`"id"\s*:\s*"([^"]+)"`)

// ExtractDeclaredID pulls the artifact's declared id out of raw file text
// without a full parse. Credential files may contain template syntax that is
// not valid JSON, so this is deliberately a best-effort text match, used only
// to derive stable filenames — never to decide artifact semantics.
func ExtractDeclaredID(raw []byte) (string, bool) {
	m := declaredIDPattern.FindSubmatch(raw)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}
