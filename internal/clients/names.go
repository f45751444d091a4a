package clients

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clerk/internal/textutil"
)

// titleToken capitalises each word of a token. A Caser keeps state, so a
// fresh one is built per call.
func titleToken(token string) string {
	return cases.Title(language.Und).String(token)
}

// DisplayName title-cases each present token, joined by spaces.
func DisplayName(c Client) string {
	parts := make([]string, 0, 3)
	for _, token := range []string{c.First, c.Middle, c.Last} {
		if token != "" {
			parts = append(parts, titleToken(token))
		}
	}
	return strings.Join(parts, " ")
}

// BaseFolderName is Last_Middle_First (Last_First without a middle name)
// with each token title-cased and made filesystem safe.
func BaseFolderName(c Client) string {
	parts := make([]string, 0, 3)
	for _, token := range []string{c.Last, c.Middle, c.First} {
		if token == "" {
			continue
		}
		if safe := textutil.SanitizeFileName(titleToken(token)); safe != "" {
			parts = append(parts, safe)
		}
	}
	if len(parts) == 0 {
		return "Unnamed"
	}
	return strings.Join(parts, "_")
}

// AssignFolderNames returns one folder name per position of list. When a
// base name is already taken (compared case-insensitively) the later entry
// gets _2, _3, … so every position receives a distinct folder.
func AssignFolderNames(list []Client) []string {
	names := make([]string, len(list))
	used := make(map[string]struct{}, len(list))
	for i, c := range list {
		base := BaseFolderName(c)
		name := base
		for n := 2; ; n++ {
			if _, taken := used[strings.ToLower(name)]; !taken {
				break
			}
			name = base + "_" + strconv.Itoa(n)
		}
		used[strings.ToLower(name)] = struct{}{}
		names[i] = name
	}
	return names
}
