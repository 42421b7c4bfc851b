package drive

import (
	"regexp"
	"strconv"
	"strings"
)

// Folder and file names carry their position as a numeric prefix, e.g.
// "01.Networking" or "02 - Setup.mp4". Parsing is total: any string maps to
// an order plus a title, and names without a prefix fall back differently
// for folders (sort last) and files (sort first).

const unorderedFolderRank = 999

var (
	folderNameRegex = regexp.MustCompile(`^(\d+)[.\s\-]*(.*)$`)
	fileNameRegex   = regexp.MustCompile(`^(\d+)[.\s\-]+(.*)$`)
)

type ParsedName struct {
	Order int
	Title string
}

// ParseFolderName extracts order and title from a folder name:
// "01.Networking" -> {1, "Networking"}. Unprefixed folders rank 999.
func ParseFolderName(name string) ParsedName {
	trimmed := strings.TrimSpace(name)
	m := folderNameRegex.FindStringSubmatch(trimmed)
	if m == nil {
		return ParsedName{Order: unorderedFolderRank, Title: trimmed}
	}
	order, _ := strconv.Atoi(m[1])
	title := strings.TrimSpace(m[2])
	if title == "" {
		title = trimmed
	}
	return ParsedName{Order: order, Title: title}
}

// ParseFileName extracts order and title from a video file name:
// "02 - Setup.mp4" -> {2, "Setup.mp4"}. Unprefixed files rank 0, so they
// float to the front rather than the back; the asymmetry with folders is
// long-standing observable behavior.
func ParseFileName(name string) ParsedName {
	m := fileNameRegex.FindStringSubmatch(name)
	if m == nil {
		return ParsedName{Order: 0, Title: name}
	}
	order, _ := strconv.Atoi(m[1])
	title := strings.TrimSpace(m[2])
	if title == "" {
		title = name
	}
	return ParsedName{Order: order, Title: title}
}
