package board

import "strings"

const (
	dropZonePrefix = "droppable-"
	noSectionZone  = "none"
)

// DropZoneID is the id of the container that accepts drops into sectionID.
// The empty section maps to "droppable-none".
func DropZoneID(sectionID string) string {
	if sectionID == "" {
		return dropZonePrefix + noSectionZone
	}
	return dropZonePrefix + sectionID
}

// ParseDropZone extracts the section id from a drop-zone id. "none" becomes "".
func ParseDropZone(id string) (sectionID string, ok bool) {
	rest, ok := strings.CutPrefix(id, dropZonePrefix)
	if !ok {
		return "", false
	}
	if rest == noSectionZone {
		return "", true
	}
	return rest, true
}
