package usecase

import (
	"errors"
	"strings"
)

// KeyKind tags the role of an object-store key within the backup bucket
// layout.
type KeyKind int

const (
	KindTemplate KeyKind = iota
	KindBackup
	KindValidation
	KindOperationalStatus
)

// ParsedKey is the result of parsing an object key against the bucket
// layout:
//
//	<root>/<device_class>/<vendor>/template.json
//	<root>/<device_class>/<vendor>/<hostname>/backup.json
//	<root>/<device_class>/<vendor>/<hostname>/validation.json
//	<root>/<device_class>/<vendor>/<hostname>/operational_status.json
type ParsedKey struct {
	Kind        KeyKind
	DeviceClass string
	Vendor      string
	Hostname    string
}

var ErrUnrecognizedKey = errors.New("unrecognized object key")

// ParseKey classifies a single object key. Keys that do not match the
// layout (payload files, folder markers, unrelated objects) return
// ErrUnrecognizedKey; the caller skips them.
func ParseKey(root, key string) (ParsedKey, error) {
	rel, ok := strings.CutPrefix(key, root+"/")
	if !ok {
		return ParsedKey{}, ErrUnrecognizedKey
	}

	parts := strings.Split(rel, "/")
	for _, p := range parts {
		if p == "" {
			return ParsedKey{}, ErrUnrecognizedKey
		}
	}

	switch {
	case len(parts) == 3 && parts[2] == "template.json":
		return ParsedKey{
			Kind:        KindTemplate,
			DeviceClass: parts[0],
			Vendor:      parts[1],
		}, nil
	case len(parts) == 4:
		parsed := ParsedKey{
			DeviceClass: parts[0],
			Vendor:      parts[1],
			Hostname:    parts[2],
		}
		switch parts[3] {
		case "backup.json":
			parsed.Kind = KindBackup
		case "validation.json":
			parsed.Kind = KindValidation
		case "operational_status.json":
			parsed.Kind = KindOperationalStatus
		default:
			return ParsedKey{}, ErrUnrecognizedKey
		}
		return parsed, nil
	}

	return ParsedKey{}, ErrUnrecognizedKey
}
