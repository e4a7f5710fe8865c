package obo

// Tag is a recognized OBO tag. Tags the translator has no dedicated rule
// for map to TagUnrecognized; the raw text travels alongside in tagValue.
type Tag int

const (
	TagUnrecognized Tag = iota
	TagID
	TagName
	TagDef
	TagIsObsolete
	TagIsA
	TagAltID
	TagXref
	TagSynonym
	TagPropertyValue
	TagIntersectionOf
	TagRelationship
)

var tagsByName = map[string]Tag{
	"id":              TagID,
	"name":            TagName,
	"def":             TagDef,
	"is_obsolete":     TagIsObsolete,
	"is_a":            TagIsA,
	"alt_id":          TagAltID,
	"xref":            TagXref,
	"synonym":         TagSynonym,
	"property_value":  TagPropertyValue,
	"intersection_of": TagIntersectionOf,
	"relationship":    TagRelationship,
}

// ParseTag maps raw tag text to a Tag
func ParseTag(raw string) Tag {
	if tag, ok := tagsByName[raw]; ok {
		return tag
	}
	return TagUnrecognized
}

func (t Tag) String() string {
	for name, tag := range tagsByName {
		if tag == t {
			return name
		}
	}
	return "unrecognized"
}

// tagValue is one classified `tag: value` line
type tagValue struct {
	tag   Tag
	raw   string
	value string
}

// StanzaKind identifies the block a line belongs to
type StanzaKind int

const (
	StanzaHeader StanzaKind = iota
	StanzaTerm
	StanzaTypedef
	// StanzaOther covers bracketed stanzas that are not translated, e.g. [Instance]
	StanzaOther
)

func (k StanzaKind) String() string {
	switch k {
	case StanzaHeader:
		return "header"
	case StanzaTerm:
		return "term"
	case StanzaTypedef:
		return "typedef"
	default:
		return "other"
	}
}
