package approval

// Field names a profile attribute that owners can edit.
type Field string

const (
	FieldName          Field = "name"
	FieldHandle        Field = "handle"
	FieldPortraitURL   Field = "portraitUrl"
	FieldBio           Field = "bio"
	FieldLocation      Field = "location"
	FieldWebsiteURL    Field = "websiteUrl"
	FieldTwitterHandle Field = "twitterHandle"
	FieldGithubHandle  Field = "githubHandle"
	FieldLinkedinURL   Field = "linkedinUrl"
)

// EditClass says whether an edit of an approved profile needs another review.
type EditClass int

const (
	EditMinor EditClass = iota
	EditMajor
)

func (c EditClass) String() string {
	if c == EditMajor {
		return "major"
	}
	return "minor"
}

// fieldClasses changes to identity fields (who the member is) are major.
var fieldClasses = map[Field]EditClass{
	FieldName:          EditMajor,
	FieldHandle:        EditMajor,
	FieldPortraitURL:   EditMajor,
	FieldBio:           EditMinor,
	FieldLocation:      EditMinor,
	FieldWebsiteURL:    EditMinor,
	FieldTwitterHandle: EditMinor,
	FieldGithubHandle:  EditMinor,
	FieldLinkedinURL:   EditMinor,
}

// ClassOf returns the class of a single field. Unknown fields are minor.
func ClassOf(field Field) EditClass {
	return fieldClasses[field]
}

// Values holds field values keyed by Field. A nil value means "empty".
type Values map[Field]*string

// ClassifyEdit compares each proposed field against its stored value. The
// edit is major as soon as one major field differs; fields absent from
// proposed are untouched and never count.
func ClassifyEdit(current, proposed Values) EditClass {
	for _, field := range ChangedFields(current, proposed) {
		if ClassOf(field) == EditMajor {
			return EditMajor
		}
	}
	return EditMinor
}

// ChangedFields returns the proposed fields whose value differs from current.
func ChangedFields(current, proposed Values) []Field {
	var changed []Field
	for field, next := range proposed {
		if !sameValue(current[field], next) {
			changed = append(changed, field)
		}
	}
	return changed
}

func sameValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
