package portfolio

// MergeWithDefaults builds the typed form from a stored document. A field that
// is missing, null or of the wrong type takes its default; a list that is
// present keeps its length, and each row is filled field by field.
func MergeWithDefaults(doc Document) Portfolio {
	d := Defaults()
	if len(doc) == 0 {
		return d
	}

	return Portfolio{
		FullName:   stringField(doc, "fullName"),
		Title:      stringField(doc, "title"),
		Bio:        stringField(doc, "bio"),
		Skills:     stringList(doc["skills"], d.Skills),
		Education:  mergeList(doc["education"], d.Education, mergeEducation),
		Experience: mergeList(doc["experience"], d.Experience, mergeExperience),
		Projects:   mergeList(doc["projects"], d.Projects, mergeProject),
		Contact:    mergeContact(doc["contact"]),
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringList(v any, def []string) []string {
	switch items := v.(type) {
	case []any:
		out := make([]string, len(items))
		for i, item := range items {
			out[i], _ = item.(string)
		}
		return out
	case []string:
		return append([]string{}, items...)
	default:
		return append([]string{}, def...)
	}
}

func mergeList[T any](v any, def []T, merge func(map[string]any) T) []T {
	items, ok := v.([]any)
	if !ok {
		return append([]T{}, def...)
	}
	out := make([]T, len(items))
	for i, item := range items {
		m, _ := item.(map[string]any)
		out[i] = merge(m)
	}
	return out
}

func mergeEducation(m map[string]any) Education {
	return Education{
		School: stringField(m, "school"),
		Degree: stringField(m, "degree"),
		Year:   stringField(m, "year"),
	}
}

func mergeExperience(m map[string]any) Experience {
	return Experience{
		Company:     stringField(m, "company"),
		Position:    stringField(m, "position"),
		Duration:    stringField(m, "duration"),
		Description: stringField(m, "description"),
	}
}

func mergeProject(m map[string]any) Project {
	return Project{
		Name:         stringField(m, "name"),
		Description:  stringField(m, "description"),
		Technologies: stringList(m["technologies"], []string{""}),
		Link:         stringField(m, "link"),
	}
}

func mergeContact(v any) Contact {
	m, _ := v.(map[string]any)
	return Contact{
		Email:    stringField(m, "email"),
		Phone:    stringField(m, "phone"),
		Location: stringField(m, "location"),
		LinkedIn: stringField(m, "linkedin"),
		GitHub:   stringField(m, "github"),
	}
}
