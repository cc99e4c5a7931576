package arm

import "fmt"

// ActivitySlot names a place that holds a list of activities: the pipeline's
// own "activities" or a branch of a container activity.
type ActivitySlot struct {
	Holder map[string]any
	Key    string
	Path   string
}

// Value returns the raw value stored in the slot.
func (s ActivitySlot) Value() any {
	return s.Holder[s.Key]
}

// ChildActivitySlots lists the nested activity lists of a container activity
// (ForEach, Until, IfCondition, Switch). Slots are only returned when present.
func ChildActivitySlots(activity map[string]any, path string) []ActivitySlot {
	tp, ok := activity["typeProperties"].(map[string]any)
	if !ok {
		return nil
	}

	var out []ActivitySlot
	for _, key := range []string{"activities", "ifTrueActivities", "ifFalseActivities", "defaultActivities"} {
		if _, ok := tp[key]; ok {
			out = append(out, ActivitySlot{Holder: tp, Key: key, Path: path + "/typeProperties/" + key})
		}
	}
	if cases, ok := tp["cases"].([]any); ok {
		for i, c := range cases {
			cm, ok := c.(map[string]any)
			if !ok {
				continue
			}
			if _, ok := cm["activities"]; ok {
				out = append(out, ActivitySlot{Holder: cm, Key: "activities", Path: fmt.Sprintf("%s/typeProperties/cases/%d/activities", path, i)})
			}
		}
	}
	return out
}

// Activities flattens every activity of a pipeline definition, including
// activities nested inside container activities, in depth-first order.
// Entries that are not objects are skipped.
func Activities(properties map[string]any) []map[string]any {
	var out []map[string]any
	var walk func(list any, path string)
	walk = func(list any, path string) {
		items, ok := list.([]any)
		if !ok {
			return
		}
		for i, item := range items {
			act, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, act)
			for _, slot := range ChildActivitySlots(act, fmt.Sprintf("%s/%d", path, i)) {
				walk(slot.Value(), slot.Path)
			}
		}
	}
	walk(properties["activities"], "/activities")
	return out
}

// TopLevelActivityCount counts the entries of properties.activities.
func TopLevelActivityCount(properties map[string]any) int {
	items, _ := properties["activities"].([]any)
	return len(items)
}
