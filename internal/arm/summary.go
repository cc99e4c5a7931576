package arm

// Summarize counts components by compatibility status and by type.
func Summarize(components []Component) Summary {
	s := Summary{ByType: map[string]int{}}
	for _, c := range components {
		s.Total++
		s.ByType[string(c.Type)]++
		switch c.CompatibilityStatus {
		case StatusSupported:
			s.Supported++
		case StatusPartiallySupported:
			s.PartiallySupported++
		case StatusUnsupported:
			s.Unsupported++
		}
	}
	return s
}
