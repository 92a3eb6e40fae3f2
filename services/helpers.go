package services

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func deref(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
